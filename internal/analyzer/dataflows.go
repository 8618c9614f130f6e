package analyzer

import (
	"strings"

	"github.com/usestring/apiskill/pkg/types"
)

// buildDataFlows emits a DataFlow for every produced field of one group
// that matches a consumed slot of another, per §4.6's matching rule,
// then marks every consumer drawing from >=2 distinct producers as an
// orchestrator.
func buildDataFlows(groups []types.EndpointGroup) []types.DataFlow {
	var flows []types.DataFlow
	producerCount := map[string]map[string]bool{} // consumer -> set of producers

	for i := range groups {
		p := &groups[i]
		produced := splitCSV(p.Produces)
		if len(produced) == 0 {
			continue
		}
		producerRes := baseResource(p.NormalizedPath)
		for j := range groups {
			if i == j {
				continue
			}
			c := &groups[j]
			for _, field := range produced {
				slot, as, ok := matchConsumerSlot(field, producerRes, c)
				if !ok {
					continue
				}
				flows = append(flows, types.DataFlow{
					Producer:   p.EndpointID,
					Consumer:   c.EndpointID,
					Field:      slot,
					ConsumedAs: as,
				})
				if producerCount[c.EndpointID] == nil {
					producerCount[c.EndpointID] = map[string]bool{}
				}
				producerCount[c.EndpointID][p.EndpointID] = true
			}
		}
	}

	for i := range flows {
		if len(producerCount[flows[i].Consumer]) >= 2 {
			flows[i].Orchestrator = true
		}
	}
	return flows
}

// matchConsumerSlot checks a produced field name against one
// consumer's path params, query params, and request-body keys
// (consumes), applying the spec's case-insensitive, separator-
// normalized, sibling-resource-id, and minimum-substring-length rules.
func matchConsumerSlot(field, producerRes string, c *types.EndpointGroup) (slot, as string, ok bool) {
	for _, p := range c.PathParams {
		if namesMatch(field, p.Name, producerRes) {
			return p.Name, "path_param", true
		}
	}
	for _, q := range c.QueryParams {
		if namesMatch(field, q.Name, producerRes) {
			return q.Name, "query_param", true
		}
	}
	for _, k := range splitCSV(c.Consumes) {
		if namesMatch(field, k, producerRes) {
			return k, "body_field", true
		}
	}
	return "", "", false
}

func namesMatch(produced, consumed, producerRes string) bool {
	pn := normalizeName(produced)
	cn := normalizeName(consumed)
	if pn == cn {
		return true
	}
	// "id" produced by resource R matches a sibling consumer slot
	// ending in "Id" named after R (e.g. userId for /users' id).
	if pn == "id" && producerRes != "" {
		want := normalizeName(singularize(producerRes)) + "id"
		if cn == want {
			return true
		}
	}
	shorter, longer := pn, cn
	if len(longer) < len(shorter) {
		shorter, longer = longer, shorter
	}
	if len(shorter) >= 3 && strings.Contains(longer, shorter) {
		return true
	}
	return false
}

func normalizeName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
