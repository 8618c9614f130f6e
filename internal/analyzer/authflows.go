package analyzer

import (
	"regexp"
	"strings"

	"github.com/usestring/apiskill/pkg/schema"
	"github.com/usestring/apiskill/pkg/types"
)

var refreshPathPattern = regexp.MustCompile(`(?i)/(refresh|renew|rotate)(/|$)`)

var tokenFieldPattern = regexp.MustCompile(`(?i)token|jwt|access|refresh|secret|apikey|api_key`)

// buildAuthFlows emits one flow per auth-category group, cross-links
// them into a multi-step chain when two or more exist, and sets
// refreshEndpoint when a sibling /refresh|/renew|/rotate path exists.
func buildAuthFlows(groups []types.EndpointGroup, requests []types.ParsedRequest) []types.AuthFlow {
	var authGroups []*types.EndpointGroup
	for i := range groups {
		if groups[i].Category == "auth" {
			authGroups = append(authGroups, &groups[i])
		}
	}
	if len(authGroups) == 0 {
		return nil
	}

	consumers := authConsumers(groups, requests)

	var refreshID string
	for _, g := range authGroups {
		if refreshPathPattern.MatchString(g.NormalizedPath) {
			refreshID = g.EndpointID
			break
		}
	}

	var chain []string
	flows := make([]types.AuthFlow, 0, len(authGroups)+1)
	for _, g := range authGroups {
		kind := "login"
		if refreshPathPattern.MatchString(g.NormalizedPath) {
			kind = "refresh"
		}
		chain = append(chain, g.EndpointID)
		flow := types.AuthFlow{
			Steps:          []string{g.EndpointID},
			Kind:           kind,
			Endpoint:       g.EndpointID,
			Method:         g.Method,
			InputFields:    objectFieldNames(g.RequestSchema),
			ProducedTokens: producedTokenFields(g.ResponseSchema),
			ConsumedBy:     consumers[g.EndpointID],
		}
		if kind != "refresh" && refreshID != "" {
			flow.RefreshEndpoint = refreshID
		}
		flows = append(flows, flow)
	}
	if len(authGroups) >= 2 {
		flows = append(flows, types.AuthFlow{Steps: chain, Kind: "oauth_exchange"})
	}
	return flows
}

// authConsumers maps each auth endpoint_id to the non-auth endpoint_ids
// whose requests carry any recognized auth header or any cookie.
// Without per-request credential provenance tracking, the same
// consuming set is attributed to every auth endpoint in the service —
// a conservative over-approximation rather than a precise
// producer/consumer trace.
func authConsumers(groups []types.EndpointGroup, requests []types.ParsedRequest) map[string][]string {
	var authIDs []string
	byKey := map[string]string{}
	for i := range groups {
		g := &groups[i]
		if g.Category == "auth" {
			authIDs = append(authIDs, g.EndpointID)
		} else {
			byKey[g.Method+" "+g.NormalizedPath] = g.EndpointID
		}
	}

	seen := map[string]bool{}
	var consuming []string
	for i := range requests {
		r := &requests[i]
		if len(r.AuthHeaderNames) == 0 && len(r.CookieNames) == 0 {
			continue
		}
		id, ok := byKey[r.Method+" "+r.NormalizedPath]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		consuming = append(consuming, id)
	}

	out := map[string][]string{}
	for _, id := range authIDs {
		out[id] = consuming
	}
	return out
}

func objectFieldNames(s *schema.TypeSummary) []string {
	if s == nil || s.Kind != schema.KindObject {
		return nil
	}
	return append([]string(nil), s.FieldOrder...)
}

func producedTokenFields(s *schema.TypeSummary) []string {
	if s == nil || s.Kind != schema.KindObject {
		return nil
	}
	var out []string
	for _, name := range s.FieldOrder {
		if !isTokenLikeField(name) {
			continue
		}
		field := s.Fields[name]
		tag := "(opaque)"
		if field != nil && field.SubKind == schema.SubJWT {
			tag = "(jwt)"
		}
		out = append(out, name+" "+tag)
	}
	return out
}

func isTokenLikeField(name string) bool {
	return tokenFieldPattern.MatchString(strings.ToLower(name))
}
