// Package analyzer implements AgenticAnalyzer: the higher-order view
// over an enriched endpoint groupset that an agent consumes to decide
// how to use an API — entities, auth and data flows, pagination,
// errors, rate limits, style, versioning, and a narrative summary.
package analyzer

import (
	"strings"

	"github.com/usestring/apiskill/pkg/types"
)

// Analyze reads ApiData (with EndpointGroups already populated by
// EndpointEnricher) and produces the AgenticAnalysis an agent
// consumes. rawBodiesAvailable reflects whether full response bodies
// (not just schemas) were retained for this pass, feeding confidence
// scoring per §4.6.
func Analyze(data *types.ApiData, rawBodiesAvailable bool) *types.AgenticAnalysis {
	groups := data.EndpointGroups

	entities := extractEntities(groups)
	authFlows := buildAuthFlows(groups, data.Requests)
	pagination := detectPagination(groups)
	errs := collectErrors(groups)
	rateLimits := collectRateLimits(data.Requests)
	dataFlows := buildDataFlows(groups)
	style := detectAPIStyle(groups)
	versioning := detectVersioning(groups, data.Requests)

	conf := scoreConfidence(groups, entities, authFlows, dataFlows, data.Auth, rawBodiesAvailable)

	a := &types.AgenticAnalysis{
		Service:    data.Service,
		APIStyle:   style,
		Entities:   entities,
		AuthFlows:  authFlows,
		DataFlows:  dataFlows,
		Pagination: pagination,
		Errors:     errs,
		RateLimits: rateLimits,
		Versioning: versioning,
		Confidence: conf,
	}
	a.Summary = composeSummary(a, groups)
	return a
}

// baseResource derives the last non-placeholder path segment after
// stripping `/api` and `/vN` prefixes, per §4.6's entity-extraction rule.
func baseResource(normalizedPath string) string {
	segs := strings.Split(strings.Trim(normalizedPath, "/"), "/")
	filtered := segs[:0]
	for i, s := range segs {
		if i == 0 && strings.EqualFold(s, "api") {
			continue
		}
		if isVersionSegment(s) {
			continue
		}
		filtered = append(filtered, s)
	}
	for i := len(filtered) - 1; i >= 0; i-- {
		if !strings.HasPrefix(filtered[i], "{") {
			return filtered[i]
		}
	}
	return ""
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || (s[0] != 'v' && s[0] != 'V') {
		return false
	}
	for _, r := range s[1:] {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	return true
}
