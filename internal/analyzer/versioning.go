package analyzer

import (
	"strings"

	"github.com/usestring/apiskill/pkg/types"
)

var versionHeaderNames = map[string]bool{"accept-version": true, "api-version": true, "x-api-version": true}
var versionQueryNames = map[string]bool{"version": true, "api_version": true}

// detectVersioning looks for a path-segment version first (the
// strongest signal), then falls back to header and query evidence
// gathered from the raw requests, per §4.6.
func detectVersioning(groups []types.EndpointGroup, requests []types.ParsedRequest) *types.VersioningNote {
	for i := range groups {
		segs := strings.Split(strings.Trim(groups[i].NormalizedPath, "/"), "/")
		for _, s := range segs {
			if isVersionSegment(s) {
				return &types.VersioningNote{Style: "path", Value: s}
			}
		}
	}

	for i := range requests {
		for _, kv := range requests[i].RequestHeaders {
			if versionHeaderNames[strings.ToLower(kv.Name)] {
				return &types.VersioningNote{Style: "header", Value: kv.Value}
			}
		}
	}

	for i := range groups {
		for _, q := range groups[i].QueryParams {
			if versionQueryNames[strings.ToLower(q.Name)] {
				value := ""
				if len(q.Samples) > 0 {
					value = q.Samples[0]
				}
				return &types.VersioningNote{Style: "query", Value: value}
			}
		}
	}

	return &types.VersioningNote{Style: "none"}
}
