package noise

import "regexp"

// mustCompileVersionSegment matches a `/vN.N.N/` style path segment,
// e.g. "/v1.2.3/" — the semver-shaped version marker §4.2's path_score
// rule distinguishes from a bare `/v1/` API-version prefix.
func mustCompileVersionSegment() *regexp.Regexp {
	return regexp.MustCompile(`/v\d+\.\d+\.\d+/`)
}
