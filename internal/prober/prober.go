// Package prober implements EndpointProber: a pure function over an
// enriched groupset that proposes endpoints the traffic never
// observed but the API's own shape implies should exist.
package prober

import (
	"sort"
	"strconv"
	"strings"

	"github.com/usestring/apiskill/internal/config"
	"github.com/usestring/apiskill/pkg/types"
)

var subResources = []string{"comments", "settings", "activity", "tags", "attachments", "history"}

var collectionOps = []struct {
	method string
	suffix string
}{
	{"GET", "/search"},
	{"POST", "/search"},
	{"GET", "/count"},
	{"GET", "/export"},
	{"POST", "/bulk"},
	{"POST", "/batch"},
}

var userProbePaths = []string{"/me", "/profile", "/account"}

var docProbes = []struct{ method, path string }{
	{"GET", "/openapi.json"},
	{"GET", "/swagger.json"},
	{"GET", "/api-docs"},
	{"POST", "/graphql"},
}

var utilityProbePaths = []string{"/health", "/status", "/version"}

// Probe runs every strategy over groups and returns the deduplicated,
// already-observed-filtered, capped suggestion list.
func Probe(groups []types.EndpointGroup, auth *types.AuthInfo, cfg *config.Config) []types.Suggestion {
	existing := map[string]bool{}
	for i := range groups {
		existing[key(groups[i].Method, groups[i].NormalizedPath)] = true
	}

	var out []types.Suggestion
	out = append(out, crudCompletion(groups)...)
	out = append(out, subResourceProbes(groups)...)
	out = append(out, collectionOpProbes(groups)...)
	out = append(out, userProbes(groups, auth)...)
	out = append(out, docProbeSuggestions()...)
	if cfg.AggressiveProbes {
		out = append(out, versionVariantProbes(groups)...)
		out = append(out, utilityProbes(groups)...)
	}

	return dedupCapFilter(out, existing, cfg.MaxProbes)
}

func key(method, path string) string { return method + " " + path }

// crudCompletion suggests the HTTP verbs a resource never exercised,
// mirroring the analyzer's entity op-complement rule but emitting
// probeable (method, path) pairs instead of a gap report.
func crudCompletion(groups []types.EndpointGroup) []types.Suggestion {
	type resource struct {
		collectionPath string
		itemPath       string
		have           map[string]bool
	}
	byResource := map[string]*resource{}
	var order []string

	for i := range groups {
		g := &groups[i]
		res := baseResource(g.NormalizedPath)
		if res == "" {
			continue
		}
		r, ok := byResource[res]
		if !ok {
			r = &resource{have: map[string]bool{}}
			byResource[res] = r
			order = append(order, res)
		}
		if strings.Contains(g.NormalizedPath, "{") {
			r.itemPath = g.NormalizedPath
		} else {
			r.collectionPath = g.NormalizedPath
		}
		r.have[strings.ToUpper(g.Method)] = true
	}

	var out []types.Suggestion
	for _, res := range order {
		r := byResource[res]
		if r.collectionPath != "" && !r.have["POST"] {
			out = append(out, types.Suggestion{Method: "POST", Path: r.collectionPath, Reason: "resource has no create endpoint", Confidence: 0.5})
		}
		if r.itemPath != "" && !r.have["PUT"] && !r.have["PATCH"] {
			out = append(out, types.Suggestion{Method: "PUT", Path: r.itemPath, Reason: "resource has no update endpoint", Confidence: 0.5})
		}
		if r.itemPath != "" && !r.have["DELETE"] {
			out = append(out, types.Suggestion{Method: "DELETE", Path: r.itemPath, Reason: "resource has no delete endpoint", Confidence: 0.5})
		}
		if r.itemPath != "" && !r.have["GET"] {
			out = append(out, types.Suggestion{Method: "GET", Path: r.itemPath, Reason: "resource has no read-one endpoint", Confidence: 0.5})
		}
	}
	return out
}

// subResourceProbes suggests the fixed sub-resource list under any
// `{id}`-terminated group, skipping resources that already have one.
func subResourceProbes(groups []types.EndpointGroup) []types.Suggestion {
	var out []types.Suggestion
	for i := range groups {
		g := &groups[i]
		if !strings.HasSuffix(g.NormalizedPath, "}") {
			continue
		}
		present := map[string]bool{}
		for j := range groups {
			if strings.HasPrefix(groups[j].NormalizedPath, g.NormalizedPath+"/") {
				present[lastSegment(groups[j].NormalizedPath)] = true
			}
		}
		if len(present) > 0 {
			continue
		}
		for _, sub := range subResources {
			out = append(out, types.Suggestion{
				Method: "GET", Path: g.NormalizedPath + "/" + sub,
				Reason: "sub-resource probe for " + lastCleanSegment(g.NormalizedPath), Confidence: 0.3,
			})
		}
	}
	return out
}

func collectionOpProbes(groups []types.EndpointGroup) []types.Suggestion {
	var out []types.Suggestion
	for i := range groups {
		g := &groups[i]
		if !strings.EqualFold(g.Method, "GET") || strings.HasSuffix(g.NormalizedPath, "}") {
			continue
		}
		for _, op := range collectionOps {
			out = append(out, types.Suggestion{
				Method: op.method, Path: g.NormalizedPath + op.suffix,
				Reason: "collection op probe", Confidence: 0.25,
			})
		}
	}
	return out
}

func userProbes(groups []types.EndpointGroup, auth *types.AuthInfo) []types.Suggestion {
	if auth == nil || (len(auth.AuthHeaders) == 0 && len(auth.Cookies) == 0) {
		return nil
	}
	prefix := commonPrefix(groups)
	var out []types.Suggestion
	for _, p := range userProbePaths {
		out = append(out, types.Suggestion{Method: "GET", Path: p, Reason: "authenticated traffic observed", Confidence: 0.4})
		if prefix != "" {
			out = append(out, types.Suggestion{Method: "GET", Path: prefix + p, Reason: "authenticated traffic observed", Confidence: 0.4})
		}
	}
	return out
}

func docProbeSuggestions() []types.Suggestion {
	out := make([]types.Suggestion, 0, len(docProbes))
	for _, d := range docProbes {
		out = append(out, types.Suggestion{Method: d.method, Path: d.path, Reason: "documentation probe", Confidence: 0.2})
	}
	return out
}

func versionVariantProbes(groups []types.EndpointGroup) []types.Suggestion {
	versions := map[int]bool{}
	for i := range groups {
		for _, seg := range strings.Split(strings.Trim(groups[i].NormalizedPath, "/"), "/") {
			if n, ok := versionNumber(seg); ok {
				versions[n] = true
			}
		}
	}
	var out []types.Suggestion
	for n := range versions {
		if n-1 >= 1 {
			out = append(out, types.Suggestion{Method: "GET", Path: "/v" + strconv.Itoa(n-1), Reason: "version variant probe", Confidence: 0.15})
		}
		out = append(out, types.Suggestion{Method: "GET", Path: "/v" + strconv.Itoa(n+1), Reason: "version variant probe", Confidence: 0.15})
	}
	return out
}

func versionNumber(seg string) (int, bool) {
	if len(seg) < 2 || (seg[0] != 'v' && seg[0] != 'V') {
		return 0, false
	}
	n, err := strconv.Atoi(seg[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

func utilityProbes(groups []types.EndpointGroup) []types.Suggestion {
	prefix := commonPrefix(groups)
	var out []types.Suggestion
	for _, p := range utilityProbePaths {
		out = append(out, types.Suggestion{Method: "GET", Path: p, Reason: "utility probe", Confidence: 0.15})
		if prefix != "" {
			out = append(out, types.Suggestion{Method: "GET", Path: prefix + p, Reason: "utility probe", Confidence: 0.15})
		}
	}
	return out
}

// commonPrefix returns the most frequent single leading path segment
// across groups (e.g. "/api"), breaking ties by the lexicographically
// smaller prefix, or "" when no group has a static leading segment.
func commonPrefix(groups []types.EndpointGroup) string {
	counts := map[string]int{}
	for i := range groups {
		segs := strings.Split(strings.Trim(groups[i].NormalizedPath, "/"), "/")
		if len(segs) > 0 && segs[0] != "" && !strings.HasPrefix(segs[0], "{") {
			counts["/"+segs[0]]++
		}
	}
	best, bestCount := "", 0
	for prefix, n := range counts {
		if n > bestCount || (n == bestCount && prefix < best) {
			best, bestCount = prefix, n
		}
	}
	return best
}

func baseResource(normalizedPath string) string {
	segs := strings.Split(strings.Trim(normalizedPath, "/"), "/")
	filtered := segs[:0]
	for i, s := range segs {
		if i == 0 && strings.EqualFold(s, "api") {
			continue
		}
		if _, ok := versionNumber(s); ok {
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

func lastSegment(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

func lastCleanSegment(path string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i := len(segs) - 1; i >= 0; i-- {
		if !strings.HasPrefix(segs[i], "{") {
			return segs[i]
		}
	}
	return ""
}

// dedupCapFilter removes duplicate (method, path) pairs, drops any
// suggestion already present in the observed groupset, then caps the
// result at maxProbes in stable (method, path) order.
func dedupCapFilter(suggestions []types.Suggestion, existing map[string]bool, maxProbes int) []types.Suggestion {
	seen := map[string]bool{}
	var out []types.Suggestion
	for _, s := range suggestions {
		k := key(s.Method, s.Path)
		if existing[k] || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Method != out[j].Method {
			return out[i].Method < out[j].Method
		}
		return out[i].Path < out[j].Path
	})
	if maxProbes > 0 && len(out) > maxProbes {
		out = out[:maxProbes]
	}
	return out
}
