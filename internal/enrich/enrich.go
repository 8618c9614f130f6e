// Package enrich implements EndpointEnricher: turning ApiData's raw
// "METHOD /normalized/path" groupings into endpoint_groups with merged
// schemas, categories, and content-hash identifiers.
package enrich

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/usestring/apiskill/internal/config"
	"github.com/usestring/apiskill/internal/corpus"
	"github.com/usestring/apiskill/pkg/contenttype"
	"github.com/usestring/apiskill/pkg/schema"
	"github.com/usestring/apiskill/pkg/shape"
	"github.com/usestring/apiskill/pkg/types"
)

func categoryOf(s string) contenttype.Category { return contenttype.Category(s) }

var authPathPattern = regexp.MustCompile(`(?i)/(login|signin|sign-in|auth|token|oauth|register|signup|sign-up|session)(/|$)`)

var idLikeName = regexp.MustCompile(`(?i)^id$|id$|_id$|uuid`)

// Enrich transforms data.Endpoints into data.EndpointGroups in place
// and returns data for chaining, along with the corpus.Index it built
// over data.Requests so a caller can reuse the same index instead of
// building a second one (e.g. for a post-enrichment category facet).
//
// Each group's candidate request set is read from the index rather
// than straight out of data.Endpoints: data.Endpoints only supplies the
// set of distinct "METHOD /normalized/path" keys to enumerate, and the
// actual observations for a key come from intersecting the index's
// method and normalized-path facets, matching EndpointEnricher's
// candidate-set-per-group design.
//
// cfg may be nil, in which case non-JSON response summarization falls
// back to pkg/shape's own defaults.
func Enrich(data *types.ApiData, cfg *config.Config) (*types.ApiData, *corpus.Index) {
	idx := corpus.New(data.Requests)

	keys := make([]string, 0, len(data.Endpoints))
	for k := range data.Endpoints {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]types.EndpointGroup, 0, len(keys))
	for _, key := range keys {
		method, normPath := splitKey(key)
		obs := idx.Select(idx.Endpoint(method, normPath))
		groups = append(groups, buildGroup(key, obs, data.Service, data.BaseURL, cfg))
	}
	data.EndpointGroups = groups
	return data, idx
}

func buildGroup(key string, obs []types.ParsedRequest, service, baseURL string, cfg *config.Config) types.EndpointGroup {
	method, normPath := splitKey(key)
	g := types.EndpointGroup{
		Method:         method,
		NormalizedPath: normPath,
		Service:        service,
		BaseURL:        baseURL,
		StatusCodes:    map[int]int{},
	}

	g.PathParams = pathParams(normPath, obs)
	g.QueryParams = queryParams(obs)

	var reqSchema, respSchema *schema.TypeSummary
	var reqKeys []string
	for i := range obs {
		o := &obs[i]
		g.StatusCodes[o.Status]++
		if o.RequestBody != nil && o.RequestBody.Text != "" {
			if s, err := schema.Infer([]byte(o.RequestBody.Text)); err == nil {
				reqSchema = schema.Merge(reqSchema, s)
				if s.Kind == schema.KindObject {
					reqKeys = append(reqKeys, s.FieldOrder...)
				}
			}
		}
		if o.ResponseBody != nil && o.ResponseBody.Text != "" {
			if s, err := schema.Infer([]byte(o.ResponseBody.Text)); err == nil {
				respSchema = schema.Merge(respSchema, s)
			} else if o.ResponseBody.Text != "" {
				xmlDepth, csvRows := 0, 0
				if cfg != nil {
					xmlDepth, csvRows = cfg.ShapeXMLMaxDepth, cfg.ShapeCSVMaxRows
				}
				g.ResponseSummary = shape.Summarize(categoryOf(o.ContentCategoryResp), []byte(o.ResponseBody.Text), xmlDepth, csvRows)
			}
		}
		if len(g.Examples) < 3 {
			var reqBody, respBody string
			if o.RequestBody != nil {
				reqBody = truncate(o.RequestBody.Text, 500)
			}
			if o.ResponseBody != nil {
				respBody = truncate(o.ResponseBody.Text, 500)
			}
			g.Examples = append(g.Examples, types.Example{
				Path: o.RawPath, RequestBody: reqBody, ResponseBody: respBody, Status: o.Status,
			})
		}
	}
	g.RequestSchema = reqSchema
	g.ResponseSchema = respSchema
	g.SampleCount = len(obs)

	g.Category = classifyCategory(normPath, method)
	g.Produces = strings.Join(producesFields(respSchema), ",")
	g.Consumes = strings.Join(consumesFields(g.PathParams, g.QueryParams, reqKeys), ",")

	g.EndpointID = EndpointID(method, normPath, service)

	return g
}

func splitKey(key string) (method, path string) {
	parts := strings.SplitN(key, " ", 2)
	if len(parts) != 2 {
		return key, ""
	}
	return parts[0], parts[1]
}

func pathParams(normPath string, obs []types.ParsedRequest) []types.PathParam {
	names := paramNamesInOrder(normPath)
	out := make([]types.PathParam, 0, len(names))
	for _, name := range names {
		pp := types.PathParam{Name: name, Kind: "int"}
		for i := range obs {
			if seg := segmentAt(obs[i].RawPath, name, normPath); seg != "" {
				pp.Samples = appendCap(pp.Samples, seg, 5)
			}
		}
		if len(pp.Samples) > 0 {
			pp.Kind = classifySampleKind(pp.Samples[0])
		}
		out = append(out, pp)
	}
	return out
}

func paramNamesInOrder(normPath string) []string {
	var names []string
	for _, seg := range strings.Split(normPath, "/") {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			names = append(names, seg[1:len(seg)-1])
		}
	}
	return names
}

// segmentAt finds the raw segment in rawPath positionally aligned to
// the given placeholder name's position in normPath.
func segmentAt(rawPath, name, normPath string) string {
	normSegs := strings.Split(strings.Trim(normPath, "/"), "/")
	rawSegs := strings.Split(strings.Trim(rawPath, "/"), "/")
	if len(normSegs) != len(rawSegs) {
		return ""
	}
	for i, s := range normSegs {
		if s == "{"+name+"}" && i < len(rawSegs) {
			return rawSegs[i]
		}
	}
	return ""
}

func classifySampleKind(sample string) string {
	switch {
	case len(sample) == 36 && strings.Count(sample, "-") == 4:
		return "uuid"
	case isAllDigits(sample):
		return "int"
	case isAllHex(sample):
		return "hex"
	default:
		return "base64url"
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isAllHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return true
}

func queryParams(obs []types.ParsedRequest) []types.QueryParam {
	seen := map[string]*types.QueryParam{}
	var order []string
	for i := range obs {
		present := map[string]bool{}
		for _, k := range obs[i].QueryKeys {
			present[k] = true
			qp, ok := seen[k]
			if !ok {
				qp = &types.QueryParam{Name: k, Stable: true}
				seen[k] = qp
				order = append(order, k)
			}
		}
	}
	out := make([]types.QueryParam, 0, len(order))
	for _, k := range order {
		out = append(out, *seen[k])
	}
	return out
}

// ClassifyCategory is exported so SkillBuilder can classify
// merged-back endpoints it never observed directly.
func ClassifyCategory(normPath, method string) string {
	return classifyCategory(normPath, method)
}

func classifyCategory(normPath, method string) string {
	if authPathPattern.MatchString(normPath) {
		return "auth"
	}
	switch strings.ToUpper(method) {
	case "GET", "HEAD":
		return "read"
	case "DELETE":
		return "delete"
	case "POST", "PUT", "PATCH":
		return "write"
	default:
		return "other"
	}
}

func producesFields(respSchema *schema.TypeSummary) []string {
	if respSchema == nil {
		return nil
	}
	var out []string
	collectIDFields(respSchema, &out)
	return out
}

func collectIDFields(s *schema.TypeSummary, out *[]string) {
	if s == nil {
		return
	}
	switch s.Kind {
	case schema.KindObject:
		for _, name := range s.FieldOrder {
			if idLikeName.MatchString(name) || s.Fields[name] != nil && s.Fields[name].SubKind == schema.SubUUID {
				*out = append(*out, name)
			}
			collectIDFields(s.Fields[name], out)
		}
	case schema.KindArray:
		collectIDFields(s.Element, out)
	}
}

func consumesFields(pathParams []types.PathParam, queryParams []types.QueryParam, reqKeys []string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	for _, p := range pathParams {
		add(p.Name)
	}
	for _, q := range queryParams {
		add(q.Name)
	}
	for _, k := range reqKeys {
		add(k)
	}
	return out
}

// EndpointID computes the deterministic 12-hex content-hash
// identifier for (method, normalized_path, service); exported so
// SkillBuilder can recompute a prior package's ids without re-reading
// its on-disk endpoints_ref.
func EndpointID(method, normPath, service string) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s\n%s\n%s", method, normPath, service)))
	return hex.EncodeToString(h[:])[:12]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func appendCap(list []string, val string, cap int) []string {
	for _, v := range list {
		if v == val {
			return list
		}
	}
	if len(list) >= cap {
		return list
	}
	return append(list, val)
}
