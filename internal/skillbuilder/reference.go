package skillbuilder

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/yosida95/uritemplate/v3"

	"github.com/usestring/apiskill/pkg/types"
)

// endpointRef is one entry of endpoints_ref: a stable, sorted index a
// consuming agent can diff across builds without re-reading REFERENCE.md.
type endpointRef struct {
	Method         string `json:"method"`
	NormalizedPath string `json:"normalizedPath"`
	EndpointID     string `json:"endpointId"`
}

// composeEndpointsRef sorts by method then path so the JSON is stable
// across builds drawing from the same endpoint set, regardless of the
// order enrich.Enrich or mergeWithPrior happened to produce them in.
func composeEndpointsRef(groups []types.EndpointGroup) ([]byte, []endpointRef) {
	refs := make([]endpointRef, len(groups))
	for i := range groups {
		refs[i] = endpointRef{
			Method:         groups[i].Method,
			NormalizedPath: groups[i].NormalizedPath,
			EndpointID:     groups[i].EndpointID,
		}
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Method != refs[j].Method {
			return refs[i].Method < refs[j].Method
		}
		return refs[i].NormalizedPath < refs[j].NormalizedPath
	})
	b, _ := json.MarshalIndent(refs, "", "  ")
	return b, refs
}

// composeReferenceMD renders REFERENCE.md: one section per endpoint
// with its schema, sample path-param values expanded into a concrete
// example URL via RFC 6570 templating, and observed status codes.
// This is the one place example URLs get expanded; skill_md's
// api_template keeps `{name}` literal for calling code to fill in.
func composeReferenceMD(groups []types.EndpointGroup) string {
	var b strings.Builder
	b.WriteString("# Endpoint Reference\n\n")
	for i := range groups {
		g := &groups[i]
		fmt.Fprintf(&b, "## %s %s\n\n", g.Method, g.NormalizedPath)
		if g.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", g.Description)
		}
		fmt.Fprintf(&b, "- Endpoint ID: `%s`\n", g.EndpointID)
		fmt.Fprintf(&b, "- Category: %s\n", orNone(g.Category))
		if url := exampleURL(g); url != "" {
			fmt.Fprintf(&b, "- Example URL: `%s`\n", url)
		}
		if g.RequestSchema != nil {
			fmt.Fprintf(&b, "- Request schema: `%s`\n", g.RequestSchema.Render())
		}
		if g.ResponseSchema != nil {
			fmt.Fprintf(&b, "- Response schema: `%s`\n", g.ResponseSchema.Render())
		}
		if len(g.StatusCodes) > 0 {
			fmt.Fprintf(&b, "- Observed status codes: %s\n", statusCodeList(g.StatusCodes))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// exampleURL expands NormalizedPath's {placeholder} segments against
// the first sample observed for each path param. A group with no
// samples (merged back from a prior package, never observed directly)
// yields no example URL rather than a fabricated one.
func exampleURL(g *types.EndpointGroup) string {
	if len(g.PathParams) == 0 {
		return g.BaseURL + g.NormalizedPath
	}
	tmpl, err := uritemplate.New(g.NormalizedPath)
	if err != nil {
		return ""
	}
	values := uritemplate.Values{}
	for _, p := range g.PathParams {
		if len(p.Samples) == 0 {
			return ""
		}
		values.Set(p.Name, uritemplate.String(p.Samples[0]))
	}
	expanded, err := tmpl.Expand(values)
	if err != nil {
		return ""
	}
	return g.BaseURL + expanded
}

func statusCodeList(codes map[int]int) string {
	nums := make([]int, 0, len(codes))
	for c := range codes {
		nums = append(nums, c)
	}
	sort.Ints(nums)
	parts := make([]string, len(nums))
	for i, c := range nums {
		parts[i] = fmt.Sprintf("%d", c)
	}
	return strings.Join(parts, ", ")
}
