package skillbuilder

import (
	"fmt"
	"strings"

	"github.com/usestring/apiskill/pkg/types"
)

var methodVerb = map[string]string{
	"GET": "get", "POST": "create", "PUT": "update",
	"PATCH": "update", "DELETE": "remove", "HEAD": "head", "OPTIONS": "options",
}

// composeAPITemplate renders a language-neutral pseudocode client
// class: generic get/post/put/delete primitives plus one typed
// wrapper method per group, named verbResource and deduplicated by a
// numeric suffix on collision. Path-parameter substitution stays
// textual (`{name}`) rather than expanded, since this is a template
// for calling code to fill in, not a rendered example URL.
func composeAPITemplate(service string, groups []types.EndpointGroup) (body, ext string) {
	className := titleCaser.String(sanitizeIdent(service)) + "Client"

	var b strings.Builder
	fmt.Fprintf(&b, "class %s {\n", className)
	b.WriteString("  constructor(baseUrl, auth) { this.baseUrl = baseUrl; this.auth = auth; }\n\n")
	b.WriteString("  get(path, params) { /* GET request, textual {param} substitution */ }\n")
	b.WriteString("  post(path, body) { /* POST request */ }\n")
	b.WriteString("  put(path, body) { /* PUT request */ }\n")
	b.WriteString("  delete(path) { /* DELETE request */ }\n\n")

	names := map[string]int{}
	for i := range groups {
		g := &groups[i]
		name := methodName(g.Method, g.NormalizedPath, names)
		fmt.Fprintf(&b, "  %s(%s) {\n", name, paramList(g))
		fmt.Fprintf(&b, "    return this.%s(%q%s);\n", strings.ToLower(verbFor(g.Method)), g.NormalizedPath, callArgs(g))
		b.WriteString("  }\n\n")
	}
	b.WriteString("}\n")
	return b.String(), "ts"
}

func verbFor(method string) string {
	switch strings.ToUpper(method) {
	case "POST":
		return "post"
	case "PUT", "PATCH":
		return "put"
	case "DELETE":
		return "delete"
	default:
		return "get"
	}
}

// methodName derives `verbResource` from the method and the path's
// last non-placeholder segment, deduplicating repeated names with a
// `_2, _3, …` suffix.
func methodName(method, normalizedPath string, seen map[string]int) string {
	verb, ok := methodVerb[strings.ToUpper(method)]
	if !ok {
		verb = strings.ToLower(method)
	}
	resource := lastCleanSegment(normalizedPath)
	base := verb + titleCaser.String(resource)
	base = sanitizeIdent(base)
	if base == "" {
		base = verb
	}
	n := seen[base]
	seen[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, n+1)
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

func paramList(g *types.EndpointGroup) string {
	var names []string
	for _, p := range g.PathParams {
		names = append(names, p.Name)
	}
	if g.Method != "GET" && g.Method != "DELETE" {
		names = append(names, "body")
	}
	return strings.Join(names, ", ")
}

func callArgs(g *types.EndpointGroup) string {
	if g.Method != "GET" && g.Method != "DELETE" {
		return ", body"
	}
	return ""
}
