package analyzer

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/usestring/apiskill/pkg/graphql"
	"github.com/usestring/apiskill/pkg/schema"
	"github.com/usestring/apiskill/pkg/types"
)

var allOps = []string{"read", "create", "update", "delete"}

var idFieldPattern = regexp.MustCompile(`(?i)^id$|id$|_id$|uuid`)

var titleCaser = cases.Title(language.English)

// opsFor maps a group's category to the CRUD op set §4.6 compares
// against; a write without a distinguishing method credits both verbs,
// the conservative reading when create vs update can't be told apart.
func opsFor(category, method string) []string {
	switch category {
	case "read":
		return []string{"read"}
	case "delete":
		return []string{"delete"}
	case "write":
		switch strings.ToUpper(method) {
		case "POST":
			return []string{"create"}
		case "PUT", "PATCH":
			return []string{"update"}
		}
		return []string{"create", "update"}
	default:
		return nil
	}
}

type entityAcc struct {
	endpoints  []string
	ops        map[string]bool
	fieldOrder []string
	seenIn     map[string][]string
	nullable   map[string]bool
}

func extractEntities(groups []types.EndpointGroup) []types.Entity {
	byResource := map[string]*entityAcc{}
	var order []string

	for i := range groups {
		g := &groups[i]
		if g.Category == "auth" {
			continue
		}
		res := baseResource(g.NormalizedPath)
		if res == "" || strings.EqualFold(res, "graphql") || strings.EqualFold(res, "gql") {
			if gqlRes := graphQLResource(g); gqlRes != "" {
				res = gqlRes
			}
		}
		if res == "" {
			continue
		}
		a, ok := byResource[res]
		if !ok {
			a = &entityAcc{ops: map[string]bool{}, seenIn: map[string][]string{}, nullable: map[string]bool{}}
			byResource[res] = a
			order = append(order, res)
		}
		a.endpoints = append(a.endpoints, g.EndpointID)
		for _, op := range opsFor(g.Category, g.Method) {
			a.ops[op] = true
		}
		unionFields(g.ResponseSchema, g.EndpointID, a)
	}

	entities := make([]types.Entity, 0, len(order))
	for _, res := range order {
		a := byResource[res]
		missing := missingOps(a.ops)
		fields := make([]types.EntityField, 0, len(a.fieldOrder))
		for _, name := range a.fieldOrder {
			fields = append(fields, types.EntityField{
				Name:     name,
				SeenIn:   a.seenIn[name],
				Nullable: a.nullable[name],
				IsID:     idFieldPattern.MatchString(name),
			})
		}
		entities = append(entities, types.Entity{
			Name:         titleCaser.String(singularize(res)),
			Endpoints:    a.endpoints,
			Fields:       fields,
			MissingOps:   missing,
			CRUDComplete: len(missing) == 0,
		})
	}
	return entities
}

// graphQLResource names the entity after the first operation's
// top-level field when a group's path gives no usable resource
// segment (a gateway posting every query to /graphql).
func graphQLResource(g *types.EndpointGroup) string {
	for _, ex := range g.Examples {
		if ex.RequestBody == "" {
			continue
		}
		result, err := graphql.ParseRequestBody([]byte(ex.RequestBody))
		if err != nil || len(result.Operations) == 0 {
			continue
		}
		op := result.Operations[0]
		if len(op.Fields) > 0 {
			return op.Fields[0]
		}
		if op.Name != "" {
			return op.Name
		}
	}
	return ""
}

func unionFields(s *schema.TypeSummary, endpointID string, a *entityAcc) {
	if s == nil || s.Kind != schema.KindObject {
		return
	}
	for _, name := range s.FieldOrder {
		if _, ok := a.seenIn[name]; !ok {
			a.fieldOrder = append(a.fieldOrder, name)
		}
		a.seenIn[name] = append(a.seenIn[name], endpointID)
		if s.Fields[name] != nil && s.Fields[name].Kind == schema.KindNull {
			a.nullable[name] = true
		}
	}
}

func missingOps(have map[string]bool) []string {
	var missing []string
	for _, op := range allOps {
		if !have[op] {
			missing = append(missing, op)
		}
	}
	return missing
}

func singularize(word string) string {
	lower := strings.ToLower(word)
	switch {
	case strings.HasSuffix(lower, "ies") && len(lower) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(lower, "ses") || strings.HasSuffix(lower, "xes") ||
		strings.HasSuffix(lower, "zes") || strings.HasSuffix(lower, "ches") || strings.HasSuffix(lower, "shes"):
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss") && len(lower) > 1:
		return word[:len(word)-1]
	default:
		return word
	}
}
