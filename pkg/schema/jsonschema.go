package schema

import "github.com/invopop/jsonschema"

// ToJSONSchema renders a merged TypeSummary as a Draft 2020-12 schema
// for SkillBuilder's pre-publish self-check, using the same schema
// library the teacher's own inference pipeline targets directly.
func ToJSONSchema(t *TypeSummary) *jsonschema.Schema {
	if t == nil {
		return &jsonschema.Schema{}
	}
	switch t.Kind {
	case KindNull:
		return &jsonschema.Schema{Type: "null"}
	case KindBool:
		return &jsonschema.Schema{Type: "boolean"}
	case KindInt:
		return &jsonschema.Schema{Type: "integer"}
	case KindFloat:
		return &jsonschema.Schema{Type: "number"}
	case KindString:
		s := &jsonschema.Schema{Type: "string"}
		switch t.SubKind {
		case SubUUID:
			s.Format = "uuid"
		case SubDateTime:
			s.Format = "date-time"
		case SubDate:
			s.Format = "date"
		case SubJWT:
			s.Pattern = `^[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+$`
		}
		return s
	case KindEnum:
		s := &jsonschema.Schema{Type: "string"}
		for _, v := range t.Enum {
			s.Enum = append(s.Enum, v)
		}
		return s
	case KindArray:
		return &jsonschema.Schema{Type: "array", Items: ToJSONSchema(t.Element)}
	case KindObject:
		s := &jsonschema.Schema{Type: "object", Properties: jsonschema.NewProperties()}
		for _, k := range t.FieldOrder {
			s.Properties.Set(k, ToJSONSchema(t.Fields[k]))
		}
		return s
	default:
		return &jsonschema.Schema{}
	}
}
