// Package schema infers a compact, mergeable TypeSummary for arbitrary
// JSON values and exposes that summary as a Draft 2020-12 JSON Schema
// for validation purposes.
package schema

import "sort"

// Kind tags the variant a TypeSummary holds.
type Kind string

const (
	KindNull    Kind = "null"
	KindBool    Kind = "bool"
	KindInt     Kind = "int"
	KindFloat   Kind = "float"
	KindString  Kind = "string"
	KindEnum    Kind = "enum"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
	KindMixed   Kind = "mixed"
	KindUnknown Kind = "unknown"
)

// SubKind further classifies a KindString leaf.
type SubKind string

const (
	SubNone     SubKind = ""
	SubUUID     SubKind = "uuid"
	SubDateTime SubKind = "datetime"
	SubDate     SubKind = "date"
	SubJWT      SubKind = "jwt"
)

// ObjectKeyCap is the maximum number of top-level object keys a
// TypeSummary records (spec's M=24).
const ObjectKeyCap = 24

// ArraySampleCap is how many leading array elements are merged to infer
// the element supertype (spec's K=8).
const ArraySampleCap = 8

// EnumMinObservations is the minimum number of scalar string
// observations required before enum detection runs.
const EnumMinObservations = 3

// EnumMaxDistinct is the maximum number of distinct values an enum
// candidate may have.
const EnumMaxDistinct = 5

// EnumMaxUniqueRatio is the maximum unique/total ratio for enum
// detection (values must repeat enough to look categorical).
const EnumMaxUniqueRatio = 0.5

// TypeSummary is the tagged variant described in spec.md's data model:
// Null | Bool | Int | Float | String(SubKind) | Enum | Array | Object |
// Mixed | Unknown.
type TypeSummary struct {
	Kind Kind

	SubKind SubKind

	// Enum holds the distinct observed values, in first-seen order.
	Enum []string

	// Element is the merged element type for KindArray.
	Element *TypeSummary
	// Length is the most recently observed array length (for
	// `array<T>[N]` rendering); spec calls for the *observed* length,
	// not a running min/max.
	Length int

	// Fields holds child types for KindObject, insertion-ordered via
	// FieldOrder since Go maps don't preserve it.
	Fields     map[string]*TypeSummary
	FieldOrder []string
	Truncated  bool
}

// Render produces the `array<T>[N]` / `object{k1:T1,...}` style string
// spec.md's data model section describes.
func (t *TypeSummary) Render() string {
	if t == nil {
		return string(KindUnknown)
	}
	switch t.Kind {
	case KindString:
		if t.SubKind != SubNone {
			return string(t.SubKind)
		}
		return string(KindString)
	case KindEnum:
		s := "enum("
		for i, v := range t.Enum {
			if i > 0 {
				s += "|"
			}
			s += v
		}
		return s + ")"
	case KindArray:
		return "array<" + t.Element.Render() + ">[" + itoa(t.Length) + "]"
	case KindObject:
		s := "object{"
		for i, k := range t.FieldOrder {
			if i > 0 {
				s += ","
			}
			s += k + ":" + t.Fields[k].Render()
		}
		if t.Truncated {
			s += ",...}"
		} else {
			s += "}"
		}
		return s
	default:
		return string(t.Kind)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// sortedKeys returns m's keys sorted, used only where no observation
// order is tracked (e.g. unioning field sets from two independently
// built objects).
func sortedKeys(m map[string]*TypeSummary) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
