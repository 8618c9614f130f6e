package schema

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	uuidRe     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	dateTimeRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}`)
	dateRe     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	base64urlRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// Infer decodes JSON bytes and produces a TypeSummary plus a top-level
// field map (Fields on the root summary when it's an object). It fails
// only when the bytes cannot be decoded as JSON at all; any other
// leniency (mismatched types within arrays, etc.) degrades to Mixed or
// Unknown rather than erroring, per spec.md §4.1.
func Infer(raw []byte) (*TypeSummary, error) {
	if len(raw) == 0 {
		return &TypeSummary{Kind: KindUnknown}, nil
	}
	var v any
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return InferValue(v), nil
}

// InferValue builds a TypeSummary from an already-decoded JSON value
// (as produced by encoding/json with UseNumber).
func InferValue(v any) *TypeSummary {
	switch x := v.(type) {
	case nil:
		return &TypeSummary{Kind: KindNull}
	case bool:
		return &TypeSummary{Kind: KindBool}
	case json.Number:
		s := x.String()
		if strings.ContainsAny(s, ".eE") {
			return &TypeSummary{Kind: KindFloat}
		}
		return &TypeSummary{Kind: KindInt}
	case string:
		return &TypeSummary{Kind: KindString, SubKind: classifyString(x)}
	case []any:
		return inferArray(x)
	case map[string]any:
		return inferObject(x)
	default:
		return &TypeSummary{Kind: KindUnknown}
	}
}

func classifyString(s string) SubKind {
	switch {
	case uuidRe.MatchString(s):
		return SubUUID
	case dateTimeRe.MatchString(s):
		return SubDateTime
	case dateRe.MatchString(s):
		return SubDate
	case isJWT(s):
		return SubJWT
	default:
		return SubNone
	}
}

// isJWT checks the spec's own rule: three dot-separated segments, each
// base64url-shaped.
func isJWT(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" || !base64urlRe.MatchString(p) {
			return false
		}
	}
	return true
}

func inferArray(items []any) *TypeSummary {
	n := len(items)
	sample := items
	if len(sample) > ArraySampleCap {
		sample = sample[:ArraySampleCap]
	}
	var elem *TypeSummary
	for _, item := range sample {
		t := InferValue(item)
		if elem == nil {
			elem = t
			continue
		}
		elem = Merge(elem, t)
	}
	if elem == nil {
		elem = &TypeSummary{Kind: KindUnknown}
	}
	return &TypeSummary{Kind: KindArray, Element: elem, Length: n}
}

func inferObject(obj map[string]any) *TypeSummary {
	// encoding/json doesn't preserve key order in map[string]any; we
	// fall back to sorted order for determinism within one inference
	// call. Cross-observation insertion order (first-seen-wins) is
	// preserved separately by Merge, which is what matters for the
	// spec's ordering guarantees across repeated observations.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sortStrings(keys)

	truncated := false
	if len(keys) > ObjectKeyCap {
		keys = keys[:ObjectKeyCap]
		truncated = true
	}

	fields := make(map[string]*TypeSummary, len(keys))
	for _, k := range keys {
		fields[k] = InferValue(obj[k])
	}
	return &TypeSummary{Kind: KindObject, Fields: fields, FieldOrder: keys, Truncated: truncated}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Merge combines two TypeSummary values observed for the same logical
// slot, per spec.md §4.1: identical -> keep, else -> mixed, with
// element-wise merge for arrays and key-union merge for objects. Later
// observations extend the field set; they never truncate it.
func Merge(a, b *TypeSummary) *TypeSummary {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.Kind == KindUnknown {
		return b
	}
	if b.Kind == KindUnknown {
		return a
	}
	if a.Kind == KindMixed || b.Kind == KindMixed {
		return &TypeSummary{Kind: KindMixed}
	}
	if a.Kind != b.Kind {
		// int/float widen to float rather than going straight to mixed;
		// every other mismatch is mixed.
		if (a.Kind == KindInt && b.Kind == KindFloat) || (a.Kind == KindFloat && b.Kind == KindInt) {
			return &TypeSummary{Kind: KindFloat}
		}
		return &TypeSummary{Kind: KindMixed}
	}

	switch a.Kind {
	case KindString:
		if a.SubKind == b.SubKind {
			return &TypeSummary{Kind: KindString, SubKind: a.SubKind}
		}
		return &TypeSummary{Kind: KindString}
	case KindArray:
		return &TypeSummary{Kind: KindArray, Element: Merge(a.Element, b.Element), Length: b.Length}
	case KindObject:
		return mergeObjects(a, b)
	default:
		return &TypeSummary{Kind: a.Kind}
	}
}

func mergeObjects(a, b *TypeSummary) *TypeSummary {
	fields := make(map[string]*TypeSummary, len(a.Fields)+len(b.Fields))
	order := make([]string, 0, len(a.FieldOrder)+len(b.FieldOrder))
	seen := make(map[string]bool)

	for _, k := range a.FieldOrder {
		fields[k] = a.Fields[k]
		order = append(order, k)
		seen[k] = true
	}
	for _, k := range b.FieldOrder {
		if bv := b.Fields[k]; seen[k] {
			fields[k] = Merge(fields[k], bv)
		} else {
			fields[k] = bv
			order = append(order, k)
			seen[k] = true
		}
	}

	truncated := a.Truncated || b.Truncated
	if len(order) > ObjectKeyCap {
		order = order[:ObjectKeyCap]
		truncated = true
	}
	return &TypeSummary{Kind: KindObject, Fields: fields, FieldOrder: order, Truncated: truncated}
}

// DetectEnum applies the spec's enum rule to a set of scalar string
// observations for one field: if >= EnumMinObservations share
// <= EnumMaxDistinct distinct values and unique/total < EnumMaxUniqueRatio,
// it returns an Enum TypeSummary; otherwise nil.
func DetectEnum(values []string) *TypeSummary {
	if len(values) < EnumMinObservations {
		return nil
	}
	seen := make(map[string]bool)
	var distinct []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}
	if len(distinct) > EnumMaxDistinct {
		return nil
	}
	ratio := float64(len(distinct)) / float64(len(values))
	if ratio >= EnumMaxUniqueRatio {
		return nil
	}
	return &TypeSummary{Kind: KindEnum, Enum: distinct}
}
