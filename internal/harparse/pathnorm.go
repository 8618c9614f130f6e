package harparse

import (
	"regexp"
	"strings"
)

var (
	uuidSegmentRe      = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	digitRunRe         = regexp.MustCompile(`^\d+$`)
	hexSegmentRe       = regexp.MustCompile(`^[0-9a-fA-F]{8,}$`)
	base64urlSegmentRe = regexp.MustCompile(`^[A-Za-z0-9_-]{16,}$`)
)

var extensionWhitelist = map[string]bool{
	".json": true, ".xml": true, ".rss": true,
}

// normalizedSegment is one path position after normalization: either a
// static literal or a `{name}` placeholder, with the raw example that
// produced it.
type normalizedSegment struct {
	Literal string // "" when IsParam
	IsParam bool
	Param   string // placeholder name, without braces
	Example string
	Kind    string // "uuid" | "int" | "hex" | "base64url"
}

// NormalizePath splits a raw path into segments and classifies each
// one per spec.md §4.3 step 3, producing the templated path string and
// the ordered list of path parameters observed.
func NormalizePath(rawPath string) (string, []normalizedSegment) {
	parts := strings.Split(strings.Trim(rawPath, "/"), "/")
	segs := make([]normalizedSegment, 0, len(parts))
	prevLiteral := ""

	for _, raw := range parts {
		if raw == "" {
			continue
		}
		switch {
		case uuidSegmentRe.MatchString(raw):
			segs = append(segs, normalizedSegment{IsParam: true, Param: paramName(prevLiteral, "id"), Example: raw, Kind: "uuid"})
		case digitRunRe.MatchString(raw) && len(raw) >= 4:
			segs = append(segs, normalizedSegment{IsParam: true, Param: paramName(prevLiteral, "id"), Example: raw, Kind: "int"})
		case hexSegmentRe.MatchString(raw) && len(raw) >= 8 && !hasWhitelistedExtension(raw):
			segs = append(segs, normalizedSegment{IsParam: true, Param: paramName(prevLiteral, "id"), Example: raw, Kind: "hex"})
		case hasWhitelistedExtension(raw):
			segs = append(segs, normalizedSegment{Literal: raw})
			prevLiteral = stripExtension(raw)
			continue
		case base64urlSegmentRe.MatchString(raw) && len(raw) >= 16 && looksOpaque(raw):
			segs = append(segs, normalizedSegment{IsParam: true, Param: paramName(prevLiteral, "id"), Example: raw, Kind: "base64url"})
		default:
			segs = append(segs, normalizedSegment{Literal: raw})
			prevLiteral = raw
			continue
		}
		// after emitting a param, the "previous literal" for the *next*
		// segment's naming stays whatever static segment preceded this
		// one (a run of consecutive ids shouldn't rename off an id).
	}
	return renderPath(segs), segs
}

// looksOpaque requires a base64url-shaped segment to contain a mix
// that wouldn't also match a plain literal slug (e.g. it isn't a
// single dictionary-ish word); a short heuristic: at least one digit
// or both cases present, distinguishing tokens like "aGVsbG8td29ybGQ"
// from ordinary lowercase slugs such as "my-article-title".
func looksOpaque(s string) bool {
	hasDigit, hasUpper, hasLower := false, false, false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		}
	}
	return hasDigit || (hasUpper && hasLower)
}

func hasWhitelistedExtension(segment string) bool {
	for ext := range extensionWhitelist {
		if strings.HasSuffix(strings.ToLower(segment), ext) {
			return true
		}
	}
	return false
}

func stripExtension(segment string) string {
	if i := strings.LastIndexByte(segment, '.'); i >= 0 {
		return segment[:i]
	}
	return segment
}

// paramName implements the resolved Open Question: singularize the
// predecessor segment, then append "Id"; fall back to a bare "id" when
// there's no usable predecessor.
func paramName(predecessor, fallback string) string {
	if predecessor == "" {
		return fallback
	}
	sing := singularize(predecessor)
	sing = sanitizeIdentifier(sing)
	if sing == "" {
		return fallback
	}
	return sing + "Id"
}

func sanitizeIdentifier(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r == '-' || r == '_' {
			continue
		}
		if i == 0 {
			b.WriteRune(r)
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" {
		return out
	}
	return strings.ToLower(out[:1]) + out[1:]
}

// singularize handles the common REST-resource plural suffixes well
// enough to avoid the spec's documented bug (`{usersId}` instead of
// `{userId}`); anything it doesn't recognize passes through unchanged.
func singularize(word string) string {
	lower := strings.ToLower(word)
	switch {
	case strings.HasSuffix(lower, "ies") && len(lower) > 3:
		return word[:len(word)-3] + "y"
	case strings.HasSuffix(lower, "ses") || strings.HasSuffix(lower, "xes") ||
		strings.HasSuffix(lower, "zes") || strings.HasSuffix(lower, "ches") ||
		strings.HasSuffix(lower, "shes"):
		return word[:len(word)-2]
	case strings.HasSuffix(lower, "s") && !strings.HasSuffix(lower, "ss") && len(lower) > 1:
		return word[:len(word)-1]
	default:
		return word
	}
}

func renderPath(segs []normalizedSegment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		if s.IsParam {
			b.WriteByte('{')
			b.WriteString(s.Param)
			b.WriteByte('}')
		} else {
			b.WriteString(s.Literal)
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}
