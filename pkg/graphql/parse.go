package graphql

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode"
)

// graphqlBody is the JSON shape of a GraphQL request body.
type graphqlBody struct {
	Query         string `json:"query"`
	OperationName string `json:"operationName"`
	Variables     any    `json:"variables"`
}

// ParseRequestBody parses a GraphQL request body, single or batched
// (a JSON array of operations).
func ParseRequestBody(body []byte) (*ParseResult, error) {
	body = trimSpace(body)
	if len(body) == 0 {
		return nil, newParseError(ErrEmpty, "graphql: empty body", nil)
	}

	if body[0] == '[' {
		var arr []graphqlBody
		if err := json.Unmarshal(body, &arr); err != nil {
			return nil, newParseError(nil, "graphql: invalid JSON array", err)
		}
		if len(arr) == 0 {
			return nil, newParseError(ErrEmpty, "graphql: empty batch array", nil)
		}
		ops := make([]ParsedOperation, 0, len(arr))
		for i, item := range arr {
			op := parseOne(item)
			op.BatchIndex = i
			ops = append(ops, op)
		}
		return &ParseResult{Operations: ops, IsBatched: true}, nil
	}

	var single graphqlBody
	if err := json.Unmarshal(body, &single); err != nil {
		return nil, newParseError(nil, "graphql: invalid JSON object", err)
	}
	if single.Query == "" && single.OperationName == "" {
		return nil, newParseError(ErrNotGraphQL, "graphql: not a GraphQL request body", nil)
	}

	return &ParseResult{Operations: []ParsedOperation{parseOne(single)}}, nil
}

func parseOne(b graphqlBody) ParsedOperation {
	op := ParsedOperation{
		RawQuery:      b.Query,
		Variables:     b.Variables,
		HasVariables:  b.Variables != nil,
		OperationName: b.OperationName,
	}

	opType, opName, fields, ok := scanQuery(b.Query)
	if ok {
		op.Type = opType
		op.Name = opName
		op.Fields = fields
	} else {
		op.ParseFailed = b.Query != ""
		op.Type = "query"
	}

	if b.OperationName != "" {
		op.Name = b.OperationName
	}
	if op.Name == "" {
		op.Name = "anonymous"
	}
	return op
}

// scanQuery extracts the operation type, name, and top-level field
// selections from a query string by brace-depth scanning rather than
// a full AST parse.
func scanQuery(query string) (string, string, []string, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", "", nil, false
	}

	opType := "query"
	rest := query
	for _, keyword := range []string{"subscription", "mutation", "query"} {
		if strings.HasPrefix(strings.ToLower(rest), keyword) {
			opType = keyword
			rest = strings.TrimSpace(rest[len(keyword):])
			break
		}
	}

	if strings.HasPrefix(query, "{") {
		return "query", "", extractTopLevelFields(query), true
	}

	name := ""
	i := 0
	for i < len(rest) && unicode.IsSpace(rune(rest[i])) {
		i++
	}
	start := i
	for i < len(rest) && (unicode.IsLetter(rune(rest[i])) || unicode.IsDigit(rune(rest[i])) || rest[i] == '_') {
		i++
	}
	if i > start {
		name = rest[start:i]
	}

	return opType, name, extractTopLevelFields(rest), true
}

// extractTopLevelFields finds the first '{...}' block and returns the
// field identifiers at brace depth 1, skipping arguments, directives,
// comments, and fragment spreads.
func extractTopLevelFields(s string) []string {
	braceStart := strings.IndexByte(s, '{')
	if braceStart < 0 {
		return nil
	}

	var fields []string
	seen := make(map[string]bool)
	braceDepth := 0
	parenDepth := 0
	i := braceStart

	for i < len(s) {
		ch := s[i]
		switch ch {
		case '{':
			braceDepth++
			i++
		case '}':
			braceDepth--
			if braceDepth == 0 {
				return fields
			}
			i++
		case '(':
			parenDepth++
			i++
		case ')':
			if parenDepth > 0 {
				parenDepth--
			}
			i++
		case '#':
			for i < len(s) && s[i] != '\n' {
				i++
			}
		case '@':
			i++
			for i < len(s) && isIdentChar(s[i]) {
				i++
			}
		case '.':
			if i+2 < len(s) && s[i+1] == '.' && s[i+2] == '.' {
				i += 3
				for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
					i++
				}
				if i+2 < len(s) && s[i] == 'o' && s[i+1] == 'n' && !isIdentChar(s[i+2]) {
					i += 2
					for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
						i++
					}
					for i < len(s) && isIdentChar(s[i]) {
						i++
					}
				} else {
					for i < len(s) && isIdentChar(s[i]) {
						i++
					}
				}
			} else {
				i++
			}
		default:
			if braceDepth == 1 && parenDepth == 0 && (unicode.IsLetter(rune(ch)) || ch == '_') {
				start := i
				for i < len(s) && isIdentChar(s[i]) {
					i++
				}
				fieldName := s[start:i]
				if !isGraphQLKeyword(fieldName) && !seen[fieldName] {
					fields = append(fields, fieldName)
					seen[fieldName] = true
				}
			} else {
				i++
			}
		}
	}

	return fields
}

func isIdentChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_'
}

func isGraphQLKeyword(s string) bool {
	switch strings.ToLower(s) {
	case "fragment", "on", "true", "false", "null":
		return true
	}
	return false
}

func trimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && b[start] <= ' ' {
		start++
	}
	end := len(b)
	for end > start && b[end-1] <= ' ' {
		end--
	}
	return b[start:end]
}

var (
	// ErrEmpty indicates the request body was empty or whitespace-only.
	ErrEmpty = errors.New("graphql: empty body")
	// ErrNotGraphQL indicates the body is valid JSON but carries neither
	// a query nor an operationName field.
	ErrNotGraphQL = errors.New("graphql: not a GraphQL request body")
)

// ParseError wraps a parse failure. Use errors.Is against ErrEmpty or
// ErrNotGraphQL, or errors.As to read the message/cause.
type ParseError struct {
	Sentinel error
	Cause    error
	Message  string
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ParseError) Unwrap() error {
	if e.Sentinel != nil {
		return e.Sentinel
	}
	return e.Cause
}

func (e *ParseError) Is(target error) bool {
	return e.Sentinel == target
}

// IsNotGraphQL reports whether err indicates the body wasn't GraphQL
// at all (as opposed to malformed GraphQL).
func IsNotGraphQL(err error) bool {
	return errors.Is(err, ErrNotGraphQL) || errors.Is(err, ErrEmpty)
}

func newParseError(sentinel error, message string, cause error) *ParseError {
	return &ParseError{Sentinel: sentinel, Cause: cause, Message: message}
}

// IsGraphQLBody probes whether a JSON body carries a "query" field,
// without fully parsing it. GraphQL endpoints can live on any path, so
// this is more reliable than a path-based heuristic.
func IsGraphQLBody(body []byte) bool {
	body = trimSpace(body)
	if len(body) == 0 {
		return false
	}
	if body[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(body, &arr); err != nil || len(arr) == 0 {
			return false
		}
		return hasQueryField(arr[0])
	}
	return hasQueryField(body)
}

func hasQueryField(data []byte) bool {
	var obj struct {
		Query *string `json:"query"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return false
	}
	return obj.Query != nil && *obj.Query != ""
}
