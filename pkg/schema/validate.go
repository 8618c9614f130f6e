package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Compile compiles a rendered invopop/jsonschema schema into a
// validator, for SkillBuilder's pre-publish self-check.
func Compile(s any) (*jsonschema.Schema, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", value); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	return compiled, nil
}

// ValidateExample validates one JSON example body against a compiled
// schema, returning a short, deduplicated list of human-readable
// errors (empty when valid).
func ValidateExample(compiled *jsonschema.Schema, raw []byte) []string {
	if compiled == nil {
		return nil
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return []string{fmt.Sprintf("invalid JSON: %s", err)}
	}
	if err := compiled.Validate(value); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return flattenValidationErrors(ve)
		}
		return []string{err.Error()}
	}
	return nil
}

func flattenValidationErrors(err *jsonschema.ValidationError) []string {
	byPath := make(map[string][]string)
	collect(err, byPath)
	var out []string
	for path, msgs := range byPath {
		seen := make(map[string]bool)
		for _, m := range msgs {
			if seen[m] {
				continue
			}
			seen[m] = true
			if path != "" {
				out = append(out, path+": "+m)
			} else {
				out = append(out, m)
			}
		}
	}
	return out
}

func collect(err *jsonschema.ValidationError, byPath map[string][]string) {
	path := ""
	if len(err.InstanceLocation) > 0 {
		path = "/" + strings.Join(err.InstanceLocation, "/")
	}
	if err.ErrorKind != nil && len(err.Causes) == 0 {
		msg := err.ErrorKind.LocalizedString(printer)
		if !strings.HasPrefix(msg, "$ref ") && !strings.HasPrefix(msg, "doesn't validate with") {
			byPath[path] = append(byPath[path], msg)
		}
	}
	for _, cause := range err.Causes {
		collect(cause, byPath)
	}
}
