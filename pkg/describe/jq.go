package describe

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/itchyny/gojq"

	"github.com/usestring/apiskill/pkg/types"
)

// JQ lets an operator override the heuristic description per endpoint
// group with a gojq filter, fed the group as a JSON value and expected
// to produce a string. A filter that fails to parse, errors at
// runtime, or produces something other than a non-empty string leaves
// that group's existing Description untouched — this extension point
// never blocks or fails a build.
type JQ struct {
	Filter string

	code *gojq.Code
}

// Compile parses and compiles Filter once so Describe can be called
// repeatedly (e.g. across services in one process) without
// re-parsing the expression each time.
func (j *JQ) Compile() error {
	query, err := gojq.Parse(j.Filter)
	if err != nil {
		return err
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return err
	}
	j.code = code
	return nil
}

func (j *JQ) Describe(ctx context.Context, groups []types.EndpointGroup) ([]types.EndpointGroup, error) {
	if j.code == nil {
		if err := j.Compile(); err != nil {
			return groups, err
		}
	}

	out := make([]types.EndpointGroup, len(groups))
	copy(out, groups)
	for i := range out {
		desc, ok := j.run(ctx, &out[i])
		if ok {
			out[i].Description = desc
		}
	}
	return out, nil
}

func (j *JQ) run(ctx context.Context, g *types.EndpointGroup) (string, bool) {
	raw, err := json.Marshal(g)
	if err != nil {
		return "", false
	}
	var input any
	if err := json.Unmarshal(raw, &input); err != nil {
		return "", false
	}

	iter := j.code.RunWithContext(ctx, input)
	v, ok := iter.Next()
	if !ok {
		return "", false
	}
	if err, isErr := v.(error); isErr {
		slog.Warn("describe: jq filter failed", slog.String("endpoint", g.Method+" "+g.NormalizedPath), slog.String("error", err.Error()))
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
