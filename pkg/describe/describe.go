// Package describe is the optional post-analysis extension point:
// a hook that can rewrite each endpoint group's heuristic description
// without touching the core pipeline.
package describe

import (
	"context"

	"github.com/usestring/apiskill/pkg/types"
)

// Describer rewrites a set of endpoint groups, typically to enrich or
// override their Description field. Implementations must not mutate
// the input slice's backing array; one that changes a group returns a
// new slice.
type Describer interface {
	Describe(ctx context.Context, groups []types.EndpointGroup) ([]types.EndpointGroup, error)
}

// NoOp is the default Describer: it returns its input unchanged. A
// pipeline with no configured extension still calls Describe so the
// call site never special-cases "no describer configured".
type NoOp struct{}

func (NoOp) Describe(_ context.Context, groups []types.EndpointGroup) ([]types.EndpointGroup, error) {
	return groups, nil
}
