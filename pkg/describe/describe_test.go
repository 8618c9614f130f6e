package describe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/apiskill/pkg/types"
)

func TestNoOpReturnsInputUnchanged(t *testing.T) {
	groups := []types.EndpointGroup{{Method: "GET", NormalizedPath: "/users/{id}", Description: "heuristic"}}
	out, err := NoOp{}.Describe(context.Background(), groups)
	require.NoError(t, err)
	assert.Equal(t, groups, out)
}

func TestJQOverridesDescription(t *testing.T) {
	j := &JQ{Filter: `"fetch a single user by id"`}
	groups := []types.EndpointGroup{{Method: "GET", NormalizedPath: "/users/{id}", Description: "heuristic"}}
	out, err := j.Describe(context.Background(), groups)
	require.NoError(t, err)
	assert.Equal(t, "fetch a single user by id", out[0].Description)
}

func TestJQLeavesDescriptionOnBadFilter(t *testing.T) {
	j := &JQ{Filter: `.nonexistent.deeply.nested`}
	groups := []types.EndpointGroup{{Method: "GET", NormalizedPath: "/users/{id}", Description: "heuristic"}}
	out, err := j.Describe(context.Background(), groups)
	require.NoError(t, err)
	assert.Equal(t, "heuristic", out[0].Description)
}

func TestJQInvalidFilterSyntaxErrors(t *testing.T) {
	j := &JQ{Filter: `.[`}
	_, err := j.Describe(context.Background(), []types.EndpointGroup{{}})
	assert.Error(t, err)
}
