package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/apiskill/pkg/types"
)

func TestIndexFacetsAndIntersect(t *testing.T) {
	reqs := []types.ParsedRequest{
		{Host: "api.example.com", Method: "GET", NormalizedPath: "/users/{userId}", Status: 200},
		{Host: "api.example.com", Method: "POST", NormalizedPath: "/users", Status: 201},
		{Host: "cdn.example.com", Method: "GET", NormalizedPath: "/assets/{assetId}", Status: 404},
	}
	idx := New(reqs)

	require.NotNil(t, idx.Host("api.example.com"))
	assert.Equal(t, uint64(2), idx.Host("api.example.com").GetCardinality())

	getAPI := And(idx.Host("api.example.com"), idx.Method("GET"))
	selected := idx.Select(getAPI)
	require.Len(t, selected, 1)
	assert.Equal(t, "/users/{userId}", selected[0].NormalizedPath)

	assert.Equal(t, uint64(1), idx.StatusBucket(4).GetCardinality())
}

func TestCategoryFacet(t *testing.T) {
	reqs := []types.ParsedRequest{
		{Method: "POST", NormalizedPath: "/login"},
		{Method: "GET", NormalizedPath: "/users/{userId}"},
	}
	idx := New(reqs)
	idx.BuildCategoryFacet(map[string]string{
		"POST /login":            "auth",
		"GET /users/{userId}":    "read",
	})
	assert.Equal(t, uint64(1), idx.Category("auth").GetCardinality())
	assert.Equal(t, uint64(1), idx.Category("read").GetCardinality())
}
