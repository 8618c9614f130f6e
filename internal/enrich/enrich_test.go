package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/apiskill/pkg/types"
)

func TestEnrichBuildsGroupWithEndpointID(t *testing.T) {
	req := types.ParsedRequest{
		Method: "GET", RawPath: "/api/v1/users/4231", NormalizedPath: "/api/v1/users/{userId}",
		PathParams: []string{"userId"}, Status: 200,
		ResponseBody: &types.Body{MimeType: "application/json", Text: `{"id":4231,"name":"Ada"}`},
	}
	data := &types.ApiData{
		Service:  "example",
		BaseURL:  "api.example.com",
		Requests: []types.ParsedRequest{req},
		Endpoints: map[string][]types.ParsedRequest{
			"GET /api/v1/users/{userId}": {req},
		},
	}
	Enrich(data, nil)
	require.Len(t, data.EndpointGroups, 1)
	g := data.EndpointGroups[0]
	assert.Equal(t, "read", g.Category)
	assert.Equal(t, "GET", g.Method)
	assert.Len(t, g.PathParams, 1)
	assert.Equal(t, "userId", g.PathParams[0].Name)
	assert.Len(t, g.EndpointID, 12)
	assert.Contains(t, g.Produces, "id")
}

func TestEnrichClassifiesAuthCategory(t *testing.T) {
	req := types.ParsedRequest{Method: "POST", RawPath: "/login", NormalizedPath: "/login", Status: 200}
	data := &types.ApiData{
		Service:  "example",
		Requests: []types.ParsedRequest{req},
		Endpoints: map[string][]types.ParsedRequest{
			"POST /login": {req},
		},
	}
	Enrich(data, nil)
	require.Len(t, data.EndpointGroups, 1)
	assert.Equal(t, "auth", data.EndpointGroups[0].Category)
}

func TestEndpointIDDeterministic(t *testing.T) {
	a := EndpointID("GET", "/users/{userId}", "example")
	b := EndpointID("GET", "/users/{userId}", "example")
	assert.Equal(t, a, b)
	assert.Len(t, a, 12)
}
