package skillbuilder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/apiskill/pkg/types"
)

func sampleGroups() []types.EndpointGroup {
	return []types.EndpointGroup{
		{
			Method:         "GET",
			NormalizedPath: "/users/{id}",
			Service:        "acme",
			BaseURL:        "https://acme.example.com",
			Category:       "read",
			PathParams:     []types.PathParam{{Name: "id", Kind: "int", Samples: []string{"42"}}},
			EndpointID:     "aaaaaaaaaaaa",
		},
		{
			Method:         "POST",
			NormalizedPath: "/users",
			Service:        "acme",
			BaseURL:        "https://acme.example.com",
			Category:       "write",
			EndpointID:     "bbbbbbbbbbbb",
		},
	}
}

func sampleData() *types.ApiData {
	return &types.ApiData{
		Service:        "acme",
		BaseURL:        "https://acme.example.com",
		EndpointGroups: sampleGroups(),
		Auth:           &types.AuthInfo{AuthMethod: "bearer", AuthHeaders: []string{"authorization"}},
	}
}

func TestMergeWithPriorAddsUnobservedEndpoint(t *testing.T) {
	prior := "## Internal Endpoints\n\n- `GET /users/{id}`\n- `DELETE /users/{id}`\n"
	merged := mergeWithPrior(sampleGroups(), prior, "acme")
	require.Len(t, merged, 3)
	assert.Equal(t, "DELETE", merged[2].Method)
	assert.Equal(t, "not observed in this traffic sample; carried over from a prior package", merged[2].Description)
}

func TestMergeWithPriorNoPriorReturnsInput(t *testing.T) {
	groups := sampleGroups()
	merged := mergeWithPrior(groups, "", "acme")
	assert.Len(t, merged, len(groups))
}

func TestBuildIsDeterministicAcrossRuns(t *testing.T) {
	data := sampleData()
	analysis := &types.AgenticAnalysis{Service: "acme", APIStyle: "rest"}

	pkg1, _, _, err := Build(data, analysis, "")
	require.NoError(t, err)
	pkg2, _, _, err := Build(data, analysis, "")
	require.NoError(t, err)

	assert.Equal(t, pkg1.VersionHash, pkg2.VersionHash)
	assert.Equal(t, pkg1.SkillMD, pkg2.SkillMD)
	assert.Equal(t, string(pkg1.EndpointsJSON), string(pkg2.EndpointsJSON))
	assert.NotEqual(t, versionHashPlaceholder, pkg1.VersionHash)
}

func TestCompareBuildsNewEndpoints(t *testing.T) {
	kind, msg := compareBuilds("## Internal Endpoints\n\n- `GET /a`\n", "## Internal Endpoints\n\n- `GET /a`\n- `GET /b`\n", 1, 2)
	assert.Equal(t, diffNewEndpoints, kind)
	assert.Contains(t, msg, "+1 new endpoint")
}

func TestCompareBuildsUpdatedAtEqualCount(t *testing.T) {
	prior := "---\nmetadata:\n  versionHash: aaaaaaaa\n---\nold text\n"
	current := "---\nmetadata:\n  versionHash: bbbbbbbb\n---\nnew text\n"
	kind, msg := compareBuilds(prior, current, 2, 2)
	assert.Equal(t, diffUpdated, kind)
	assert.Contains(t, msg, "Updated")
}

func TestCompareBuildsNoChangeIgnoresHashChurn(t *testing.T) {
	prior := "---\nmetadata:\n  versionHash: aaaaaaaa\n---\nsame text\n"
	current := "---\nmetadata:\n  versionHash: bbbbbbbb\n---\nsame text\n"
	kind, _ := compareBuilds(prior, current, 2, 2)
	assert.Equal(t, diffNone, kind)
}

func TestComposeAPITemplateDedupesMethodNames(t *testing.T) {
	groups := []types.EndpointGroup{
		{Method: "GET", NormalizedPath: "/orders/{id}"},
		{Method: "GET", NormalizedPath: "/shipments/{id}/orders"},
	}
	body, ext := composeAPITemplate("acme", groups)
	assert.Equal(t, "ts", ext)
	assert.Contains(t, body, "getOrders(id) {")
	assert.Contains(t, body, "getOrders_2(id) {")
}

func TestComposeEndpointsRefIsSortedByMethodThenPath(t *testing.T) {
	groups := []types.EndpointGroup{
		{Method: "POST", NormalizedPath: "/a", EndpointID: "p1"},
		{Method: "GET", NormalizedPath: "/b", EndpointID: "g2"},
		{Method: "GET", NormalizedPath: "/a", EndpointID: "g1"},
	}
	_, refs := composeEndpointsRef(groups)
	require.Len(t, refs, 3)
	assert.Equal(t, "g1", refs[0].EndpointID)
	assert.Equal(t, "g2", refs[1].EndpointID)
	assert.Equal(t, "p1", refs[2].EndpointID)
}

func TestExampleURLExpandsPathParams(t *testing.T) {
	g := sampleGroups()[0]
	url := exampleURL(&g)
	assert.Equal(t, "https://acme.example.com/users/42", url)
}

func TestExampleURLEmptyWithoutSamples(t *testing.T) {
	g := types.EndpointGroup{
		BaseURL:        "https://acme.example.com",
		NormalizedPath: "/users/{id}",
		PathParams:     []types.PathParam{{Name: "id"}},
	}
	assert.Equal(t, "", exampleURL(&g))
}
