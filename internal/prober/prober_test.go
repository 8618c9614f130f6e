package prober

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/apiskill/internal/config"
	"github.com/usestring/apiskill/pkg/types"
)

func TestCRUDCompletionSuggestsMissingVerbs(t *testing.T) {
	groups := []types.EndpointGroup{
		{Method: "GET", NormalizedPath: "/widgets"},
		{Method: "GET", NormalizedPath: "/widgets/{widgetId}"},
	}
	cfg := &config.Config{MaxProbes: 50}
	out := Probe(groups, nil, cfg)

	var methods []string
	for _, s := range out {
		if s.Path == "/widgets" || s.Path == "/widgets/{widgetId}" {
			methods = append(methods, s.Method+" "+s.Path)
		}
	}
	assert.Contains(t, methods, "POST /widgets")
	assert.Contains(t, methods, "PUT /widgets/{widgetId}")
	assert.Contains(t, methods, "DELETE /widgets/{widgetId}")
}

func TestProbeDedupsAndRemovesObserved(t *testing.T) {
	groups := []types.EndpointGroup{
		{Method: "GET", NormalizedPath: "/widgets"},
		{Method: "POST", NormalizedPath: "/widgets"},
	}
	cfg := &config.Config{MaxProbes: 50}
	out := Probe(groups, nil, cfg)
	for _, s := range out {
		assert.False(t, s.Method == "POST" && s.Path == "/widgets")
	}
}

func TestProbeCapsAtMaxProbes(t *testing.T) {
	groups := []types.EndpointGroup{{Method: "GET", NormalizedPath: "/widgets/{widgetId}"}}
	cfg := &config.Config{MaxProbes: 3}
	out := Probe(groups, nil, cfg)
	require.LessOrEqual(t, len(out), 3)
}

func TestUserProbesRequireAuthEvidence(t *testing.T) {
	groups := []types.EndpointGroup{{Method: "GET", NormalizedPath: "/widgets"}}
	cfg := &config.Config{MaxProbes: 50}
	withoutAuth := Probe(groups, nil, cfg)
	for _, s := range withoutAuth {
		assert.NotEqual(t, "/me", s.Path)
	}

	auth := &types.AuthInfo{AuthHeaders: []string{"Authorization"}}
	withAuth := Probe(groups, auth, cfg)
	var sawMe bool
	for _, s := range withAuth {
		if s.Path == "/me" {
			sawMe = true
		}
	}
	assert.True(t, sawMe)
}

func TestAggressiveProbesAddVersionAndUtility(t *testing.T) {
	groups := []types.EndpointGroup{{Method: "GET", NormalizedPath: "/api/v2/widgets"}}
	cfg := &config.Config{MaxProbes: 50, AggressiveProbes: true}
	out := Probe(groups, nil, cfg)

	var sawV1, sawV3, sawHealth bool
	for _, s := range out {
		switch s.Path {
		case "/v1":
			sawV1 = true
		case "/v3":
			sawV3 = true
		case "/health", "/api/health":
			sawHealth = true
		}
	}
	assert.True(t, sawV1)
	assert.True(t, sawV3)
	assert.True(t, sawHealth)
}
