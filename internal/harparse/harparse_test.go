package harparse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/apiskill/internal/config"
	"github.com/usestring/apiskill/pkg/types"
)

func TestParseNormalizesNumericID(t *testing.T) {
	// spec.md §8 scenario 2: GET /api/v1/users/4231 -> GET /api/v1/users/{userId}
	exchanges := []types.Exchange{
		{
			Method:       "GET",
			URL:          "https://api.example.com/api/v1/users/4231",
			ResourceType: "xhr",
			StartedAt:    time.Unix(0, 0),
			Status:       200,
			ResponseBody: &types.Body{MimeType: "application/json", Text: `{"id":4231,"name":"Ada"}`},
		},
	}
	cfg := &config.Config{NoiseThreshold: 0.6, ParseWorkers: 4}
	ac := &types.AnalysisContext{}

	data, err := Parse(context.Background(), exchanges, cfg, ac)
	require.NoError(t, err)
	require.Len(t, data.Requests, 1)

	pr := data.Requests[0]
	assert.Equal(t, "/api/v1/users/{userId}", pr.NormalizedPath)
	assert.Equal(t, []string{"userId"}, pr.PathParams)
	assert.Equal(t, "example", data.Service)
	assert.Contains(t, data.Endpoints, "GET /api/v1/users/{userId}")
}

func TestParseDropsTrackingNoise(t *testing.T) {
	exchanges := []types.Exchange{
		{
			Method:       "POST",
			URL:          "https://api.example.com/tracking/events",
			ResourceType: "xhr",
			Status:       200,
			ResponseBody: &types.Body{MimeType: "application/json", Text: `{}`},
		},
	}
	cfg := &config.Config{NoiseThreshold: 0.6, ParseWorkers: 1}
	ac := &types.AnalysisContext{}

	data, err := Parse(context.Background(), exchanges, cfg, ac)
	require.NoError(t, err)
	assert.Empty(t, data.Requests)
}

func TestParseDropsImageResourceType(t *testing.T) {
	exchanges := []types.Exchange{
		{Method: "GET", URL: "https://cdn.example.com/logo.png", ResourceType: "image", Status: 200},
	}
	cfg := &config.Config{NoiseThreshold: 0.6, ParseWorkers: 1}
	ac := &types.AnalysisContext{}

	data, err := Parse(context.Background(), exchanges, cfg, ac)
	require.NoError(t, err)
	assert.Empty(t, data.Requests)
}

func TestParseLongPathTerminates(t *testing.T) {
	path := "/api"
	for i := 0; i < 100; i++ {
		path += "/segment"
	}
	exchanges := []types.Exchange{
		{
			Method:       "GET",
			URL:          "https://api.example.com" + path,
			ResourceType: "xhr",
			Status:       200,
			ResponseBody: &types.Body{MimeType: "application/json", Text: `{"ok":1,"data":"x"}`},
		},
	}
	cfg := &config.Config{NoiseThreshold: 0.6, ParseWorkers: 1}
	ac := &types.AnalysisContext{}

	data, err := Parse(context.Background(), exchanges, cfg, ac)
	require.NoError(t, err)
	require.Len(t, data.Requests, 1)
	assert.Len(t, data.Requests[0].PathParams, 0)
}
