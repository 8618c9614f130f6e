package noise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFastPathNoise(t *testing.T) {
	assert.True(t, IsFastPathNoise("POST", "/tracking/events"))
	assert.True(t, IsFastPathNoise("POST", "/js"))
	assert.False(t, IsFastPathNoise("GET", "/api/v1/users"))
}

func TestScenarioNoiseFastPath(t *testing.T) {
	// spec.md §8 scenario 1: POST /tracking/events {} 200 -> noise.
	s := Signal{Method: "POST", Path: "/tracking/events", ResponseStatus: 200, ResponseBodyText: "{}"}
	assert.True(t, IsNoise(s, 0.6))
}

func TestHealthCheckPathScore(t *testing.T) {
	assert.Equal(t, 0.8, pathScore("/healthz"))
	assert.Equal(t, 0.8, pathScore("/ping"))
}

func TestAnalyticsKeywordPathScore(t *testing.T) {
	assert.Equal(t, 1.0, pathScore("/v2/analytics/collect"))
}

func TestLottieResponseScore(t *testing.T) {
	body := `{"layers":[],"assets":[],"fr":30,"op":60,"ip":0,"v":"5.0","w":100,"h":100,"nm":"x"}`
	assert.Equal(t, 1.0, responseScore(body))
}

func TestTrivialAckResponseScore(t *testing.T) {
	assert.Equal(t, 0.5, responseScore(`{"ok":true}`))
	assert.Equal(t, 0.5, responseScore("null"))
}

func TestRealAPICallIsNotNoise(t *testing.T) {
	s := Signal{
		Method:           "GET",
		Path:             "/api/v1/users/4231",
		ResponseStatus:   200,
		ResponseBodyText: `{"id":4231,"name":"A"}`,
	}
	assert.False(t, IsNoise(s, 0.6))
}

func TestBlendedScoreBelowCeiling(t *testing.T) {
	// path_score=0.7 (below 0.9 ceiling) should blend, not short-circuit;
	// the "{}" body adds its trivial-ack response_score of 0.5.
	final, path, _, _ := Score(Signal{Path: "/experiments/foo", ResponseBodyText: "{}"})
	assert.Equal(t, 0.7, path)
	assert.InDelta(t, 0.5*0.7+0.2*0.5, final, 1e-9)
}
