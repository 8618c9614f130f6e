package har

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHAR = `{
  "log": {
    "entries": [
      {
        "startedDateTime": "2024-01-15T10:00:00Z",
        "_resourceType": "xhr",
        "request": {
          "method": "GET",
          "url": "https://api.example.com/v1/users/4231",
          "headers": [{"name": "Authorization", "value": "Bearer abc"}],
          "queryString": []
        },
        "response": {
          "status": 200,
          "statusText": "OK",
          "headers": [{"name": "Content-Type", "value": "application/json"}],
          "content": {"mimeType": "application/json", "text": "{\"id\":4231,\"name\":\"A\"}"}
        }
      }
    ]
  }
}`

func TestParseBasicEntry(t *testing.T) {
	exchanges, warnings, err := Parse([]byte(sampleHAR))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, exchanges, 1)

	ex := exchanges[0]
	assert.Equal(t, "GET", ex.Method)
	assert.Equal(t, "https://api.example.com/v1/users/4231", ex.URL)
	assert.Equal(t, "xhr", ex.ResourceType)
	assert.Equal(t, 200, ex.Status)
	auth, ok := ex.RequestHeaders.Get("authorization")
	assert.True(t, ok)
	assert.Equal(t, "Bearer abc", auth)
	require.NotNil(t, ex.ResponseBody)
	assert.Contains(t, ex.ResponseBody.Text, "4231")
}

func TestParseMalformedDocument(t *testing.T) {
	_, _, err := Parse([]byte("not json"))
	require.Error(t, err)
}

func TestParseEntryMissingURLIsWarned(t *testing.T) {
	doc := `{"log":{"entries":[{"request":{"method":"GET"},"response":{"status":200}}]}}`
	exchanges, warnings, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Empty(t, exchanges)
	require.Len(t, warnings, 1)
}
