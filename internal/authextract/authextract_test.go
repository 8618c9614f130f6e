package authextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/apiskill/pkg/types"
)

func TestExtractBearerAuth(t *testing.T) {
	reqs := []types.ParsedRequest{
		{
			Host:           "api.example.com",
			RequestHeaders: types.Header{{Name: "Authorization", Value: "Bearer abc123"}},
		},
	}
	info := Extract("example", reqs, nil, nil, nil)
	assert.Equal(t, "bearer", info.AuthMethod)
	assert.Contains(t, info.AuthHeaders, "authorization")
}

func TestExtractCookieAuth(t *testing.T) {
	reqs := []types.ParsedRequest{
		{
			Host:           "api.example.com",
			RequestHeaders: types.Header{{Name: "Cookie", Value: "session_id=xyz; other=1"}},
		},
	}
	info := Extract("example", reqs, nil, nil, nil)
	require.Len(t, info.Cookies, 2)
	assert.Equal(t, "cookie", info.AuthMethod)
}

func TestExpiredSetCookieRemoved(t *testing.T) {
	reqs := []types.ParsedRequest{
		{
			Host:            "api.example.com",
			RequestHeaders:  types.Header{{Name: "Cookie", Value: "session=abc"}},
			ResponseHeaders: types.Header{{Name: "Set-Cookie", Value: "session=abc; Max-Age=0"}},
		},
	}
	info := Extract("example", reqs, nil, nil, nil)
	assert.Empty(t, info.Cookies)
}

func TestJWTPromotionFromStorage(t *testing.T) {
	reqs := []types.ParsedRequest{{Host: "api.example.com"}}
	storage := []StorageToken{{Key: "auth_token", Value: "eyJhbGciOiJIUzI1NiJ9.e30.sig"}}
	info := Extract("example", reqs, storage, nil, nil)
	assert.Equal(t, "bearer", info.AuthMethod)
}

func TestCSRFPromotionFromMetaTag(t *testing.T) {
	reqs := []types.ParsedRequest{{Host: "api.example.com"}}
	html := `<html><head><meta name="csrf-token" content="tok123"></head></html>`
	info := Extract("example", reqs, nil, []string{html}, nil)
	require.NotNil(t, info.CSRFToken)
	assert.Equal(t, "meta", info.CSRFToken.Provenance)
}

func TestMixedAuthMethod(t *testing.T) {
	reqs := []types.ParsedRequest{
		{
			Host: "api.example.com",
			RequestHeaders: types.Header{
				{Name: "Authorization", Value: "Bearer abc"},
				{Name: "Cookie", Value: "session_id=xyz"},
			},
		},
	}
	info := Extract("example", reqs, nil, nil, nil)
	assert.Equal(t, "mixed", info.AuthMethod)
}
