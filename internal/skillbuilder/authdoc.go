package skillbuilder

import (
	"encoding/json"
	"time"

	"github.com/usestring/apiskill/pkg/types"
)

// authDocument mirrors §6's auth.json contract. localStorage and
// sessionStorage stay empty maps: AuthExtractor's StorageToken input
// doesn't currently tag which web storage a token came from, only
// that it looked credential-shaped, so there's nothing honest to put
// in those two fields yet.
type authDocument struct {
	Service        string            `json:"service"`
	BaseURL        string            `json:"baseUrl"`
	AuthMethod     string            `json:"authMethod"`
	Timestamp      string            `json:"timestamp"`
	Headers        map[string]string `json:"headers"`
	Cookies        map[string]string `json:"cookies"`
	LocalStorage   map[string]string `json:"localStorage"`
	SessionStorage map[string]string `json:"sessionStorage"`
	MetaTokens     map[string]string `json:"metaTokens"`
	CSRFProvenance []string          `json:"csrfProvenance"`
}

// composeAuthJSON renders auth.json. Unlike skill_md, this document is
// always written fresh (it carries a timestamp and may reflect newer
// credential material), so it's exempt from the version-hash input.
func composeAuthJSON(service, baseURL string, auth *types.AuthInfo) ([]byte, error) {
	doc := authDocument{
		Service:        service,
		BaseURL:        baseURL,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Headers:        map[string]string{},
		Cookies:        map[string]string{},
		LocalStorage:   map[string]string{},
		SessionStorage: map[string]string{},
		MetaTokens:     map[string]string{},
	}
	if auth != nil {
		doc.AuthMethod = auth.AuthMethod
		for _, h := range auth.AuthHeaders {
			doc.Headers[h] = "observed"
		}
		for _, c := range auth.Cookies {
			state := "session"
			if c.HasExpiry {
				state = "persistent"
			}
			doc.Cookies[c.Name] = state
		}
		for _, k := range auth.APIKeys {
			doc.Headers[k] = "api-key"
		}
		if auth.CSRFToken != nil {
			doc.MetaTokens["csrf"] = auth.CSRFToken.HeaderName
			doc.CSRFProvenance = append(doc.CSRFProvenance, auth.CSRFToken.Provenance)
		}
	}
	return json.MarshalIndent(doc, "", "  ")
}
