// Package types holds the shared data model passed between pipeline
// stages: captured traffic on the way in, canonical endpoint groups and
// their analysis on the way out.
package types

import (
	"time"

	"github.com/usestring/apiskill/pkg/schema"
)

// Exchange is one captured request/response pair, the unit HarParser
// consumes. Headers are kept in their original, possibly-duplicated
// order; callers needing case-insensitive lookup should use Header.Get.
type Exchange struct {
	Method       string
	URL          string
	ResourceType string
	StartedAt    time.Time

	RequestHeaders Header
	QueryString    []KV
	RequestBody    *Body

	Status         int
	StatusText     string
	ResponseHeaders Header
	ResponseBody    *Body

	TLSFingerprint string
	HTTP2StreamID  int
}

// KV is a name/value pair, used for headers and query parameters where
// duplicates and order both matter.
type KV struct {
	Name  string
	Value string
}

// Header is an ordered list of name/value pairs with case-insensitive
// lookup, mirroring how HTTP itself treats header names.
type Header []KV

// Get returns the first value for name, case-insensitively, and whether
// it was present.
func (h Header) Get(name string) (string, bool) {
	for _, kv := range h {
		if equalFold(kv.Name, name) {
			return kv.Value, true
		}
	}
	return "", false
}

// Values returns every value for name, case-insensitively, in order.
func (h Header) Values(name string) []string {
	var out []string
	for _, kv := range h {
		if equalFold(kv.Name, name) {
			out = append(out, kv.Value)
		}
	}
	return out
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Body is a request or response payload. Text is the decoded content;
// MimeType is taken from the Content-Type header (or HAR's mimeType
// field) with any parameters stripped.
type Body struct {
	MimeType string
	Text     string
	Truncated bool
}

// ParsedRequest is one Exchange after HarParser's normalization pass:
// noise-filtered, path-templated, and tagged with the service it
// belongs to.
type ParsedRequest struct {
	Method         string
	Host           string
	Service        string
	RawPath        string
	NormalizedPath string
	PathParams     []string

	QueryKeys []string

	RequestHeaders  Header
	ResponseHeaders Header

	Status       int
	RequestBody  *Body
	ResponseBody *Body

	ContentCategoryReq  string
	ContentCategoryResp string

	StartedAt time.Time

	NoiseScore float64
	IsNoise    bool

	AuthHeaderNames []string
	CookieNames     []string
}

// EndpointGroup is the canonical, deduplicated unit of an API surface:
// every ParsedRequest sharing (method, normalized_path, service) folds
// into one group, with request/response shapes merged across samples.
type EndpointGroup struct {
	EndpointID     string
	Method         string
	NormalizedPath string
	Service        string
	BaseURL        string

	PathParams  []PathParam
	QueryParams []QueryParam

	RequestSchema  *schema.TypeSummary
	ResponseSchema *schema.TypeSummary

	Category    string // "read" | "write" | "delete" | "auth" | "other"
	Produces    string
	Consumes    string

	SampleCount   int
	StatusCodes   map[int]int
	Examples      []Example
	Description   string

	ResponseSummary string // non-JSON fallback (pkg/shape)
}

// PathParam is one `{name}` placeholder in an EndpointGroup's
// NormalizedPath, along with the kinds of raw segment values observed.
type PathParam struct {
	Name    string
	Kind    string // "uuid" | "int" | "hex" | "base64url" | "slug"
	Samples []string
}

// QueryParam classifies one query-string key observed across an
// endpoint group's samples.
type QueryParam struct {
	Name      string
	Stable    bool
	Required  bool
	Samples   []string
}

// Example is one captured request/response sample retained on an
// EndpointGroup for documentation and reference purposes.
type Example struct {
	Path         string
	RequestBody  string
	ResponseBody string
	Status       int
}

// AuthInfo is the profile AuthExtractor builds for one service: the
// headers, cookies, and tokens observed guarding its requests.
type AuthInfo struct {
	Service      string
	AuthMethod   string // "bearer" | "api_key" | "cookie" | "header" | "none" | "mixed"
	AuthHeaders  []string
	Cookies      []CookieInfo
	APIKeys      []string
	JWTClaims    map[string]any
	CSRFToken    *CSRFInfo
	OAuthTokens  []OAuthTokenInfo
}

// CookieInfo is one cookie observed in traffic.
type CookieInfo struct {
	Name      string
	SetByHost string
	HasExpiry bool
}

// CSRFInfo records how a CSRF token was discovered and where it must be
// replayed.
type CSRFInfo struct {
	Provenance string // "meta" | "cookie" | "header" | "body"
	HeaderName string
}

// OAuthTokenInfo models an observed bearer/OAuth2 token triple using the
// field names golang.org/x/oauth2.Token already exposes, so a consuming
// agent can reuse that type directly instead of re-deriving field names.
type OAuthTokenInfo struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
}

// DataFlow is an inferred producer -> consumer relationship between two
// endpoint groups: a field in one group's response feeds a path/query
// parameter or body field of the other.
type DataFlow struct {
	Producer     string // endpoint_id
	Consumer     string // endpoint_id
	Field        string
	ConsumedAs   string // "path_param" | "query_param" | "body_field"
	Orchestrator bool   // Consumer draws inputs from >=2 distinct producers
}

// AuthFlow describes a multi-step chain of requests that establishes an
// authenticated session (e.g. login -> token exchange -> authenticated
// call).
type AuthFlow struct {
	Steps           []string // endpoint_ids in order
	Kind            string   // "login" | "refresh" | "mfa" | "oauth_exchange"
	Endpoint        string   // endpoint_id of the primary auth call
	Method          string
	InputFields     []string
	ProducedTokens  []string // field names, optionally suffixed "(jwt)" or "(opaque)"
	ConsumedBy      []string // endpoint_ids of non-auth endpoints carrying the credential
	RefreshEndpoint string   // endpoint_id, set when a sibling /refresh|/renew|/rotate exists
}

// Suggestion is one endpoint EndpointProber proposes might exist but
// was never observed in traffic.
type Suggestion struct {
	Method     string
	Path       string
	Reason     string
	Confidence float64
}

// AgenticAnalysis is the higher-order view over a service's endpoint
// groups: entities, flows, gaps, and a natural-language summary aimed
// at an agent deciding how to use the API.
type AgenticAnalysis struct {
	Service     string
	APIStyle    string // "rest" | "graphql" | "rpc" | "mixed"
	Entities    []Entity
	AuthFlows   []AuthFlow
	DataFlows   []DataFlow
	Pagination  []PaginationNote
	Errors      []ErrorPattern
	RateLimits  []RateLimitNote
	Suggestions []Suggestion
	Versioning  *VersioningNote
	Confidence  float64
	Summary     string
}

// Entity is one resource-shaped noun the analyzer extracted from path
// segments or GraphQL operation names (e.g. "user", "order").
type Entity struct {
	Name         string
	Endpoints    []string // endpoint_ids
	Fields       []EntityField
	MissingOps   []string // complement against {read, create, update, delete}
	CRUDComplete bool
}

// EntityField is one response-schema field unioned across an entity's
// endpoint groups.
type EntityField struct {
	Name     string
	SeenIn   []string // endpoint_ids
	Nullable bool
	IsID     bool
}

// PaginationNote flags a collection endpoint whose list semantics the
// analyzer detected (cursor, offset, or page-number style).
type PaginationNote struct {
	EndpointID string
	Style      string // "cursor" | "offset" | "page" | "none"
}

// ErrorPattern records the distinct error shapes observed for a status
// code family across a service's endpoints.
type ErrorPattern struct {
	Status      int
	StatusClass int // 4 or 5
	Count       int
	Fields      []string // from the fixed error-field vocabulary, those observed
	SampleBody  string    // <= 120 chars
	Endpoints   []string  // endpoint_ids
	Retryable   bool
	Terminal    bool
}

// RateLimitNote flags rate-limit headers observed on a service.
type RateLimitNote struct {
	Header string
	Sample string
}

// VersioningNote records how a service expresses API versioning, if at
// all.
type VersioningNote struct {
	Style string // "path" | "header" | "query" | "none"
	Value string
}

// ApiData is HarParser's output: every surviving request, grouped by
// raw endpoint key, plus the service/base-url context later stages
// need. AuthExtractor fills in the auth fields; EndpointEnricher fills
// in EndpointGroups.
type ApiData struct {
	Service    string
	BaseURL    string
	BaseURLs   []string // rank-ordered, most requests first

	Requests  []ParsedRequest
	Endpoints map[string][]ParsedRequest // "METHOD /normalized/path" -> observations

	Auth *AuthInfo

	EndpointGroups []EndpointGroup
}

// SkillPackage is the final, on-disk artifact SkillBuilder produces for
// one service.
type SkillPackage struct {
	Service     string
	SkillMD     string
	APITemplate string
	APITemplateExt string
	AuthJSON    []byte
	ReferenceMD string
	EndpointsJSON []byte
	VersionHash string
}
