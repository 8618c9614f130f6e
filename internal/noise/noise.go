// Package noise implements the weighted-signal scorer that separates
// real API traffic from analytics/telemetry/config noise.
package noise

import (
	"strings"

	"github.com/buger/jsonparser"
)

// Signal is the documented input shape the scorer reads from one
// exchange — no other fields participate in scoring.
type Signal struct {
	Path               string
	Method             string
	ResponseStatus     int
	RequestContentType string
	RequestBodyText    string
	ResponseSize       int
	ResponseBodyText   string
}

var fastPathSubstrings = []string{
	"/tracking/", "/sgtm/", "/beacon", "/pixel", "/~partytown/",
	"/telemetry/", "/client_configs", "/client-configs",
	"/data-layer", "/datalayer", "/feature-flags", "/feature_flags",
}

var pathKeywordsScore1 = []string{
	"analytics", "event-tracking", "pageview", "impression", "collect",
	"metrics", "diagnostic", "logging", "gtm", "tag-manager",
	"attribution", "conversion", "campaign_event", "pagead", "adserver",
	"ad-event",
}

var healthLikeSegments = map[string]bool{
	"health": true, "healthz": true, "ping": true, "heartbeat": true,
	"ready": true, "alive": true,
}

var pathKeywordsScore07 = []string{"experiments", "client-config", "platformassets", "static-assets"}

var versionSegmentRe = mustCompileVersionSegment()

// analyticsPayloadKeys is the set §4.2's request_score rule checks for
// (>= 3 matches on a body's first-level keys => 0.8).
var analyticsPayloadKeys = []string{
	"event", "event_name", "event_type", "timestamp", "client_id",
	"session_id", "page_url", "referrer", "user_agent",
}

var batchLikeFirstKeys = map[string]bool{
	"events": true, "batch": true, "messages": true, "logs": true, "entries": true,
}

var lottieKeys = []string{"layers", "assets", "fr", "op", "ip", "v", "w", "h", "nm"}
var configResponseKeys = []string{"features", "flags", "experiments", "variants", "toggles"}

var trivialAckLiterals = map[string]bool{
	"":                      true,
	"null":                  true,
	"{}":                    true,
	"true":                  true,
	"false":                 true,
	"0":                     true,
	"1":                     true,
	`"ok"`:                  true,
	`{"ok":true}`:           true,
	`{"ok":1}`:              true,
	`{"success":true}`:      true,
	`{"status":"ok"}`:       true,
	`{"status":"success"}`:  true,
}

// Score computes the three component scores and the blended final
// score, exactly per spec.md §4.2.
func Score(s Signal) (final, path, request, response float64) {
	path = pathScore(s.Path)
	request = requestScore(s)
	response = responseScore(s.ResponseBodyText)

	m := max3(path, request, response)
	if m >= 0.9 {
		return m, path, request, response
	}
	return 0.5*path + 0.3*request + 0.2*response, path, request, response
}

// IsFastPathNoise reports the immediate-noise rule that bypasses
// scoring entirely.
func IsFastPathNoise(method, path string) bool {
	lower := strings.ToLower(path)
	for _, kw := range fastPathSubstrings {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	if strings.EqualFold(method, "POST") && (lower == "/js" || lower == "/js/") {
		return true
	}
	return false
}

// IsNoise applies the fast path then the threshold rule.
func IsNoise(s Signal, threshold float64) bool {
	if IsFastPathNoise(s.Method, s.Path) {
		return true
	}
	final, _, _, _ := Score(s)
	return final >= threshold
}

func pathScore(path string) float64 {
	lower := strings.ToLower(path)
	for _, kw := range pathKeywordsScore1 {
		if strings.Contains(lower, kw) {
			return 1.0
		}
	}
	trimmed := strings.Trim(lower, "/")
	firstSeg := trimmed
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		firstSeg = trimmed[:i]
	}
	if healthLikeSegments[trimmed] || healthLikeSegments[firstSeg] {
		return 0.8
	}
	for _, kw := range pathKeywordsScore07 {
		if strings.Contains(lower, kw) {
			return 0.7
		}
	}
	if versionSegmentRe.MatchString(path) && !strings.Contains(lower, "/api/") {
		return 0.6
	}
	return 0
}

func requestScore(s Signal) float64 {
	method := strings.ToUpper(s.Method)
	if (method == "POST" || method == "PUT") && s.ResponseSize >= 0 && s.ResponseSize < 50 {
		return 0.8
	}
	if strings.HasPrefix(strings.ToLower(s.RequestContentType), "text/plain") {
		return 0.8
	}
	body := strings.TrimSpace(s.RequestBodyText)
	if body == "" {
		return 0
	}
	if body[0] == '[' {
		return 0.8
	}
	if body[0] == '{' {
		if firstKey, ok := firstObjectKey(body); ok && batchLikeFirstKeys[firstKey] {
			return 0.8
		}
		if countMatchingKeys(body, analyticsPayloadKeys) >= 3 {
			return 0.8
		}
	}
	return 0
}

func responseScore(body string) float64 {
	body = strings.TrimSpace(body)
	if body == "" {
		return trivialAckScore(body)
	}
	if body[0] == '{' {
		if countMatchingKeys(body, lottieKeys) >= 4 {
			return 1.0
		}
		if countMatchingKeys(body, configResponseKeys) >= 1 {
			return 0.6
		}
		if trivialAckLiterals[normalizeJSONLiteral(body)] {
			return 0.5
		}
		if countTopLevelScalarKeys(body) >= 50 {
			return 0.5
		}
		return 0
	}
	return trivialAckScore(body)
}

func trivialAckScore(body string) float64 {
	if trivialAckLiterals[normalizeJSONLiteral(body)] {
		return 0.5
	}
	return 0
}

// normalizeJSONLiteral strips surrounding whitespace; the ack literal
// set is matched verbatim against the trimmed body text.
func normalizeJSONLiteral(s string) string {
	return strings.TrimSpace(s)
}

func firstObjectKey(body string) (string, bool) {
	var key string
	var found bool
	_ = jsonparser.ObjectEach([]byte(body), func(k, v []byte, vt jsonparser.ValueType, offset int) error {
		if !found {
			key = string(k)
			found = true
		}
		return nil
	})
	return key, found
}

func countMatchingKeys(body string, candidates []string) int {
	set := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		set[c] = true
	}
	count := 0
	_ = jsonparser.ObjectEach([]byte(body), func(k, v []byte, vt jsonparser.ValueType, offset int) error {
		if set[string(k)] {
			count++
		}
		return nil
	})
	return count
}

func countTopLevelScalarKeys(body string) int {
	count := 0
	_ = jsonparser.ObjectEach([]byte(body), func(k, v []byte, vt jsonparser.ValueType, offset int) error {
		if vt == jsonparser.String || vt == jsonparser.Number || vt == jsonparser.Boolean || vt == jsonparser.Null {
			count++
		}
		return nil
	})
	return count
}

func max3(a, b, c float64) float64 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
