// Package authextract implements AuthExtractor: building one service's
// authentication profile from its surviving request/response headers,
// cookies, and any storage tokens the caller supplies.
package authextract

import (
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/usestring/apiskill/pkg/types"
)

// authHeaderNames is the case-insensitive set §4.4 matches, extensible
// by a caller-provided set.
var authHeaderNames = map[string]bool{
	"authorization": true, "x-api-key": true, "api-key": true, "apikey": true,
	"x-auth-token": true, "access-token": true, "x-access-token": true,
	"token": true, "x-token": true, "x-csrf-token": true, "x-xsrf-token": true,
}

var apiKeyHeaderNames = map[string]bool{
	"x-api-key": true, "api-key": true, "apikey": true, "x-access-token": true,
}

var tokenLikePattern = mustCompileTokenPattern()

// StorageToken is one key/value pair a collaborator (e.g. a browser
// extension reading localStorage) contributes; AuthExtractor itself
// never derives these, only consumes and classifies them.
type StorageToken struct {
	Key   string
	Value string
}

// MetaTag is one `<meta>` tag observed in an HTML response body,
// scanned for CSRF token carriers.
type MetaTag struct {
	Name    string
	Content string
}

// Extract builds the AuthInfo for one service from its surviving
// requests, plus any storage tokens and HTML bodies a collaborator
// supplies. extraHeaders extends the matched header-name set.
func Extract(service string, requests []types.ParsedRequest, storage []StorageToken, htmlBodies []string, extraHeaders []string) *types.AuthInfo {
	headerSet := authHeaderNames
	if len(extraHeaders) > 0 {
		headerSet = make(map[string]bool, len(authHeaderNames)+len(extraHeaders))
		for k := range authHeaderNames {
			headerSet[k] = true
		}
		for _, h := range extraHeaders {
			headerSet[strings.ToLower(h)] = true
		}
	}

	info := &types.AuthInfo{Service: service, JWTClaims: map[string]any{}}
	observedHeaders := map[string]string{} // lower name -> latest value
	cookies := map[string]types.CookieInfo{}
	var provenance []provEntry

	for i := range requests {
		req := &requests[i]
		for _, kv := range req.RequestHeaders {
			lower := strings.ToLower(kv.Name)
			if headerSet[lower] {
				observedHeaders[lower] = kv.Value
				req.AuthHeaderNames = appendUnique(req.AuthHeaderNames, lower)
			}
			if lower == "cookie" {
				for name, val := range parseCookieHeader(kv.Value) {
					cookies[name] = types.CookieInfo{Name: name, SetByHost: req.Host, HasExpiry: cookies[name].HasExpiry}
					req.CookieNames = appendUnique(req.CookieNames, name)
					_ = val
				}
			}
		}
		for _, kv := range req.ResponseHeaders {
			if strings.ToLower(kv.Name) != "set-cookie" {
				continue
			}
			name, expired, hasExpiry := parseSetCookie(kv.Value)
			if name == "" {
				continue
			}
			if expired {
				delete(cookies, name)
				continue
			}
			cookies[name] = types.CookieInfo{Name: name, SetByHost: req.Host, HasExpiry: hasExpiry}
		}
	}

	for name, c := range cookies {
		_ = name
		info.Cookies = append(info.Cookies, c)
	}

	for _, tok := range storage {
		if !tokenLikePattern.MatchString(tok.Key) {
			continue
		}
		lowerKey := strings.ToLower(tok.Key)
		switch {
		case strings.Contains(lowerKey, "csrf") || strings.Contains(lowerKey, "xsrf"):
			info.CSRFToken = &types.CSRFInfo{Provenance: "storage", HeaderName: "X-CSRF-Token"}
			provenance = append(provenance, provEntry{Kind: "storage", Key: tok.Key})
		case strings.HasPrefix(tok.Value, "eyJ"):
			if _, ok := observedHeaders["authorization"]; !ok {
				observedHeaders["authorization"] = "Bearer " + tok.Value
			}
		case strings.Contains(lowerKey, "key"):
			info.APIKeys = appendUnique(info.APIKeys, tok.Value)
		}
	}

	for _, html := range htmlBodies {
		tags := scanMetaTags(html)
		for _, tag := range tags {
			lower := strings.ToLower(tag.Name)
			if strings.Contains(lower, "csrf") || strings.Contains(lower, "xsrf") {
				info.CSRFToken = &types.CSRFInfo{Provenance: "meta", HeaderName: "X-CSRF-Token"}
				provenance = append(provenance, provEntry{Kind: "meta", Key: tag.Name})
			}
		}
	}

	for name, val := range observedHeaders {
		info.AuthHeaders = appendUnique(info.AuthHeaders, name)
		if name == "authorization" {
			_ = val
		}
	}

	info.AuthMethod = classifyAuthMethod(observedHeaders, info.Cookies)
	_ = provenance // exposed via info.CSRFToken.Provenance; full slot list belongs to a future multi-CSRF extension

	return info
}

type provEntry struct {
	Kind string
	Key  string
}

func classifyAuthMethod(headers map[string]string, cookies []types.CookieInfo) string {
	hasBearer := false
	hasAPIKey := false
	hasCustomHeader := false
	if v, ok := headers["authorization"]; ok {
		if strings.HasPrefix(strings.ToLower(v), "bearer ") {
			hasBearer = true
		} else {
			hasCustomHeader = true
		}
	}
	for name := range headers {
		if name == "authorization" {
			continue
		}
		if apiKeyHeaderNames[name] {
			hasAPIKey = true
		} else {
			hasCustomHeader = true
		}
	}
	hasCookie := len(cookies) > 0 && !hasBearer && !hasAPIKey && !hasCustomHeader

	count := 0
	for _, b := range []bool{hasBearer, hasAPIKey, hasCookie, hasCustomHeader} {
		if b {
			count++
		}
	}
	switch {
	case count >= 2:
		return "mixed"
	case hasBearer:
		return "bearer"
	case hasAPIKey:
		return "api_key"
	case len(cookies) > 0:
		return "cookie"
	case hasCustomHeader:
		return "header"
	default:
		return "none"
	}
}

func parseCookieHeader(header string) map[string]string {
	out := map[string]string{}
	for _, pair := range strings.Split(header, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idx := strings.IndexByte(pair, '=')
		if idx <= 0 {
			continue
		}
		out[strings.TrimSpace(pair[:idx])] = strings.TrimSpace(pair[idx+1:])
	}
	return out
}

// parseSetCookie extracts the cookie name and whether it is already
// expired (Max-Age=0 or an Expires date in the past).
func parseSetCookie(raw string) (name string, expired bool, hasExpiry bool) {
	header := http.Header{}
	header.Add("Set-Cookie", raw)
	req := http.Response{Header: header}
	cookies := req.Cookies()
	if len(cookies) == 0 {
		return "", false, false
	}
	c := cookies[0]
	hasExpiry = c.MaxAge != 0 || !c.Expires.IsZero()
	if c.MaxAge < 0 || c.MaxAge == 0 && strings.Contains(strings.ToLower(raw), "max-age=0") {
		expired = true
	}
	if !c.Expires.IsZero() && c.Expires.Before(time.Now()) {
		expired = true
	}
	return c.Name, expired, hasExpiry
}

func scanMetaTags(html string) []MetaTag {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	var tags []MetaTag
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		content, _ := s.Attr("content")
		if name == "" {
			name, _ = s.Attr("property")
		}
		if name != "" {
			tags = append(tags, MetaTag{Name: name, Content: content})
		}
	})
	return tags
}

func appendUnique(list []string, val string) []string {
	for _, v := range list {
		if v == val {
			return list
		}
	}
	return append(list, val)
}
