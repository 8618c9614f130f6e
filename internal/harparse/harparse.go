// Package harparse implements HarParser: normalizing captured
// exchanges into ParsedRequests and grouping them into ApiData.
package harparse

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/usestring/apiskill/internal/config"
	"github.com/usestring/apiskill/internal/noise"
	"github.com/usestring/apiskill/pkg/contenttype"
	"github.com/usestring/apiskill/pkg/types"
)

// droppedResourceTypes are filtered in step 1 regardless of noise
// scoring — they're never API traffic.
var droppedResourceTypes = map[string]bool{
	"script": true, "image": true, "stylesheet": true, "font": true, "media": true,
}

var subdomainStripList = map[string]bool{
	"www": true, "api": true, "app": true, "auth": true, "login": true,
}

var tldStripList = map[string]bool{
	"com": true, "io": true, "org": true, "net": true, "dev": true, "co": true, "ai": true,
}

// Parse runs HarParser's steps 1-6 over a sequence of Exchanges,
// producing ApiData without EndpointGroups (EndpointEnricher fills
// those in). Per-exchange work is parallelized with a bounded
// errgroup and reassembled in original order, preserving the
// pipeline's total-order guarantee.
func Parse(ctx context.Context, exchanges []types.Exchange, cfg *config.Config, ac *types.AnalysisContext) (*types.ApiData, error) {
	kept := make([]*types.ParsedRequest, len(exchanges))

	g, _ := errgroup.WithContext(ctx)
	workers := cfg.ParseWorkers
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)

	for i := range exchanges {
		i := i
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			pr, drop, warn := parseOne(exchanges[i], cfg)
			if warn != "" {
				ac.Warn(types.UrlInvalid, fmt.Sprintf("exchange[%d]", i), warn)
			}
			if !drop {
				kept[i] = pr
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	requests := make([]types.ParsedRequest, 0, len(kept))
	for _, pr := range kept {
		if pr != nil {
			requests = append(requests, *pr)
		}
	}

	originCounts := map[string]int{}
	for i := range requests {
		originCounts[originOf(&requests[i])]++
	}
	baseURL, baseURLs := rankOrigins(originCounts)
	svc := serviceName(baseURL)

	data := &types.ApiData{
		Service:   svc,
		BaseURL:   baseURL,
		BaseURLs:  baseURLs,
		Requests:  requests,
		Endpoints: map[string][]types.ParsedRequest{},
	}
	for i := range requests {
		requests[i].Service = svc
		pr := &requests[i]
		key := pr.Method + " " + pr.NormalizedPath
		data.Endpoints[key] = append(data.Endpoints[key], *pr)
	}

	return data, nil
}

func originOf(pr *types.ParsedRequest) string {
	return pr.Host
}

func rankOrigins(counts map[string]int) (string, []string) {
	origins := make([]string, 0, len(counts))
	for o := range counts {
		origins = append(origins, o)
	}
	sort.Slice(origins, func(i, j int) bool {
		if counts[origins[i]] != counts[origins[j]] {
			return counts[origins[i]] > counts[origins[j]]
		}
		return origins[i] < origins[j]
	})
	if len(origins) == 0 {
		return "", nil
	}
	return origins[0], origins
}

func serviceName(host string) string {
	if host == "" {
		return ""
	}
	labels := strings.Split(host, ".")
	if len(labels) > 2 && subdomainStripList[labels[0]] {
		labels = labels[1:]
	}
	if len(labels) > 1 && tldStripList[labels[len(labels)-1]] {
		labels = labels[:len(labels)-1]
	}
	name := strings.Join(labels, "-")
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		} else if r >= 'A' && r <= 'Z' {
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// parseOne applies steps 1-3 to one exchange: resource-type/MIME
// filtering, noise filtering, ParsedRequest construction, and path
// normalization. Returns drop=true (with no warning) for filtered
// traffic, or warn != "" for a malformed URL.
func parseOne(ex types.Exchange, cfg *config.Config) (pr *types.ParsedRequest, drop bool, warn string) {
	if droppedResourceTypes[ex.ResourceType] {
		return nil, true, ""
	}

	reqCT, _ := ex.RequestHeaders.Get("content-type")
	respCT, _ := ex.ResponseHeaders.Get("content-type")
	if ex.RequestBody != nil && ex.RequestBody.MimeType != "" {
		reqCT = ex.RequestBody.MimeType
	}
	if ex.ResponseBody != nil && ex.ResponseBody.MimeType != "" {
		respCT = ex.ResponseBody.MimeType
	}
	respCategory := contenttype.Classify(respCT)
	if respCategory == contenttype.Binary && respCT != "" {
		return nil, true, ""
	}
	if respCT == "" && ex.ResponseBody != nil && contenttype.IsBinary("", []byte(ex.ResponseBody.Text)) {
		return nil, true, ""
	}

	u, err := url.Parse(ex.URL)
	if err != nil || u.Host == "" {
		return nil, true, fmt.Sprintf("malformed url %q: %v", ex.URL, err)
	}

	sig := noise.Signal{
		Path:               u.Path,
		Method:             ex.Method,
		ResponseStatus:     ex.Status,
		RequestContentType: reqCT,
		ResponseSize:       bodyLen(ex.ResponseBody),
	}
	if ex.RequestBody != nil {
		sig.RequestBodyText = ex.RequestBody.Text
	}
	if ex.ResponseBody != nil {
		sig.ResponseBodyText = ex.ResponseBody.Text
	}
	if noise.IsNoise(sig, cfg.NoiseThreshold) {
		return nil, true, ""
	}

	normalizedPath, segs := NormalizePath(u.Path)
	pathParams := make([]string, 0, len(segs))
	for _, s := range segs {
		if s.IsParam {
			pathParams = append(pathParams, s.Param)
		}
	}

	queryKeys := make([]string, 0, len(ex.QueryString))
	for _, kv := range ex.QueryString {
		queryKeys = append(queryKeys, kv.Name)
	}

	out := &types.ParsedRequest{
		Method:              strings.ToUpper(ex.Method),
		Host:                strings.ToLower(u.Host),
		RawPath:             u.Path,
		NormalizedPath:      normalizedPath,
		PathParams:          pathParams,
		QueryKeys:           queryKeys,
		RequestHeaders:      ex.RequestHeaders,
		ResponseHeaders:     ex.ResponseHeaders,
		Status:              ex.Status,
		RequestBody:         ex.RequestBody,
		ResponseBody:        ex.ResponseBody,
		ContentCategoryReq:  string(contenttype.Classify(reqCT)),
		ContentCategoryResp: string(respCategory),
		StartedAt:           ex.StartedAt,
	}
	return out, false, ""
}

func bodyLen(b *types.Body) int {
	if b == nil {
		return 0
	}
	return len(b.Text)
}
