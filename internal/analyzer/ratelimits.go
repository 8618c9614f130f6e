package analyzer

import (
	"strconv"
	"strings"
	"time"

	"github.com/usestring/apiskill/pkg/types"
)

var rateLimitHeaderPrefixes = []string{"x-ratelimit-", "x-rate-limit-", "ratelimit-"}
var rateLimitHeaderExact = map[string]bool{"ratelimit": true, "retry-after": true}

// epochThreshold is the spec's cutoff (2000-01-01T00:00:00Z) for
// treating a numeric reset value as epoch seconds rather than a
// relative window.
const epochThreshold = 946684800

// collectRateLimits scans every surviving request's response headers
// for the documented rate-limit header set, keeping the first sample
// of each distinct header name observed.
func collectRateLimits(requests []types.ParsedRequest) []types.RateLimitNote {
	seen := map[string]bool{}
	var out []types.RateLimitNote
	for i := range requests {
		for _, kv := range requests[i].ResponseHeaders {
			lower := strings.ToLower(kv.Name)
			if !isRateLimitHeader(lower) || seen[lower] {
				continue
			}
			seen[lower] = true
			out = append(out, types.RateLimitNote{Header: lower, Sample: rateLimitSample(lower, kv.Value)})
		}
	}
	return out
}

// rateLimitSample renders reset-style values as a window length in
// seconds: a value above epochThreshold is read as an epoch-seconds
// timestamp and becomes reset minus the current time; a smaller value
// is already relative and is returned as is.
func rateLimitSample(lower, value string) string {
	if lower != "retry-after" && !strings.HasSuffix(lower, "reset") {
		return value
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil || n <= epochThreshold {
		return value
	}
	return strconv.FormatInt(n-time.Now().Unix(), 10)
}

func isRateLimitHeader(lower string) bool {
	if rateLimitHeaderExact[lower] {
		return true
	}
	for _, prefix := range rateLimitHeaderPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}
