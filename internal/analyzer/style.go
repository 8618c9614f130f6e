package analyzer

import (
	"regexp"
	"strings"

	"github.com/usestring/apiskill/pkg/graphql"
	"github.com/usestring/apiskill/pkg/types"
)

var graphqlPathPattern = regexp.MustCompile(`(?i)/graphql|/gql$`)

var rpcVerbPattern = regexp.MustCompile(`(?i)^(get|set|create|update|delete|process|execute|run|do|fetch|send|check|validate|compute|calculate|submit|generate)`)

// detectAPIStyle classifies a service's surface as rest, graphql, rpc,
// or mixed, per §4.6.
func detectAPIStyle(groups []types.EndpointGroup) string {
	if len(groups) == 0 {
		return "rest"
	}

	var graphqlCount, restCount, rpcCount int
	for i := range groups {
		g := &groups[i]
		if graphqlPathPattern.MatchString(g.NormalizedPath) || hasGraphQLBody(g) {
			graphqlCount++
			continue
		}
		if isRPCLike(g) {
			rpcCount++
			continue
		}
		restCount++
	}

	total := graphqlCount + restCount + rpcCount
	if graphqlCount*2 > total {
		return "graphql"
	}

	switch {
	case restCount > 0 && rpcCount == 0:
		return "rest"
	case rpcCount > 0 && restCount == 0:
		return "rpc"
	case restCount == 0 && rpcCount == 0:
		return "rest"
	default:
		return "mixed"
	}
}

// hasGraphQLBody catches GraphQL traffic posted to a non-/graphql
// path (a gateway path, a generic /api endpoint) by sniffing one of
// the group's retained example request bodies.
func hasGraphQLBody(g *types.EndpointGroup) bool {
	if !strings.EqualFold(g.Method, "POST") {
		return false
	}
	for _, ex := range g.Examples {
		if ex.RequestBody != "" && graphql.IsGraphQLBody([]byte(ex.RequestBody)) {
			return true
		}
	}
	return false
}

// isRPCLike flags a POST whose final path segment reads as a verb
// rather than a collection/resource noun.
func isRPCLike(g *types.EndpointGroup) bool {
	if !strings.EqualFold(g.Method, "POST") {
		return false
	}
	segs := strings.Split(strings.Trim(g.NormalizedPath, "/"), "/")
	if len(segs) == 0 {
		return false
	}
	last := segs[len(segs)-1]
	if strings.HasPrefix(last, "{") {
		return false
	}
	return rpcVerbPattern.MatchString(last)
}
