package skillbuilder

import (
	"regexp"

	"github.com/usestring/apiskill/internal/enrich"
	"github.com/usestring/apiskill/pkg/types"
)

var methodPathLine = regexp.MustCompile("`(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS) (/\\S*)`")

// mergeWithPrior adds back any endpoint documented in a prior SKILL.md
// that the current run never observed, recomputing its endpoint_id
// (a pure content hash, so a prior observation and this one agree
// without needing the old endpoints_ref on disk) rather than
// inventing a fresh one.
func mergeWithPrior(current []types.EndpointGroup, priorSkillMD, service string) []types.EndpointGroup {
	if priorSkillMD == "" {
		return current
	}
	seen := map[string]bool{}
	for i := range current {
		seen[current[i].Method+" "+current[i].NormalizedPath] = true
	}

	merged := current
	for _, m := range methodPathLine.FindAllStringSubmatch(priorSkillMD, -1) {
		method, path := m[1], m[2]
		key := method + " " + path
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, types.EndpointGroup{
			EndpointID:     enrich.EndpointID(method, path, service),
			Method:         method,
			NormalizedPath: path,
			Service:        service,
			Category:       enrich.ClassifyCategory(path, method),
			Description:    "not observed in this traffic sample; carried over from a prior package",
		})
	}
	return merged
}
