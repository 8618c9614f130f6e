package analyzer

import (
	"strings"

	"github.com/usestring/apiskill/pkg/types"
)

var errorFieldSet = []string{
	"message", "error", "code", "detail", "details",
	"errors", "error_code", "error_message", "error_description",
	"status", "reason", "description", "type", "title",
	"instance", "violations",
}

var retryableStatuses = map[int]bool{429: true, 502: true, 503: true, 504: true}
var terminalStatuses = map[int]bool{400: true, 401: true, 403: true, 404: true, 422: true}

func collectErrors(groups []types.EndpointGroup) []types.ErrorPattern {
	type acc struct {
		count      int
		sampleBody string
		fields     map[string]bool
		endpoints  map[string]bool
	}
	byStatus := map[int]*acc{}
	var order []int

	for i := range groups {
		g := &groups[i]
		for status, count := range g.StatusCodes {
			if status < 400 {
				continue
			}
			a, ok := byStatus[status]
			if !ok {
				a = &acc{fields: map[string]bool{}, endpoints: map[string]bool{}}
				byStatus[status] = a
				order = append(order, status)
			}
			a.count += count
			a.endpoints[g.EndpointID] = true

			if g.ResponseSchema != nil {
				for _, name := range errorFieldSet {
					if field, ok := g.ResponseSchema.Fields[name]; ok && field != nil {
						a.fields[name] = true
					}
				}
			}
			if a.sampleBody == "" {
				for _, ex := range g.Examples {
					if ex.Status == status && ex.ResponseBody != "" {
						a.sampleBody = truncateMsg(ex.ResponseBody, 120)
						break
					}
				}
			}
		}
	}

	out := make([]types.ErrorPattern, 0, len(order))
	for _, status := range order {
		a := byStatus[status]
		var fields []string
		for _, name := range errorFieldSet {
			if a.fields[name] {
				fields = append(fields, name)
			}
		}
		var ids []string
		for id := range a.endpoints {
			ids = append(ids, id)
		}
		out = append(out, types.ErrorPattern{
			Status:      status,
			StatusClass: status / 100,
			Count:       a.count,
			Fields:      fields,
			SampleBody:  a.sampleBody,
			Endpoints:   ids,
			Retryable:   retryableStatuses[status],
			Terminal:    terminalStatuses[status],
		})
	}
	return out
}

func truncateMsg(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n])
}
