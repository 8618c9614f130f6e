package analyzer

import (
	"strings"

	"github.com/usestring/apiskill/pkg/schema"
	"github.com/usestring/apiskill/pkg/types"
)

var offsetLimitParams = map[string]bool{"offset": true, "limit": true, "skip": true, "take": true}
var pageNumberParams = map[string]bool{"page": true, "per_page": true, "pagesize": true, "page_size": true, "size": true, "perpage": true}
var cursorParams = map[string]bool{"cursor": true, "after": true, "before": true, "next_token": true, "continuation": true, "start_after": true}

var offsetLimitFields = map[string]bool{"total": true, "count": true, "total_count": true}
var pageNumberFields = map[string]bool{"total_pages": true, "next_page": true}
var cursorFields = map[string]bool{"has_more": true, "next_cursor": true, "next": true}

func detectPagination(groups []types.EndpointGroup) []types.PaginationNote {
	var notes []types.PaginationNote
	for i := range groups {
		g := &groups[i]
		if !strings.EqualFold(g.Method, "GET") {
			continue
		}
		style := paginationStyleFromQuery(g.QueryParams)
		if style == "" {
			style = paginationStyleFromResponse(g.ResponseSchema)
		}
		if style == "" && respondsWithLargeArray(g.ResponseSchema) {
			notes = append(notes, types.PaginationNote{EndpointID: g.EndpointID, Style: "none"})
			continue
		}
		if style != "" {
			notes = append(notes, types.PaginationNote{EndpointID: g.EndpointID, Style: style})
		}
	}
	return notes
}

func paginationStyleFromQuery(params []types.QueryParam) string {
	for _, p := range params {
		lower := strings.ToLower(p.Name)
		switch {
		case offsetLimitParams[lower]:
			return "offset-limit"
		case pageNumberParams[lower]:
			return "page-number"
		case cursorParams[lower]:
			return "cursor"
		}
	}
	return ""
}

func paginationStyleFromResponse(s *schema.TypeSummary) string {
	if s == nil || s.Kind != schema.KindObject {
		return ""
	}
	for _, name := range s.FieldOrder {
		lower := strings.ToLower(name)
		switch {
		case offsetLimitFields[lower]:
			return "offset-limit"
		case pageNumberFields[lower]:
			return "page-number"
		case cursorFields[lower]:
			return "cursor"
		}
	}
	return ""
}

func respondsWithLargeArray(s *schema.TypeSummary) bool {
	if s == nil {
		return false
	}
	if s.Kind == schema.KindArray {
		return s.Length >= 10
	}
	if s.Kind == schema.KindObject {
		for _, name := range s.FieldOrder {
			if f := s.Fields[name]; f != nil && f.Kind == schema.KindArray && f.Length >= 10 {
				return true
			}
		}
	}
	return false
}
