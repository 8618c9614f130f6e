package shape

import (
	"fmt"
	"strings"

	"github.com/usestring/apiskill/pkg/contenttype"
)

// Summarize produces a short, human-readable structural description of
// a non-JSON response body, for EndpointGroup.ResponseSummary. Returns
// "" when the category isn't one this package handles (the caller keeps
// whatever summary it already had). xmlMaxDepth/csvMaxRows of 0 fall
// back to this package's own defaults.
func Summarize(category contenttype.Category, body []byte, xmlMaxDepth, csvMaxRows int) string {
	switch category {
	case contenttype.XML:
		h, err := ExtractXMLHierarchy(body, xmlMaxDepth)
		if err != nil || h.Root == nil {
			return ""
		}
		return fmt.Sprintf("xml<%s>%s", h.Root.Name, describeXMLChildren(h.Root))
	case contenttype.CSV:
		cols, err := ExtractCSVColumns(body, csvMaxRows)
		if err != nil || len(cols.Columns) == 0 {
			return ""
		}
		names := make([]string, len(cols.Columns))
		for i, c := range cols.Columns {
			names[i] = c.Name + ":" + c.Type
		}
		return fmt.Sprintf("csv[%d rows]{%s}", cols.RowCount, strings.Join(names, ","))
	default:
		return ""
	}
}

func describeXMLChildren(e *XMLElement) string {
	if len(e.Children) == 0 {
		return ""
	}
	names := make([]string, 0, len(e.Children))
	for _, c := range e.Children {
		n := c.Name
		if c.Repeated {
			n += "[]"
		}
		names = append(names, n)
	}
	return "{" + strings.Join(names, ",") + "}"
}
