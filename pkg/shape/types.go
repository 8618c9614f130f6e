// Package shape produces a best-effort structural summary for response
// bodies that SchemaInferrer cannot handle (XML, CSV) — a fallback
// text fed into EndpointGroup.ResponseSummary, never a participant in
// TypeSummary merging.
package shape

// XMLElementHierarchy represents the structural outline of an XML document.
type XMLElementHierarchy struct {
	Root      *XMLElement `json:"root"`
	MaxDepth  int         `json:"max_depth"`
	Truncated bool        `json:"truncated,omitempty"`
}

// XMLElement represents a single element in the XML hierarchy.
type XMLElement struct {
	Name       string        `json:"name"`
	Attributes []string      `json:"attributes,omitempty"`
	Children   []*XMLElement `json:"children,omitempty"`
	ChildCount int           `json:"child_count"`
	Repeated   bool          `json:"repeated,omitempty"` // Appears multiple times as sibling
}

// CSVColumnStats represents the column structure of a CSV document.
type CSVColumnStats struct {
	Columns    []CSVColumn `json:"columns"`
	RowCount   int         `json:"row_count"`
	HasHeaders bool        `json:"has_headers"`
}

// CSVColumn describes a single CSV column.
type CSVColumn struct {
	Name           string   `json:"name"`
	Type           string   `json:"type"`                   // string, number, boolean
	Format         string   `json:"format,omitempty"`       // uuid, iso8601, url, email, enum
	EmptyFrequency float64  `json:"empty_frequency"`        // Fraction of null/empty values
	Examples       []string `json:"examples,omitempty"`     // Up to 3 example values
	EnumValues     []string `json:"enum_values,omitempty"` // When format is "enum"
}
