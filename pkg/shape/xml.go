package shape

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// DefaultXMLMaxDepth bounds ExtractXMLHierarchy when the caller doesn't
// have a config.Config.ShapeXMLMaxDepth to hand.
const DefaultXMLMaxDepth = 5

// ExtractXMLHierarchy parses an XML body and returns a structural outline
// of the element tree with tag names, attributes, child counts, and
// repeated element flags, truncating past maxDepth levels.
func ExtractXMLHierarchy(body []byte, maxDepth int) (*XMLElementHierarchy, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultXMLMaxDepth
	}
	decoder := xml.NewDecoder(bytes.NewReader(body))
	decoder.Strict = false

	hierarchy := &XMLElementHierarchy{
		MaxDepth: 0,
	}

	// Parse the root element
	root, maxDepthReached, truncated, err := parseXMLElement(decoder, 0, maxDepth)
	if err != nil {
		return nil, err
	}

	hierarchy.Root = root
	hierarchy.MaxDepth = maxDepthReached
	hierarchy.Truncated = truncated

	return hierarchy, nil
}

// parseXMLElement recursively parses XML elements from the decoder.
func parseXMLElement(decoder *xml.Decoder, depth, maxDepth int) (*XMLElement, int, bool, error) {
	truncated := false
	reachedDepth := depth

	for {
		tok, err := decoder.Token()
		if err != nil {
			return nil, reachedDepth, truncated, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			elem := &XMLElement{
				Name: stripNamespace(t.Name),
			}

			// Collect attributes
			for _, attr := range t.Attr {
				elem.Attributes = append(elem.Attributes, stripNamespace(attr.Name))
			}

			// Parse children
			if depth < maxDepth {
				children, childDepth, childTruncated := parseChildren(decoder, depth+1, maxDepth)
				elem.Children = children
				elem.ChildCount = len(children)
				if childTruncated {
					truncated = true
				}
				if childDepth > reachedDepth {
					reachedDepth = childDepth
				}
			} else {
				truncated = true
				// Skip the rest of this element
				decoder.Skip()
			}

			return elem, reachedDepth, truncated, nil

		case xml.EndElement:
			return nil, reachedDepth, truncated, nil
		}
	}
}

// parseChildren parses all child elements of the current element.
func parseChildren(decoder *xml.Decoder, depth, maxDepth int) ([]*XMLElement, int, bool) {
	truncated := false
	reachedDepth := depth
	childNames := make(map[string]int)
	var children []*XMLElement

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			name := stripNamespace(t.Name)
			childNames[name]++

			if depth > maxDepth {
				truncated = true
				decoder.Skip()
				continue
			}

			elem := &XMLElement{
				Name: name,
			}

			for _, attr := range t.Attr {
				elem.Attributes = append(elem.Attributes, stripNamespace(attr.Name))
			}

			if depth < maxDepth {
				subChildren, childDepth, childTruncated := parseChildren(decoder, depth+1, maxDepth)
				elem.Children = subChildren
				elem.ChildCount = len(subChildren)
				if childTruncated {
					truncated = true
				}
				if childDepth > reachedDepth {
					reachedDepth = childDepth
				}
			} else {
				truncated = true
				decoder.Skip()
			}

			// Only add the element once for repeated siblings
			if childNames[name] == 1 {
				children = append(children, elem)
			} else if childNames[name] == 2 {
				// Mark the first occurrence as repeated
				for _, c := range children {
					if c.Name == name {
						c.Repeated = true
						break
					}
				}
			}

		case xml.EndElement:
			return children, reachedDepth, truncated
		}
	}

	return children, reachedDepth, truncated
}

// stripNamespace returns just the local part of an XML name when its
// namespace is empty or an http(s) URL; any other namespace is kept as
// a "space:local" prefix.
func stripNamespace(name xml.Name) string {
	if name.Space != "" {
		// Only include namespace when it's not the default
		if !strings.HasPrefix(name.Space, "http://") && !strings.HasPrefix(name.Space, "https://") {
			return name.Space + ":" + name.Local
		}
	}
	return name.Local
}
