// Package uixml converts uiautomator window dumps into generic documents.
//
// The output mirrors what a plain XML-to-object converter produces: each
// element becomes a map holding its attributes as string values, child
// elements are keyed by tag name, a tag seen once maps to a single object
// and a repeated tag maps to a []any in document order. Elements with no
// attributes, children or text become the empty string.
package uixml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// TextKey holds an element's character data when it has any.
const TextKey = "#text"

// ErrNoDocument is returned when the input holds no XML element at all,
// typically because the dump command printed an error instead.
var ErrNoDocument = errors.New("no xml document in dump output")

// Decode parses raw dump output. Anything printed before the first tag,
// such as "UI hierchary dumped to: ...", and anything after the root
// element closes is ignored. The result maps the root tag name to the
// root element.
func Decode(data []byte) (map[string]any, error) {
	start := bytes.IndexByte(data, '<')
	if start < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDocument, preview(data))
	}

	d := xml.NewDecoder(bytes.NewReader(data[start:]))
	d.Strict = false
	d.Entity = xml.HTMLEntity

	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: %s", ErrNoDocument, preview(data))
		}
		if err != nil {
			return nil, fmt.Errorf("parse dump: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			root, err := decodeElement(d, se)
			if err != nil {
				return nil, err
			}
			return map[string]any{se.Name.Local: root}, nil
		}
	}
}

func decodeElement(d *xml.Decoder, start xml.StartElement) (any, error) {
	el := make(map[string]any, len(start.Attr))
	for _, a := range start.Attr {
		el[a.Name.Local] = a.Value
	}

	var text strings.Builder
	children := 0
	for {
		tok, err := d.Token()
		if err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("parse dump: unexpected end inside <%s>", start.Name.Local)
			}
			return nil, fmt.Errorf("parse dump: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(d, t)
			if err != nil {
				return nil, err
			}
			addChild(el, t.Name.Local, child)
			children++
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			s := strings.TrimSpace(text.String())
			if s != "" {
				el[TextKey] = s
			}
			if len(el) == 0 && children == 0 {
				return "", nil
			}
			return el, nil
		}
	}
}

// addChild stores a child under its tag name, promoting the slot to a
// slice once the tag repeats.
func addChild(el map[string]any, name string, child any) {
	existing, ok := el[name]
	if !ok {
		el[name] = child
		return
	}
	if list, ok := existing.([]any); ok {
		el[name] = append(list, child)
		return
	}
	el[name] = []any{existing, child}
}

func preview(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	if s == "" {
		return "empty output"
	}
	return s
}
