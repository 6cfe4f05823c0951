package model

// Vendor attribute names as emitted by uiautomator, with the canonical
// names accepted as a fallback so normalized trees can be normalized again.
var attrKeys = []struct {
	vendor, canonical string
	field             func(*UiNode) **string
}{
	{"text", "text", func(n *UiNode) **string { return &n.Text }},
	{"content-desc", "contentDesc", func(n *UiNode) **string { return &n.ContentDesc }},
	{"resource-id", "resourceId", func(n *UiNode) **string { return &n.ResourceID }},
	{"class", "class", func(n *UiNode) **string { return &n.Class }},
	{"bounds", "bounds", func(n *UiNode) **string { return &n.Bounds }},
}

// NormalizeDocument normalizes a parsed dump document. When the document
// has a top-level "hierarchy" entry, that entry is the root; otherwise the
// document itself is.
func NormalizeDocument(doc any) UiNode {
	if m, ok := doc.(map[string]any); ok {
		if h, ok := m["hierarchy"]; ok {
			return Normalize(h)
		}
	}
	return Normalize(doc)
}

// Normalize converts a raw parsed element into a UiNode. Anything that is
// not an element map yields an empty node, so the result is always
// well-formed. Attribute values that are not strings are treated as absent.
func Normalize(raw any) UiNode {
	switch v := raw.(type) {
	case map[string]any:
		return normalizeMap(v)
	case UiNode:
		return v.normalized()
	case *UiNode:
		if v == nil {
			return UiNode{Children: []UiNode{}}
		}
		return v.normalized()
	default:
		return UiNode{Children: []UiNode{}}
	}
}

func normalizeMap(m map[string]any) UiNode {
	var node UiNode
	for _, k := range attrKeys {
		if s, ok := stringAttr(m, k.vendor); ok {
			*k.field(&node) = &s
		} else if s, ok := stringAttr(m, k.canonical); ok {
			*k.field(&node) = &s
		}
	}

	holder, ok := m["node"]
	if !ok {
		holder = m["children"]
	}
	node.Children = normalizeChildren(holder)
	return node
}

func stringAttr(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func normalizeChildren(holder any) []UiNode {
	switch v := holder.(type) {
	case nil:
		return []UiNode{}
	case []any:
		out := make([]UiNode, 0, len(v))
		for _, c := range v {
			out = append(out, Normalize(c))
		}
		return out
	case []map[string]any:
		out := make([]UiNode, 0, len(v))
		for _, c := range v {
			out = append(out, normalizeMap(c))
		}
		return out
	case []UiNode:
		out := make([]UiNode, 0, len(v))
		for i := range v {
			out = append(out, v[i].normalized())
		}
		return out
	default:
		return []UiNode{Normalize(v)}
	}
}

// normalized returns a deep copy with every Children slice non-nil.
func (n UiNode) normalized() UiNode {
	out := UiNode{
		Text:        copyStr(n.Text),
		ContentDesc: copyStr(n.ContentDesc),
		ResourceID:  copyStr(n.ResourceID),
		Class:       copyStr(n.Class),
		Bounds:      copyStr(n.Bounds),
		Children:    make([]UiNode, 0, len(n.Children)),
	}
	for i := range n.Children {
		out.Children = append(out.Children, n.Children[i].normalized())
	}
	return out
}

func copyStr(p *string) *string {
	if p == nil {
		return nil
	}
	s := *p
	return &s
}
