package model

// UiNode is one element of a normalized accessibility snapshot.
// Optional attributes are nil when the source omitted them; an empty
// string is a present-but-empty attribute.
type UiNode struct {
	Text        *string  `yaml:"text,omitempty"        json:"text,omitempty"`
	ContentDesc *string  `yaml:"contentDesc,omitempty" json:"contentDesc,omitempty"`
	ResourceID  *string  `yaml:"resourceId,omitempty"  json:"resourceId,omitempty"`
	Class       *string  `yaml:"class,omitempty"       json:"class,omitempty"`
	Bounds      *string  `yaml:"bounds,omitempty"      json:"bounds,omitempty"`
	Children    []UiNode `yaml:"children"              json:"children"`
}

// Point is a screen coordinate in device pixels.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Center returns the tap point of the node, if its bounds are usable.
func (n *UiNode) Center() (Point, bool) {
	if n == nil {
		return Point{}, false
	}
	return CenterOf(n.Bounds)
}

// Anonymous reports whether the node carries no attributes at all.
// The synthetic hierarchy root is anonymous.
func (n *UiNode) Anonymous() bool {
	return n.Text == nil && n.ContentDesc == nil && n.ResourceID == nil &&
		n.Class == nil && n.Bounds == nil
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *UiNode) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for i := range n.Children {
		total += n.Children[i].Count()
	}
	return total
}

// Str returns a pointer to s. Handy for building trees in code.
func Str(s string) *string {
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
