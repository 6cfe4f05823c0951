package model

import "strings"

// FlatNode is a node with a path breadcrumb instead of children.
type FlatNode struct {
	Text        *string `yaml:"text,omitempty"        json:"text,omitempty"`
	ContentDesc *string `yaml:"contentDesc,omitempty" json:"contentDesc,omitempty"`
	ResourceID  *string `yaml:"resourceId,omitempty"  json:"resourceId,omitempty"`
	Class       *string `yaml:"class,omitempty"       json:"class,omitempty"`
	Bounds      *string `yaml:"bounds,omitempty"      json:"bounds,omitempty"`
	Depth       int     `yaml:"depth"                 json:"depth"`
	Path        string  `yaml:"path,omitempty"        json:"path,omitempty"`
}

// Flatten converts a tree into a pre-order list. Each entry gets a path of
// short class names joined with " > ". Anonymous nodes, such as the
// hierarchy root, are left out and do not contribute to paths.
func Flatten(root *UiNode) []FlatNode {
	if root == nil {
		return nil
	}
	var out []FlatNode
	walk(root, "", 0, func(_ *UiNode, flat FlatNode) bool {
		out = append(out, flat)
		return true
	})
	return out
}

// walk visits named nodes in pre-order. Returning false from visit stops
// the walk.
func walk(n *UiNode, parentPath string, depth int, visit func(*UiNode, FlatNode) bool) bool {
	path := parentPath
	childDepth := depth
	if !n.Anonymous() {
		path = joinPath(parentPath, shortClass(n.Class))
		flat := FlatNode{
			Text:        n.Text,
			ContentDesc: n.ContentDesc,
			ResourceID:  n.ResourceID,
			Class:       n.Class,
			Bounds:      n.Bounds,
			Depth:       depth,
			Path:        path,
		}
		if !visit(n, flat) {
			return false
		}
		childDepth++
	}
	for i := range n.Children {
		if !walk(&n.Children[i], path, childDepth, visit) {
			return false
		}
	}
	return true
}

func joinPath(parent, seg string) string {
	if parent == "" {
		return seg
	}
	return parent + " > " + seg
}

// shortClass strips the package from a widget class name:
// "android.widget.Button" becomes "Button".
func shortClass(class *string) string {
	c := deref(class)
	if c == "" {
		return "node"
	}
	if i := strings.LastIndex(c, "."); i >= 0 && i < len(c)-1 {
		return c[i+1:]
	}
	return c
}
