package model

import "strings"

// Query selects nodes by visible text or accessibility description.
// An empty field is not part of the query.
type Query struct {
	Text        string `yaml:"text,omitempty"        json:"text,omitempty"`
	ContentDesc string `yaml:"contentDesc,omitempty" json:"contentDesc,omitempty"`
}

// Empty reports whether neither criterion was supplied.
func (q Query) Empty() bool {
	return q.Text == "" && q.ContentDesc == ""
}

// Matches reports whether the node satisfies the query: its text equals
// q.Text or its description equals q.ContentDesc, ignoring case. Either
// criterion alone is enough.
func (q Query) Matches(n *UiNode) bool {
	return q.matchFields(n.Text, n.ContentDesc)
}

func (q Query) matchFields(text, desc *string) bool {
	if q.Text != "" && text != nil && strings.EqualFold(*text, q.Text) {
		return true
	}
	if q.ContentDesc != "" && desc != nil && strings.EqualFold(*desc, q.ContentDesc) {
		return true
	}
	return false
}

// Find returns the first node, in depth-first pre-order, that matches q.
// A node is tested before its children and earlier siblings before later
// ones. It returns nil when nothing matches or when q is empty.
func Find(root *UiNode, q Query) *UiNode {
	if root == nil || q.Empty() {
		return nil
	}
	return findRecursive(root, q)
}

func findRecursive(n *UiNode, q Query) *UiNode {
	if q.Matches(n) {
		return n
	}
	for i := range n.Children {
		if found := findRecursive(&n.Children[i], q); found != nil {
			return found
		}
	}
	return nil
}

// Match is a located node together with its breadcrumb and tap point.
type Match struct {
	FlatNode `yaml:",inline"`
	Center   *Point `yaml:"center,omitempty" json:"center,omitempty"`
}

// FindAll returns every node matching q in pre-order. A limit of zero or
// less means no limit. The first entry, if any, is the node Find returns.
func FindAll(root *UiNode, q Query, limit int) []Match {
	if root == nil || q.Empty() {
		return nil
	}
	var out []Match
	walk(root, "", 0, func(n *UiNode, flat FlatNode) bool {
		if !q.Matches(n) {
			return true
		}
		m := Match{FlatNode: flat}
		if c, ok := n.Center(); ok {
			m.Center = &c
		}
		out = append(out, m)
		return limit <= 0 || len(out) < limit
	})
	return out
}
