package feed

import (
	"encoding/xml"
	"strings"
)

// node is a generic namespace-aware XML element tree. Dialect parsers
// query it instead of binding per-dialect struct schemas, since the three
// dialects overlap and mix namespaces freely.
type node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []node     `xml:",any"`
}

// child returns the first direct child with the given namespace and local
// name; an empty space matches only elements without a namespace.
func (n *node) child(space, local string) *node {
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == local && c.XMLName.Space == space {
			return c
		}
	}
	return nil
}

// children returns all direct children with the given namespace and name.
func (n *node) children(space, local string) []*node {
	var out []*node
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == local && c.XMLName.Space == space {
			out = append(out, c)
		}
	}
	return out
}

// childrenAnyNS matches direct children by local name regardless of
// namespace (Atom feeds appear both prefixed and bare in the wild).
func (n *node) childrenAnyNS(local string) []*node {
	var out []*node
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == local {
			out = append(out, c)
		}
	}
	return out
}

func (n *node) text() string {
	return strings.TrimSpace(n.Content)
}

func (n *node) childText(space, local string) string {
	if c := n.child(space, local); c != nil {
		return c.text()
	}
	return ""
}

func (n *node) childTextAnyNS(local string) string {
	if cs := n.childrenAnyNS(local); len(cs) > 0 {
		return cs[0].text()
	}
	return ""
}

// attr looks up an attribute; an empty space also matches unprefixed
// attributes decoded with the element's namespace.
func (n *node) attr(space, local string) string {
	for _, a := range n.Attrs {
		if a.Name.Local != local {
			continue
		}
		if a.Name.Space == space || space == "" {
			return a.Value
		}
	}
	return ""
}
