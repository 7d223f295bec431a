package semka

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Element builds an element node with the passed attributes (as key/value
// pairs) and children.
func Element(tag string, attrs []html.Attribute, children ...*html.Node) *html.Node {
	node := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
		Attr:     attrs,
	}
	for _, child := range children {
		if child == nil {
			continue
		}
		if child.Parent != nil {
			child.Parent.RemoveChild(child)
		}
		node.AppendChild(child)
	}
	return node
}

// Text builds a text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Attr builds a single attribute.
func Attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// Div is shorthand for a div Element with a class attribute.
func Div(class string, children ...*html.Node) *html.Node {
	var attrs []html.Attribute
	if class != "" {
		attrs = append(attrs, Attr("class", class))
	}
	return Element("div", attrs, children...)
}

// Spinner is the node widgets show while their content is on its way.
func Spinner() *html.Node {
	return Div("spinner", Text("Loading..."))
}

// GetAttr returns the value of the attribute key on node.
func GetAttr(node *html.Node, key string) (string, bool) {
	for _, attr := range node.Attr {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// SetAttr sets the attribute key on node, replacing any existing value.
func SetAttr(node *html.Node, key, val string) {
	for i, attr := range node.Attr {
		if attr.Key == key {
			node.Attr[i].Val = val
			return
		}
	}
	node.Attr = append(node.Attr, Attr(key, val))
}

// AddClass adds classes to the class attribute of node, skipping any it
// already has.
func AddClass(node *html.Node, classes ...string) {
	current, _ := GetAttr(node, "class")
	fields := strings.Fields(current)
	for _, class := range classes {
		if class == "" || slices.Contains(fields, class) {
			continue
		}
		fields = append(fields, class)
	}
	SetAttr(node, "class", strings.Join(fields, " "))
}

// CloneNode deep-copies node and its descendants. The copy is detached from
// any parent or siblings.
func CloneNode(node *html.Node) *html.Node {
	clone := &html.Node{
		Type:      node.Type,
		DataAtom:  node.DataAtom,
		Data:      node.Data,
		Namespace: node.Namespace,
		Attr:      slices.Clone(node.Attr),
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		clone.AppendChild(CloneNode(child))
	}
	return clone
}

// Walk calls fn for node and each of its descendants, depth first. When fn
// returns false the descendants of that node are skipped.
func Walk(node *html.Node, fn func(*html.Node) bool) {
	if !fn(node) {
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		Walk(child, fn)
	}
}
