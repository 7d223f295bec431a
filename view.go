package semka

import (
	"context"
	"fmt"

	"golang.org/x/net/html"
)

// Dependencies renders documents from inside a Widget's View. It carries the
// recursion depth and the document doing the rendering, so a Widget can only
// render documents it declared as dependencies, and includes can't recurse
// forever.
type Dependencies struct {
	tree   *Tree
	site   *Site
	caller Path
	nested bool
	depth  int
}

// Root returns the Dependencies used to render the top of the page: depth
// zero, with no calling document.
func (t *Tree) Root(site *Site) Dependencies {
	return Dependencies{tree: t, site: site}
}

// View renders the current page.
func (t *Tree) View(ctx context.Context, site *Site) *html.Node {
	return t.Root(site).View(ctx, t.fullPath)
}

// Depth returns how many documents deep the current rendering is.
func (d Dependencies) Depth() int {
	return d.depth
}

// Caller returns the document doing the rendering. It reports false at the
// root of the page.
func (d Dependencies) Caller() (Path, bool) {
	return d.caller, d.nested
}

// View renders the document at path. When the rendering is nested too
// deeply, when the calling document never declared path as a dependency, or
// when path isn't tracked at all, a Failed stand-in is rendered instead. The
// returned node carries path in its data-doc-path attribute.
func (d Dependencies) View(ctx context.Context, path Path) *html.Node {
	var node *html.Node
	switch {
	case d.depth > d.site.maxDepth():
		node = d.failed(ctx, path, ErrRecursionExceeded)
	case d.nested && !d.tree.declares(d.caller, path):
		node = d.failed(ctx, path, fmt.Errorf("document %q %w by %q", path, ErrNotRequested, d.caller))
	default:
		widget, ok := d.tree.Widget(path)
		if !ok {
			node = d.failed(ctx, path, fmt.Errorf("required document %q %w", path, ErrNotLoaded))
			break
		}
		node = decorate(widget, widget.View(ctx, d.digIn(path), d.site))
	}
	SetAttr(node, "data-doc-path", path.String())
	return node
}

func (d Dependencies) digIn(path Path) Dependencies {
	return Dependencies{
		tree:   d.tree,
		site:   d.site,
		caller: path,
		nested: true,
		depth:  d.depth + 1,
	}
}

// failed renders a stand-in for path, attributed to the calling document.
func (d Dependencies) failed(ctx context.Context, path Path, err error) *html.Node {
	owner := NewAbsolutePath()
	if d.nested {
		owner = d.caller
	}
	logger(ctx).DebugContext(ctx, "rendering stand-in",
		"doc_path", path.String(),
		"caller", owner.String(),
		"error", err)
	standIn := Failed{Path: owner, Err: err}
	return decorate(standIn, standIn.View(ctx, d.digIn(path), d.site))
}

func decorate(widget Widget, node *html.Node) *html.Node {
	if node == nil {
		node = Div("")
	}
	if node.Type != html.ElementNode {
		node = Element("div", nil, node)
	}
	AddClass(node, "widget")
	if namer, ok := widget.(Namer); ok {
		SetAttr(node, "data-widget-name", namer.WidgetName())
	}
	if classer, ok := widget.(Classer); ok {
		AddClass(node, classer.Classes()...)
	}
	return node
}
