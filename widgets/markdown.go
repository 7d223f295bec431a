package widgets

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"impractical.co/semka"
)

// MarkdownTextFile is the file, inside the document's directory, holding the
// Markdown source.
const MarkdownTextFile = "text.md"

// IncludeTag is the element Markdown documents use to include another
// document: <include doc="path/to/doc"></include>.
const IncludeTag = "include"

var markdownTags = []string{"markdown", "semka-0.1-markdown"}

// MarkdownFactory returns the WidgetFactory for Markdown documents.
func MarkdownFactory() semka.WidgetFactory {
	return semka.NewFactory(func(_ context.Context, path semka.Path, _ semka.DocManifest) (semka.Widget, error) {
		return NewMarkdown(path), nil
	}, markdownTags...)
}

// Markdown renders the text.md file of its document. Every include element
// in the text becomes a declared dependency and is replaced by the rendered
// document when the Markdown is viewed.
type Markdown struct {
	path  semka.Path
	nodes []*html.Node
	ready bool
}

// NewMarkdown returns a Markdown widget for the document at path, with no
// text yet.
func NewMarkdown(path semka.Path) *Markdown {
	return &Markdown{path: path}
}

func (m *Markdown) Init(_ context.Context, path semka.Path, _ *semka.Site) (*semka.Orders, error) {
	m.path = path
	return semka.NewOrders().FetchText(semka.NewPath().Add(MarkdownTextFile)), nil
}

func (m *Markdown) Update(ctx context.Context, msg semka.WidgetMsg, _ *semka.Site) (*semka.Orders, error) {
	result, ok := msg.(semka.FetchTextResult)
	if !ok {
		return nil, nil
	}
	if result.Err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", result.Path, result.Err)
	}
	nodes, err := parseMarkdown(result.Text)
	if err != nil {
		return nil, err
	}
	m.nodes = nodes
	m.ready = true
	includes := findIncludes(ctx, nodes)
	semka.Logger(ctx).DebugContext(ctx, "markdown parsed",
		slog.String("doc_path", m.path.String()),
		slog.Int("includes", len(includes)))
	return semka.NewOrders().UpdateDependencies(includes...), nil
}

func (m *Markdown) View(ctx context.Context, deps semka.Dependencies, _ *semka.Site) *html.Node {
	root := semka.Div("markdown semka-0.1-markdown")
	if !m.ready {
		root.AppendChild(semka.Spinner())
		return root
	}
	for _, node := range m.nodes {
		resolved := resolveIncludes(ctx, semka.CloneNode(node), deps)
		if resolved != nil {
			root.AppendChild(resolved)
		}
	}
	return root
}

func (*Markdown) WidgetName() string {
	return "markdown"
}

// Loaded reports whether the Markdown source has arrived yet.
func (m *Markdown) Loaded() bool {
	return m.ready
}

func parseMarkdown(text string) ([]*html.Node, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		// include elements are raw HTML and must survive rendering
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return nil, fmt.Errorf("error rendering markdown: %w", err)
	}
	nodes, err := html.ParseFragment(&buf, &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
	})
	if err != nil {
		return nil, fmt.Errorf("error parsing rendered markdown: %w", err)
	}
	return nodes, nil
}

// findIncludes returns the documents named by every include element under
// nodes, in document order. Include elements without a parseable doc
// attribute are logged and skipped.
func findIncludes(ctx context.Context, nodes []*html.Node) []semka.Path {
	var results []semka.Path
	for _, node := range nodes {
		semka.Walk(node, func(n *html.Node) bool {
			if !isInclude(n) {
				return true
			}
			path, err := includePath(n)
			if err != nil {
				semka.Logger(ctx).WarnContext(ctx, "skipping include", slog.Any("error", err))
				return false
			}
			results = append(results, path)
			return false
		})
	}
	return results
}

// resolveIncludes replaces every include element under node with the
// rendered document it names. It returns nil if node itself is an include
// element with no doc attribute.
func resolveIncludes(ctx context.Context, node *html.Node, deps semka.Dependencies) *html.Node {
	if isInclude(node) {
		doc, ok := semka.GetAttr(node, "doc")
		if !ok {
			semka.Logger(ctx).ErrorContext(ctx, "include element has no \"doc\" attribute")
			return nil
		}
		path, err := semka.ParsePath(doc)
		if err != nil {
			semka.Logger(ctx).ErrorContext(ctx, "can not parse \"doc\" attribute of include element", slog.Any("error", err))
			return semka.Div("", semka.Text(doc))
		}
		return deps.View(ctx, path)
	}
	var next *html.Node
	for child := node.FirstChild; child != nil; child = next {
		next = child.NextSibling
		resolved := resolveIncludes(ctx, child, deps)
		if resolved == child {
			continue
		}
		if resolved != nil {
			if resolved.Parent != nil {
				resolved.Parent.RemoveChild(resolved)
			}
			node.InsertBefore(resolved, child)
		}
		node.RemoveChild(child)
	}
	return node
}

func isInclude(node *html.Node) bool {
	return node.Type == html.ElementNode && node.Data == IncludeTag
}

func includePath(node *html.Node) (semka.Path, error) {
	doc, ok := semka.GetAttr(node, "doc")
	if !ok {
		return semka.Path{}, fmt.Errorf("include element has no \"doc\" attribute")
	}
	return semka.ParsePath(doc)
}
