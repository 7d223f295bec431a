package semka

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
)

// Render writes the current page of tree as a complete HTML document to out.
// If it can't, a simple text page indicating a server error is written
// instead. Documents that failed to load don't count as errors: they render
// as Failed stand-ins inside an otherwise normal page.
func Render(ctx context.Context, out io.Writer, tree *Tree, site *Site) {
	defer func() {
		// if the ResponseWriter can be closed, let's try to close it
		if closer, ok := out.(io.Closer); ok {
			err := closer.Close()
			// if there's an error closing it, logging it's about all we can do
			if err != nil {
				logger(ctx).ErrorContext(ctx, "error closing response writer", slog.Any("error", err))
			}
		}
	}()

	err := basicRender(ctx, out, tree, site)
	if err == nil {
		return
	}

	logger(ctx).ErrorContext(ctx, "error rendering page", slog.Any("error", err))

	_, err = out.Write([]byte("Server error."))
	if err != nil {
		logger(ctx).ErrorContext(ctx, "error writing server error message", slog.Any("error", err))
	}
}

func basicRender(ctx context.Context, out io.Writer, tree *Tree, site *Site) error {
	var buf bytes.Buffer
	err := html.Render(&buf, Page(ctx, tree, site))
	if err != nil {
		return fmt.Errorf("error rendering page %q: %w", tree.FullPath(), err)
	}
	_, err = buf.WriteTo(out)
	if err != nil {
		return fmt.Errorf("error writing page %q: %w", tree.FullPath(), err)
	}
	return nil
}

// Page builds the HTML document for the current page of tree: the stylesheets
// of every reachable CSSLinker in the head, and the rendered documents in the
// body.
func Page(ctx context.Context, tree *Tree, site *Site) *html.Node {
	head := Element("head", nil,
		Element("meta", []html.Attribute{Attr("charset", "utf-8")}),
		Element("title", nil, Text(tree.FullPath().String())),
	)
	for _, href := range getDocumentCSSLinks(ctx, tree, site) {
		head.AppendChild(Element("link", []html.Attribute{Attr("rel", "stylesheet"), Attr("href", href)}))
	}
	body := Element("body", nil, tree.View(ctx, site))

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	doc.AppendChild(Element("html", nil, head, body))
	return doc
}

// RenderMarkdown converts a rendered node, usually the result of Tree.View,
// to Markdown.
func RenderMarkdown(node *html.Node) (string, error) {
	md, err := htmltomarkdown.ConvertNode(node)
	if err != nil {
		return "", fmt.Errorf("error converting page to markdown: %w", err)
	}
	return string(md), nil
}

// getRecursiveDocuments returns root followed by every document reachable
// from it through declared dependencies, depth first, each once.
func getRecursiveDocuments(tree *Tree, root Path) []Path {
	var results []Path
	seen := map[string]struct{}{}
	var walk func(Path)
	walk = func(path Path) {
		if _, ok := seen[path.key()]; ok {
			return
		}
		seen[path.key()] = struct{}{}
		results = append(results, path)
		deps, _ := tree.Dependencies(path)
		for _, dep := range deps.Paths() {
			walk(dep)
		}
	}
	walk(root)
	return results
}
