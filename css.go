package semka

import (
	"context"
)

// CSSLinker is an interface Widgets can fulfill to have stylesheets linked
// from the head of the rendered page. Render only asks Widgets whose
// documents are reachable from the current page through declared
// dependencies.
type CSSLinker interface {
	// LinkCSS returns a list of URLs to CSS files that should be linked
	// to from the output HTML.
	LinkCSS(ctx context.Context, site *Site) []string
}

func getDocumentCSSLinks(ctx context.Context, tree *Tree, site *Site) []string {
	var results []string
	seen := map[string]struct{}{}
	for _, path := range getRecursiveDocuments(tree, tree.FullPath()) {
		widget, ok := tree.Widget(path)
		if !ok {
			continue
		}
		link, ok := widget.(CSSLinker)
		if !ok {
			continue
		}
		for _, source := range link.LinkCSS(ctx, site) {
			if _, ok := seen[source]; ok {
				continue
			}
			results = append(results, source)
			seen[source] = struct{}{}
		}
	}
	return results
}
