// Package widgets holds the widgets semka sites are built from.
//
// Register them with a semka.Registry:
//
//	registry := semka.NewRegistry().
//		AddWidget(widgets.MarkdownFactory()).
//		AddWidget(widgets.StylesheetFactory())
package widgets
