package widgets

import (
	"context"

	"golang.org/x/net/html"

	"impractical.co/semka"
)

// StylesheetFile is the file, inside the document's directory, holding the
// CSS a Stylesheet links to.
const StylesheetFile = "style.css"

var stylesheetTags = []string{"stylesheet", "semka-0.1-stylesheet"}

// StylesheetFactory returns the WidgetFactory for Stylesheet documents.
func StylesheetFactory() semka.WidgetFactory {
	return semka.NewFactory(func(_ context.Context, path semka.Path, _ semka.DocManifest) (semka.Widget, error) {
		return NewStylesheet(path), nil
	}, stylesheetTags...)
}

// Stylesheet wraps the rest of its path in a stylesheet. A Stylesheet at
// "theme/home" links docs/theme/style.css into the page and renders the
// document "home".
type Stylesheet struct {
	path semka.Path
}

// NewStylesheet returns a Stylesheet for the document at path.
func NewStylesheet(path semka.Path) *Stylesheet {
	return &Stylesheet{path: path}
}

func (s *Stylesheet) Dependencies(_ context.Context) []semka.Path {
	if s.path.Tail().IsEmpty() {
		return nil
	}
	return []semka.Path{s.path.Tail()}
}

func (s *Stylesheet) LinkCSS(_ context.Context, site *semka.Site) []string {
	href := site.BasePath.Join(semka.DocFilePath(site.Documents(), s.path, semka.NewPath().Add(StylesheetFile)))
	return []string{href.String()}
}

func (s *Stylesheet) View(ctx context.Context, deps semka.Dependencies, _ *semka.Site) *html.Node {
	root := semka.Div("stylesheet semka-0.1-stylesheet")
	if tail := s.path.Tail(); !tail.IsEmpty() {
		root.AppendChild(deps.View(ctx, tail))
	}
	return root
}

func (*Stylesheet) WidgetName() string {
	return "stylesheet"
}
