package semka

import (
	"context"

	"golang.org/x/net/html"
)

// LoadingTag is the widget tag of the placeholder installed while a document
// loads. Registering a factory for it replaces the built-in placeholder.
const LoadingTag = "loading"

// Loading is the built-in placeholder Widget.
type Loading struct{}

// NewLoading returns the built-in placeholder Widget.
func NewLoading() Widget {
	return Loading{}
}

func (Loading) View(_ context.Context, _ Dependencies, _ *Site) *html.Node {
	return Div("widget loading semka-0.1-loading", Spinner())
}

func (Loading) WidgetName() string {
	return LoadingTag
}

func loadingFactory() WidgetFactory {
	return NewFactory(func(context.Context, Path, DocManifest) (Widget, error) {
		return NewLoading(), nil
	}, LoadingTag)
}

// Failed is the stand-in Widget for a document that couldn't be loaded or
// rendered. It shows which document failed and why.
type Failed struct {
	Path Path
	Err  error
}

// NewFailed returns a Failed stand-in for the document at path.
func NewFailed(path Path, err error) Widget {
	return Failed{Path: path, Err: err}
}

func (f Failed) View(_ context.Context, _ Dependencies, _ *Site) *html.Node {
	return Div("widget failed",
		Element("h2", nil, Text("Error")),
		Div("", Text("Document: "+f.Path.String())),
		Element("pre", nil, Text(f.Err.Error())),
	)
}

func (Failed) WidgetName() string {
	return "failed"
}
