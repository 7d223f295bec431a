package semka

import (
	"context"
	"slices"

	"golang.org/x/net/html"
)

// Widget is the runtime object rendering one document. The only thing every
// Widget must do is render itself; everything else is an optional interface
// the Tree checks for.
//
// A Widget only holds state for its own document. Other documents it wants
// to show are declared as dependencies and rendered through the passed
// Dependencies.
type Widget interface {
	// View renders the widget. It must not block and must not start any
	// I/O; anything asynchronous belongs in Orders.
	View(ctx context.Context, deps Dependencies, site *Site) *html.Node
}

// Initializer is an optional interface for Widgets that want to do work once
// they've been created, typically fetching their content.
type Initializer interface {
	// Init is called once, right after the Widget is installed for path.
	// A nil *Orders means there's nothing to do. An error fails the
	// document.
	Init(ctx context.Context, path Path, site *Site) (*Orders, error)
}

// Updater is an optional interface for Widgets that issue Orders and want the
// results delivered back to them.
type Updater interface {
	// Update receives the result of a command the Widget ordered. A nil
	// *Orders means there's nothing to do. An error fails the document.
	Update(ctx context.Context, msg WidgetMsg, site *Site) (*Orders, error)
}

// DependencyDeclarer is an optional interface for Widgets whose dependencies
// are known as soon as they're initialized. The returned paths are recorded
// after Init returns, exactly as if Init had ordered UpdateDependencies.
type DependencyDeclarer interface {
	Dependencies(ctx context.Context) []Path
}

// Namer is an optional interface for Widgets that want their type name
// rendered as the data-widget-name attribute.
type Namer interface {
	WidgetName() string
}

// Classer is an optional interface for Widgets that want extra classes added
// to their rendered root node.
type Classer interface {
	Classes() []string
}

// WidgetFactory builds Widgets for the widget tags it can handle.
type WidgetFactory interface {
	// CanHandle reports whether the factory builds widgets for tag.
	CanHandle(tag string) bool

	// Create builds a Widget for the document at path.
	Create(ctx context.Context, path Path, manifest DocManifest) (Widget, error)
}

type funcFactory struct {
	tags   []string
	create func(ctx context.Context, path Path, manifest DocManifest) (Widget, error)
}

// NewFactory returns a WidgetFactory handling tags by calling create.
func NewFactory(create func(ctx context.Context, path Path, manifest DocManifest) (Widget, error), tags ...string) WidgetFactory {
	return funcFactory{tags: tags, create: create}
}

func (f funcFactory) CanHandle(tag string) bool {
	return slices.Contains(f.tags, tag)
}

func (f funcFactory) Create(ctx context.Context, path Path, manifest DocManifest) (Widget, error) {
	return f.create(ctx, path, manifest)
}

// WidgetMsg is the result of a command a Widget ordered, delivered to its
// Update method.
type WidgetMsg interface {
	widgetMsg()
}

// FetchTextResult carries the result of a FetchText order. Path is the path
// the Widget ordered, relative to its document.
type FetchTextResult struct {
	Path Path
	Text string
	Err  error
}

// FetchJSONResult carries the result of a FetchJSON order, decoded into
// generic JSON values.
type FetchJSONResult struct {
	Path  Path
	Value any
	Err   error
}

// FetchBytesResult carries the result of a FetchBytes order.
type FetchBytesResult struct {
	Path Path
	Data []byte
	Err  error
}

// CmdResult carries whatever a PerformCmd order's operation returned.
type CmdResult struct {
	Value any
}

func (FetchTextResult) widgetMsg()  {}
func (FetchJSONResult) widgetMsg()  {}
func (FetchBytesResult) widgetMsg() {}
func (CmdResult) widgetMsg()        {}
