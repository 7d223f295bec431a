package semka

import "context"

// Orders is the queue of commands a Widget returns from Init or Update. The
// Tree carries the commands out in queue order; fetches and PerformCmd
// operations run asynchronously and their results come back through the
// Widget's Update method, in whatever order they finish.
//
// The methods return the Orders so calls can be chained:
//
//	return semka.NewOrders().FetchText(semka.MustParsePath("text.md")), nil
type Orders struct {
	cmds []WidgetCmd
}

// NewOrders returns an empty queue.
func NewOrders() *Orders {
	return &Orders{}
}

// FetchText queues a text fetch of path, relative to the Widget's document
// directory. The result arrives as a FetchTextResult.
func (o *Orders) FetchText(path Path) *Orders {
	return o.push(FetchTextCmd{Path: path})
}

// FetchJSON queues a JSON fetch of path, relative to the Widget's document
// directory. The result arrives as a FetchJSONResult.
func (o *Orders) FetchJSON(path Path) *Orders {
	return o.push(FetchJSONCmd{Path: path})
}

// FetchBytes queues a binary fetch of path, relative to the Widget's
// document directory. The result arrives as a FetchBytesResult.
func (o *Orders) FetchBytes(path Path) *Orders {
	return o.push(FetchBytesCmd{Path: path})
}

// PerformCmd queues an arbitrary asynchronous operation. Whatever run returns
// arrives as a CmdResult.
func (o *Orders) PerformCmd(run func(ctx context.Context) any) *Orders {
	return o.push(PerformCmd{Run: run})
}

// UpdateDependencies queues a replacement of the Widget's declared
// dependencies with paths.
func (o *Orders) UpdateDependencies(paths ...Path) *Orders {
	return o.push(UpdateDependenciesCmd{Paths: NewPathSet(paths...)})
}

// Skip queues a marker saying the Widget's state changed but nothing visible
// did, so there's no need to render again.
func (o *Orders) Skip() *Orders {
	return o.push(SkipCmd{})
}

// Commands returns the queued commands in order. It's safe to call on a nil
// *Orders.
func (o *Orders) Commands() []WidgetCmd {
	if o == nil {
		return nil
	}
	return o.cmds
}

func (o *Orders) push(cmd WidgetCmd) *Orders {
	o.cmds = append(o.cmds, cmd)
	return o
}

// WidgetCmd is a single command in an Orders queue.
type WidgetCmd interface {
	widgetCmd()
}

// FetchTextCmd fetches Path as text.
type FetchTextCmd struct {
	Path Path
}

// FetchJSONCmd fetches Path and decodes it as JSON.
type FetchJSONCmd struct {
	Path Path
}

// FetchBytesCmd fetches Path as raw bytes.
type FetchBytesCmd struct {
	Path Path
}

// PerformCmd runs an arbitrary asynchronous operation.
type PerformCmd struct {
	Run func(ctx context.Context) any
}

// UpdateDependenciesCmd replaces the declared dependencies of the Widget's
// document.
type UpdateDependenciesCmd struct {
	Paths PathSet
}

// SkipCmd marks a state change with no visible effect.
type SkipCmd struct{}

func (FetchTextCmd) widgetCmd()          {}
func (FetchJSONCmd) widgetCmd()          {}
func (FetchBytesCmd) widgetCmd()         {}
func (PerformCmd) widgetCmd()            {}
func (UpdateDependenciesCmd) widgetCmd() {}
func (SkipCmd) widgetCmd()               {}
