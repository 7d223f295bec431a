package semka

import "context"

// Msg is an event the host dispatches into Tree.Update.
type Msg interface {
	msg()
}

// PageChanged tells the Tree the host changed Site.PagePath.
type PageChanged struct{}

// SiteManifestChanged tells the Tree the host changed Site.Manifest.
type SiteManifestChanged struct{}

// DocManifestFetched carries the result of fetching the manifest of the
// document at Path.
type DocManifestFetched struct {
	Path     Path
	Manifest DocManifest
	Err      error
}

// WidgetMessage carries a result for the Widget of the document at Path.
type WidgetMessage struct {
	Path Path
	Msg  WidgetMsg
}

// DependenciesChanged is emitted by the Tree after the declared dependencies
// of the document at Path changed.
type DependenciesChanged struct {
	Path Path
}

func (PageChanged) msg()         {}
func (SiteManifestChanged) msg() {}
func (DocManifestFetched) msg()  {}
func (WidgetMessage) msg()       {}
func (DependenciesChanged) msg() {}

// Command kinds, as reported by Cmd.Kind.
const (
	CmdFetchManifest = "fetch_manifest"
	CmdFetchText     = "fetch_text"
	CmdFetchJSON     = "fetch_json"
	CmdFetchBytes    = "fetch_bytes"
	CmdPerform       = "perform"
)

// Cmd is an asynchronous operation the host must run. Run may block; its
// returned Msg must be dispatched back into Tree.Update on the update
// goroutine.
type Cmd struct {
	// Kind is one of the Cmd* constants.
	Kind string

	// Path is the document the command is for.
	Path Path

	// Target is the resource being fetched, if any.
	Target Path

	Run func(ctx context.Context) Msg
}

// Effects is what the host has to do after a call to Tree.Update.
type Effects struct {
	// Cmds are asynchronous operations to run.
	Cmds []Cmd

	// Msgs must be dispatched into Tree.Update after the current call
	// returns, before any Cmd result.
	Msgs []Msg

	// Skip means the update changed state without changing anything
	// visible, so the host doesn't need to render again.
	Skip bool
}

func (e *Effects) merge(other Effects) {
	e.Cmds = append(e.Cmds, other.Cmds...)
	e.Msgs = append(e.Msgs, other.Msgs...)
	e.Skip = e.Skip || other.Skip
}
