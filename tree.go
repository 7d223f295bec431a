package semka

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
)

// State is the lifecycle state of a document in a Tree.
type State int

const (
	// StateUnseen means nothing has referenced the document yet.
	StateUnseen State = iota

	// StateLoading means the document's manifest has been requested and
	// a placeholder Widget occupies its slot.
	StateLoading

	// StateReady means the document's Widget has been built.
	StateReady

	// StateFailed means loading or running the document's Widget failed.
	// A Failed stand-in occupies its slot. It is terminal.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnseen:
		return "unseen"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type slot struct {
	path   Path
	state  State
	widget Widget
	err    error
}

type declared struct {
	path Path
	deps PathSet
}

// Tree is the document loader. It tracks the lifecycle of every document the
// current page needs, turns Widget Orders into commands for the host to run,
// and records which documents each Widget declared as dependencies.
//
// A Tree is not safe for concurrent use. The host must call Update and View
// from a single goroutine; only the Run functions of the returned Cmds may
// run elsewhere.
type Tree struct {
	fetcher  Fetcher
	slots    map[string]*slot
	deps     map[string]declared
	fullPath Path
}

// NewTree returns an empty Tree loading documents through fetcher.
func NewTree(fetcher Fetcher) *Tree {
	return &Tree{
		fetcher: fetcher,
		slots:   map[string]*slot{},
		deps:    map[string]declared{},
	}
}

// Update applies msg and returns what the host has to do next.
func (t *Tree) Update(ctx context.Context, site *Site, msg Msg) Effects {
	switch msg := msg.(type) {
	case PageChanged:
		logger(ctx).DebugContext(ctx, "page changed", slog.String("page", site.CurrentPage().String()))
		return t.EnsurePage(ctx, site)
	case SiteManifestChanged:
		logger(ctx).DebugContext(ctx, "site manifest changed",
			slog.String("index_page", site.Manifest.IndexPage.String()),
			slog.String("master_page", site.Manifest.MasterPage.String()))
		return t.EnsurePage(ctx, site)
	case DocManifestFetched:
		return t.manifestFetched(ctx, site, msg)
	case WidgetMessage:
		return t.widgetMessage(ctx, site, msg)
	case DependenciesChanged:
		docLogger(ctx, msg.Path).DebugContext(ctx, "dependencies changed")
		return Effects{}
	default:
		logger(ctx).WarnContext(ctx, "unexpected message", slog.String("type", fmt.Sprintf("%T", msg)))
		return Effects{}
	}
}

// EnsurePage makes sure the current page of site is loading or loaded and
// remembers it as the root of View.
func (t *Tree) EnsurePage(ctx context.Context, site *Site) Effects {
	t.fullPath = site.FullPath()
	return t.Ensure(ctx, site, t.fullPath)
}

// Ensure starts loading the document at path unless the Tree already tracks
// it. Requests for a document that is loading, ready, or failed are
// suppressed, so each document has at most one manifest fetch in flight.
func (t *Tree) Ensure(ctx context.Context, site *Site, path Path) Effects {
	if s, ok := t.slots[path.key()]; ok {
		docLogger(ctx, path).DebugContext(ctx, "document already tracked", slog.String("state", s.state.String()))
		return Effects{}
	}
	t.slots[path.key()] = &slot{
		path:   path,
		state:  StateLoading,
		widget: loadingWidget(ctx, site, path),
	}
	docLogger(ctx, path).DebugContext(ctx, "loading document")

	manifestPath, pathErr := DocManifestPath(site.Documents(), path)
	fetcher := t.fetcher
	return Effects{Cmds: []Cmd{{
		Kind:   CmdFetchManifest,
		Path:   path,
		Target: manifestPath,
		Run: func(ctx context.Context) Msg {
			if pathErr != nil {
				return DocManifestFetched{Path: path, Err: &FetchError{URL: path.String(), Kind: FetchRequest, Err: pathErr}}
			}
			var manifest DocManifest
			err := fetcher.FetchJSON(ctx, manifestPath, &manifest)
			return DocManifestFetched{Path: path, Manifest: manifest, Err: err}
		},
	}}}
}

func loadingWidget(ctx context.Context, site *Site, path Path) Widget {
	factory, err := site.registry().GetWidget(LoadingTag)
	if err != nil {
		return NewLoading()
	}
	widget, err := factory.Create(ctx, path, DocManifest{Widget: LoadingTag})
	if err != nil || widget == nil {
		return NewLoading()
	}
	return widget
}

func (t *Tree) manifestFetched(ctx context.Context, site *Site, msg DocManifestFetched) Effects {
	log := docLogger(ctx, msg.Path)
	s, ok := t.slots[msg.Path.key()]
	if !ok || s.state != StateLoading {
		log.WarnContext(ctx, "manifest for document that isn't loading")
		return Effects{}
	}
	if msg.Err != nil {
		return t.fail(ctx, msg.Path, msg.Err)
	}
	log.DebugContext(ctx, "document manifest fetched", slog.String("widget", msg.Manifest.Widget))
	widget, err := resolveWidget(ctx, site, msg.Path, msg.Manifest)
	if err != nil {
		return t.fail(ctx, msg.Path, err)
	}
	s.state = StateReady
	s.widget = widget

	var effects Effects
	if initializer, ok := widget.(Initializer); ok {
		orders, err := initializer.Init(ctx, msg.Path, site)
		if err != nil {
			return t.fail(ctx, msg.Path, err)
		}
		effects = t.perform(ctx, site, msg.Path, orders)
	}
	if t.State(msg.Path) != StateReady {
		return effects
	}
	if declarer, ok := widget.(DependencyDeclarer); ok {
		effects.merge(t.updateDependencies(ctx, site, msg.Path, NewPathSet(declarer.Dependencies(ctx)...)))
	}
	log.InfoContext(ctx, "document ready", slog.String("widget", msg.Manifest.Widget))
	// the placeholder was replaced, so there's always something to render
	effects.Skip = false
	return effects
}

func resolveWidget(ctx context.Context, site *Site, path Path, manifest DocManifest) (Widget, error) {
	factory, err := site.registry().GetWidget(manifest.Widget)
	if err != nil {
		return nil, err
	}
	widget, err := factory.Create(ctx, path, manifest)
	if err != nil {
		return nil, &WidgetError{Widget: manifest.Widget, Err: err}
	}
	if widget == nil {
		return nil, &WidgetError{Widget: manifest.Widget, Err: fmt.Errorf("factory for %q returned no widget", manifest.Widget)}
	}
	return widget, nil
}

func (t *Tree) widgetMessage(ctx context.Context, site *Site, msg WidgetMessage) Effects {
	log := docLogger(ctx, msg.Path)
	s, ok := t.slots[msg.Path.key()]
	if !ok {
		log.WarnContext(ctx, "message for unknown widget", slog.String("msg", fmt.Sprintf("%T", msg.Msg)))
		return Effects{}
	}
	if s.state != StateReady {
		log.DebugContext(ctx, "dropping message for widget that isn't ready", slog.String("state", s.state.String()))
		return Effects{}
	}
	updater, ok := s.widget.(Updater)
	if !ok {
		return Effects{}
	}
	orders, err := updater.Update(ctx, msg.Msg, site)
	if err != nil {
		return t.fail(ctx, msg.Path, err)
	}
	return t.perform(ctx, site, msg.Path, orders)
}

// perform turns the Orders of the Widget at path into Effects. Nothing is
// carried out for a document that isn't ready.
func (t *Tree) perform(ctx context.Context, site *Site, path Path, orders *Orders) Effects {
	var effects Effects
	root := site.Documents()
	fetcher := t.fetcher
	for _, cmd := range orders.Commands() {
		if t.State(path) != StateReady {
			break
		}
		switch cmd := cmd.(type) {
		case FetchTextCmd:
			target := DocFilePath(root, path, cmd.Path)
			effects.Cmds = append(effects.Cmds, Cmd{Kind: CmdFetchText, Path: path, Target: target, Run: func(ctx context.Context) Msg {
				text, err := fetcher.FetchText(ctx, target)
				return WidgetMessage{Path: path, Msg: FetchTextResult{Path: cmd.Path, Text: text, Err: err}}
			}})
		case FetchJSONCmd:
			target := DocFilePath(root, path, cmd.Path)
			effects.Cmds = append(effects.Cmds, Cmd{Kind: CmdFetchJSON, Path: path, Target: target, Run: func(ctx context.Context) Msg {
				var value any
				err := fetcher.FetchJSON(ctx, target, &value)
				return WidgetMessage{Path: path, Msg: FetchJSONResult{Path: cmd.Path, Value: value, Err: err}}
			}})
		case FetchBytesCmd:
			target := DocFilePath(root, path, cmd.Path)
			effects.Cmds = append(effects.Cmds, Cmd{Kind: CmdFetchBytes, Path: path, Target: target, Run: func(ctx context.Context) Msg {
				data, err := fetcher.FetchBytes(ctx, target)
				return WidgetMessage{Path: path, Msg: FetchBytesResult{Path: cmd.Path, Data: data, Err: err}}
			}})
		case PerformCmd:
			effects.Cmds = append(effects.Cmds, Cmd{Kind: CmdPerform, Path: path, Run: func(ctx context.Context) Msg {
				return WidgetMessage{Path: path, Msg: CmdResult{Value: cmd.Run(ctx)}}
			}})
		case UpdateDependenciesCmd:
			effects.merge(t.updateDependencies(ctx, site, path, cmd.Paths))
		case SkipCmd:
			effects.Skip = true
		default:
			docLogger(ctx, path).WarnContext(ctx, "unexpected widget command", slog.String("type", fmt.Sprintf("%T", cmd)))
		}
	}
	return effects
}

// updateDependencies replaces the declared dependencies of path. When the set
// changed, every newly referenced document starts loading and a
// DependenciesChanged message is emitted. An unchanged set is a no-op.
func (t *Tree) updateDependencies(ctx context.Context, site *Site, path Path, deps PathSet) Effects {
	if prev, ok := t.deps[path.key()]; ok && prev.deps.Equal(deps) {
		return Effects{}
	}
	t.deps[path.key()] = declared{path: path, deps: deps}
	docLogger(ctx, path).DebugContext(ctx, "dependencies updated", slog.String("deps", deps.String()))

	var effects Effects
	for _, dep := range deps.Paths() {
		effects.merge(t.Ensure(ctx, site, dep))
	}
	effects.Msgs = append(effects.Msgs, DependenciesChanged{Path: path})
	return effects
}

// fail installs a Failed stand-in for path and forgets its dependencies.
func (t *Tree) fail(ctx context.Context, path Path, err error) Effects {
	docLogger(ctx, path).ErrorContext(ctx, "document failed", slog.Any("error", err))
	delete(t.deps, path.key())
	t.slots[path.key()] = &slot{
		path:   path,
		state:  StateFailed,
		widget: NewFailed(path, err),
		err:    err,
	}
	return Effects{}
}

// FullPath returns the document path of the page View renders, as of the
// last PageChanged, SiteManifestChanged, or EnsurePage.
func (t *Tree) FullPath() Path {
	return t.fullPath
}

// State returns the lifecycle state of the document at path.
func (t *Tree) State(path Path) State {
	s, ok := t.slots[path.key()]
	if !ok {
		return StateUnseen
	}
	return s.state
}

// Err returns why the document at path failed, or nil if it hasn't.
func (t *Tree) Err(path Path) error {
	s, ok := t.slots[path.key()]
	if !ok {
		return nil
	}
	return s.err
}

// Widget returns the Widget occupying the slot of the document at path: the
// placeholder while loading, the real Widget once ready, or the Failed
// stand-in.
func (t *Tree) Widget(path Path) (Widget, bool) {
	s, ok := t.slots[path.key()]
	if !ok {
		return nil, false
	}
	return s.widget, true
}

// Dependencies returns the dependencies declared by the document at path.
func (t *Tree) Dependencies(path Path) (PathSet, bool) {
	d, ok := t.deps[path.key()]
	return d.deps, ok
}

// Paths returns every tracked document, in Path.Compare order.
func (t *Tree) Paths() []Path {
	paths := make([]Path, 0, len(t.slots))
	for _, s := range t.slots {
		paths = append(paths, s.path)
	}
	slices.SortFunc(paths, Path.Compare)
	return paths
}

func (t *Tree) declares(caller, path Path) bool {
	d, ok := t.deps[caller.key()]
	return ok && d.deps.Contains(path)
}
