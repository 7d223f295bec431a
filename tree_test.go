package semka_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impractical.co/semka"
	"impractical.co/semka/widgets"
)

func newTestSite(factories ...semka.WidgetFactory) *semka.Site {
	registry := semka.NewRegistry().
		AddWidget(widgets.MarkdownFactory()).
		AddWidget(widgets.StylesheetFactory())
	for _, factory := range factories {
		registry.AddWidget(factory)
	}
	return &semka.Site{Registry: registry}
}

func TestTreeSuppressesDuplicateLoads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree := newTestTree(siteFS(map[string]string{"home": "markdown"}, nil))
	site := newTestSite()
	home := semka.MustParsePath("home")

	first := tree.Ensure(ctx, site, home)
	require.Len(t, first.Cmds, 1)
	assert.Equal(t, semka.CmdFetchManifest, first.Cmds[0].Kind)
	assert.Equal(t, "docs/home/manifest.json", first.Cmds[0].Target.String())
	assert.Equal(t, semka.StateLoading, tree.State(home))

	widget, ok := tree.Widget(home)
	require.True(t, ok)
	assert.IsType(t, semka.Loading{}, widget)

	second := tree.Ensure(ctx, site, home)
	assert.Empty(t, second.Cmds)
	assert.Equal(t, semka.StateLoading, tree.State(home))
}

func TestTreeTracksPathsBySegments(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree := newTestTree(siteFS(nil, nil))
	site := newTestSite()
	split := semka.NewPath().Add("a").Add("b")
	joined := semka.NewPath().Add("a\x00b")

	require.Len(t, tree.Ensure(ctx, site, split).Cmds, 1)
	require.Len(t, tree.Ensure(ctx, site, joined).Cmds, 1)
	assert.Len(t, tree.Paths(), 2)
	assert.Equal(t, semka.StateLoading, tree.State(joined))
}

func TestTreeMissingDocumentFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree := newTestTree(siteFS(nil, nil))
	site := newTestSite()
	site.PagePath = semka.MustParsePath("missing")

	drain(ctx, tree, site, semka.PageChanged{})

	missing := semka.MustParsePath("missing")
	assert.Equal(t, semka.StateFailed, tree.State(missing))
	assert.ErrorIs(t, tree.Err(missing), semka.ErrNotFound)

	var fetchErr *semka.FetchError
	require.True(t, errors.As(tree.Err(missing), &fetchErr))
	assert.True(t, fetchErr.IsNotFound())

	text := textContent(tree.View(ctx, site))
	assert.Contains(t, text, "Error")
	assert.Contains(t, text, "Document: missing")
}

func TestTreeMissingIncludeRendersInPlace(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := siteFS(map[string]string{
		"home":   "markdown",
		"footer": "markdown",
	}, map[string]string{
		"docs/home/text.md": "Top\n\n<include doc=\"footer\"></include>\n\nMiddle\n\n" +
			"<include doc=\"missing\"></include>\n\nBottom\n",
		"docs/footer/text.md": "Footer text",
	})
	tree := newTestTree(fsys)
	site := newTestSite()
	site.PagePath = semka.MustParsePath("home")

	drain(ctx, tree, site, semka.PageChanged{})

	home, footer, missing := semka.MustParsePath("home"), semka.MustParsePath("footer"), semka.MustParsePath("missing")
	assert.Equal(t, semka.StateReady, tree.State(home))
	assert.Equal(t, semka.StateReady, tree.State(footer))
	assert.Equal(t, semka.StateFailed, tree.State(missing))
	assert.ErrorIs(t, tree.Err(missing), semka.ErrNotFound)

	text := textContent(tree.View(ctx, site))
	for _, want := range []string{"Top", "Footer text", "Middle", "Document: missing", "Bottom"} {
		assert.Contains(t, text, want)
	}
	assert.Less(t, strings.Index(text, "Middle"), strings.Index(text, "Document: missing"))
	assert.Less(t, strings.Index(text, "Document: missing"), strings.Index(text, "Bottom"))
	assert.Contains(t, text, "docs/missing/manifest.json")

	out := renderString(t, tree.View(ctx, site))
	assert.Contains(t, out, `data-doc-path="missing"`)
	assert.NotContains(t, out, "<include")
}

func TestTreeUnknownWidgetFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree := newTestTree(siteFS(map[string]string{"home": "nope"}, nil))
	site := newTestSite()
	home := semka.MustParsePath("home")

	drain(ctx, tree, site, semka.PageChanged{})

	assert.Equal(t, semka.StateFailed, tree.State(home))
	require.ErrorIs(t, tree.Err(home), semka.ErrUnknownWidget)
	var widgetErr *semka.WidgetError
	require.True(t, errors.As(tree.Err(home), &widgetErr))
	assert.Equal(t, "nope", widgetErr.Widget)
}

func TestTreeEmptyDocumentName(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree := newTestTree(siteFS(nil, nil))
	site := newTestSite()

	effects := tree.Ensure(ctx, site, semka.NewPath())
	require.Len(t, effects.Cmds, 1)
	msg := effects.Cmds[0].Run(ctx)
	fetched, ok := msg.(semka.DocManifestFetched)
	require.True(t, ok)
	assert.ErrorIs(t, fetched.Err, semka.ErrEmptyDocumentName)

	var fetchErr *semka.FetchError
	require.True(t, errors.As(fetched.Err, &fetchErr))
	assert.Equal(t, semka.FetchRequest, fetchErr.Kind)
}

func TestTreeMarkdownIncludes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := siteFS(map[string]string{
		"home":   "markdown",
		"footer": "semka-0.1-markdown",
	}, map[string]string{
		"docs/home/text.md":   "# Home\n\nWelcome.\n\n<include doc=\"footer\"></include>\n",
		"docs/footer/text.md": "Made with *care*.",
	})
	tree := newTestTree(fsys)
	site := newTestSite()
	site.Manifest = semka.SiteManifest{IndexPage: semka.MustParsePath("home")}

	drain(ctx, tree, site, semka.SiteManifestChanged{})

	home, footer := semka.MustParsePath("home"), semka.MustParsePath("footer")
	assert.Equal(t, "home", tree.FullPath().String())
	assert.Equal(t, semka.StateReady, tree.State(home))
	assert.Equal(t, semka.StateReady, tree.State(footer))

	deps, ok := tree.Dependencies(home)
	require.True(t, ok)
	assert.True(t, deps.Equal(semka.NewPathSet(footer)))

	out := renderString(t, tree.View(ctx, site))
	assert.Contains(t, out, "<h1>Home</h1>")
	assert.Contains(t, out, `data-doc-path="footer"`)
	assert.Contains(t, out, `data-widget-name="markdown"`)
	assert.Contains(t, out, "<em>care</em>")
	assert.NotContains(t, out, "<include")
}

func TestTreeMarkdownTextMissing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree := newTestTree(siteFS(map[string]string{"home": "markdown"}, nil))
	site := newTestSite()

	drain(ctx, tree, site, semka.PageChanged{})

	home := semka.MustParsePath("home")
	assert.Equal(t, semka.StateFailed, tree.State(home))
	assert.ErrorIs(t, tree.Err(home), semka.ErrNotFound)
}

func TestTreeMasterPage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := siteFS(map[string]string{
		"theme": "stylesheet",
		"home":  "markdown",
	}, map[string]string{
		"docs/home/text.md": "hello",
	})
	tree := newTestTree(fsys)
	site := newTestSite()
	site.Manifest = semka.SiteManifest{MasterPage: semka.MustParsePath("theme")}
	site.PagePath = semka.MustParsePath("home")

	drain(ctx, tree, site, semka.PageChanged{})

	full := semka.MustParsePath("theme/home")
	assert.True(t, tree.FullPath().Equal(full))
	assert.Equal(t, semka.StateReady, tree.State(full))
	assert.Equal(t, semka.StateReady, tree.State(semka.MustParsePath("home")))

	deps, ok := tree.Dependencies(full)
	require.True(t, ok)
	assert.True(t, deps.Equal(semka.NewPathSet(semka.MustParsePath("home"))))
	assert.Contains(t, textContent(tree.View(ctx, site)), "hello")
}

// orderingWidget declares its dependencies through Orders, and declares
// the same ones again on every update. When skip is set, updates are also
// marked as invisible.
type orderingWidget struct {
	testWidget
	skip bool
}

func (w *orderingWidget) Init(_ context.Context, _ semka.Path, _ *semka.Site) (*semka.Orders, error) {
	return semka.NewOrders().UpdateDependencies(w.deps...), nil
}

func (w *orderingWidget) Update(_ context.Context, _ semka.WidgetMsg, _ *semka.Site) (*semka.Orders, error) {
	orders := semka.NewOrders().UpdateDependencies(w.deps...)
	if w.skip {
		orders.Skip()
	}
	return orders, nil
}

func TestTreeUnchangedDependenciesAreNoOp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	page := semka.MustParsePath("page")
	widget := &orderingWidget{testWidget: testWidget{deps: []semka.Path{semka.MustParsePath("other")}}}
	factory := semka.NewFactory(func(context.Context, semka.Path, semka.DocManifest) (semka.Widget, error) {
		return widget, nil
	}, "ordering")
	tree := newTestTree(siteFS(map[string]string{"page": "ordering"}, nil))
	site := newTestSite(factory)

	effects := tree.Ensure(ctx, site, page)
	require.Len(t, effects.Cmds, 1)
	effects = tree.Update(ctx, site, effects.Cmds[0].Run(ctx))
	assert.False(t, effects.Skip)
	require.Len(t, effects.Cmds, 1, "the new dependency should start loading")
	assert.Equal(t, semka.CmdFetchManifest, effects.Cmds[0].Kind)
	assert.Equal(t, []semka.Msg{semka.DependenciesChanged{Path: page}}, effects.Msgs)

	effects = tree.Update(ctx, site, semka.WidgetMessage{Path: page, Msg: semka.CmdResult{}})
	assert.False(t, effects.Skip, "redeclaring the same dependencies must not hide the update")
	assert.Empty(t, effects.Cmds)
	assert.Empty(t, effects.Msgs)

	widget.skip = true
	effects = tree.Update(ctx, site, semka.WidgetMessage{Path: page, Msg: semka.CmdResult{}})
	assert.True(t, effects.Skip)
	assert.Empty(t, effects.Cmds)
	assert.Empty(t, effects.Msgs)
}

func TestTreeUpdateWithSameIncludesRendersAgain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := siteFS(map[string]string{
		"home":   "markdown",
		"footer": "markdown",
	}, map[string]string{
		"docs/home/text.md":   "v1 <include doc=\"footer\"></include>",
		"docs/footer/text.md": "f",
	})
	tree := newTestTree(fsys)
	site := newTestSite()
	site.PagePath = semka.MustParsePath("home")
	home := semka.MustParsePath("home")

	drain(ctx, tree, site, semka.PageChanged{})
	require.Equal(t, semka.StateReady, tree.State(home))
	assert.Contains(t, textContent(tree.View(ctx, site)), "v1")

	effects := tree.Update(ctx, site, semka.WidgetMessage{Path: home, Msg: semka.FetchTextResult{
		Path: semka.MustParsePath("text.md"),
		Text: "v2 <include doc=\"footer\"></include>",
	}})
	assert.False(t, effects.Skip)
	assert.Empty(t, effects.Msgs)

	text := textContent(tree.View(ctx, site))
	assert.Contains(t, text, "v2")
	assert.Contains(t, text, "f")
}

func TestTreeIgnoresMessagesForDocumentsNotReady(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree := newTestTree(siteFS(map[string]string{"home": "markdown"}, nil))
	site := newTestSite()
	home := semka.MustParsePath("home")

	tree.Ensure(ctx, site, home)
	effects := tree.Update(ctx, site, semka.WidgetMessage{Path: home, Msg: semka.FetchTextResult{Text: "early"}})
	assert.Empty(t, effects.Cmds)
	assert.Equal(t, semka.StateLoading, tree.State(home))

	effects = tree.Update(ctx, site, semka.WidgetMessage{Path: semka.MustParsePath("nobody"), Msg: semka.CmdResult{}})
	assert.Empty(t, effects.Cmds)
	assert.Equal(t, semka.StateUnseen, tree.State(semka.MustParsePath("nobody")))
}

func TestTreeIgnoresManifestForReadyDocument(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := siteFS(map[string]string{"home": "markdown"}, map[string]string{"docs/home/text.md": "hi"})
	tree := newTestTree(fsys)
	site := newTestSite()
	home := semka.MustParsePath("home")

	drain(ctx, tree, site, semka.PageChanged{})
	require.Equal(t, semka.StateReady, tree.State(home))

	tree.Update(ctx, site, semka.DocManifestFetched{Path: home, Err: errors.New("late failure")})
	assert.Equal(t, semka.StateReady, tree.State(home))
	assert.NoError(t, tree.Err(home))
}

func TestTreeFailedIsTerminal(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree := newTestTree(siteFS(nil, nil))
	site := newTestSite()
	index := semka.MustParsePath(semka.DefaultIndexPage)

	drain(ctx, tree, site, semka.PageChanged{})
	require.Equal(t, semka.StateFailed, tree.State(index))

	effects := tree.Update(ctx, site, semka.PageChanged{})
	assert.Empty(t, effects.Cmds)
	effects = tree.Ensure(ctx, site, index)
	assert.Empty(t, effects.Cmds)
	assert.Equal(t, semka.StateFailed, tree.State(index))
}

func TestTreeCustomLoadingWidget(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	loading := semka.NewFactory(func(context.Context, semka.Path, semka.DocManifest) (semka.Widget, error) {
		return &testWidget{text: "custom loading"}, nil
	}, semka.LoadingTag)
	tree := newTestTree(siteFS(nil, nil))
	site := newTestSite(loading)

	tree.EnsurePage(ctx, site)
	assert.Equal(t, "index", tree.FullPath().String())
	assert.Contains(t, textContent(tree.View(ctx, site)), "custom loading")
}

func TestTreeOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	docs := map[string]*testWidget{
		"a": {deps: []semka.Path{semka.MustParsePath("b"), semka.MustParsePath("c")}},
		"b": {deps: []semka.Path{semka.MustParsePath("c")}},
		"c": {},
	}
	tree := newTestTree(siteFS(map[string]string{"a": "test", "b": "test", "c": "test"}, nil))
	site := newTestSite(testFactory(docs))
	site.PagePath = semka.MustParsePath("a")

	drain(ctx, tree, site, semka.PageChanged{})

	order, err := tree.Order()
	require.NoError(t, err)
	var got []string
	for _, p := range order {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{"c", "b", "a"}, got)
}

func TestTreeOrderCycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	docs := map[string]*testWidget{
		"a": {deps: []semka.Path{semka.MustParsePath("b")}},
		"b": {deps: []semka.Path{semka.MustParsePath("a")}},
		"c": {},
	}
	tree := newTestTree(siteFS(map[string]string{"a": "test", "b": "test", "c": "test"}, nil))
	site := newTestSite(testFactory(docs))
	site.PagePath = semka.MustParsePath("a")

	drain(ctx, tree, site, semka.PageChanged{})
	drain(ctx, tree, site, tree.Ensure(ctx, site, semka.MustParsePath("c")).Cmds[0].Run(ctx))

	order, err := tree.Order()
	require.ErrorIs(t, err, semka.ErrDependencyCycle)
	assert.Contains(t, err.Error(), "a->b")
	require.Len(t, order, 1)
	assert.Equal(t, "c", order[0].String())
}
