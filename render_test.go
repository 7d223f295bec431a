package semka_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impractical.co/semka"
)

func themedSite(t *testing.T) (*semka.Tree, *semka.Site) {
	t.Helper()

	ctx := context.Background()
	fsys := siteFS(map[string]string{
		"theme":  "stylesheet",
		"home":   "markdown",
		"footer": "markdown",
		"other":  "stylesheet",
	}, map[string]string{
		"docs/home/text.md":   "# Home\n\nMade with *care*.\n\n<include doc=\"footer\"></include>\n",
		"docs/footer/text.md": "footer",
	})
	tree := newTestTree(fsys)
	site := newTestSite()
	site.Manifest = semka.SiteManifest{
		IndexPage:  semka.MustParsePath("home"),
		MasterPage: semka.MustParsePath("theme"),
	}
	drain(ctx, tree, site, semka.SiteManifestChanged{})
	require.Equal(t, semka.StateReady, tree.State(semka.MustParsePath("footer")))
	return tree, site
}

func TestRender(t *testing.T) {
	t.Parallel()

	tree, site := themedSite(t)
	var buf bytes.Buffer
	semka.Render(context.Background(), &buf, tree, site)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"), out)
	assert.Contains(t, out, `<link rel="stylesheet" href="docs/theme/style.css"`)
	assert.Equal(t, 1, strings.Count(out, "docs/theme/style.css"))
	assert.Contains(t, out, "<title>theme/home</title>")
	assert.Contains(t, out, `data-doc-path="theme/home"`)
	assert.Contains(t, out, `data-widget-name="stylesheet"`)
	assert.Contains(t, out, "<h1>Home</h1>")
	assert.Contains(t, out, "footer")
}

func TestRenderCSSUsesBasePath(t *testing.T) {
	t.Parallel()

	tree, site := themedSite(t)
	site.BasePath = semka.MustParsePath("/site")
	var buf bytes.Buffer
	semka.Render(context.Background(), &buf, tree, site)
	assert.Contains(t, buf.String(), `href="/site/docs/theme/style.css"`)
}

type brokenWriter struct {
	bytes.Buffer
	failures int
	closed   bool
}

func (w *brokenWriter) Write(p []byte) (int, error) {
	if w.failures > 0 {
		w.failures--
		return 0, errors.New("broken pipe")
	}
	return w.Buffer.Write(p)
}

func (w *brokenWriter) Close() error {
	w.closed = true
	return nil
}

func TestRenderServerError(t *testing.T) {
	t.Parallel()

	tree, site := themedSite(t)
	out := &brokenWriter{failures: 1}
	semka.Render(context.Background(), out, tree, site)
	assert.Equal(t, "Server error.", out.String())
	assert.True(t, out.closed)
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	tree, site := themedSite(t)
	md, err := semka.RenderMarkdown(tree.View(context.Background(), site))
	require.NoError(t, err)
	assert.Contains(t, md, "# Home")
	assert.Contains(t, md, "care")
	assert.Contains(t, md, "footer")
}

func TestPageCSSLinksFollowDeclaredDependencies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tree, site := themedSite(t)

	// a stylesheet that's tracked but not reachable from the page
	other := semka.MustParsePath("other")
	drain(ctx, tree, site, tree.Ensure(ctx, site, other).Cmds[0].Run(ctx))
	require.Equal(t, semka.StateReady, tree.State(other))

	out := renderString(t, semka.Page(ctx, tree, site))
	assert.Equal(t, 1, strings.Count(out, `rel="stylesheet"`))
}
