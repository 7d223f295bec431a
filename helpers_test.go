package semka_test

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"impractical.co/semka"
	"impractical.co/semka/fetch"
)

// testWidget renders its text, declares deps, and renders each of views
// through the Dependencies it's handed.
type testWidget struct {
	text  string
	deps  []semka.Path
	views []semka.Path
	calls int
}

func (w *testWidget) Dependencies(_ context.Context) []semka.Path {
	return w.deps
}

func (w *testWidget) View(ctx context.Context, deps semka.Dependencies, _ *semka.Site) *html.Node {
	w.calls++
	node := semka.Div("test", semka.Text(w.text))
	for _, path := range w.views {
		node.AppendChild(deps.View(ctx, path))
	}
	return node
}

func (*testWidget) WidgetName() string {
	return "test"
}

// testFactory builds the testWidget registered for each document path.
func testFactory(widgets map[string]*testWidget) semka.WidgetFactory {
	return semka.NewFactory(func(_ context.Context, path semka.Path, _ semka.DocManifest) (semka.Widget, error) {
		widget, ok := widgets[path.String()]
		if !ok {
			return nil, fmt.Errorf("no test widget for %q", path)
		}
		return widget, nil
	}, "test")
}

// siteFS builds a site directory where every document in docs is handled by
// the widget tag it maps to. Extra files are added as-is.
func siteFS(docs map[string]string, files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, tag := range docs {
		fsys["docs/"+name+"/manifest.json"] = &fstest.MapFile{
			Data: []byte(fmt.Sprintf(`{"widget": %q}`, tag)),
			Mode: 0644,
		}
	}
	for name, contents := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(contents), Mode: 0644}
	}
	return fsys
}

// drain dispatches msgs into tree and runs every resulting command inline
// until there's nothing left to do. Follow-up messages are handled before
// command results, the way a host must.
func drain(ctx context.Context, tree *semka.Tree, site *semka.Site, msgs ...semka.Msg) {
	queue := msgs
	for len(queue) > 0 {
		msg := queue[0]
		queue = queue[1:]
		effects := tree.Update(ctx, site, msg)
		queue = append(queue, effects.Msgs...)
		for _, cmd := range effects.Cmds {
			queue = append(queue, cmd.Run(ctx))
		}
	}
}

func newTestTree(fsys fstest.MapFS) *semka.Tree {
	return semka.NewTree(fetch.NewFS(fsys))
}

func renderString(t *testing.T, node *html.Node) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, html.Render(&buf, node))
	return buf.String()
}

func textContent(node *html.Node) string {
	var sb strings.Builder
	semka.Walk(node, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		return true
	})
	return sb.String()
}
