package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"impractical.co/semka"
)

// DefaultConcurrency is how many commands a Loop runs at once when no
// WithConcurrency option is passed.
const DefaultConcurrency = 8

const tracerName = "impractical.co/semka/host"

// Loop is a host event loop. It owns a Tree and the Site it's rendered for,
// calls Tree.Update from a single goroutine, and runs the Cmds the Tree
// returns on a bounded pool of goroutines, posting their results back.
type Loop struct {
	tree        *semka.Tree
	site        *semka.Site
	fetcher     semka.Fetcher
	concurrency int
	tracer      trace.Tracer
	onRender    func(context.Context, *semka.Tree, *semka.Site)

	queued         []semka.Msg
	manifestLoaded bool
}

// Option configures a Loop.
type Option func(*Loop)

// WithConcurrency bounds how many commands run at once.
func WithConcurrency(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithTracerProvider sets where command spans are sent. The default is the
// global provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(l *Loop) {
		l.tracer = provider.Tracer(tracerName)
	}
}

// WithRenderFunc sets a function called after every update that changed
// something visible.
func WithRenderFunc(fn func(context.Context, *semka.Tree, *semka.Site)) Option {
	return func(l *Loop) {
		l.onRender = fn
	}
}

// New returns a Loop rendering site, loading documents through fetcher.
func New(site *semka.Site, fetcher semka.Fetcher, opts ...Option) *Loop {
	l := &Loop{
		tree:        semka.NewTree(fetcher),
		site:        site,
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Tree returns the Tree the Loop drives. It must not be used while
// RunUntilIdle is running.
func (l *Loop) Tree() *semka.Tree {
	return l.tree
}

// Site returns the Site the Loop renders.
func (l *Loop) Site() *semka.Site {
	return l.site
}

// Navigate switches the Site to page. The Tree hears about it on the next
// call to RunUntilIdle.
func (l *Loop) Navigate(page semka.Path) {
	l.site.PagePath = page
	l.queued = append(l.queued, semka.PageChanged{})
}

// RunUntilIdle processes messages until no command is outstanding. The first
// call fetches the site manifest before anything else; a missing site
// manifest leaves the defaults in place.
//
// If ctx is canceled, RunUntilIdle waits for running commands to return and
// returns ctx.Err(). Commands that were still queued never run.
func (l *Loop) RunUntilIdle(ctx context.Context) error {
	if !l.manifestLoaded {
		if err := l.loadSiteManifest(ctx); err != nil {
			return err
		}
		l.manifestLoaded = true
		l.queued = append(l.queued, semka.SiteManifestChanged{})
	}

	var g errgroup.Group
	g.SetLimit(l.concurrency)
	results := make(chan semka.Msg)

	msgs := l.queued
	l.queued = nil
	var pending []semka.Cmd
	var outstanding int
	for {
		for len(msgs) > 0 {
			msg := msgs[0]
			msgs = msgs[1:]
			effects := l.update(ctx, msg)
			msgs = append(msgs, effects.Msgs...)
			pending = append(pending, effects.Cmds...)
		}
		// every command counted as finished has already sent its
		// result, so g.Go only ever waits for it to return
		for len(pending) > 0 && outstanding < l.concurrency {
			cmd := pending[0]
			pending = pending[1:]
			outstanding++
			g.Go(func() error {
				results <- l.run(ctx, cmd)
				return nil
			})
		}
		if outstanding == 0 {
			break
		}
		select {
		case msg := <-results:
			outstanding--
			msgs = append(msgs, msg)
		case <-ctx.Done():
			done := make(chan struct{})
			go func() {
				_ = g.Wait()
				close(done)
			}()
			for {
				select {
				case <-results:
				case <-done:
					return ctx.Err()
				}
			}
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (l *Loop) loadSiteManifest(ctx context.Context) error {
	manifest, err := semka.FetchJSONAs[semka.SiteManifest](ctx, l.fetcher, semka.NewPath().Add(semka.SiteManifestFile))
	if errors.Is(err, semka.ErrNotFound) {
		semka.Logger(ctx).WarnContext(ctx, "no site manifest, using defaults", slog.Any("error", err))
		return nil
	}
	if err != nil {
		return fmt.Errorf("error loading site manifest: %w", err)
	}
	l.site.Manifest = manifest
	return nil
}

func (l *Loop) update(ctx context.Context, msg semka.Msg) semka.Effects {
	path, tracked := msgPath(msg)
	var before semka.State
	if tracked {
		before = l.tree.State(path)
	}
	effects := l.tree.Update(ctx, l.site, msg)
	if tracked {
		if after := l.tree.State(path); after != before {
			recordTransition(after.String())
		}
	}
	for _, cmd := range effects.Cmds {
		if cmd.Kind == semka.CmdFetchManifest {
			recordTransition(semka.StateLoading.String())
		}
	}
	if !effects.Skip && l.onRender != nil {
		l.onRender(ctx, l.tree, l.site)
	}
	return effects
}

func (l *Loop) run(ctx context.Context, cmd semka.Cmd) semka.Msg {
	ctx, span := l.tracer.Start(ctx, "semka."+cmd.Kind, trace.WithAttributes(
		attribute.String("semka.doc_path", cmd.Path.String()),
		attribute.String("semka.target", cmd.Target.String()),
	))
	defer span.End()

	start := time.Now()
	msg := cmd.Run(ctx)
	outcome := "ok"
	if err := msgErr(msg); err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		semka.Logger(ctx).DebugContext(ctx, "command failed",
			slog.String("kind", cmd.Kind),
			slog.String("doc_path", cmd.Path.String()),
			slog.Any("error", err))
	}
	recordCommand(cmd.Kind, outcome, time.Since(start))
	return msg
}

func msgPath(msg semka.Msg) (semka.Path, bool) {
	switch msg := msg.(type) {
	case semka.DocManifestFetched:
		return msg.Path, true
	case semka.WidgetMessage:
		return msg.Path, true
	}
	return semka.Path{}, false
}

func msgErr(msg semka.Msg) error {
	switch msg := msg.(type) {
	case semka.DocManifestFetched:
		return msg.Err
	case semka.WidgetMessage:
		switch result := msg.Msg.(type) {
		case semka.FetchTextResult:
			return result.Err
		case semka.FetchJSONResult:
			return result.Err
		case semka.FetchBytesResult:
			return result.Err
		}
	}
	return nil
}
