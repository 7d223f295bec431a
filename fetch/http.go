package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"impractical.co/semka"
)

const (
	// DefaultCacheSize is how many responses an HTTP fetcher keeps when
	// no WithCacheSize option is passed.
	DefaultCacheSize = 256

	// DefaultAttempts is how many times an HTTP fetcher tries a request
	// that failed with a network or server error.
	DefaultAttempts = 3

	// DefaultRetryDelay is the base delay between attempts.
	DefaultRetryDelay = 100 * time.Millisecond
)

// HTTP is a semka.Fetcher requesting documents from a web server. Paths are
// resolved against the base URL. Successful responses are kept in a bounded
// cache, and requests failing with a network or 5xx error are retried.
type HTTP struct {
	base     *url.URL
	client   *http.Client
	cache    *lru.Cache[string, []byte]
	attempts uint
	delay    time.Duration
}

// HTTPOption configures an HTTP fetcher.
type HTTPOption func(*HTTP) error

// WithClient sets the http.Client requests are made with. The default is
// http.DefaultClient.
func WithClient(client *http.Client) HTTPOption {
	return func(h *HTTP) error {
		h.client = client
		return nil
	}
}

// WithCacheSize sets how many responses are cached.
func WithCacheSize(size int) HTTPOption {
	return func(h *HTTP) error {
		cache, err := lru.New[string, []byte](size)
		if err != nil {
			return fmt.Errorf("error creating response cache: %w", err)
		}
		h.cache = cache
		return nil
	}
}

// WithRetries sets how many attempts a retryable request gets and the base
// delay between them. Passing 1 disables retries; attempts must be at least 1.
func WithRetries(attempts uint, delay time.Duration) HTTPOption {
	return func(h *HTTP) error {
		if attempts < 1 {
			return fmt.Errorf("invalid retry attempts %d: must be at least 1", attempts)
		}
		h.attempts = attempts
		h.delay = delay
		return nil
	}
}

// NewHTTP returns an HTTP fetcher resolving paths against baseURL.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing base URL %q: %w", baseURL, err)
	}
	h := &HTTP{
		base:     base,
		client:   http.DefaultClient,
		attempts: DefaultAttempts,
		delay:    DefaultRetryDelay,
	}
	for _, opt := range append([]HTTPOption{WithCacheSize(DefaultCacheSize)}, opts...) {
		if err := opt(h); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// URL returns the URL path resolves to.
func (h *HTTP) URL(path semka.Path) string {
	if path.IsAbsolute() {
		return h.base.ResolveReference(&url.URL{Path: path.String()}).String()
	}
	return h.base.JoinPath(path.Segments()...).String()
}

func (h *HTTP) FetchBytes(ctx context.Context, path semka.Path) ([]byte, error) {
	target := h.URL(path)
	if data, ok := h.cache.Get(target); ok {
		semka.Logger(ctx).DebugContext(ctx, "fetch served from cache", "url", target)
		return slices.Clone(data), nil
	}
	data, err := retry.DoWithData(
		func() ([]byte, error) {
			return h.get(ctx, target)
		},
		retry.Context(ctx),
		retry.Attempts(h.attempts),
		retry.Delay(h.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			semka.Logger(ctx).WarnContext(ctx, "retrying fetch", "url", target, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		// retry gives back a bare context error when ctx ends between attempts
		var fetchErr *semka.FetchError
		if !errors.As(err, &fetchErr) {
			err = &semka.FetchError{URL: target, Kind: semka.FetchNetwork, Err: err}
		}
		return nil, err
	}
	h.cache.Add(target, data)
	return slices.Clone(data), nil
}

func (h *HTTP) FetchText(ctx context.Context, path semka.Path) (string, error) {
	data, err := h.FetchBytes(ctx, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (h *HTTP) FetchJSON(ctx context.Context, path semka.Path, v any) error {
	data, err := h.FetchBytes(ctx, path)
	if err != nil {
		return err
	}
	return decodeJSON(h.URL(path), data, v)
}

func (h *HTTP) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &semka.FetchError{URL: target, Kind: semka.FetchRequest, Err: err}
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &semka.FetchError{URL: target, Kind: semka.FetchNetwork, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		status := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
		return nil, semka.NewStatusError(target, resp.StatusCode, status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &semka.FetchError{URL: target, Kind: semka.FetchNetwork, Err: err}
	}
	return data, nil
}

func retryable(err error) bool {
	var fetchErr *semka.FetchError
	if !errors.As(err, &fetchErr) {
		return false
	}
	return fetchErr.Kind == semka.FetchNetwork || fetchErr.Kind == semka.FetchServer
}
