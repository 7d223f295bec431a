package semka

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrParsePath is returned when a string can't be parsed as a Path.
	ErrParsePath = errors.New("can not parse path")

	// ErrPathMismatch is returned when an operation needs two paths of
	// the same absoluteness but got one absolute and one relative path.
	ErrPathMismatch = errors.New("can not find relative path between absolute and relative paths")

	// ErrUnknownWidget is returned when no registered WidgetFactory can
	// handle a widget tag.
	ErrUnknownWidget = errors.New("can not find widget")

	// ErrEmptyDocumentName is returned when a document manifest is
	// requested for a path with no segments.
	ErrEmptyDocumentName = errors.New("document name is empty")

	// ErrNotFound matches fetch errors for a missing resource.
	ErrNotFound = errors.New("not found")

	// ErrForbidden matches fetch errors for a resource the host isn't
	// allowed to read.
	ErrForbidden = errors.New("forbidden")

	// ErrRecursionExceeded is rendered in place of a document nested
	// deeper than the configured maximum depth.
	ErrRecursionExceeded = errors.New("recursion level exceeded")

	// ErrNotRequested is rendered in place of a document the rendering
	// widget never declared as a dependency.
	ErrNotRequested = errors.New("not requested")

	// ErrNotLoaded is rendered in place of a document the Tree isn't
	// tracking.
	ErrNotLoaded = errors.New("not loaded")

	// ErrDependencyCycle is returned by Tree.Order when documents include
	// each other.
	ErrDependencyCycle = errors.New("dependency cycle detected")
)

// PathError records a failed Path operation.
type PathError struct {
	Op   string
	Path string
	Base string
	Err  error
}

func (e *PathError) Error() string {
	if e.Base != "" {
		return fmt.Sprintf("path %s %q from %q: %v", e.Op, e.Path, e.Base, e.Err)
	}
	return fmt.Sprintf("path %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// FetchErrorKind categorizes why a fetch failed.
type FetchErrorKind string

const (
	// FetchNetwork means the request never got a response.
	FetchNetwork FetchErrorKind = "network"

	// FetchRequest means the request couldn't be built.
	FetchRequest FetchErrorKind = "request"

	// FetchDecode means the response body couldn't be deserialized.
	FetchDecode FetchErrorKind = "decode"

	// FetchClient means the server answered with a 4xx status.
	FetchClient FetchErrorKind = "client"

	// FetchServer means the server answered with a 5xx status.
	FetchServer FetchErrorKind = "server"

	// FetchUnknown means the server answered with a status that is
	// neither a success nor an error class we know about.
	FetchUnknown FetchErrorKind = "unknown"
)

// FetchError is the categorized error every Fetcher returns.
type FetchError struct {
	URL    string
	Kind   FetchErrorKind
	Code   int
	Status string
	Err    error
}

// NewStatusError builds a FetchError for an HTTP-style status code,
// categorizing it as a client, server, or unknown error.
func NewStatusError(url string, code int, status string) *FetchError {
	kind := FetchUnknown
	switch {
	case code >= 400 && code < 500:
		kind = FetchClient
	case code >= 500 && code < 600:
		kind = FetchServer
	}
	if status == "" {
		status = http.StatusText(code)
	}
	return &FetchError{URL: url, Kind: kind, Code: code, Status: status}
}

func (e *FetchError) Error() string {
	switch {
	case e.IsNotFound():
		return fmt.Sprintf("can not fetch %q: not found %d %s", e.URL, e.Code, e.Status)
	case e.IsForbidden():
		return fmt.Sprintf("can not fetch %q: forbidden %d %s", e.URL, e.Code, e.Status)
	case e.Code != 0:
		return fmt.Sprintf("can not fetch %q: %s error %d %s", e.URL, e.Kind, e.Code, e.Status)
	default:
		return fmt.Sprintf("can not fetch %q: %s error: %v", e.URL, e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrNotFound and ErrForbidden.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.IsNotFound()
	case ErrForbidden:
		return e.IsForbidden()
	}
	return false
}

// IsNotFound reports whether the server answered 404.
func (e *FetchError) IsNotFound() bool {
	return e.Kind == FetchClient && e.Code == http.StatusNotFound
}

// IsForbidden reports whether the server answered 403.
func (e *FetchError) IsForbidden() bool {
	return e.Kind == FetchClient && e.Code == http.StatusForbidden
}

// WidgetError records a failure to find or build a widget.
type WidgetError struct {
	Widget string
	Err    error
}

func (e *WidgetError) Error() string {
	return fmt.Sprintf("error in widget %q: %v", e.Widget, e.Err)
}

func (e *WidgetError) Unwrap() error {
	return e.Err
}
