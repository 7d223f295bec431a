package semka

import "context"

// DefaultMaxDepth is how deeply documents may include each other when a Site
// doesn't set MaxDepth.
const DefaultMaxDepth = 10

// Site is the host's view of the running site, passed into every Tree
// operation and handed to every Widget. The host owns it: it updates
// PagePath and Manifest and then tells the Tree with PageChanged or
// SiteManifestChanged. The Registry is built once at startup and is
// read-only afterwards.
type Site struct {
	// PagePath is the page the user asked for, relative to BasePath.
	PagePath Path

	// BasePath is where the site is mounted.
	BasePath Path

	// Manifest is the site manifest, or its zero value until the host
	// has fetched it.
	Manifest SiteManifest

	// Registry resolves widget tags. A nil Registry behaves like
	// NewRegistry().
	Registry *Registry

	// DocumentsRoot is the directory holding every document. Defaults
	// to DefaultDocumentsRoot.
	DocumentsRoot Path

	// MaxDepth bounds how deeply documents may include each other.
	// Defaults to DefaultMaxDepth.
	MaxDepth int
}

// CurrentPage returns the page to show: PagePath, else the manifest's index
// page, else DefaultIndexPage.
func (s *Site) CurrentPage() Path {
	switch {
	case !s.PagePath.IsEmpty():
		return s.PagePath
	case !s.Manifest.IndexPage.IsEmpty():
		return s.Manifest.IndexPage
	default:
		return NewPath().Add(DefaultIndexPage)
	}
}

// FullPath returns the document path of the current page, inside the
// master page.
func (s *Site) FullPath() Path {
	return s.Manifest.MasterPage.Join(s.CurrentPage())
}

func (s *Site) registry() *Registry {
	if s.Registry == nil {
		return NewRegistry()
	}
	return s.Registry
}

// Documents returns the directory holding every document: DocumentsRoot,
// or DefaultDocumentsRoot when that's empty.
func (s *Site) Documents() Path {
	if s.DocumentsRoot.IsEmpty() {
		return NewPath().Add(DefaultDocumentsRoot)
	}
	return s.DocumentsRoot
}

func (s *Site) maxDepth() int {
	if s.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return s.MaxDepth
}

// Fetcher is the network capability the Tree uses to load documents. Every
// method must be safe to call from multiple goroutines, and failures should
// be reported as *FetchError.
type Fetcher interface {
	FetchText(ctx context.Context, path Path) (string, error)
	FetchBytes(ctx context.Context, path Path) ([]byte, error)

	// FetchJSON decodes the JSON at path into v.
	FetchJSON(ctx context.Context, path Path, v any) error
}

// FetchJSONAs fetches path through f and decodes it into a new T.
func FetchJSONAs[T any](ctx context.Context, f Fetcher, path Path) (T, error) {
	var v T
	err := f.FetchJSON(ctx, path, &v)
	return v, err
}
