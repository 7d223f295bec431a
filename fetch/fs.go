package fetch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"impractical.co/semka"
)

// FS is a semka.Fetcher reading from an fs.FS, usually an os.DirFS of the
// site's directory or an embed.FS. Missing files are reported like a 404
// response and unreadable ones like a 403, so widgets can't tell an FS from
// a web server.
type FS struct {
	fsys fs.FS
}

// NewFS returns an FS reading from fsys.
func NewFS(fsys fs.FS) *FS {
	return &FS{fsys: fsys}
}

func (f *FS) FetchBytes(ctx context.Context, path semka.Path) ([]byte, error) {
	name := fsName(path)
	if err := ctx.Err(); err != nil {
		return nil, &semka.FetchError{URL: name, Kind: semka.FetchNetwork, Err: err}
	}
	if !fs.ValidPath(name) {
		return nil, &semka.FetchError{URL: name, Kind: semka.FetchRequest, Err: fmt.Errorf("invalid path %q", path)}
	}
	data, err := fs.ReadFile(f.fsys, name)
	if err != nil {
		return nil, fsError(name, err)
	}
	return data, nil
}

func (f *FS) FetchText(ctx context.Context, path semka.Path) (string, error) {
	data, err := f.FetchBytes(ctx, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *FS) FetchJSON(ctx context.Context, path semka.Path, v any) error {
	data, err := f.FetchBytes(ctx, path)
	if err != nil {
		return err
	}
	return decodeJSON(fsName(path), data, v)
}

// fsName turns path into an fs.FS name. Absolute paths are read from the
// root of the FS.
func fsName(path semka.Path) string {
	if path.IsEmpty() {
		return "."
	}
	return strings.Join(path.Segments(), "/")
}

func fsError(name string, err error) *semka.FetchError {
	var fetchErr *semka.FetchError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fetchErr = semka.NewStatusError(name, http.StatusNotFound, "")
	case errors.Is(err, fs.ErrPermission):
		fetchErr = semka.NewStatusError(name, http.StatusForbidden, "")
	default:
		fetchErr = &semka.FetchError{URL: name, Kind: semka.FetchNetwork}
	}
	fetchErr.Err = err
	return fetchErr
}
