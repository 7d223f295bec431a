package fetch_test

import (
	"io"
	"io/fs"
	"time"
)

// lockedFS serves files from memory. Names mapped to a nil value exist but
// can't be read.
type lockedFS map[string]*string

func (l lockedFS) Open(name string) (fs.File, error) {
	val, ok := l[name]
	if !ok {
		return nil, &fs.PathError{
			Op:   "open",
			Path: name,
			Err:  fs.ErrNotExist,
		}
	}
	if val == nil {
		return nil, &fs.PathError{
			Op:   "open",
			Path: name,
			Err:  fs.ErrPermission,
		}
	}
	return &lockedFile{
		name:     name,
		contents: []byte(*val),
	}, nil
}

type lockedFile struct {
	name     string
	contents []byte
	offset   int
}

func (f *lockedFile) Stat() (fs.FileInfo, error) {
	return f, nil
}

func (f *lockedFile) Read(buf []byte) (int, error) {
	if f.offset >= len(f.contents) {
		return 0, io.EOF
	}
	n := copy(buf, f.contents[f.offset:])
	f.offset += n
	return n, nil
}

func (*lockedFile) Close() error {
	return nil
}

func (f *lockedFile) Name() string {
	return f.name
}

func (f *lockedFile) Size() int64 {
	return int64(len(f.contents))
}

func (*lockedFile) Mode() fs.FileMode {
	return 0400
}

func (*lockedFile) ModTime() time.Time {
	return time.Now()
}

func (*lockedFile) IsDir() bool {
	return false
}

func (*lockedFile) Sys() any {
	return nil
}

func ptr(s string) *string {
	return &s
}
