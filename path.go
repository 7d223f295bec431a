package semka

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	pathSeparator = "/"
	parentSegment = ".."
)

// Path is an immutable hierarchical address: an ordered list of segments plus
// a flag recording whether the path is absolute. An absolute and a relative
// path with the same segments are different values.
//
// Path values are cheap to copy. Copies share segment storage, and no
// operation ever writes into storage that another Path can observe, so a copy
// never needs to duplicate the segments.
type Path struct {
	segments []string
	absolute bool
}

// NewPath returns an empty relative Path.
func NewPath() Path {
	return Path{}
}

// NewAbsolutePath returns an empty absolute Path. The absoluteness of a Path
// is fixed at construction.
func NewAbsolutePath() Path {
	return Path{absolute: true}
}

// ParsePath parses a "/"-delimited string. A leading "/" makes the Path
// absolute and empty segments are dropped, so "a//b/" and "a/b" parse to the
// same value. Segments containing control characters are rejected with
// ErrParsePath.
func ParsePath(s string) (Path, error) {
	p := Path{absolute: strings.HasPrefix(s, pathSeparator)}
	for _, seg := range strings.Split(s, pathSeparator) {
		if seg == "" {
			continue
		}
		if strings.ContainsFunc(seg, isControl) {
			return Path{}, &PathError{Op: "parse", Path: s, Err: ErrParsePath}
		}
		p.segments = append(p.segments, seg)
	}
	p.segments = slices.Clip(p.segments)
	return p, nil
}

// MustParsePath is like ParsePath but panics if s can't be parsed. It's meant
// for constants and tests.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

// Add returns a new Path with segment appended.
func (p Path) Add(segment string) Path {
	p.Push(segment)
	return p
}

// Push appends segment to p in place. Other copies of p are unaffected.
func (p *Path) Push(segment string) {
	p.segments = append(slices.Clip(p.segments), segment)
}

// Join composes p with other the way filesystem paths compose: an absolute
// other replaces p entirely, otherwise the segments of other are appended to
// those of p. A ".." segment in other removes the last segment of the result
// when there is one to remove; above the root of an absolute path it's
// dropped, and at the start of a relative path it's kept.
func (p Path) Join(other Path) Path {
	if other.absolute {
		return other
	}
	if len(other.segments) == 0 {
		return p
	}
	out := make([]string, len(p.segments), len(p.segments)+len(other.segments))
	copy(out, p.segments)
	for _, seg := range other.segments {
		if seg != parentSegment {
			out = append(out, seg)
			continue
		}
		switch {
		case len(out) > 0 && out[len(out)-1] != parentSegment:
			out = out[:len(out)-1]
		case p.absolute:
		default:
			out = append(out, seg)
		}
	}
	return Path{segments: slices.Clip(out), absolute: p.absolute}
}

// RelativeTo returns the relative Path r for which base.Join(r) equals p. It
// emits one ".." per segment of base after the point where the two paths
// diverge, followed by the remaining segments of p. Paths of different
// absoluteness can't be relativized; that's reported as ErrPathMismatch.
func (p Path) RelativeTo(base Path) (Path, error) {
	if p.absolute != base.absolute {
		return Path{}, &PathError{Op: "relative", Path: p.String(), Base: base.String(), Err: ErrPathMismatch}
	}
	common := 0
	for common < len(p.segments) && common < len(base.segments) && p.segments[common] == base.segments[common] {
		common++
	}
	up := len(base.segments) - common
	out := make([]string, 0, up+len(p.segments)-common)
	for range up {
		out = append(out, parentSegment)
	}
	out = append(out, p.segments[common:]...)
	return Path{segments: out}, nil
}

// IsSubpath reports whether p is a strict prefix of rhs. Paths of different
// absoluteness are never subpaths of each other, and a path is never a
// subpath of itself.
func (p Path) IsSubpath(rhs Path) bool {
	if p.absolute != rhs.absolute || len(p.segments) >= len(rhs.segments) {
		return false
	}
	return slices.Equal(p.segments, rhs.segments[:len(p.segments)])
}

// IsSuperpath reports whether rhs is a strict prefix of p.
func (p Path) IsSuperpath(rhs Path) bool {
	return rhs.IsSubpath(p)
}

// Head returns the first segment of p as a Path with the same absoluteness.
// Paths with at most one segment are their own head. The head of a document
// path names the document.
func (p Path) Head() Path {
	if len(p.segments) <= 1 {
		return p
	}
	return Path{segments: p.segments[:1:1], absolute: p.absolute}
}

// Tail returns the relative Path of everything after the first segment: the
// sub-path inside the document named by Head.
func (p Path) Tail() Path {
	if len(p.segments) <= 1 {
		return Path{}
	}
	return Path{segments: p.segments[1:]}
}

// Name returns the first segment of p, or "" for an empty Path.
func (p Path) Name() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[0]
}

// Len returns the number of segments in p.
func (p Path) Len() int {
	return len(p.segments)
}

// IsEmpty reports whether p has no segments.
func (p Path) IsEmpty() bool {
	return len(p.segments) == 0
}

// IsAbsolute reports whether p is anchored at the root.
func (p Path) IsAbsolute() bool {
	return p.absolute
}

// Segment returns the segment at position i.
func (p Path) Segment(i int) string {
	return p.segments[i]
}

// Segments returns a copy of the segments of p.
func (p Path) Segments() []string {
	return slices.Clone(p.segments)
}

// Equal reports whether p and other have the same segments and absoluteness.
func (p Path) Equal(other Path) bool {
	return p.absolute == other.absolute && slices.Equal(p.segments, other.segments)
}

// Compare orders paths segment by segment. When one path runs out of
// segments before a difference is found, the path that ran out sorts after
// the other, so "a" sorts after "a/b". Paths with equal segments order
// relative before absolute. Compare returns -1, 0, or +1.
func (p Path) Compare(other Path) int {
	for i := 0; ; i++ {
		pDone, oDone := i >= len(p.segments), i >= len(other.segments)
		switch {
		case pDone && oDone:
			switch {
			case p.absolute == other.absolute:
				return 0
			case p.absolute:
				return 1
			default:
				return -1
			}
		case pDone:
			return 1
		case oDone:
			return -1
		}
		if c := strings.Compare(p.segments[i], other.segments[i]); c != 0 {
			return c
		}
	}
}

// String formats p as a "/"-delimited string with a leading "/" when p is
// absolute. ParsePath(p.String()) is equal to p for any path whose segments
// are non-empty and contain no "/".
func (p Path) String() string {
	s := strings.Join(p.segments, pathSeparator)
	if p.absolute {
		return pathSeparator + s
	}
	return s
}

// GoString makes paths readable in test failure output.
func (p Path) GoString() string {
	return fmt.Sprintf("Path(%q)", p.String())
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(text []byte) error {
	parsed, err := ParsePath(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// key is a map key unique to the value of p. Segments are length-prefixed,
// since Push accepts any string.
func (p Path) key() string {
	var sb strings.Builder
	if p.absolute {
		sb.WriteByte('a')
	} else {
		sb.WriteByte('r')
	}
	for _, seg := range p.segments {
		sb.WriteString(strconv.Itoa(len(seg)))
		sb.WriteByte(':')
		sb.WriteString(seg)
	}
	return sb.String()
}

// PathSet is an immutable set of Paths, kept sorted by Path.Compare.
type PathSet struct {
	paths []Path
}

// NewPathSet returns the set of the passed paths. Duplicates are collapsed.
func NewPathSet(paths ...Path) PathSet {
	sorted := slices.Clone(paths)
	slices.SortFunc(sorted, Path.Compare)
	sorted = slices.CompactFunc(sorted, Path.Equal)
	return PathSet{paths: slices.Clip(sorted)}
}

// Contains reports whether p is in the set.
func (s PathSet) Contains(p Path) bool {
	_, found := slices.BinarySearchFunc(s.paths, p, Path.Compare)
	return found
}

// Len returns the number of paths in the set.
func (s PathSet) Len() int {
	return len(s.paths)
}

// Paths returns the members of the set in Path.Compare order.
func (s PathSet) Paths() []Path {
	return slices.Clone(s.paths)
}

// Equal reports whether both sets have the same members.
func (s PathSet) Equal(other PathSet) bool {
	return slices.EqualFunc(s.paths, other.paths, Path.Equal)
}

// String formats the set as "{a, b}".
func (s PathSet) String() string {
	parts := make([]string, 0, len(s.paths))
	for _, p := range s.paths {
		parts = append(parts, p.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
