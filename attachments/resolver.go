// Package attachments maps attachment references between their storage form
// (bare filename) and their load form (full path under the kind directory),
// writes uploaded bytes, and reclaims files no record points to anymore.
package attachments

import (
	"fmt"
	"message-board/domain"
	"os"
	"path/filepath"
	"strings"
)

// Resolver is stateless apart from the upload root.
type Resolver struct {
	root string
}

func NewResolver(root string) Resolver {
	return Resolver{root: root}
}

func (r Resolver) Root() string {
	return r.root
}

// KindDir returns <root>/<kind>s.
func (r Resolver) KindDir(kind domain.Kind) string {
	return filepath.Join(r.root, kind.Dir())
}

// EnsureDirs creates the directory of every kind.
func (r Resolver) EnsureDirs() error {
	for _, kind := range domain.Kinds {
		if err := os.MkdirAll(r.KindDir(kind), 0o750); err != nil {
			return fmt.Errorf("unable to create %s directory: %w", kind.Dir(), err)
		}
	}
	return nil
}

// ToLoadForm expands a stored filename into <root>/<kind>s/<basename>.
// Only the last segment of filename is kept so the result stays inside the kind directory.
func (r Resolver) ToLoadForm(kind domain.Kind, filename string) string {
	return filepath.Join(r.KindDir(kind), safeSegment(StoredName(filename)))
}

// ToStorageForm strips any directory component. It never fails.
func (r Resolver) ToStorageForm(_ domain.Kind, pathOrFilename string) string {
	return StoredName(pathOrFilename)
}

// LoadForm rewrites every attachment of the record to its load form.
func (r Resolver) LoadForm(record domain.MessageRecord) domain.MessageRecord {
	return record.WithAttachments(r.ToLoadForm)
}

// StorageForm rewrites every attachment of the record to a bare filename.
func (r Resolver) StorageForm(record domain.MessageRecord) domain.MessageRecord {
	return record.WithAttachments(r.ToStorageForm)
}

// StoredName returns what follows the last '/', like a POSIX basename.
// A backslash is a legal filename character on disk, and a trailing '/' yields "".
func StoredName(p string) string {
	return p[strings.LastIndexByte(p, '/')+1:]
}

// BaseName returns the last segment of a client supplied name, treating both '/' and '\'
// as separators. Trailing separators are ignored.
func BaseName(p string) string {
	p = strings.TrimRight(p, `/\`)
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// safeSegment replaces names that would resolve outside of, or onto, the kind directory.
func safeSegment(name string) string {
	switch name {
	case "", ".", "..":
		return "_"
	default:
		return name
	}
}
