//go:generate go run go.uber.org/mock/mockgen -source=writer.go -destination=../mocks/mock_attachment_writer.go -package=mocks
package attachments

import (
	"fmt"
	"log/slog"
	"message-board/domain"
	"message-board/errors"
	"message-board/storage"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shirou/gopsutil/disk"
)

const (
	maxNameBytes = 200
	fallbackName = "file"
)

type IAttachmentWriter interface {
	Write(kind domain.Kind, messageID, originalFilename string, data []byte) (string, error)
	Remove(kind domain.Kind, filename string) error
}

type Writer struct {
	resolver     Resolver
	log          *slog.Logger
	minFreeBytes uint64
}

// NewWriter builds a writer rooted at the resolver's upload root.
// A zero minFreeBytes disables the free space guard.
func NewWriter(resolver Resolver, log *slog.Logger, minFreeBytes uint64) Writer {
	return Writer{resolver: resolver, log: log, minFreeBytes: minFreeBytes}
}

// Write stores data as <kindDir>/<messageID>_<originalFilename> and returns the bare filename.
// The message id prefix keeps names unique across uploads sharing an original name.
// An existing file with the same name is replaced.
func (w Writer) Write(kind domain.Kind, messageID, originalFilename string, data []byte) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %w: %q", errors.ErrWriteFailed, errors.ErrUnknownKind, kind)
	}
	if err := w.checkFreeSpace(uint64(len(data))); err != nil {
		return "", err
	}

	filename := StorageName(messageID, originalFilename)
	path := filepath.Join(w.resolver.KindDir(kind), filename)
	if err := storage.WriteFileAtomic(path, data, 0o640); err != nil {
		w.log.Error("Unable to persist attachment", "kind", kind, "filename", filename, "error", err)
		return "", fmt.Errorf("%w: %v", errors.ErrWriteFailed, err)
	}

	w.log.Debug("Attachment persisted", "kind", kind, "filename", filename, "size", len(data))
	return filename, nil
}

// Remove deletes a previously written attachment. A missing file is not an error.
func (w Writer) Remove(kind domain.Kind, filename string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", errors.ErrUnknownKind, kind)
	}
	return storage.RemoveIfExists(w.resolver.ToLoadForm(kind, filename))
}

func (w Writer) checkFreeSpace(size uint64) error {
	if w.minFreeBytes == 0 {
		return nil
	}
	usage, err := disk.Usage(w.resolver.Root())
	if err != nil {
		return fmt.Errorf("%w: unable to read disk usage: %v", errors.ErrWriteFailed, err)
	}
	if usage.Free < size+w.minFreeBytes {
		return fmt.Errorf("%w: only %d bytes free on %s", errors.ErrWriteFailed, usage.Free, w.resolver.Root())
	}
	return nil
}

// StorageName builds <messageID>_<originalFilename> with both parts sanitized.
func StorageName(messageID, originalFilename string) string {
	return sanitize(messageID) + "_" + sanitize(originalFilename)
}

// sanitize keeps the last path segment of a user supplied name and replaces
// control characters and separators. Unicode letters and ordinary punctuation survive.
func sanitize(name string) string {
	name = BaseName(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r == utf8.RuneError, unicode.IsControl(r), r == '/', r == '\\', r == ':':
			return '_'
		default:
			return r
		}
	}, name)
	name = strings.TrimLeft(strings.TrimSpace(name), ".")
	if name == "" {
		return fallbackName
	}
	return truncate(name, maxNameBytes)
}

// truncate shortens name to at most limit bytes on a rune boundary, keeping the extension.
func truncate(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	ext := filepath.Ext(name)
	if len(ext) >= limit/2 {
		ext = ""
	}
	stem := strings.TrimSuffix(name, ext)
	budget := limit - len(ext)
	for len(stem) > budget {
		_, size := utf8.DecodeLastRuneInString(stem)
		stem = stem[:len(stem)-size]
	}
	return stem + ext
}
