package attachments

import (
	"context"
	"fmt"
	"log/slog"
	"message-board/domain"
	"message-board/storage"
	"os"
	"path/filepath"
	"time"
)

// References is the set of stored filenames per kind that records still point to.
type References map[domain.Kind]map[string]struct{}

// Add registers a reference in storage form.
func (r References) Add(kind domain.Kind, filename string) {
	if r[kind] == nil {
		r[kind] = make(map[string]struct{})
	}
	r[kind][StoredName(filename)] = struct{}{}
}

func (r References) Contains(kind domain.Kind, filename string) bool {
	_, ok := r[kind][filename]
	return ok
}

// ReferencesOf collects the attachments of every record.
func ReferencesOf(records []domain.MessageRecord) References {
	refs := make(References)
	for _, record := range records {
		record.Attachments.Each(refs.Add)
	}
	return refs
}

// GCResult summarizes one collection pass.
type GCResult struct {
	Scanned  int           `json:"scanned"`
	Deleted  int           `json:"deleted"`
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"duration"`
}

// Collector deletes attachment files that no record references.
// Files younger than grace are left alone: they may belong to a post whose
// record has not been appended yet.
type Collector struct {
	resolver Resolver
	grace    time.Duration
	log      *slog.Logger
	now      func() time.Time
}

func NewCollector(resolver Resolver, grace time.Duration, log *slog.Logger) Collector {
	return Collector{
		resolver: resolver,
		grace:    grace,
		log:      log.With(slog.String("component", "gc")),
		now:      time.Now,
	}
}

// Collect runs one pass over the three kind directories.
// A missing kind directory is skipped; any other listing failure aborts the pass.
func (c Collector) Collect(ctx context.Context, refs References) (GCResult, error) {
	start := time.Now()
	result := GCResult{}
	threshold := c.now().Add(-c.grace)

	for _, kind := range domain.Kinds {
		dir := c.resolver.KindDir(kind)
		entries, err := os.ReadDir(dir)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("unable to list %s: %w", dir, err)
		}

		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				result.Duration = time.Since(start)
				return result, err
			}
			if !entry.Type().IsRegular() {
				continue
			}
			result.Scanned++

			name := entry.Name()
			if !storage.IsTemporary(name) && refs.Contains(kind, name) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				result.Errors++
				continue
			}
			if info.ModTime().After(threshold) {
				continue
			}
			if err := storage.RemoveIfExists(filepath.Join(dir, name)); err != nil {
				c.log.Error("Unable to delete orphaned attachment", "kind", kind, "filename", name, "error", err)
				result.Errors++
				continue
			}
			c.log.Debug("Orphaned attachment deleted", "kind", kind, "filename", name)
			result.Deleted++
		}
	}

	result.Duration = time.Since(start)
	c.log.Info("Attachment collection finished",
		"scanned", result.Scanned,
		"deleted", result.Deleted,
		"errors", result.Errors,
		"duration", result.Duration)
	return result, nil
}
