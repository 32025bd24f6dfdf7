//go:generate go run go.uber.org/mock/mockgen -source=board_service.go -destination=../mocks/mock_board_service.go -package=mocks
package services

import (
	"context"
	"fmt"
	"log/slog"
	"message-board/attachments"
	"message-board/domain"
	"message-board/domain/mimetypes"
	"message-board/errors"
	"message-board/moderation"
	"message-board/observability"
	"message-board/repositories"
	"strings"
	"sync"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IBoardService interface {
	Post(ctx context.Context, cmd domain.PostMessageCommand) (domain.MessageRecord, error)
	List() ([]domain.MessageRecord, error)
	Delete(id string) error
	CollectOrphans(ctx context.Context) (attachments.GCResult, error)
}

type BoardService struct {
	repository repositories.IMessageRepository
	writer     attachments.IAttachmentWriter
	resolver   attachments.Resolver
	collector  attachments.Collector
	moderator  *moderation.Moderator
	log        *slog.Logger
	newID      func() string
	now        func() time.Time

	gcMu sync.Mutex
}

// NewBoardService wires the record store and the attachment layer.
// A nil moderator disables censoring.
func NewBoardService(repository repositories.IMessageRepository,
	writer attachments.IAttachmentWriter,
	resolver attachments.Resolver,
	collector attachments.Collector,
	moderator *moderation.Moderator,
	log *slog.Logger) *BoardService {
	return &BoardService{
		repository: repository,
		writer:     writer,
		resolver:   resolver,
		collector:  collector,
		moderator:  moderator,
		log:        log,
		newID:      uuid.NewString,
		now:        time.Now,
	}
}

type writtenAttachment struct {
	kind     domain.Kind
	filename string
}

// Post persists the uploads first, then appends the record referencing them.
// When the append fails the files written for this post are removed again, so
// a failed submission leaves nothing behind. The returned record is in load form.
func (s *BoardService) Post(ctx context.Context, cmd domain.PostMessageCommand) (domain.MessageRecord, error) {
	record, err := s.post(ctx, cmd)
	observability.PostsTotal.WithLabelValues(observability.Result(err)).Inc()
	return record, err
}

func (s *BoardService) post(ctx context.Context, cmd domain.PostMessageCommand) (domain.MessageRecord, error) {
	name := strings.TrimSpace(cmd.Name)
	message := strings.TrimSpace(cmd.Message)
	if name == "" || message == "" {
		return domain.MessageRecord{}, fmt.Errorf("%w: name and message are required", errors.ErrInvalidRecord)
	}

	uploads, err := s.checkUploads(cmd.Uploads)
	if err != nil {
		return domain.MessageRecord{}, err
	}

	if s.moderator != nil {
		var nameWords, messageWords []string
		name, nameWords = s.moderator.Censor(name)
		message, messageWords = s.moderator.Censor(message)
		if found := len(nameWords) + len(messageWords); found > 0 {
			s.log.Warn("Message censored", "words", found)
		}
	}

	id := s.newID()
	var files domain.Attachments
	var written []writtenAttachment
	for _, upload := range uploads {
		if err := ctx.Err(); err != nil {
			s.rollback(id, written)
			return domain.MessageRecord{}, err
		}
		filename, err := s.writer.Write(upload.Kind, id, upload.Filename, upload.Data)
		if err != nil {
			s.rollback(id, written)
			return domain.MessageRecord{}, err
		}
		written = append(written, writtenAttachment{kind: upload.Kind, filename: filename})
		files.Set(upload.Kind, lo.ToPtr(filename))
		observability.AttachmentsWritten.WithLabelValues(string(upload.Kind)).Inc()
	}

	record := domain.NewMessageRecord(id, name, message, s.now(), files)
	if err = s.repository.Append(record); err != nil {
		s.log.Error("Unable to append message", "id", id, "error", err)
		s.rollback(id, written)
		return domain.MessageRecord{}, err
	}

	s.log.Info("Message posted",
		"id", id,
		"attachments", len(written),
		"lang", whatlanggo.Detect(message).Lang.Iso6391())
	return s.resolver.LoadForm(record), nil
}

// checkUploads drops empty uploads and verifies the kind and sniffed media type of the others.
// At most one upload per kind is accepted.
func (s *BoardService) checkUploads(uploads []domain.Upload) ([]domain.Upload, error) {
	nonEmpty := lo.Filter(uploads, func(item domain.Upload, _ int) bool {
		return len(item.Data) > 0
	})
	seen := make(map[domain.Kind]struct{}, len(nonEmpty))
	for _, upload := range nonEmpty {
		if !upload.Kind.Valid() {
			return nil, fmt.Errorf("%w: %q", errors.ErrUnknownKind, upload.Kind)
		}
		if _, ok := seen[upload.Kind]; ok {
			return nil, fmt.Errorf("%w: more than one %s attachment", errors.ErrInvalidRecord, upload.Kind)
		}
		seen[upload.Kind] = struct{}{}

		detected := mimetype.Detect(upload.Data).String()
		if !mimetypes.Accepts(upload.Kind, detected) {
			return nil, fmt.Errorf("%w: %s is not an accepted %s type (expected one of %v)",
				errors.ErrUnsupportedMedia, detected, upload.Kind, mimetypes.Accepted(upload.Kind))
		}
	}
	return nonEmpty, nil
}

func (s *BoardService) rollback(id string, written []writtenAttachment) {
	for _, w := range written {
		if err := s.writer.Remove(w.kind, w.filename); err != nil {
			s.log.Error("Unable to remove attachment of failed post",
				"id", id, "kind", w.kind, "filename", w.filename, "error", err)
		}
	}
}

// List returns every record, most recent first.
func (s *BoardService) List() ([]domain.MessageRecord, error) {
	records, err := s.repository.ListAll()
	if err != nil {
		return nil, err
	}
	return lo.Reverse(records), nil
}

// Delete removes a record. Authorization is the caller's job.
func (s *BoardService) Delete(id string) error {
	err := s.repository.DeleteByID(id)
	observability.DeletesTotal.WithLabelValues(observability.Result(err)).Inc()
	if err != nil {
		return err
	}
	s.log.Info("Message deleted", "id", id)
	return nil
}

// CollectOrphans deletes attachment files that no record references.
// Runs never overlap.
func (s *BoardService) CollectOrphans(ctx context.Context) (attachments.GCResult, error) {
	s.gcMu.Lock()
	defer s.gcMu.Unlock()

	records, err := s.repository.ListAll()
	if err != nil {
		return attachments.GCResult{}, err
	}
	result, err := s.collector.Collect(ctx, attachments.ReferencesOf(records))

	observability.GCRunsTotal.Inc()
	observability.GCFilesDeletedTotal.Add(float64(result.Deleted))
	observability.GCDurationSeconds.Observe(result.Duration.Seconds())
	return result, err
}
