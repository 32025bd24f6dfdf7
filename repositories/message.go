//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"message-board/attachments"
	"message-board/domain"
	"message-board/errors"
	"message-board/observability"
	"message-board/storage"
	"os"
	"sync"
	"time"

	"github.com/samber/lo"
)

// Backend names used as the backend label of the store metrics.
const (
	BackendJSON   = "json"
	BackendBadger = "badger"
)

// IMessageRepository owns the durable list of message records.
// Records come back in append order with attachments in load form.
type IMessageRepository interface {
	ListAll() ([]domain.MessageRecord, error)
	Append(record domain.MessageRecord) error
	DeleteByID(id string) error
}

// JSONMessageRepository keeps every record in a single JSON array.
// Each mutation rewrites the whole array through an atomic rename and
// mutations are serialized, so concurrent callers never lose an update.
type JSONMessageRepository struct {
	path     string
	resolver attachments.Resolver
	log      *slog.Logger
	mu       sync.Mutex
}

func NewJSONMessageRepository(path string, resolver attachments.Resolver, log *slog.Logger) *JSONMessageRepository {
	return &JSONMessageRepository{path: path, resolver: resolver, log: log}
}

// Init creates an empty store when the file is absent.
// An existing file is left untouched, even if it is invalid.
func (m *JSONMessageRepository) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	m.log.Info("Creating empty message store", "path", m.path)
	return m.write(nil)
}

func (m *JSONMessageRepository) ListAll() ([]domain.MessageRecord, error) {
	defer observability.ObserveStore(BackendJSON, "list", time.Now())
	records, err := m.read()
	if err != nil {
		return nil, err
	}
	return lo.Map(records, func(item domain.MessageRecord, _ int) domain.MessageRecord {
		return m.resolver.LoadForm(item)
	}), nil
}

// Append adds a record at the end of the list.
// The id must be unused and name/message must not be blank.
func (m *JSONMessageRepository) Append(record domain.MessageRecord) error {
	defer observability.ObserveStore(BackendJSON, "append", time.Now())
	if err := record.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.read()
	if err != nil {
		return err
	}
	if lo.ContainsBy(records, func(item domain.MessageRecord) bool { return item.ID == record.ID }) {
		return fmt.Errorf("%w: id %s already exists", errors.ErrInvalidRecord, record.ID)
	}

	if err = m.write(append(records, record)); err != nil {
		return err
	}
	m.log.Debug("Message appended", "id", record.ID, "count", len(records)+1)
	return nil
}

// DeleteByID removes the record with the given id. Unknown ids are ignored.
// Attachment files are kept on disk.
func (m *JSONMessageRepository) DeleteByID(id string) error {
	defer observability.ObserveStore(BackendJSON, "delete", time.Now())
	m.mu.Lock()
	defer m.mu.Unlock()

	records, err := m.read()
	if err != nil {
		return err
	}
	kept := lo.Filter(records, func(item domain.MessageRecord, _ int) bool {
		return item.ID != id
	})
	if len(kept) == len(records) {
		m.log.Debug("Nothing to delete", "id", id)
	}
	return m.write(kept)
}

// read returns the records exactly as stored. An absent file is an empty store.
func (m *JSONMessageRepository) read() ([]domain.MessageRecord, error) {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return []domain.MessageRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return decodeRecords(data)
}

// write converts every record to storage form and replaces the file atomically.
func (m *JSONMessageRepository) write(records []domain.MessageRecord) error {
	data, err := encodeRecords(lo.Map(records, func(item domain.MessageRecord, _ int) domain.MessageRecord {
		return m.resolver.StorageForm(item)
	}))
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	if err = storage.WriteFileAtomic(m.path, data, 0o640); err != nil {
		m.log.Error("Unable to write message store", "path", m.path, "error", err)
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return nil
}

// encodeRecords produces the durable layout: a 4-space indented array,
// non-ASCII characters written as is (U+2028 and U+2029 included), no trailing newline.
func encodeRecords(records []domain.MessageRecord) ([]byte, error) {
	if records == nil {
		records = []domain.MessageRecord{}
	}
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	if err := encoder.Encode(records); err != nil {
		return nil, err
	}
	return rawLineSeparators(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// rawLineSeparators undoes the \u2028 and \u2029 escapes encoding/json always emits.
// Other escape sequences are copied whole so an escaped backslash followed by "u2028" is left alone.
func rawLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if seq := data[i+1:]; len(seq) >= 5 && seq[0] == 'u' && (string(seq[1:5]) == "2028" || string(seq[1:5]) == "2029") {
			if seq[4] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}

// decodeRecords rejects anything that is not an array of record objects with an id.
func decodeRecords(data []byte) ([]domain.MessageRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: top level value is not a list", errors.ErrMalformedStore)
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(trimmed, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedStore, err)
	}

	records := make([]domain.MessageRecord, 0, len(raws))
	for i, raw := range raws {
		record, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", errors.ErrMalformedStore, i, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func decodeRecord(raw json.RawMessage) (domain.MessageRecord, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return domain.MessageRecord{}, fmt.Errorf("not an object")
	}
	var record domain.MessageRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return domain.MessageRecord{}, err
	}
	if record.ID == "" {
		return domain.MessageRecord{}, fmt.Errorf("missing id")
	}
	return record, nil
}
