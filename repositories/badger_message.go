package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"message-board/attachments"
	"message-board/domain"
	"message-board/errors"
	"message-board/observability"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	messagePrefix  = "msg:"
	idPrefix       = "id:"
	sequenceKey    = "seq:msg"
	sequenceLeases = 100
)

// BadgerMessageRepository stores each record as its own key.
// Keys are "msg:{sequence_padded}:{id}" so a prefix scan returns records in append order,
// and "id:{id}" points back to the message key to enforce uniqueness and find deletions.
// Values hold the same JSON object as the file store, attachments in storage form.
type BadgerMessageRepository struct {
	db       *badger.DB
	seq      *badger.Sequence
	resolver attachments.Resolver
	log      *slog.Logger
	mu       sync.Mutex
}

func NewBadgerMessageRepository(db *badger.DB, resolver attachments.Resolver, log *slog.Logger) (*BadgerMessageRepository, error) {
	seq, err := db.GetSequence([]byte(sequenceKey), sequenceLeases)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	return &BadgerMessageRepository{db: db, seq: seq, resolver: resolver, log: log}, nil
}

// Close returns the unused sequence leases.
func (b *BadgerMessageRepository) Close() error {
	return b.seq.Release()
}

func (b *BadgerMessageRepository) ListAll() ([]domain.MessageRecord, error) {
	defer observability.ObserveStore(BackendBadger, "list", time.Now())
	records := make([]domain.MessageRecord, 0)
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			err := item.Value(func(value []byte) error {
				record, err := decodeRecord(value)
				if err != nil {
					return fmt.Errorf("%w: key %s: %v", errors.ErrMalformedStore, item.Key(), err)
				}
				records = append(records, b.resolver.LoadForm(record))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, b.wrap(err)
	}
	return records, nil
}

func (b *BadgerMessageRepository) Append(record domain.MessageRecord) error {
	defer observability.ObserveStore(BackendBadger, "append", time.Now())
	if err := record.Validate(); err != nil {
		return err
	}
	value, err := json.Marshal(b.resolver.StorageForm(record))
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	n, err := b.seq.Next()
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
	}
	key := []byte(fmt.Sprintf("%s%019d:%s", messagePrefix, n, record.ID))
	idKey := []byte(idPrefix + record.ID)

	err = b.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(idKey)
		switch {
		case err == nil:
			return fmt.Errorf("%w: id %s already exists", errors.ErrInvalidRecord, record.ID)
		case !errors.Is(err, badger.ErrKeyNotFound):
			return err
		}
		if err := txn.Set(key, value); err != nil {
			return err
		}
		return txn.Set(idKey, key)
	})
	if err != nil {
		return b.wrap(err)
	}
	b.log.Debug("Message appended", "id", record.ID, "key", string(key))
	return nil
}

func (b *BadgerMessageRepository) DeleteByID(id string) error {
	defer observability.ObserveStore(BackendBadger, "delete", time.Now())
	b.mu.Lock()
	defer b.mu.Unlock()

	idKey := []byte(idPrefix + id)
	err := b.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(idKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			b.log.Debug("Nothing to delete", "id", id)
			return nil
		}
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		return txn.Delete(idKey)
	})
	return b.wrap(err)
}

// wrap keeps domain errors and reports everything else as an unavailable store.
func (b *BadgerMessageRepository) wrap(err error) error {
	if err == nil || errors.Is(err, errors.ErrInvalidRecord) || errors.Is(err, errors.ErrMalformedStore) {
		return err
	}
	return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
}
