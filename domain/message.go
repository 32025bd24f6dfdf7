// Package domain contains core concepts of the message board.
// This file defines message records and their attachments.
// Records are immutable once appended to the store.
package domain

import (
	"fmt"
	"message-board/errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TimestampLayout is the fixed format of MessageRecord.Timestamp (YYYY-MM-DD HH:MM:SS).
const TimestampLayout = "2006-01-02 15:04:05"

var validate = validator.New()

// MessageRecord is one board entry as persisted in the store.
// The JSON shape is the durable layout and must not change.
type MessageRecord struct {
	ID          string      `json:"id" validate:"required"`
	Name        string      `json:"name" validate:"required"`
	Message     string      `json:"message" validate:"required"`
	Timestamp   string      `json:"timestamp"`
	Attachments Attachments `json:"files"`
}

// NewMessageRecord builds a record stamped with the given creation time.
// Name and message are trimmed.
func NewMessageRecord(id, name, message string, at time.Time, attachments Attachments) MessageRecord {
	return MessageRecord{
		ID:          id,
		Name:        strings.TrimSpace(name),
		Message:     strings.TrimSpace(message),
		Timestamp:   at.Format(TimestampLayout),
		Attachments: attachments,
	}
}

// Validate checks that id, name and message are present and that name and message
// are not blank once trimmed.
func (m MessageRecord) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrInvalidRecord, err)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: name is blank", errors.ErrInvalidRecord)
	}
	if strings.TrimSpace(m.Message) == "" {
		return fmt.Errorf("%w: message is blank", errors.ErrInvalidRecord)
	}
	return nil
}

// WithAttachments returns a copy of the record whose attachments went through fn.
func (m MessageRecord) WithAttachments(fn func(kind Kind, filename string) string) MessageRecord {
	m.Attachments = m.Attachments.Map(fn)
	return m
}
