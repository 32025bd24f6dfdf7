package domain

import (
	"fmt"
	"message-board/errors"
)

// Kind is an attachment category. Every kind owns one directory under the upload root.
type Kind string

const (
	Image Kind = "image"
	Video Kind = "video"
	Audio Kind = "audio"
)

// Kinds lists every recognized kind in the order of the durable layout.
var Kinds = []Kind{Image, Video, Audio}

// ParseKind accepts "image", "video" or "audio".
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Image, Video, Audio:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownKind, s)
	}
}

// Dir is the directory name of the kind, relative to the upload root.
func (k Kind) Dir() string {
	return string(k) + "s"
}

func (k Kind) Valid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

// Attachments holds at most one file reference per kind.
// A nil field means no attachment of that kind.
type Attachments struct {
	Image *string `json:"image"`
	Video *string `json:"video"`
	Audio *string `json:"audio"`
}

func (a Attachments) Get(kind Kind) *string {
	switch kind {
	case Image:
		return a.Image
	case Video:
		return a.Video
	case Audio:
		return a.Audio
	default:
		return nil
	}
}

func (a *Attachments) Set(kind Kind, filename *string) {
	switch kind {
	case Image:
		a.Image = filename
	case Video:
		a.Video = filename
	case Audio:
		a.Audio = filename
	}
}

// Each calls fn for every non-nil, non-empty reference.
func (a Attachments) Each(fn func(kind Kind, filename string)) {
	for _, kind := range Kinds {
		if ref := a.Get(kind); ref != nil && *ref != "" {
			fn(kind, *ref)
		}
	}
}

// Map returns a copy where every non-nil reference was rewritten by fn.
// The receiver's pointers are never shared with the result.
func (a Attachments) Map(fn func(kind Kind, filename string) string) Attachments {
	var out Attachments
	a.Each(func(kind Kind, filename string) {
		mapped := fn(kind, filename)
		out.Set(kind, &mapped)
	})
	return out
}

// Upload is the raw content of one attachment submitted with a message.
type Upload struct {
	Kind     Kind
	Filename string
	Data     []byte
}
