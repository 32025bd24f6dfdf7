package mimetypes

import (
	"message-board/domain"
	"mime"

	"github.com/samber/lo"
)

type MIME string

const (
	ImagePNG  MIME = "image/png"
	ImageJPEG MIME = "image/jpeg"

	VideoMP4  MIME = "video/mp4"
	VideoWebM MIME = "video/webm"

	AudioMPEG MIME = "audio/mpeg"
	AudioWAV  MIME = "audio/wav"
	AudioXWAV MIME = "audio/x-wav"
)

// accepted mirrors the upload whitelist of the board: png/jpg/jpeg, mp4/webm, mp3/wav.
var accepted = map[domain.Kind][]MIME{
	domain.Image: {ImagePNG, ImageJPEG},
	domain.Video: {VideoMP4, VideoWebM},
	domain.Audio: {AudioMPEG, AudioWAV, AudioXWAV},
}

// Matches compares a detected media type with expected, ignoring parameters such as charset.
func Matches(detected string, expected MIME) bool {
	mt, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return false
	}
	return mt == string(expected)
}

// Accepts reports whether a detected media type is allowed for the kind.
func Accepts(kind domain.Kind, detected string) bool {
	return lo.ContainsBy(accepted[kind], func(expected MIME) bool {
		return Matches(detected, expected)
	})
}

// Accepted returns the media types allowed for a kind.
func Accepted(kind domain.Kind) []MIME {
	return accepted[kind]
}
