package attachments

import (
	"message-board/domain"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolver_ToLoadForm(t *testing.T) {
	root := filepath.Join("srv", "uploads")
	resolver := NewResolver(root)

	tests := []struct {
		name     string
		kind     domain.Kind
		filename string
		want     string
	}{
		{"bare image", domain.Image, "m1_cat.png", filepath.Join(root, "images", "m1_cat.png")},
		{"video", domain.Video, "m2_clip.webm", filepath.Join(root, "videos", "m2_clip.webm")},
		{"audio", domain.Audio, "m3_song.mp3", filepath.Join(root, "audios", "m3_song.mp3")},
		{"relative path from older data", domain.Image, "images/m1_cat.png", filepath.Join(root, "images", "m1_cat.png")},
		{"traversal attempt", domain.Audio, "../../etc/passwd", filepath.Join(root, "audios", "passwd")},
		{"backslash is part of the name", domain.Video, `a\b.mp4`, filepath.Join(root, "videos", `a\b.mp4`)},
		{"trailing slash", domain.Image, "images/", filepath.Join(root, "images", "_")},
		{"dot dot only", domain.Image, "..", filepath.Join(root, "images", "_")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, resolver.ToLoadForm(tt.kind, tt.filename))
		})
	}
}

func TestResolver_ToStorageForm(t *testing.T) {
	req := require.New(t)
	resolver := NewResolver("/srv/uploads")

	req.Equal("m1_cat.png", resolver.ToStorageForm(domain.Image, "/srv/uploads/images/m1_cat.png"))
	req.Equal("m1_cat.png", resolver.ToStorageForm(domain.Image, "m1_cat.png"))
	req.Equal(`a\b.png`, resolver.ToStorageForm(domain.Image, resolver.ToLoadForm(domain.Image, `a\b.png`)))
	req.Equal("", resolver.ToStorageForm(domain.Image, "images/m1_cat.png/"))
	req.Equal("", resolver.ToStorageForm(domain.Image, ""))
}

func TestResolver_RoundTrip(t *testing.T) {
	resolver := NewResolver(t.TempDir())
	filenames := []string{
		"m1_cat.png",
		"m1_猫の写真.jpeg",
		"m1_été à la plage.mp4",
		"m1_a'b(c)[d]{e}!#$%&+,;=@~.wav",
		"m1_🎵 song.mp3",
		"m1_.hidden",
		"m1_no-extension",
		`m1_a\b.png`,
	}

	for _, kind := range domain.Kinds {
		for _, filename := range filenames {
			t.Run(string(kind)+"/"+filename, func(t *testing.T) {
				req := require.New(t)
				loaded := resolver.ToLoadForm(kind, filename)
				req.True(strings.HasPrefix(loaded, resolver.KindDir(kind)))
				req.Equal(filename, resolver.ToStorageForm(kind, loaded))
			})
		}
	}
}

func TestResolver_RecordForms(t *testing.T) {
	req := require.New(t)
	resolver := NewResolver("/srv/uploads")
	image := "m1_cat.png"
	record := domain.MessageRecord{ID: "m1", Attachments: domain.Attachments{Image: &image}}

	loaded := resolver.LoadForm(record)
	req.Equal(filepath.Join("/srv/uploads", "images", "m1_cat.png"), *loaded.Attachments.Image)
	req.Nil(loaded.Attachments.Video)

	stored := resolver.StorageForm(loaded)
	req.Equal("m1_cat.png", *stored.Attachments.Image)
	req.Equal("m1_cat.png", image)
}
