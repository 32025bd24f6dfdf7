package attachments

import (
	"log/slog"
	"message-board/domain"
	"message-board/errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T) (Writer, Resolver) {
	resolver := NewResolver(t.TempDir())
	return NewWriter(resolver, logs.GetLoggerFromLevel(slog.LevelDebug), 0), resolver
}

func TestWriter_Write_And_Resolve(t *testing.T) {
	req := require.New(t)
	writer, resolver := newTestWriter(t)
	content := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}

	filename, err := writer.Write(domain.Image, "m1", "cat.png", content)
	req.NoError(err)
	req.Equal("m1_cat.png", filename)

	path := resolver.ToLoadForm(domain.Image, filename)
	req.True(strings.HasSuffix(path, filepath.Join("images", "m1_cat.png")))

	read, err := os.ReadFile(path)
	req.NoError(err)
	req.Equal(content, read)
}

func TestWriter_Write_CreatesKindDirectoryLazily(t *testing.T) {
	req := require.New(t)
	writer, resolver := newTestWriter(t)

	_, err := os.Stat(resolver.KindDir(domain.Audio))
	req.True(os.IsNotExist(err))

	_, err = writer.Write(domain.Audio, "m2", "song.mp3", []byte("ID3"))
	req.NoError(err)

	entries, err := os.ReadDir(resolver.KindDir(domain.Audio))
	req.NoError(err)
	req.Len(entries, 1)
	req.Equal("m2_song.mp3", entries[0].Name())
}

func TestWriter_Write_SameOriginalNameDifferentMessages(t *testing.T) {
	req := require.New(t)
	writer, resolver := newTestWriter(t)

	first, err := writer.Write(domain.Video, "m1", "clip.mp4", []byte("first"))
	req.NoError(err)
	second, err := writer.Write(domain.Video, "m2", "clip.mp4", []byte("second"))
	req.NoError(err)
	req.NotEqual(first, second)

	read, err := os.ReadFile(resolver.ToLoadForm(domain.Video, first))
	req.NoError(err)
	req.Equal("first", string(read))
}

func TestWriter_Write_UnknownKind(t *testing.T) {
	req := require.New(t)
	writer, _ := newTestWriter(t)

	_, err := writer.Write(domain.Kind("document"), "m1", "cv.pdf", []byte("%PDF"))
	req.ErrorIs(err, errors.ErrWriteFailed)
	req.ErrorIs(err, errors.ErrUnknownKind)
}

func TestWriter_Write_FailsWhenDirectoryIsAFile(t *testing.T) {
	req := require.New(t)
	writer, resolver := newTestWriter(t)
	req.NoError(os.WriteFile(resolver.KindDir(domain.Image), []byte("not a dir"), 0o600))

	_, err := writer.Write(domain.Image, "m1", "cat.png", []byte("x"))
	req.ErrorIs(err, errors.ErrWriteFailed)
}

func TestWriter_Remove(t *testing.T) {
	req := require.New(t)
	writer, resolver := newTestWriter(t)

	filename, err := writer.Write(domain.Image, "m1", "cat.png", []byte("x"))
	req.NoError(err)
	req.NoError(writer.Remove(domain.Image, filename))
	_, err = os.Stat(resolver.ToLoadForm(domain.Image, filename))
	req.True(os.IsNotExist(err))

	// Second removal is a no-op
	req.NoError(writer.Remove(domain.Image, filename))
}

func TestStorageName(t *testing.T) {
	tests := []struct {
		name      string
		messageID string
		original  string
		want      string
	}{
		{"plain name kept", "m1", "cat.png", "m1_cat.png"},
		{"unicode kept", "m1", "猫.png", "m1_猫.png"},
		{"directory stripped", "m1", "../../etc/passwd", "m1_passwd"},
		{"windows directory stripped", "m1", `C:\Users\bob\cat.png`, "m1_cat.png"},
		{"control characters replaced", "m1", "ca\x00t\n.png", "m1_ca_t_.png"},
		{"leading dots stripped", "m1", "...hidden", "m1_hidden"},
		{"empty name", "m1", "", "m1_file"},
		{"separator in id", "a/b", "cat.png", "b_cat.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, StorageName(tt.messageID, tt.original))
		})
	}
}

func TestStorageName_TruncatesKeepingExtension(t *testing.T) {
	req := require.New(t)
	original := strings.Repeat("é", 300) + ".png"

	name := StorageName("m1", original)

	req.True(strings.HasPrefix(name, "m1_"))
	req.True(strings.HasSuffix(name, ".png"))
	req.LessOrEqual(len(name), len("m1_")+maxNameBytes)
	req.True(strings.HasPrefix(strings.TrimPrefix(name, "m1_"), "é"))
}
