package moderation

import (
	"bufio"
	"bytes"
	"io/fs"
	"message-board/errors"
	"path"
	"strings"

	"github.com/samber/lo"
)

// CensoredData carries the loaded words and the dictionaries they came from.
type CensoredData struct {
	Words     []string
	Languages []string
}

// LoadWords reads every .txt dictionary under dir, one word per line.
// The file name without extension is reported as the language ("fr.txt" -> "fr").
func LoadWords(fsys fs.FS, dir string) (CensoredData, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return CensoredData{}, err
	}

	var languages []string
	uniqueWords := make(map[string]struct{})

	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".txt" {
			continue
		}
		languages = append(languages, strings.TrimSuffix(entry.Name(), ".txt"))

		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return CensoredData{}, err
		}

		// Scanner copes with \r\n line endings
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				uniqueWords[line] = struct{}{}
			}
		}
		if err := scanner.Err(); err != nil {
			return CensoredData{}, err
		}
	}

	if len(uniqueWords) == 0 {
		return CensoredData{}, errors.ErrEmptyWords
	}
	return CensoredData{Words: lo.Keys(uniqueWords), Languages: languages}, nil
}
