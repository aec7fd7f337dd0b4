// Package corpus loads the source document folder into raw documents.
package corpus

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"ragchat/internal/domain"
)

// DecodeError policies for files that are not valid text.
const (
	DecodeSkip = "skip"
	DecodeFail = "fail"
)

// Loader reads matched text files under a folder, recursively.
type Loader struct {
	dir           string
	extensions    map[string]struct{}
	onDecodeError string
}

// New creates a loader for dir. Files are matched by extension; empty files
// are loaded like any other.
func New(dir string, extensions []string, onDecodeError string) *Loader {
	exts := make(map[string]struct{}, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = struct{}{}
	}
	if onDecodeError == "" {
		onDecodeError = DecodeSkip
	}
	return &Loader{dir: dir, extensions: exts, onDecodeError: onDecodeError}
}

// Load returns one document per matched file. Depending on the configured
// policy, undecodable files are either skipped with a warning or fail the
// whole load.
func (l *Loader) Load() ([]domain.Document, error) {
	var docs []domain.Document
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !l.matches(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if !utf8.Valid(data) {
			if l.onDecodeError == DecodeFail {
				return fmt.Errorf("file %s is not valid UTF-8", path)
			}
			log.Printf("warning: skipping undecodable file %s", path)
			return nil
		}
		rel, err := filepath.Rel(l.dir, path)
		if err != nil {
			rel = path
		}
		docs = append(docs, domain.Document{
			ID:      hashString(rel),
			Path:    rel,
			Content: string(data),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (l *Loader) matches(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, ok := l.extensions[ext]
	return ok
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:8])
}
