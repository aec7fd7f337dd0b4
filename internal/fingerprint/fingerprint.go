// Package fingerprint computes a content digest over a corpus folder so the
// pipeline can detect changes without relying on timestamps.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dir hashes the relative path and byte contents of every regular file under
// root, visited in sorted path order, and returns the hex digest. Identical
// folder contents always produce the identical digest regardless of
// filesystem iteration order; renaming a file changes the digest even when
// its bytes stay the same. Any unreadable file is a hard error: a partial
// hash would later be mistaken for "unchanged".
func Dir(root string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		// The NUL keeps the path and content segments unambiguous.
		_, _ = io.WriteString(h, filepath.ToSlash(rel))
		_, _ = h.Write([]byte{0})
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(h, f); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Load reads a previously persisted digest. The second return value is false
// when no digest has been saved yet.
func Load(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// Save persists the digest as a plain text file, creating the parent
// directory as needed.
func Save(path, digest string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(digest), 0o644)
}
