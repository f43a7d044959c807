// Package proofs stores uploaded proof documents on the filesystem and hands
// back a stable reference string the ledger stores on the transaction. The
// core never interprets file contents.
package proofs

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kasbuku/kasbuku/internal/errs"
)

// MaxSize caps a single upload at 16 MiB.
const MaxSize = 16 << 20

// Store writes proof files under a single directory.
type Store struct {
	dir string
}

// New ensures the directory exists and returns a store rooted there.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("proofs: dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Save persists the upload and returns its reference: a timestamp prefix plus
// the sanitized original filename.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	name := Sanitize(filename)
	if name == "" {
		return "", errs.ErrInvalid
	}
	ref := strconv.FormatInt(time.Now().UnixNano(), 10) + "_" + name
	f, err := os.OpenFile(filepath.Join(s.dir, ref), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	_, err = io.Copy(f, io.LimitReader(r, MaxSize))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return ref, nil
}

// Open returns the stored file for a previously issued reference.
func (s *Store) Open(ref string) (*os.File, error) {
	// A reference is a single sanitized path element; anything else is rejected
	// before touching the filesystem.
	if ref == "" || ref != Sanitize(ref) {
		return nil, errs.ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, ref))
	if os.IsNotExist(err) {
		return nil, errs.ErrNotFound
	}
	return f, err
}

// Sanitize reduces a client-supplied filename to a safe single path element:
// lowercase letters, digits, '.', '-' and '_'; everything else collapses to '_'.
func Sanitize(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	out := make([]rune, 0, len(name))
	prevUnderscore := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '-':
			out = append(out, r)
			prevUnderscore = false
		default:
			if prevUnderscore {
				continue
			}
			out = append(out, '_')
			prevUnderscore = true
		}
	}
	cleaned := strings.Trim(string(out), "._")
	if cleaned == "" {
		return ""
	}
	return cleaned
}
