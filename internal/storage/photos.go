package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrTooLarge    = errors.New("file exceeds the size limit")
	ErrInvalidPath = errors.New("path escapes the storage root")
)

const (
	stagingDir = "staging"
	fileMode   = 0o644
	dirMode    = 0o755
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/heic": ".heic",
}

// ExtensionFor returns the file extension for a supported photo content type.
func ExtensionFor(contentType string) (string, bool) {
	ext, ok := extensions[strings.ToLower(strings.TrimSpace(contentType))]
	return ext, ok
}

// ContentTypeFor guesses a supported content type from a file name.
func ContentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	}
	return "application/octet-stream"
}

// PhotoStore keeps photo files under a root directory in the layout
// users/<user>/trips/<trip>/<photo><ext>. Paths handed to and returned from
// the store are relative to the root.
type PhotoStore struct {
	root string
}

func NewPhotoStore(root string) (*PhotoStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, stagingDir), dirMode); err != nil {
		return nil, fmt.Errorf("failed to create photo root: %w", err)
	}
	return &PhotoStore{root: abs}, nil
}

func (s *PhotoStore) Root() string {
	return s.root
}

// CanonicalPath returns where a photo lives relative to the root.
func CanonicalPath(userID, tripID, photoID uuid.UUID, ext string) string {
	return filepath.Join("users", userID.String(), "trips", tripID.String(), photoID.String()+ext)
}

// Abs resolves a relative storage path, refusing paths that leave the root.
func (s *PhotoStore) Abs(rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", ErrInvalidPath
	}
	p := filepath.Join(s.root, rel)
	if p != s.root && !strings.HasPrefix(p, s.root+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return p, nil
}

// Stage writes r to a temporary file under the root and returns its relative
// path and size. More than maxBytes bytes is an ErrTooLarge error and leaves
// nothing behind.
func (s *PhotoStore) Stage(r io.Reader, maxBytes int64) (string, int64, error) {
	rel := filepath.Join(stagingDir, uuid.NewString()+".part")
	p, err := s.Abs(rel)
	if err != nil {
		return "", 0, err
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileMode)
	if err != nil {
		return "", 0, err
	}
	n, err := io.Copy(f, io.LimitReader(r, maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		os.Remove(p)
		return "", 0, err
	}
	return rel, n, nil
}

// Commit moves a staged file to rel and returns its sha256 checksum.
func (s *PhotoStore) Commit(staged, rel string) (string, error) {
	src, err := s.Abs(staged)
	if err != nil {
		return "", err
	}
	dst, err := s.Abs(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), dirMode); err != nil {
		return "", err
	}
	if err := os.Rename(src, dst); err != nil {
		return "", err
	}
	sum, _, err := Checksum(dst)
	return sum, err
}

// ImportResult describes what Import did.
type ImportResult struct {
	Checksum string
	Size     int64
	// Skipped is set when the destination already held identical bytes.
	Skipped bool
}

// Import copies a file from outside the store to rel. An existing
// destination with the same checksum is left alone; one with different
// content is replaced. With move set, the source is removed afterwards.
func (s *PhotoStore) Import(src, rel string, move bool) (ImportResult, error) {
	dst, err := s.Abs(rel)
	if err != nil {
		return ImportResult{}, err
	}

	srcSum, srcSize, err := Checksum(src)
	if err != nil {
		return ImportResult{}, err
	}
	if dstSum, _, err := Checksum(dst); err == nil && dstSum == srcSum {
		if move {
			if err := os.Remove(src); err != nil {
				return ImportResult{}, err
			}
		}
		return ImportResult{Checksum: srcSum, Size: srcSize, Skipped: true}, nil
	}

	if err := copyFile(src, dst); err != nil {
		return ImportResult{}, err
	}
	if move {
		if err := os.Remove(src); err != nil {
			return ImportResult{}, err
		}
	}
	return ImportResult{Checksum: srcSum, Size: srcSize}, nil
}

// copyFile writes through a temporary file in the destination directory so
// a crash never leaves a truncated photo at dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), dirMode); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".import-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

// Open opens a stored file for reading.
func (s *PhotoStore) Open(rel string) (*os.File, error) {
	p, err := s.Abs(rel)
	if err != nil {
		return nil, err
	}
	return os.Open(p)
}

// Remove deletes a stored file. Missing files are not an error.
func (s *PhotoStore) Remove(rel string) error {
	p, err := s.Abs(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Checksum returns the hex sha256 and size of the file at path.
func Checksum(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
