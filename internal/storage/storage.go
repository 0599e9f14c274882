package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"docchat/internal/models"

	"github.com/rs/zerolog/log"
)

// canonicalName is the fixed base name of the single document slot. An
// upload fully replaces whatever was there before; there is no versioning
// and no per-session isolation.
const canonicalName = "document"

var allowedMIME = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
}

var slotExtensions = []string{".pdf", ".docx", ".doc"}

// Store persists the single uploaded document under a canonical name.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %v", err)
	}
	return &Store{dir: dir}, nil
}

// Save validates the declared MIME type and writes the document into the
// slot, removing any previously stored document first. Returns the stored
// filename.
func (s *Store) Save(contentType string, data []byte) (string, error) {
	ext, ok := allowedMIME[contentType]
	if !ok {
		return "", fmt.Errorf("%w: mime type %s", models.ErrUnsupportedFormat, contentType)
	}

	for _, old := range slotExtensions {
		if old == ext {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, canonicalName+old)); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("ext", old).Msg("Failed to remove previous document")
		}
	}

	name := canonicalName + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store document: %v", err)
	}
	return name, nil
}

// CurrentDocument returns the path of the stored document, if any.
func (s *Store) CurrentDocument() (string, bool) {
	for _, ext := range slotExtensions {
		path := filepath.Join(s.dir, canonicalName+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
