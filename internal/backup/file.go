package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/starford/caseificio/internal/storage"
)

// FileSink writes backups into a local directory.
type FileSink struct {
	fs *storage.FS
}

// NewFileSink creates dir if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: create dir: %w", err)
	}
	fs, err := storage.NewFS(dir)
	if err != nil {
		return nil, err
	}
	return &FileSink{fs: fs}, nil
}

// Put writes data atomically to dir/key.
func (s *FileSink) Put(_ context.Context, key string, data []byte) (string, error) {
	if err := s.fs.Write(key, data); err != nil {
		return "", err
	}
	return filepath.Join(s.fs.Root(), key), nil
}

// Latest returns the newest backup in the directory, or "" when there is
// none. Keys sort by time.
func (s *FileSink) Latest() (string, error) {
	files, err := s.fs.List(".json")
	if err != nil {
		return "", err
	}
	latest := ""
	for _, f := range files {
		if f.Path > latest {
			latest = f.Path
		}
	}
	return latest, nil
}

// Read returns the content of a backup written by Put.
func (s *FileSink) Read(key string) ([]byte, error) {
	return s.fs.Read(key)
}
