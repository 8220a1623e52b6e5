package driven

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alorle/playlist-manager/internal/port/driven"
)

// FileSource implements the SourceReader port by reading local files.
type FileSource struct{}

// NewFileSource creates a new file-based source reader.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Read loads the file at path. The source name is the file's base name.
func (s *FileSource) Read(ctx context.Context, path string) (driven.Source, error) {
	if err := ctx.Err(); err != nil {
		return driven.Source{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return driven.Source{}, fmt.Errorf("%w: %w", driven.ErrSourceUnavailable, err)
	}

	return driven.Source{Name: filepath.Base(path), Content: string(data)}, nil
}
