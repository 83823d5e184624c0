package records

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Source URI schemes
const (
	SchemeFile = "file"
	SchemeS3   = "s3"
)

// FileSource reads an account snapshot from the local filesystem
type FileSource struct {
	path string
}

// NewFileSource creates a source for a local CSV file
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// FileSourceFactory accepts plain paths and file:// URIs
func FileSourceFactory(_ context.Context, location string) (Source, error) {
	path := strings.TrimPrefix(location, SchemeFile+"://")
	if path == "" {
		return nil, fmt.Errorf("file source path cannot be empty")
	}
	return NewFileSource(path), nil
}

func (s *FileSource) Load(ctx context.Context) (*ParseResult, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open account source: %w", err)
	}
	defer f.Close()

	res, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("source", s.path).
		Int("rows", len(res.Records)).
		Int("warnings", len(res.Warnings)).
		Msg("account source loaded")

	return res, nil
}
