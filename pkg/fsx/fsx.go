package fsx

import (
	"context"
	"io"
)

// FileReader reads files from a storage backend.
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	ReadFileStream(ctx context.Context, path string) (io.ReadCloser, error)
}

// FileWriter writes and deletes files on a storage backend.
type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte) error
	WriteFileStream(ctx context.Context, path string, r io.Reader) error
	DeleteFile(ctx context.Context, path string) error
}

// FileSystem is the full storage abstraction used for uploaded documents.
type FileSystem interface {
	FileReader
	FileWriter

	// Join builds a backend-native path from segments.
	Join(parts ...string) string
}
