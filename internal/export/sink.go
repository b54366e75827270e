package export

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileSink writes the snapshot to Path.  The file is replaced atomically:
// data goes to a temporary file in the same directory which is renamed
// over Path once complete.
type FileSink struct {
	Path string
}

func (s FileSink) String() string { return s.Path }

func (s FileSink) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".userdir-export-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// WriterSink writes the snapshot to W, typically standard output.
type WriterSink struct {
	W    io.Writer
	Name string
}

func (s WriterSink) String() string { return s.Name }

func (s WriterSink) Write(_ context.Context, data []byte) error {
	_, err := s.W.Write(data)
	return err
}

// ParseDestination picks a sink for dest: "s3://bucket/key" writes an S3
// object, "-" writes to stdout, anything else is a file path.
func ParseDestination(ctx context.Context, dest string, opts S3Options) (Sink, error) {
	switch {
	case dest == "":
		return nil, fmt.Errorf("export destination required")
	case dest == "-":
		return WriterSink{W: os.Stdout, Name: "stdout"}, nil
	case strings.HasPrefix(dest, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(dest, "s3://"), "/")
		if !ok || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
			return nil, fmt.Errorf("invalid s3 destination %q, want s3://bucket/key", dest)
		}
		return NewS3Sink(ctx, bucket, key, opts)
	default:
		return FileSink{Path: dest}, nil
	}
}
