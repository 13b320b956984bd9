package indexer

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
)

// Entry is one path produced by a Walker.
type Entry struct {
	Path    string
	Regular bool
}

// Walker enumerates every descendant of root, at any depth.
type Walker interface {
	Walk(ctx context.Context, root string, visit func(Entry) error) error
}

// FileReader returns the full content of a file.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// DirWalker walks the local filesystem in lexical order. Directories that
// cannot be listed below root are reported through OnError and skipped;
// failing to open root itself aborts the walk.
type DirWalker struct {
	OnError func(path string, err error)
}

func (w DirWalker) Walk(ctx context.Context, root string, visit func(Entry) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			if w.OnError != nil {
				w.OnError(path, err)
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return visit(Entry{Path: path, Regular: d.Type().IsRegular()})
	})
}

// OSReader reads files from the local filesystem.
type OSReader struct{}

func (OSReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
