package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/avolkov/filevault/internal/filex"
)

// LocalStore keeps one file per key beneath a root directory. A key of the
// form "owner/name" becomes root/owner/name, so each owner gets its own
// subdirectory and listings never have to scan other owners' files.
type LocalStore struct {
	root string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	root, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o770); err != nil {
		return 0, fmt.Errorf("mkdir for %s: %w", key, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", key, err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// do not leave a half-written object behind
		_ = os.Remove(path)
		return 0, fmt.Errorf("write %s: %w", key, err)
	}

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	return n, nil
}

func (s *LocalStore) List(ctx context.Context, prefix string) ([]Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := s.path(prefix)
	objects := make([]Object, 0)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}

		objects = append(objects, Object{
			Key:  filepath.ToSlash(rel),
			Size: info.Size(),
		})
		return nil
	})
	if err != nil {
		// an owner that never uploaded anything has no directory yet
		if errors.Is(err, fs.ErrNotExist) {
			return objects, nil
		}
		return nil, fmt.Errorf("list %s: %w", prefix, err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	if prefix == "" {
		return objects, nil
	}

	// WalkDir on a prefix directory already filters, but a prefix that is not
	// a whole path segment must not leak sibling directories
	filtered := objects[:0]
	for _, o := range objects {
		if strings.HasPrefix(o.Key, strings.TrimSuffix(prefix, "/")+"/") || o.Key == prefix {
			filtered = append(filtered, o)
		}
	}

	return filtered, nil
}
