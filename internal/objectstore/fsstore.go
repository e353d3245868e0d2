package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"h3routeserv/pkg/logger"
)

// FSStore is a Store backed by a directory tree rooted at Root, used for
// local development and single-node deployments (objectstore.type=fs).
type FSStore struct {
	root string
}

// NewFSStore opens (creating if necessary) a filesystem-backed store rooted
// at root.
func NewFSStore(root string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{root: root}, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.root, filepath.FromSlash(key))
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := withRetry(ctx, "fs.Get", key, func() error {
		f, err := os.Open(s.path(key))
		if err != nil {
			if os.IsNotExist(err) {
				return backoffPermanent(ErrNotFound)
			}
			return err
		}
		data, err = readAll(f)
		return err
	})
	return data, err
}

func (s *FSStore) Put(ctx context.Context, key string, value []byte) error {
	return withRetry(ctx, "fs.Put", key, func() error {
		full := s.path(key)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return err
		}
		return os.WriteFile(full, value, 0o644)
	})
}

func (s *FSStore) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	base := s.root
	err := filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			out = append(out, ObjectInfo{Key: key, Size: info.Size()})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	return withRetry(ctx, "fs.Delete", key, func() error {
		err := os.Remove(s.path(key))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	})
}

func (s *FSStore) Close() error {
	logger.Log.Debug("filesystem object store closed", "root", s.root)
	return nil
}
