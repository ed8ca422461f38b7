package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
)

// LocalStorage reads tables from a directory, for development. Access is
// confined to the directory by os.Root.
type LocalStorage struct {
	root   *os.Root
	logger *slog.Logger
}

// NewLocalStorage opens cfg.BasePath, which must be an existing directory.
func NewLocalStorage(cfg LocalConfig, logger *slog.Logger) (*LocalStorage, error) {
	root, err := os.OpenRoot(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("open analytics directory: %w", err)
	}
	logger.Info("initialized local storage", "base_path", root.Name())
	return &LocalStorage{root: root, logger: logger}, nil
}

func (s *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, ObjectInfo{}, err
	}
	if !fs.ValidPath(key) || key == "." {
		return nil, ObjectInfo{}, &StorageError{Op: "Get", Key: key, Err: ErrInvalidKey}
	}

	f, err := s.root.Open(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ObjectInfo{}, &StorageError{Op: "Get", Key: key, Err: ErrNotFound}
	}
	if err != nil {
		return nil, ObjectInfo{}, &StorageError{Op: "Get", Key: key, Err: err}
	}

	stat, err := f.Stat()
	if err != nil || stat.IsDir() {
		_ = f.Close()
		if err == nil {
			err = ErrNotFound
		}
		return nil, ObjectInfo{}, &StorageError{Op: "Get", Key: key, Err: err}
	}

	return f, objectInfo(key, stat), nil
}

// List walks the whole directory and keeps the files whose slash-separated
// keys start with prefix.
func (s *LocalStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.Contains(prefix, "..") {
		return nil, &StorageError{Op: "List", Key: prefix, Err: ErrInvalidKey}
	}

	var objects []ObjectInfo
	err := fs.WalkDir(s.root.FS(), ".", func(key string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasPrefix(key, prefix) {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, objectInfo(key, info))
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "List", Key: prefix, Err: err}
	}

	s.logger.Debug("listed files", "prefix", prefix, "count", len(objects))
	return objects, nil
}

func objectInfo(key string, fi fs.FileInfo) ObjectInfo {
	return ObjectInfo{
		Key:          key,
		Size:         fi.Size(),
		ContentType:  contentType("", key),
		LastModified: fi.ModTime(),
	}
}
