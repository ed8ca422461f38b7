// Package storage reads the analytics tables published by the data platform.
//
// Tables are JSON objects stored under "{table}/{YYYY-MM-DD}.json", one object
// per publication date. Two implementations are provided:
// - LocalStorage: a directory on disk, for development
// - S3Storage: an S3 bucket, for deployed environments
package storage

import (
	"context"
	"io"
	"mime"
	"path"
	"strings"
	"time"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage is a read-only object store.
//
// All methods are context-aware for timeout and cancellation support.
type Storage interface {
	// Get retrieves the data at the specified key.
	// Returns the data as an io.ReadCloser (caller must close), object metadata,
	// and an error. Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// List returns the objects whose keys start with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string    // Object key/path
	Size         int64     // Size in bytes
	ContentType  string    // MIME type
	LastModified time.Time // Last modification time
}

// =============================================================================
// Configuration Types
// =============================================================================

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory holding one subdirectory per table.
	// Example: "./analytics"
	BasePath string
}

// S3Config holds configuration for S3 storage.
type S3Config struct {
	Bucket string
	Region string

	// Endpoint overrides the S3 endpoint, e.g. for localstack. Path-style
	// addressing is used when it is set.
	Endpoint string

	// Static credentials. Both must be set.
	AccessKeyID     string
	SecretAccessKey string
}

// =============================================================================
// Table Keys
// =============================================================================

const tableDateLayout = "2006-01-02"

// TableKey returns the key of table as published on date.
func TableKey(table string, date time.Time) string {
	return table + "/" + date.Format(tableDateLayout) + ".json"
}

// TableDate parses the publication date out of a table key.
func TableDate(key string) (time.Time, bool) {
	name := path.Base(key)
	if !strings.HasSuffix(name, ".json") {
		return time.Time{}, false
	}
	date, err := time.Parse(tableDateLayout, strings.TrimSuffix(name, ".json"))
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// contentType prefers the type the store reported, then the key's extension.
func contentType(reported, key string) string {
	if reported != "" {
		return reported
	}
	ext := strings.ToLower(path.Ext(key))
	if ext == ".json" {
		return "application/json"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// Latest returns the key and date of the most recently published copy of table.
// Objects that are not named by date are ignored. Returns ErrNotFound if
// there are none.
func Latest(ctx context.Context, s Storage, table string) (string, time.Time, error) {
	objects, err := s.List(ctx, table+"/")
	if err != nil {
		return "", time.Time{}, err
	}

	var (
		latestKey  string
		latestDate time.Time
	)
	for _, obj := range objects {
		date, ok := TableDate(obj.Key)
		if !ok {
			continue
		}
		if latestKey == "" || date.After(latestDate) {
			latestKey, latestDate = obj.Key, date
		}
	}
	if latestKey == "" {
		return "", time.Time{}, &StorageError{Op: "Latest", Key: table, Err: ErrNotFound}
	}
	return latestKey, latestDate, nil
}
