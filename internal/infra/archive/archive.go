// Package archive stores exported snapshot documents in object storage. A
// snapshot export is an immutable JSON blob keyed by its capture instant; the
// drivers mirror a minimal subset of S3 semantics so the filesystem and
// in-memory backends behave like the real one.
package archive

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// Driver identifies a concrete archive backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local filesystem (default, dev)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

const keyTimeLayout = "20060102T150405Z"

// Info describes a stored archive object.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the interface archive backends implement. Put must fail when the
// key already exists; archives are write-once.
type Store interface {
	Put(ctx context.Context, key string, payload []byte) (Info, error)
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// SnapshotKey names an export captured at the given instant.
func SnapshotKey(at time.Time) string {
	return "snapshot-" + at.UTC().Format(keyTimeLayout) + ".json"
}

// Open selects an archive backend from environment variables.
//
//	OPSDESK_ARCHIVE_DRIVER: fs|s3|memory (default fs)
//	OPSDESK_ARCHIVE_FS_ROOT: directory root when driver=fs (default ./archivedata)
//	(S3 specific variables documented in s3.go)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("OPSDESK_ARCHIVE_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("OPSDESK_ARCHIVE_FS_ROOT"))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown archive driver %s", driver)
	}
}

func validKey(key string) error {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return fmt.Errorf("invalid archive key %q", key)
	}
	return nil
}
