package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/avolkov/filevault/internal/common"
	"github.com/avolkov/filevault/internal/server/models"
	"github.com/avolkov/filevault/internal/server/storage"
)

// FileService owns the per-identity file namespace: it derives physical
// storage keys from (owner, logical name), guards against traversal, and
// serializes concurrent writes to the same key.
type FileService struct {
	blobs storage.BlobStore
	locks *keyedMutex
}

func NewFileService(blobs storage.BlobStore) *FileService {
	return &FileService{blobs: blobs, locks: newKeyedMutex()}
}

// DeriveKey maps (owner, logical name) to the physical storage key
// "owner/name". The slash makes the split unambiguous for any username that
// the name validation admits, so two owners can use identical logical names
// without collision. Names that could escape the namespace are rejected with
// common.ErrInvalidName.
func DeriveKey(owner, name string) (string, error) {
	if err := validateSegment(owner); err != nil {
		return "", err
	}
	if err := validateSegment(name); err != nil {
		return "", err
	}
	return owner + "/" + name, nil
}

// validateSegment rejects values that would change the shape of the derived
// key: empty strings, path separators, relative-path markers and NUL.
func validateSegment(s string) error {
	if s == "" || s == "." || s == ".." {
		return common.ErrInvalidName
	}
	if strings.ContainsAny(s, "/\\\x00") {
		return common.ErrInvalidName
	}
	return nil
}

// Put stores the content under the identity's namespace, overwriting any
// previous upload with the same logical name. Writes to the same key are
// serialized by a per-key lock released on all exit paths; a concurrent List
// never observes a partially written object through this service.
func (s *FileService) Put(ctx context.Context, identity, logicalName string, content io.Reader) (*models.StoredFile, error) {
	key, err := DeriveKey(identity, logicalName)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(key)
	defer unlock()

	size, err := s.blobs.Put(ctx, key, content)
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("storing %s: %w", logicalName, err))
	}

	return &models.StoredFile{
		Owner:       identity,
		LogicalName: logicalName,
		PhysicalKey: key,
		SizeBytes:   size,
	}, nil
}

// List enumerates the identity's files, ordered by logical name. Only objects
// beneath the identity's prefix are visible; other owners' keys and sizes
// never leak into the result.
func (s *FileService) List(ctx context.Context, identity string) ([]models.StoredFile, error) {
	if err := validateSegment(identity); err != nil {
		return nil, err
	}

	objects, err := s.blobs.List(ctx, identity+"/")
	if err != nil {
		return nil, mapStorageErr(fmt.Errorf("listing files: %w", err))
	}

	files := make([]models.StoredFile, 0, len(objects))
	for _, o := range objects {
		name, ok := strings.CutPrefix(o.Key, identity+"/")
		if !ok {
			continue
		}
		files = append(files, models.StoredFile{
			Owner:       identity,
			LogicalName: name,
			PhysicalKey: o.Key,
			SizeBytes:   o.Size,
		})
	}

	return files, nil
}

// mapStorageErr converts a deadline hit inside the blob store into the
// caller-facing timeout error.
func mapStorageErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return common.ErrTimeout
	}
	return err
}
