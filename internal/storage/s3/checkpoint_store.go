package s3

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"freightx/internal/domain"
	"freightx/internal/port"
	"freightx/internal/storage"
)

// maxPutAttempts bounds read-merge-write rounds lost to concurrent writers.
const maxPutAttempts = 3

type checkpointStore struct {
	objects port.ObjectStore
	bucket  string
	key     string
	now     func() time.Time
}

// NewCheckpointStore keeps the checkpoint document for runName as a single
// object under prefix. Appends are conditional on the ETag that was read, so
// two runs sharing a name cannot drop each other's entries.
func NewCheckpointStore(objects port.ObjectStore, bucket, prefix, runName string) port.CheckpointStore {
	return &checkpointStore{
		objects: objects,
		bucket:  bucket,
		key:     CheckpointKey(prefix, runName),
		now:     time.Now,
	}
}

// CheckpointKey is the object key for a run's checkpoint document.
func CheckpointKey(prefix, runName string) string {
	return path.Join(prefix, runName+".checkpoint.json")
}

func (s *checkpointStore) Load(ctx context.Context) ([]domain.CheckpointEntry, error) {
	entries, _, err := s.read(ctx)
	return entries, err
}

func (s *checkpointStore) read(ctx context.Context) ([]domain.CheckpointEntry, string, error) {
	obj, err := s.objects.Get(ctx, s.bucket, s.key)
	if errors.Is(err, domain.ErrObjectNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("loading checkpoint: %w", err)
	}
	entries, err := storage.DecodeCheckpoint(obj.Data)
	if err != nil {
		return nil, "", fmt.Errorf("checkpoint s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return entries, obj.ETag, nil
}

func (s *checkpointStore) Append(ctx context.Context, entries []domain.CheckpointEntry) error {
	if len(entries) == 0 {
		return nil
	}
	var err error
	for attempt := 0; attempt < maxPutAttempts; attempt++ {
		if err = s.appendOnce(ctx, entries); !errors.Is(err, domain.ErrObjectConflict) {
			return err
		}
	}
	return err
}

func (s *checkpointStore) appendOnce(ctx context.Context, entries []domain.CheckpointEntry) error {
	existing, etag, err := s.read(ctx)
	if err != nil {
		return err
	}
	data, err := storage.EncodeCheckpoint(storage.MergeCheckpoint(existing, entries), s.now())
	if err != nil {
		return err
	}
	_, err = s.objects.Put(ctx, port.PutInput{
		Bucket:      s.bucket,
		Key:         s.key,
		Data:        data,
		ContentType: "application/json",
		IfMatch:     etag,
		IfNoneMatch: etag == "",
	})
	if err != nil {
		return fmt.Errorf("saving checkpoint: %w", err)
	}
	return nil
}

func (s *checkpointStore) Clear(ctx context.Context) error {
	if err := s.objects.Delete(ctx, s.bucket, s.key); err != nil && !errors.Is(err, domain.ErrObjectNotFound) {
		return fmt.Errorf("clearing checkpoint: %w", err)
	}
	return nil
}
