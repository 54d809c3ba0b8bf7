package port

import "context"

// Object is a stored document together with its version tag.
type Object struct {
	Data []byte
	ETag string
}

// PutInput describes a conditional write. IfMatch requires the current ETag
// to match; IfNoneMatch requires the key to be absent. Neither set means an
// unconditional overwrite.
type PutInput struct {
	Bucket      string
	Key         string
	Data        []byte
	ContentType string
	IfMatch     string
	IfNoneMatch bool
}

// ObjectStore is the versioned object storage behind remote checkpoints.
type ObjectStore interface {
	// Get returns ErrObjectNotFound when the key does not exist.
	Get(ctx context.Context, bucket, key string) (*Object, error)
	// Put returns the new ETag, or ErrObjectConflict when a precondition fails.
	Put(ctx context.Context, in PutInput) (string, error)
	Delete(ctx context.Context, bucket, key string) error
}
