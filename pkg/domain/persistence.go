package domain

import "context"

// Bucket names the key under which a collection (or the session record) is
// mirrored in the persistence layer. Each bucket holds one JSON document.
type Bucket string

// Persistence buckets. The four collection buckets each hold a JSON array;
// the session bucket holds a Session object.
const (
	BucketLeads    Bucket = "leads"
	BucketMeetings Bucket = "meetings"
	BucketProjects Bucket = "projects"
	BucketTasks    Bucket = "tasks"
	BucketSession  Bucket = "session"
)

// CollectionBuckets lists the four record buckets in restore order.
var CollectionBuckets = []Bucket{BucketLeads, BucketMeetings, BucketProjects, BucketTasks}

// Mirror is the durable key-value layer the in-memory state is written
// through to. Implementations persist opaque JSON payloads per bucket; they
// perform no schema validation and no versioning.
//
// Read returns (nil, nil) for a bucket that has never been written.
type Mirror interface {
	Read(ctx context.Context, bucket Bucket) ([]byte, error)
	Write(ctx context.Context, bucket Bucket, payload []byte) error
	Delete(ctx context.Context, bucket Bucket) error
	Close() error
}
