// Package distribution defines the port for publishing transcoded
// artifacts to a signed-URL-capable object store.
package distribution

import (
	"context"
	"time"
)

// MIME type constants for published media
const (
	MimeTypeMP3 = "audio/mpeg"
)

// UploadRequest contains the parameters needed to publish a transient file
type UploadRequest struct {
	LocalPath   string // Full path to the local transient file
	ObjectName  string // Target object name in the store
	ContentType string // MIME type of the file
}

// PublishedArtifact is the result of a successful publish. The store owns
// the object; the process holds only the signed URL.
type PublishedArtifact struct {
	SignedURL string
	ExpiresAt time.Time
}

// Publisher uploads a local file and issues a time-limited signed
// retrieval URL. Publish is atomic from the caller's perspective: either
// the object and its URL both become available, or neither does.
type Publisher interface {
	Publish(ctx context.Context, req *UploadRequest) (*PublishedArtifact, error)
}
