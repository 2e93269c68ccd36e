// Package gcs publishes transcoded artifacts to Google Cloud Storage and
// issues V4 signed retrieval URLs.
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"yt-mp3-service/domain/distribution"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// DefaultSignedURLTTL is how long a download link stays valid
const DefaultSignedURLTTL = 15 * time.Minute

// ObjectWriter defines the interface for writing objects to the store
// This allows mocking the storage client in tests
type ObjectWriter interface {
	Write(ctx context.Context, bucket, object, contentType string, src io.Reader) (int64, error)
}

// StorageObjectWriter is the production implementation using the GCS client
type StorageObjectWriter struct {
	client *storage.Client
}

// Write streams src into the named object. The object only becomes
// visible once Close succeeds, which keeps the publish atomic from the
// caller's perspective.
func (w *StorageObjectWriter) Write(ctx context.Context, bucket, object, contentType string, src io.Reader) (int64, error) {
	wr := w.client.Bucket(bucket).Object(object).NewWriter(ctx)
	wr.ContentType = contentType

	n, err := io.Copy(wr, src)
	if err != nil {
		wr.Close()
		return 0, err
	}
	if err := wr.Close(); err != nil {
		return 0, err
	}
	return n, nil
}

// Publisher implements distribution.Publisher using Google Cloud Storage
type Publisher struct {
	bucket         string
	writer         ObjectWriter
	googleAccessID string
	privateKey     []byte
	ttl            time.Duration
	now            func() time.Time
}

// PublisherOption is a functional option for configuring Publisher
type PublisherOption func(*Publisher)

// WithObjectWriter sets a custom object writer (for testing)
func WithObjectWriter(writer ObjectWriter) PublisherOption {
	return func(p *Publisher) {
		p.writer = writer
	}
}

// WithServiceAccountKey injects the signing identity directly (for testing)
func WithServiceAccountKey(accessID string, privateKey []byte) PublisherOption {
	return func(p *Publisher) {
		p.googleAccessID = accessID
		p.privateKey = append([]byte(nil), privateKey...)
	}
}

// WithClock overrides the time source (for testing)
func WithClock(clock func() time.Time) PublisherOption {
	return func(p *Publisher) {
		if clock != nil {
			p.now = clock
		}
	}
}

// WithSignedURLTTL overrides the signed URL validity window
func WithSignedURLTTL(ttl time.Duration) PublisherOption {
	return func(p *Publisher) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// NewPublisher creates a GCS publisher. The signing key comes from the
// credentials file when given, otherwise from application default
// credentials; either way it must be a service account JSON key.
func NewPublisher(ctx context.Context, bucket, credentialsFile string, opts ...PublisherOption) (*Publisher, error) {
	if bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	p := &Publisher{
		bucket: bucket,
		ttl:    DefaultSignedURLTTL,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.writer == nil {
		var clientOpts []option.ClientOption
		if credentialsFile != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(credentialsFile))
		}
		client, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("unable to create storage client: %w", err)
		}
		p.writer = &StorageObjectWriter{client: client}
	}

	if len(p.privateKey) == 0 {
		accessID, key, err := loadServiceAccountKey(ctx, credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("init gcs signer: %w", err)
		}
		p.privateKey = key
		if p.googleAccessID == "" {
			p.googleAccessID = accessID
		}
	}
	if p.googleAccessID == "" {
		return nil, errors.New("gcs signer: google access id is required")
	}

	return p, nil
}

// Publish implements distribution.Publisher
func (p *Publisher) Publish(ctx context.Context, req *distribution.UploadRequest) (*distribution.PublishedArtifact, error) {
	f, err := os.Open(req.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", req.LocalPath, err)
	}
	defer f.Close()

	if _, err := p.writer.Write(ctx, p.bucket, req.ObjectName, req.ContentType, f); err != nil {
		return nil, fmt.Errorf("upload %s: %w", req.ObjectName, err)
	}

	expires := p.now().Add(p.ttl)
	signedURL, err := storage.SignedURL(p.bucket, req.ObjectName, &storage.SignedURLOptions{
		Scheme:         storage.SigningSchemeV4,
		Method:         http.MethodGet,
		Expires:        expires,
		GoogleAccessID: p.googleAccessID,
		PrivateKey:     p.privateKey,
	})
	if err != nil {
		return nil, fmt.Errorf("sign url for %s: %w", req.ObjectName, err)
	}

	return &distribution.PublishedArtifact{
		SignedURL: signedURL,
		ExpiresAt: expires,
	}, nil
}

type serviceAccountKey struct {
	PrivateKey  string `json:"private_key"`
	ClientEmail string `json:"client_email"`
}

// loadServiceAccountKey extracts the signing identity from a service
// account JSON credential.
func loadServiceAccountKey(ctx context.Context, credentialsFile string) (string, []byte, error) {
	var data []byte
	if credentialsFile != "" {
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return "", nil, fmt.Errorf("read credentials file: %w", err)
		}
		data = b
	} else {
		creds, err := google.FindDefaultCredentials(ctx)
		if err != nil {
			return "", nil, fmt.Errorf("find default credentials: %w", err)
		}
		data = creds.JSON
	}
	if len(data) == 0 {
		return "", nil, errors.New("service account JSON not found in credentials")
	}

	var key serviceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return "", nil, fmt.Errorf("parse service account json: %w", err)
	}
	if key.PrivateKey == "" {
		return "", nil, errors.New("service account private key is empty; use a service account JSON credential")
	}

	return key.ClientEmail, []byte(key.PrivateKey), nil
}

// Ensure Publisher implements distribution.Publisher
var _ distribution.Publisher = (*Publisher)(nil)
