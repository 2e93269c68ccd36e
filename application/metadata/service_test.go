package metadata

import (
	"context"
	"errors"
	"testing"

	"yt-mp3-service/domain/pipeline"
	"yt-mp3-service/domain/video"
)

type mockResolver struct {
	metadata   *video.Metadata
	shouldFail bool
	failError  error
	calls      int
}

func (m *mockResolver) Resolve(ctx context.Context, ref video.Reference) (*video.Metadata, error) {
	m.calls++
	if m.shouldFail {
		return nil, m.failError
	}
	return m.metadata, nil
}

func TestGetFormatsDuration(t *testing.T) {
	resolver := &mockResolver{metadata: &video.Metadata{
		Title:           "Test Song",
		Author:          "Test Channel",
		DurationSeconds: 200,
		ThumbnailURL:    "https://i.ytimg.com/vi/x/default.jpg",
	}}
	svc := NewService(resolver)

	info, err := svc.Get(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.Title != "Test Song" {
		t.Errorf("title = %q", info.Title)
	}
	if info.Duration != "00:03:20" {
		t.Errorf("duration = %q, want 00:03:20", info.Duration)
	}
	if info.Author != "Test Channel" {
		t.Errorf("author = %q", info.Author)
	}
	if info.Thumbnail == "" {
		t.Error("expected a thumbnail url")
	}
}

func TestGetSubstitutesMissingAuthor(t *testing.T) {
	resolver := &mockResolver{metadata: &video.Metadata{
		Title:           "Untitled",
		DurationSeconds: 60,
	}}
	svc := NewService(resolver)

	info, err := svc.Get(context.Background(), "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Author != video.UnknownArtist {
		t.Errorf("author = %q, want placeholder", info.Author)
	}
}

func TestGetInvalidURLSkipsResolver(t *testing.T) {
	resolver := &mockResolver{}
	svc := NewService(resolver)

	_, err := svc.Get(context.Background(), "not-a-url")

	var pe *pipeline.Error
	if !errors.As(err, &pe) || pe.Kind != pipeline.KindInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if resolver.calls != 0 {
		t.Errorf("expected zero resolver calls, got %d", resolver.calls)
	}
}

func TestGetResolverFailure(t *testing.T) {
	resolver := &mockResolver{shouldFail: true, failError: errors.New("video not found")}
	svc := NewService(resolver)

	_, err := svc.Get(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	var pe *pipeline.Error
	if !errors.As(err, &pe) || pe.Kind != pipeline.KindMetadataUnavailable {
		t.Fatalf("expected metadata unavailable error, got %v", err)
	}
}
