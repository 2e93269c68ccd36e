package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"yt-mp3-service/domain/distribution"
	"yt-mp3-service/domain/pipeline"
	"yt-mp3-service/domain/video"
)

// --- Mock implementations for testing ---

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

type mockStreamResolver struct {
	shouldFail bool
	failError  error
	calls      int
}

func (m *mockStreamResolver) OpenAudioStream(ctx context.Context, ref video.Reference) (*video.AudioStream, error) {
	m.calls++
	if m.shouldFail {
		return nil, m.failError
	}
	return &video.AudioStream{
		Body:     io.NopCloser(strings.NewReader("audio-bytes")),
		MimeType: "audio/mp4",
		Bitrate:  128000,
	}, nil
}

type transcodeCall struct {
	req        *video.TranscodeRequest
	outputPath string
}

type mockTranscoder struct {
	calls      []transcodeCall
	shouldFail bool
	failError  error
	files      *mockFileStore // marks output files as existing on success
}

func (m *mockTranscoder) Transcode(ctx context.Context, req *video.TranscodeRequest, outputPath string) error {
	m.calls = append(m.calls, transcodeCall{req: req, outputPath: outputPath})
	if m.shouldFail {
		return m.failError
	}
	if m.files != nil {
		m.files.existing[outputPath] = true
	}
	return nil
}

type mockPublisher struct {
	calls      []*distribution.UploadRequest
	shouldFail bool
	failError  error
}

func (m *mockPublisher) Publish(ctx context.Context, req *distribution.UploadRequest) (*distribution.PublishedArtifact, error) {
	m.calls = append(m.calls, req)
	if m.shouldFail {
		return nil, m.failError
	}
	return &distribution.PublishedArtifact{
		SignedURL: "https://storage.example.com/" + req.ObjectName + "?sig=abc",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

type mockFileStore struct {
	counter  int
	existing map[string]bool
	removed  []string
}

func newMockFileStore() *mockFileStore {
	return &mockFileStore{existing: make(map[string]bool)}
}

func (m *mockFileStore) TransientPath(title string) string {
	m.counter++
	return fmt.Sprintf("/tmp/work/%s-%d.mp3", title, m.counter)
}

func (m *mockFileStore) Exists(path string) bool {
	return m.existing[path]
}

func (m *mockFileStore) Remove(path string) error {
	delete(m.existing, path)
	m.removed = append(m.removed, path)
	return nil
}

// --- Test helpers ---

type fixture struct {
	resolver   *mockResolver
	streams    *mockStreamResolver
	transcoder *mockTranscoder
	publisher  *mockPublisher
	files      *mockFileStore
	service    *Service
}

func newFixture() *fixture {
	files := newMockFileStore()
	f := &fixture{
		resolver: &mockResolver{metadata: &video.Metadata{
			Title:           "Test Song",
			Author:          "Test Channel",
			DurationSeconds: 200,
			ThumbnailURL:    "https://i.ytimg.com/vi/x/default.jpg",
		}},
		streams:    &mockStreamResolver{},
		transcoder: &mockTranscoder{files: files},
		publisher:  &mockPublisher{},
		files:      files,
	}
	f.service = NewService(f.resolver, f.streams, f.transcoder, f.publisher, f.files, "192k", log.New(io.Discard, "", 0))
	return f
}

func assertKind(t *testing.T, err error, want pipeline.Kind) {
	t.Helper()
	var pe *pipeline.Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *pipeline.Error, got %T: %v", err, err)
	}
	if pe.Kind != want {
		t.Fatalf("got kind %s, want %s", pe.Kind, want)
	}
}

const validURL = "https://youtu.be/dQw4w9WgXcQ"

// --- Tests ---

func TestRunRejectsInvalidURLWithoutNetworkCalls(t *testing.T) {
	f := newFixture()

	_, err := f.service.Run(context.Background(), Input{URL: "not-a-url"})

	assertKind(t, err, pipeline.KindInvalidInput)
	if f.resolver.calls != 0 || f.streams.calls != 0 {
		t.Errorf("expected zero collaborator calls, got resolver=%d streams=%d", f.resolver.calls, f.streams.calls)
	}
	if len(f.transcoder.calls) != 0 || len(f.publisher.calls) != 0 {
		t.Error("expected no transcode or publish calls")
	}
}

func TestRunRejectsInvertedRangeBeforeAnyCall(t *testing.T) {
	f := newFixture()

	_, err := f.service.Run(context.Background(), Input{
		URL:       validURL,
		StartTime: "00:40",
		EndTime:   "00:10",
	})

	assertKind(t, err, pipeline.KindInvalidInput)
	if f.resolver.calls != 0 {
		t.Errorf("expected zero resolver calls, got %d", f.resolver.calls)
	}
	if len(f.transcoder.calls) != 0 {
		t.Error("expected no transcode calls")
	}
}

func TestRunRejectsEqualRange(t *testing.T) {
	f := newFixture()

	_, err := f.service.Run(context.Background(), Input{
		URL:       validURL,
		StartTime: "00:10",
		EndTime:   "00:10",
	})

	assertKind(t, err, pipeline.KindInvalidInput)
}

func TestRunPassesStartAndDurationToTranscoder(t *testing.T) {
	f := newFixture()

	result, err := f.service.Run(context.Background(), Input{
		URL:       validURL,
		StartTime: "00:10",
		EndTime:   "00:40",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DownloadURL == "" {
		t.Error("expected a download url")
	}

	if len(f.transcoder.calls) != 1 {
		t.Fatalf("expected 1 transcode call, got %d", len(f.transcoder.calls))
	}
	clip := f.transcoder.calls[0].req.Clip
	if clip == nil {
		t.Fatal("expected a clip range")
	}
	if clip.StartSeconds() != 10 {
		t.Errorf("start = %d, want 10", clip.StartSeconds())
	}
	if clip.DurationSeconds() != 30 {
		t.Errorf("duration = %d, want 30", clip.DurationSeconds())
	}
}

func TestRunWithoutRangeTranscodesFullDuration(t *testing.T) {
	f := newFixture()

	_, err := f.service.Run(context.Background(), Input{URL: validURL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.transcoder.calls[0].req.Clip != nil {
		t.Error("expected no clip for a full download")
	}
}

func TestRunStartOnlyClipsToVideoEnd(t *testing.T) {
	f := newFixture()

	_, err := f.service.Run(context.Background(), Input{
		URL:       validURL,
		StartTime: "01:00",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clip := f.transcoder.calls[0].req.Clip
	if clip == nil {
		t.Fatal("expected a clip range")
	}
	if clip.StartSeconds() != 60 {
		t.Errorf("start = %d, want 60", clip.StartSeconds())
	}
	// Video is 200s long, so the remainder is 140s
	if clip.DurationSeconds() != 140 {
		t.Errorf("duration = %d, want 140", clip.DurationSeconds())
	}
}

func TestRunRejectsStartBeyondDuration(t *testing.T) {
	f := newFixture()

	_, err := f.service.Run(context.Background(), Input{
		URL:       validURL,
		StartTime: "01:00:00", // video is 200s
	})

	assertKind(t, err, pipeline.KindInvalidInput)
	if len(f.transcoder.calls) != 0 {
		t.Error("expected no transcode calls")
	}
}

func TestRunMetadataFailure(t *testing.T) {
	f := newFixture()
	f.resolver.shouldFail = true
	f.resolver.failError = errors.New("api quota exceeded")

	_, err := f.service.Run(context.Background(), Input{URL: validURL})

	assertKind(t, err, pipeline.KindMetadataUnavailable)
	if err.Error() == "api quota exceeded" {
		t.Error("raw upstream error must not surface as the user message")
	}
}

func TestRunTranscodeFailureCleansUpAndSkipsPublish(t *testing.T) {
	f := newFixture()
	f.transcoder.shouldFail = true
	f.transcoder.failError = errors.New("ffmpeg exit status 1")
	// Simulate a partial output file left behind
	f.transcoder.files = nil
	partial := "/tmp/work/Test Song-1.mp3"
	f.files.existing[partial] = true

	_, err := f.service.Run(context.Background(), Input{URL: validURL})

	assertKind(t, err, pipeline.KindTranscodeFailed)
	if len(f.publisher.calls) != 0 {
		t.Error("publisher must not be called after a transcode failure")
	}
	if f.files.Exists(partial) {
		t.Error("partial transient file must be removed")
	}
}

func TestRunPublishFailureCleansUp(t *testing.T) {
	f := newFixture()
	f.publisher.shouldFail = true
	f.publisher.failError = errors.New("storage: bucket not found")

	_, err := f.service.Run(context.Background(), Input{URL: validURL})

	assertKind(t, err, pipeline.KindPublishFailed)
	if len(f.files.removed) == 0 {
		t.Error("transient file must be removed after a publish failure")
	}
	for path := range f.files.existing {
		t.Errorf("transient file %s left behind", path)
	}
}

func TestRunRemovesTransientFileAfterSuccess(t *testing.T) {
	f := newFixture()

	_, err := f.service.Run(context.Background(), Input{URL: validURL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.files.removed) != 1 {
		t.Fatalf("expected 1 removed file, got %d", len(f.files.removed))
	}
}

func TestRunRepeatRequestsProduceDistinctArtifacts(t *testing.T) {
	f := newFixture()
	input := Input{URL: validURL}

	first, err := f.service.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.service.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.DownloadURL == second.DownloadURL {
		t.Errorf("repeated requests returned the same url %q", first.DownloadURL)
	}
	if f.publisher.calls[0].ObjectName == f.publisher.calls[1].ObjectName {
		t.Errorf("repeated requests used the same object name %q", f.publisher.calls[0].ObjectName)
	}
}
