//go:build integration

package steps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"yt-mp3-service/application/download"
	"yt-mp3-service/application/metadata"
	"yt-mp3-service/domain/distribution"
	"yt-mp3-service/domain/video"
	"yt-mp3-service/infrastructure/config"
	"yt-mp3-service/server"

	"github.com/cucumber/godog"
)

// mockResolver serves canned metadata for the configured video
type mockResolver struct {
	metadata  *video.Metadata
	failError error
	calls     int
}

func (m *mockResolver) Resolve(ctx context.Context, ref video.Reference) (*video.Metadata, error) {
	m.calls++
	if m.failError != nil {
		return nil, m.failError
	}
	return m.metadata, nil
}

// mockStreamResolver hands out an in-memory audio stream
type mockStreamResolver struct{}

func (m *mockStreamResolver) OpenAudioStream(ctx context.Context, ref video.Reference) (*video.AudioStream, error) {
	return &video.AudioStream{Body: io.NopCloser(strings.NewReader("audio"))}, nil
}

// mockTranscoder records the clip it was asked for
type mockTranscoder struct {
	clips []*video.ClipRange
}

func (m *mockTranscoder) Transcode(ctx context.Context, req *video.TranscodeRequest, outputPath string) error {
	m.clips = append(m.clips, req.Clip)
	return nil
}

// mockPublisher returns a signed URL or the configured failure
type mockPublisher struct {
	failError error
}

func (m *mockPublisher) Publish(ctx context.Context, req *distribution.UploadRequest) (*distribution.PublishedArtifact, error) {
	if m.failError != nil {
		return nil, m.failError
	}
	return &distribution.PublishedArtifact{
		SignedURL: "https://storage.example.com/" + req.ObjectName + "?sig=abc",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}, nil
}

// mockFileStore hands out transient paths without touching the disk
type mockFileStore struct {
	counter int
}

func (m *mockFileStore) TransientPath(title string) string {
	m.counter++
	return fmt.Sprintf("/tmp/work/%s-%d.mp3", title, m.counter)
}

func (m *mockFileStore) Exists(path string) bool { return false }

func (m *mockFileStore) Remove(path string) error { return nil }

// apiContext holds test state for API scenarios
type apiContext struct {
	resolver   *mockResolver
	transcoder *mockTranscoder
	publisher  *mockPublisher
	handler    http.Handler
	response   *httptest.ResponseRecorder
	body       map[string]any
}

// SharedAPIContext is reset before each scenario via Before hook
var SharedAPIContext *apiContext

func getAPIContext() *apiContext {
	return SharedAPIContext
}

func InitializeAPIScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		resolver := &mockResolver{}
		transcoder := &mockTranscoder{}
		publisher := &mockPublisher{}

		logger := log.New(io.Discard, "", 0)
		downloads := download.NewService(resolver, &mockStreamResolver{}, transcoder, publisher,
			&mockFileStore{}, "192k", logger)
		md := metadata.NewService(resolver)
		srv := server.New(config.ServerConfig{}, downloads, md, logger)

		SharedAPIContext = &apiContext{
			resolver:   resolver,
			transcoder: transcoder,
			publisher:  publisher,
			handler:    srv.Handler(),
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		SharedAPIContext = nil
		return c, nil
	})

	ctx.Step(`^a video "([^"]*)" titled "([^"]*)" with a duration of (\d+) seconds$`, aVideoTitledWithDuration)
	ctx.Step(`^the storage upload fails with "([^"]*)"$`, theStorageUploadFailsWith)
	ctx.Step(`^the metadata lookup fails with "([^"]*)"$`, theMetadataLookupFailsWith)
	ctx.Step(`^I request a download for "([^"]*)"$`, iRequestADownloadFor)
	ctx.Step(`^I request a download for "([^"]*)" from "([^"]*)" to "([^"]*)"$`, iRequestADownloadForFromTo)
	ctx.Step(`^I request info for "([^"]*)"$`, iRequestInfoFor)
	ctx.Step(`^the response status should be (\d+)$`, theResponseStatusShouldBe)
	ctx.Step(`^the response should contain a download URL$`, theResponseShouldContainADownloadURL)
	ctx.Step(`^the response title should be "([^"]*)"$`, theResponseTitleShouldBe)
	ctx.Step(`^the response error should be "([^"]*)"$`, theResponseErrorShouldBe)
	ctx.Step(`^the response should not mention "([^"]*)"$`, theResponseShouldNotMention)
	ctx.Step(`^the transcoder should have been called without a clip$`, theTranscoderShouldHaveBeenCalledWithoutAClip)
	ctx.Step(`^the transcoder should have been called with a clip starting at (\d+) seconds lasting (\d+) seconds$`, theTranscoderShouldHaveBeenCalledWithAClip)
	ctx.Step(`^no metadata lookup should have happened$`, noMetadataLookupShouldHaveHappened)
	ctx.Step(`^the info title should be "([^"]*)"$`, theInfoTitleShouldBe)
	ctx.Step(`^the info duration should be "([^"]*)"$`, theInfoDurationShouldBe)
}

func aVideoTitledWithDuration(id, title string, seconds int) error {
	a := getAPIContext()
	a.resolver.metadata = &video.Metadata{
		Title:           title,
		Author:          "Test Channel",
		DurationSeconds: seconds,
		ThumbnailURL:    "https://i.ytimg.com/vi/" + id + "/default.jpg",
	}
	return nil
}

func theStorageUploadFailsWith(message string) error {
	getAPIContext().publisher.failError = errors.New(message)
	return nil
}

func theMetadataLookupFailsWith(message string) error {
	getAPIContext().resolver.failError = errors.New(message)
	return nil
}

func (a *apiContext) post(path string, payload map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	a.response = httptest.NewRecorder()
	a.handler.ServeHTTP(a.response, req)

	a.body = map[string]any{}
	return json.Unmarshal(a.response.Body.Bytes(), &a.body)
}

func iRequestADownloadFor(url string) error {
	return getAPIContext().post("/api/download", map[string]string{"url": url})
}

func iRequestADownloadForFromTo(url, start, end string) error {
	return getAPIContext().post("/api/download", map[string]string{
		"url":       url,
		"startTime": start,
		"endTime":   end,
	})
}

func iRequestInfoFor(url string) error {
	return getAPIContext().post("/api/info", map[string]string{"url": url})
}

func theResponseStatusShouldBe(status int) error {
	a := getAPIContext()
	if a.response.Code != status {
		return fmt.Errorf("expected status %d, got %d (body: %s)", status, a.response.Code, a.response.Body.String())
	}
	return nil
}

func theResponseShouldContainADownloadURL() error {
	a := getAPIContext()
	url, _ := a.body["downloadUrl"].(string)
	if url == "" {
		return fmt.Errorf("expected a downloadUrl in response, got: %s", a.response.Body.String())
	}
	return nil
}

func theResponseTitleShouldBe(title string) error {
	a := getAPIContext()
	if got := a.body["title"]; got != title {
		return fmt.Errorf("expected title %q, got %v", title, got)
	}
	return nil
}

func theResponseErrorShouldBe(message string) error {
	a := getAPIContext()
	if got := a.body["error"]; got != message {
		return fmt.Errorf("expected error %q, got %v", message, got)
	}
	return nil
}

func theResponseShouldNotMention(fragment string) error {
	a := getAPIContext()
	if strings.Contains(a.response.Body.String(), fragment) {
		return fmt.Errorf("response unexpectedly mentions %q: %s", fragment, a.response.Body.String())
	}
	return nil
}

func theTranscoderShouldHaveBeenCalledWithoutAClip() error {
	a := getAPIContext()
	if len(a.transcoder.clips) != 1 {
		return fmt.Errorf("expected 1 transcode call, got %d", len(a.transcoder.clips))
	}
	if a.transcoder.clips[0] != nil {
		return fmt.Errorf("expected no clip, got %+v", a.transcoder.clips[0])
	}
	return nil
}

func theTranscoderShouldHaveBeenCalledWithAClip(start, duration int) error {
	a := getAPIContext()
	if len(a.transcoder.clips) != 1 {
		return fmt.Errorf("expected 1 transcode call, got %d", len(a.transcoder.clips))
	}
	clip := a.transcoder.clips[0]
	if clip == nil {
		return fmt.Errorf("expected a clip, got none")
	}
	if clip.StartSeconds() != start || clip.DurationSeconds() != duration {
		return fmt.Errorf("expected clip start=%d duration=%d, got start=%d duration=%d",
			start, duration, clip.StartSeconds(), clip.DurationSeconds())
	}
	return nil
}

func noMetadataLookupShouldHaveHappened() error {
	a := getAPIContext()
	if a.resolver.calls != 0 {
		return fmt.Errorf("expected no metadata lookups, got %d", a.resolver.calls)
	}
	return nil
}

func theInfoTitleShouldBe(title string) error {
	return theResponseTitleShouldBe(title)
}

func theInfoDurationShouldBe(duration string) error {
	a := getAPIContext()
	if got := a.body["duration"]; got != duration {
		return fmt.Errorf("expected duration %q, got %v", duration, got)
	}
	return nil
}
