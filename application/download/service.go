// Package download orchestrates the full request pipeline: validate the
// URL, resolve metadata, transcode the audio stream, publish the artifact.
// Stages run strictly sequentially; any failure short-circuits to the
// error path with best-effort cleanup of the transient file.
package download

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"yt-mp3-service/domain/distribution"
	"yt-mp3-service/domain/pipeline"
	"yt-mp3-service/domain/video"

	"github.com/google/uuid"
)

// FileStore abstracts the transient local filesystem area shared across
// concurrent requests. TransientPath must return a collision-free path
// per call.
type FileStore interface {
	TransientPath(title string) string
	Exists(path string) bool
	Remove(path string) error
}

// Service sequences the download pipeline. One Run per request; the
// service itself holds no per-request state and is safe for concurrent
// use.
type Service struct {
	resolver   video.MetadataResolver
	streams    video.StreamResolver
	transcoder video.Transcoder
	publisher  distribution.Publisher
	files      FileStore
	bitrate    string
	logger     *log.Logger
}

// NewService creates a download service with all collaborators injected
func NewService(
	resolver video.MetadataResolver,
	streams video.StreamResolver,
	transcoder video.Transcoder,
	publisher distribution.Publisher,
	files FileStore,
	bitrate string,
	logger *log.Logger,
) *Service {
	if bitrate == "" {
		bitrate = video.DefaultAudioBitrate
	}
	if logger == nil {
		logger = log.New(log.Writer(), "", log.LstdFlags)
	}
	return &Service{
		resolver:   resolver,
		streams:    streams,
		transcoder: transcoder,
		publisher:  publisher,
		files:      files,
		bitrate:    bitrate,
		logger:     logger,
	}
}

// Input contains the raw request fields for one download
type Input struct {
	URL       string
	StartTime string // optional, HH:MM:SS or MM:SS
	EndTime   string // optional, HH:MM:SS or MM:SS
}

// Result contains the outcome of a successful download
type Result struct {
	DownloadURL string
	Title       string
	ExpiresAt   time.Time
}

// Run executes the pipeline for one request. Every returned error is a
// classified *pipeline.Error; raw collaborator errors never escape.
func (s *Service) Run(ctx context.Context, input Input) (*Result, error) {
	jobID := uuid.NewString()

	// Validate before any network call
	ref, err := video.ParseReference(input.URL)
	if err != nil {
		return nil, pipeline.NewError(pipeline.KindInvalidInput, "invalid url", err)
	}

	// A malformed or inverted range is rejected up front; a range that
	// only becomes resolvable once the duration is known (missing end)
	// is completed after metadata.
	if input.StartTime != "" && input.EndTime != "" {
		if _, err := video.NewClipRange(input.StartTime, input.EndTime); err != nil {
			return nil, pipeline.NewError(pipeline.KindInvalidInput, "invalid time range", err)
		}
	} else if input.StartTime != "" {
		if _, err := video.ParseTimestamp(input.StartTime); err != nil {
			return nil, pipeline.NewError(pipeline.KindInvalidInput, "invalid time range", err)
		}
	} else if input.EndTime != "" {
		if _, err := video.ParseTimestamp(input.EndTime); err != nil {
			return nil, pipeline.NewError(pipeline.KindInvalidInput, "invalid time range", err)
		}
	}

	s.logger.Printf("[job %s] resolving metadata for %s", jobID, ref)
	md, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		s.logger.Printf("[job %s] metadata resolution failed: %v", jobID, err)
		return nil, pipeline.NewError(pipeline.KindMetadataUnavailable, "failed to fetch video info", err)
	}

	clip, err := resolveClip(input, md)
	if err != nil {
		return nil, pipeline.NewError(pipeline.KindInvalidInput, "invalid time range", err)
	}

	outputPath := s.files.TransientPath(md.Title)
	defer s.cleanup(jobID, outputPath)

	s.logger.Printf("[job %s] opening audio stream", jobID)
	stream, err := s.streams.OpenAudioStream(ctx, ref)
	if err != nil {
		s.logger.Printf("[job %s] stream open failed: %v", jobID, err)
		return nil, pipeline.NewError(pipeline.KindTranscodeFailed, "failed to convert audio", err)
	}
	defer stream.Body.Close()

	s.logger.Printf("[job %s] transcoding to %s", jobID, filepath.Base(outputPath))
	req := &video.TranscodeRequest{
		Source:  stream.Body,
		Bitrate: s.bitrate,
		Clip:    clip,
	}
	if err := s.transcoder.Transcode(ctx, req, outputPath); err != nil {
		s.logger.Printf("[job %s] transcode failed: %v", jobID, err)
		return nil, pipeline.NewError(pipeline.KindTranscodeFailed, "failed to convert audio", err)
	}

	s.logger.Printf("[job %s] publishing artifact", jobID)
	artifact, err := s.publisher.Publish(ctx, &distribution.UploadRequest{
		LocalPath:   outputPath,
		ObjectName:  filepath.Base(outputPath),
		ContentType: distribution.MimeTypeMP3,
	})
	if err != nil {
		s.logger.Printf("[job %s] publish failed: %v", jobID, err)
		return nil, pipeline.NewError(pipeline.KindPublishFailed, "failed to store audio", err)
	}

	s.logger.Printf("[job %s] done, url expires at %s", jobID, artifact.ExpiresAt.Format(time.RFC3339))
	return &Result{
		DownloadURL: artifact.SignedURL,
		Title:       md.Title,
		ExpiresAt:   artifact.ExpiresAt,
	}, nil
}

// resolveClip builds the effective clip range once the duration is known.
// End beyond the real duration is left to the transcoder, which simply
// stops at end of input.
func resolveClip(input Input, md *video.Metadata) (*video.ClipRange, error) {
	if input.StartTime == "" && input.EndTime == "" {
		return nil, nil
	}

	end := input.EndTime
	if end == "" {
		end = video.TimestampFromSeconds(md.DurationSeconds).String()
	}

	clip, err := video.NewClipRange(input.StartTime, end)
	if err != nil {
		return nil, err
	}

	if md.DurationSeconds > 0 && clip.StartSeconds() >= md.DurationSeconds {
		return nil, fmt.Errorf("start time %s is beyond the video duration %s",
			clip.Start, video.TimestampFromSeconds(md.DurationSeconds))
	}

	return clip, nil
}

// cleanup removes the transient file on every exit path. After a
// successful publish the file is no longer needed either.
func (s *Service) cleanup(jobID, path string) {
	if !s.files.Exists(path) {
		return
	}
	if err := s.files.Remove(path); err != nil {
		s.logger.Printf("[job %s] could not remove transient file %s: %v", jobID, path, err)
	}
}
