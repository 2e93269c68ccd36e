// Package youtube resolves video metadata and audio-only streams directly
// from the platform using the kkdai/youtube client. It backs both the
// metadata-resolver and stream-resolver ports; the Data API adapter in
// infrastructure/youtubeapi can replace it for metadata when an API key
// is configured.
package youtube

import (
	"context"
	"fmt"
	"io"
	"strings"

	"yt-mp3-service/domain/video"

	yt "github.com/kkdai/youtube/v2"
)

// VideoService defines the interface for platform operations
// This allows mocking the youtube client in tests
type VideoService interface {
	GetVideoContext(ctx context.Context, id string) (*yt.Video, error)
	GetStreamContext(ctx context.Context, video *yt.Video, format *yt.Format) (io.ReadCloser, int64, error)
}

// Client implements video.MetadataResolver and video.StreamResolver
type Client struct {
	service VideoService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithVideoService sets a custom video service (for testing)
func WithVideoService(svc VideoService) ClientOption {
	return func(c *Client) {
		c.service = svc
	}
}

// NewClient creates a new platform client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.service == nil {
		c.service = &yt.Client{}
	}

	return c
}

// Resolve implements video.MetadataResolver
func (c *Client) Resolve(ctx context.Context, ref video.Reference) (*video.Metadata, error) {
	v, err := c.service.GetVideoContext(ctx, ref.String())
	if err != nil {
		return nil, fmt.Errorf("fetch video %s: %w", ref, err)
	}

	md := &video.Metadata{
		Title:           v.Title,
		Author:          v.Author,
		DurationSeconds: int(v.Duration.Seconds()),
	}
	if len(v.Thumbnails) > 0 {
		md.ThumbnailURL = v.Thumbnails[0].URL
	}

	return md, nil
}

// OpenAudioStream implements video.StreamResolver
func (c *Client) OpenAudioStream(ctx context.Context, ref video.Reference) (*video.AudioStream, error) {
	v, err := c.service.GetVideoContext(ctx, ref.String())
	if err != nil {
		return nil, fmt.Errorf("fetch video %s: %w", ref, err)
	}

	format, err := selectAudioFormat(v.Formats)
	if err != nil {
		return nil, fmt.Errorf("video %s: %w", ref, err)
	}

	body, _, err := c.service.GetStreamContext(ctx, v, format)
	if err != nil {
		return nil, fmt.Errorf("open stream for %s: %w", ref, err)
	}

	return &video.AudioStream{
		Body:     body,
		MimeType: format.MimeType,
		Bitrate:  format.Bitrate,
	}, nil
}

// selectAudioFormat picks the best audio-only format: highest bitrate,
// preferring the native mp4 audio container over opus on equal bitrate
// since it transcodes more cheaply.
func selectAudioFormat(formats yt.FormatList) (*yt.Format, error) {
	audio := formats.Type("audio")
	if len(audio) == 0 {
		return nil, fmt.Errorf("no audio-only format available")
	}

	best := &audio[0]
	for i := 1; i < len(audio); i++ {
		candidate := &audio[i]
		switch {
		case candidate.Bitrate > best.Bitrate:
			best = candidate
		case candidate.Bitrate == best.Bitrate && isNativeContainer(candidate.MimeType) && !isNativeContainer(best.MimeType):
			best = candidate
		}
	}

	return best, nil
}

func isNativeContainer(mimeType string) bool {
	return strings.Contains(mimeType, "mp4a")
}

// Ensure Client implements both resolver ports
var (
	_ video.MetadataResolver = (*Client)(nil)
	_ video.StreamResolver   = (*Client)(nil)
)
