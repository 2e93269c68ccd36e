// Package youtubeapi resolves video metadata through the official
// YouTube Data API v3, keyed by an API key from configuration.
package youtubeapi

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"yt-mp3-service/domain/video"

	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// metadataParts is the single logical query this resolver performs
var metadataParts = []string{"snippet", "contentDetails"}

// VideosService defines the interface for Data API calls
// This allows mocking the Google API client in tests
type VideosService interface {
	List(ctx context.Context, id string, parts []string) (*youtube.VideoListResponse, error)
}

// GoogleVideosService is the production implementation using the Data API
type GoogleVideosService struct {
	service *youtube.Service
}

// List fetches the requested parts for one video id
func (s *GoogleVideosService) List(ctx context.Context, id string, parts []string) (*youtube.VideoListResponse, error) {
	return s.service.Videos.List(parts).Id(id).Context(ctx).Do()
}

// Client implements video.MetadataResolver using the Data API
type Client struct {
	videos VideosService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithVideosService sets a custom videos service (for testing)
func WithVideosService(svc VideosService) ClientOption {
	return func(c *Client) {
		c.videos = svc
	}
}

// NewClient creates a new Data API client
// If no options are provided, it initializes a real API service
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.videos == nil {
		if apiKey == "" {
			return nil, fmt.Errorf("youtube api key is required")
		}
		svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
		if err != nil {
			return nil, fmt.Errorf("unable to create youtube service: %w", err)
		}
		c.videos = &GoogleVideosService{service: svc}
	}

	return c, nil
}

// Resolve implements video.MetadataResolver
func (c *Client) Resolve(ctx context.Context, ref video.Reference) (*video.Metadata, error) {
	resp, err := c.videos.List(ctx, ref.String(), metadataParts)
	if err != nil {
		return nil, fmt.Errorf("videos.list for %s: %w", ref, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", ref)
	}

	item := resp.Items[0]
	md := &video.Metadata{}

	if item.Snippet != nil {
		md.Title = item.Snippet.Title
		md.Author = item.Snippet.ChannelTitle
		md.ThumbnailURL = thumbnailURL(item.Snippet.Thumbnails)
	}
	if item.ContentDetails != nil {
		seconds, err := parseISODuration(item.ContentDetails.Duration)
		if err != nil {
			return nil, fmt.Errorf("video %s: %w", ref, err)
		}
		md.DurationSeconds = seconds
	}

	return md, nil
}

func thumbnailURL(details *youtube.ThumbnailDetails) string {
	if details == nil {
		return ""
	}
	switch {
	case details.Default != nil:
		return details.Default.Url
	case details.Medium != nil:
		return details.Medium.Url
	case details.High != nil:
		return details.High.Url
	}
	return ""
}

// isoDurationRegex matches the Data API's ISO 8601 durations (PT1H2M3S)
var isoDurationRegex = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts an ISO 8601 duration to total seconds
func parseISODuration(duration string) (int, error) {
	matches := isoDurationRegex.FindStringSubmatch(duration)
	if matches == nil {
		return 0, fmt.Errorf("unparseable duration %q", duration)
	}

	hours, _ := strconv.Atoi(zeroIfEmpty(matches[1]))
	minutes, _ := strconv.Atoi(zeroIfEmpty(matches[2]))
	seconds, _ := strconv.Atoi(zeroIfEmpty(matches[3]))

	return hours*3600 + minutes*60 + seconds, nil
}

func zeroIfEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// Ensure Client implements video.MetadataResolver
var _ video.MetadataResolver = (*Client)(nil)
