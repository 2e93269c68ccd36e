// Package metadata implements the preview path: given a URL, return the
// video's title, duration, thumbnail and author without downloading
// anything.
package metadata

import (
	"context"

	"yt-mp3-service/domain/pipeline"
	"yt-mp3-service/domain/video"
)

// Info is the user-facing metadata preview
type Info struct {
	Title     string
	Duration  string // HH:MM:SS
	Thumbnail string
	Author    string
}

// Service resolves metadata through the injected resolver
type Service struct {
	resolver video.MetadataResolver
}

// NewService creates a metadata service
func NewService(resolver video.MetadataResolver) *Service {
	return &Service{resolver: resolver}
}

// Get validates the URL and fetches the preview. Partial upstream data is
// tolerated: a missing author becomes a placeholder rather than an error.
func (s *Service) Get(ctx context.Context, rawURL string) (*Info, error) {
	ref, err := video.ParseReference(rawURL)
	if err != nil {
		return nil, pipeline.NewError(pipeline.KindInvalidInput, "invalid url", err)
	}

	md, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return nil, pipeline.NewError(pipeline.KindMetadataUnavailable, "failed to fetch video info", err)
	}

	author := md.Author
	if author == "" {
		author = video.UnknownArtist
	}

	return &Info{
		Title:     md.Title,
		Duration:  md.FormattedDuration(),
		Thumbnail: md.ThumbnailURL,
		Author:    author,
	}, nil
}
