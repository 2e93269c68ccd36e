package video

import "context"

// UnknownArtist is substituted when the platform omits the author field
const UnknownArtist = "Unknown artist"

// Metadata holds the video details shown to the user before download.
// It is produced once per request and is read-only downstream.
type Metadata struct {
	Title           string
	Author          string
	DurationSeconds int
	ThumbnailURL    string
}

// FormattedDuration returns the video length in HH:MM:SS format
func (m *Metadata) FormattedDuration() string {
	return TimestampFromSeconds(m.DurationSeconds).String()
}

// MetadataResolver retrieves video details from the external platform.
// Implementations perform exactly one logical network interaction and do
// not retry internally.
type MetadataResolver interface {
	Resolve(ctx context.Context, ref Reference) (*Metadata, error)
}
