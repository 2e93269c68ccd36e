package video

import (
	"context"
	"io"
)

// AudioStream is an open, audio-only media stream. The caller owns Body
// and must close it.
type AudioStream struct {
	Body     io.ReadCloser
	MimeType string
	Bitrate  int
}

// StreamResolver opens the best audio-only stream for a reference.
// Selection prefers the highest bitrate, favoring a native mp4 audio
// container over one requiring re-encoding on ties.
type StreamResolver interface {
	OpenAudioStream(ctx context.Context, ref Reference) (*AudioStream, error)
}
