package video

import (
	"context"
	"io"
)

// DefaultAudioBitrate is the default bitrate for MP3 output
const DefaultAudioBitrate = "192k"

// TranscodeRequest describes one transcode operation. Source is consumed
// as a continuous byte stream; it is never buffered fully in memory.
type TranscodeRequest struct {
	Source  io.Reader
	Bitrate string
	Clip    *ClipRange // optional; nil means the full duration
}

// Transcoder converts an audio stream to an MP3 file at outputPath.
// Implementations must remove any partial output on failure.
type Transcoder interface {
	Transcode(ctx context.Context, req *TranscodeRequest, outputPath string) error
}
