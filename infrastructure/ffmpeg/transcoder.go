// Package ffmpeg shells out to the ffmpeg binary to transcode audio
// streams to MP3. The source is piped through stdin so large media is
// never buffered fully in memory or written to disk before transcoding.
package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"yt-mp3-service/domain/video"
)

// Transcoder implements video.Transcoder using ffmpeg
type Transcoder struct {
	ffmpegPath string
	runner     CommandRunner
}

// TranscoderOption is a functional option for configuring Transcoder
type TranscoderOption func(*Transcoder)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) TranscoderOption {
	return func(t *Transcoder) {
		t.ffmpegPath = path
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) TranscoderOption {
	return func(t *Transcoder) {
		t.runner = runner
	}
}

// NewTranscoder creates a new FFmpeg-based transcoder
func NewTranscoder(opts ...TranscoderOption) *Transcoder {
	t := &Transcoder{
		ffmpegPath: "ffmpeg",
		runner:     &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Transcode implements video.Transcoder. A clip range is applied as a
// start offset plus a duration (end - start), both as output options so
// seeking stays accurate on a piped input. Partial output is removed when
// ffmpeg fails.
func (t *Transcoder) Transcode(ctx context.Context, req *video.TranscodeRequest, outputPath string) error {
	bitrate := req.Bitrate
	if bitrate == "" {
		bitrate = video.DefaultAudioBitrate
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
	}
	if req.Clip != nil {
		args = append(args,
			"-ss", strconv.Itoa(req.Clip.StartSeconds()),
			"-t", strconv.Itoa(req.Clip.DurationSeconds()),
		)
	}
	args = append(args,
		"-vn",
		"-acodec", "libmp3lame",
		"-ab", bitrate,
		"-f", "mp3",
		"-y", // Overwrite output file if it exists
		outputPath,
	)

	if err := t.runner.Run(ctx, req.Source, t.ffmpegPath, args...); err != nil {
		if rmErr := os.Remove(outputPath); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("ffmpeg transcode failed: %w (partial output not removed: %v)", err, rmErr)
		}
		return fmt.Errorf("ffmpeg transcode failed: %w", err)
	}

	return nil
}

// VerifyInstalled checks that ffmpeg is available
func (t *Transcoder) VerifyInstalled(ctx context.Context) error {
	_, err := t.runner.Output(ctx, t.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

// Ensure Transcoder implements video.Transcoder
var _ video.Transcoder = (*Transcoder)(nil)
