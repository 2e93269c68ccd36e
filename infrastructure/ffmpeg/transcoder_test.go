package ffmpeg

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yt-mp3-service/domain/video"
)

// fakeRunner records invocations without running anything
type fakeRunner struct {
	runArgs    [][]string
	runStdin   io.Reader
	runErr     error
	outputErr  error
	outputData []byte
}

func (f *fakeRunner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) error {
	f.runStdin = stdin
	f.runArgs = append(f.runArgs, append([]string{name}, args...))
	return f.runErr
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	if f.outputErr != nil {
		return nil, f.outputErr
	}
	return f.outputData, nil
}

func argsContainPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func argsContain(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func TestTranscodeFullDuration(t *testing.T) {
	runner := &fakeRunner{}
	tc := NewTranscoder(WithCommandRunner(runner))

	source := strings.NewReader("audio")
	req := &video.TranscodeRequest{Source: source, Bitrate: "192k"}
	if err := tc.Transcode(context.Background(), req, "/tmp/out.mp3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(runner.runArgs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runner.runArgs))
	}
	args := runner.runArgs[0]

	if runner.runStdin != source {
		t.Error("source stream must be wired to stdin")
	}
	if !argsContainPair(args, "-i", "pipe:0") {
		t.Errorf("expected piped input, args: %v", args)
	}
	if !argsContainPair(args, "-acodec", "libmp3lame") {
		t.Errorf("expected mp3 codec, args: %v", args)
	}
	if !argsContainPair(args, "-ab", "192k") {
		t.Errorf("expected bitrate, args: %v", args)
	}
	if argsContain(args, "-ss") || argsContain(args, "-t") {
		t.Errorf("no seek flags expected without a clip, args: %v", args)
	}
}

func TestTranscodeAppliesClipAsStartAndDuration(t *testing.T) {
	runner := &fakeRunner{}
	tc := NewTranscoder(WithCommandRunner(runner))

	clip, err := video.NewClipRange("00:10", "00:40")
	if err != nil {
		t.Fatal(err)
	}
	req := &video.TranscodeRequest{Source: strings.NewReader("audio"), Bitrate: "192k", Clip: clip}
	if err := tc.Transcode(context.Background(), req, "/tmp/out.mp3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	args := runner.runArgs[0]
	if !argsContainPair(args, "-ss", "10") {
		t.Errorf("expected start offset 10, args: %v", args)
	}
	if !argsContainPair(args, "-t", "30") {
		t.Errorf("expected duration 30, args: %v", args)
	}
}

func TestTranscodeRemovesPartialOutputOnFailure(t *testing.T) {
	dir := t.TempDir()
	outputPath := filepath.Join(dir, "partial.mp3")
	if err := os.WriteFile(outputPath, []byte("partial"), 0644); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{runErr: errors.New("exit status 1")}
	tc := NewTranscoder(WithCommandRunner(runner))

	req := &video.TranscodeRequest{Source: strings.NewReader("audio"), Bitrate: "192k"}
	err := tc.Transcode(context.Background(), req, outputPath)
	if err == nil {
		t.Fatal("expected an error")
	}
	if _, statErr := os.Stat(outputPath); !os.IsNotExist(statErr) {
		t.Error("partial output file must be removed on failure")
	}
}

func TestTranscodeDefaultsBitrate(t *testing.T) {
	runner := &fakeRunner{}
	tc := NewTranscoder(WithCommandRunner(runner))

	req := &video.TranscodeRequest{Source: strings.NewReader("audio")}
	if err := tc.Transcode(context.Background(), req, "/tmp/out.mp3"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !argsContainPair(runner.runArgs[0], "-ab", video.DefaultAudioBitrate) {
		t.Errorf("expected default bitrate, args: %v", runner.runArgs[0])
	}
}

func TestVerifyInstalled(t *testing.T) {
	runner := &fakeRunner{outputData: []byte("ffmpeg version 6.0")}
	tc := NewTranscoder(WithCommandRunner(runner))
	if err := tc.VerifyInstalled(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	runner.outputErr = errors.New("executable file not found")
	if err := tc.VerifyInstalled(context.Background()); err == nil {
		t.Fatal("expected an error when ffmpeg is missing")
	}
}
