// Package transcode shells out to ffmpeg to compress uploaded videos before
// they go to object storage.
package transcode

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
)

// FFmpeg compresses videos by re-encoding them with H.265.
type FFmpeg struct {
	binPath string
}

// NewFFmpeg creates a transcoder using the ffmpeg binary at binPath.
func NewFFmpeg(binPath string) *FFmpeg {
	return &FFmpeg{binPath: binPath}
}

// Compress re-encodes the video at path and returns the path of the
// compressed file, written next to the input. If ffmpeg fails or produces an
// empty file the original path is returned, so the upload proceeds with the
// source file. Context cancellation kills the encoder process and is returned
// as an error, not swallowed by the fallback.
func (f *FFmpeg) Compress(ctx context.Context, path string) (string, error) {
	out := filepath.Join(filepath.Dir(path), "compressed_"+filepath.Base(path))

	cmd := exec.CommandContext(ctx, f.binPath,
		"-i", path,
		"-vcodec", "libx265",
		"-crf", "24",
		"-y", out)
	combined, err := cmd.CombinedOutput()
	if ctx.Err() != nil {
		return "", fmt.Errorf("transcode canceled: %w", ctx.Err())
	}
	if err != nil {
		log.Printf("transcode: ffmpeg failed, uploading original file: %v (%s)", err, tail(combined))
		return path, nil
	}

	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		log.Printf("transcode: ffmpeg produced no output, uploading original file")
		return path, nil
	}
	return out, nil
}

// tail returns the last part of ffmpeg's output, where the actual error is.
func tail(b []byte) string {
	const max = 400
	if len(b) <= max {
		return string(b)
	}
	return "..." + string(b[len(b)-max:])
}
