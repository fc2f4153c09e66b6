package transcode

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movie.mp4")
	require.NoError(t, os.WriteFile(path, []byte("raw video"), 0o600))
	return path
}

func TestCompressFallsBackWhenFFmpegMissing(t *testing.T) {
	in := writeInput(t)

	out, err := NewFFmpeg("/nonexistent/ffmpeg").Compress(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCompressUsesEncoderOutput(t *testing.T) {
	in := writeInput(t)

	// Stand-in encoder: copies the input to the output path (last argument).
	script := filepath.Join(t.TempDir(), "fake-ffmpeg")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nfor last in \"$@\"; do :; done\ncp \"$2\" \"$last\"\n"), 0o755))

	out, err := NewFFmpeg(script).Compress(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(in), "compressed_movie.mp4"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "raw video", string(data))
}

func TestCompressFallsBackOnEmptyOutput(t *testing.T) {
	in := writeInput(t)

	script := filepath.Join(t.TempDir(), "fake-ffmpeg")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\nfor last in \"$@\"; do :; done\n: > \"$last\"\n"), 0o755))

	out, err := NewFFmpeg(script).Compress(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestCompressCanceledContext(t *testing.T) {
	in := writeInput(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFFmpeg("/nonexistent/ffmpeg").Compress(ctx, in)
	assert.ErrorIs(t, err, context.Canceled)
}
