package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCanonicalURL(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantAccount string
		wantKey     string
		wantErr     bool
	}{
		{
			name:        "plain",
			raw:         "https://acct1.example.com/key",
			wantAccount: "acct1",
			wantKey:     "key",
		},
		{
			name:        "deep path",
			raw:         "https://acct1.s3.us-east-005.backblazeb2.com/movies/2024/video.mp4",
			wantAccount: "acct1",
			wantKey:     "movies/2024/video.mp4",
		},
		{
			name:        "query parameters ignored",
			raw:         "https://acct1.example.com/video.mp4?X-Amz-Signature=abc&X-Amz-Expires=3600",
			wantAccount: "acct1",
			wantKey:     "video.mp4",
		},
		{
			name:        "single-label host",
			raw:         "https://acct1/video.mp4",
			wantAccount: "acct1",
			wantKey:     "video.mp4",
		},
		{
			name:        "escaped key is decoded",
			raw:         "https://acct1.example.com/my%20video.mp4",
			wantAccount: "acct1",
			wantKey:     "my video.mp4",
		},
		{
			name:    "no host",
			raw:     "/just/a/path",
			wantErr: true,
		},
		{
			name:    "no object key",
			raw:     "https://acct1.example.com/",
			wantErr: true,
		},
		{
			name:    "unparseable",
			raw:     "https://acct1.example.com/%zz",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, key, err := ParseCanonicalURL(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAccount, account)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestCanonicalURLRoundTrip(t *testing.T) {
	reg, _ := testRegistry(t, map[string]int64{"bucketB": 0}, "bucketB")

	canonical := reg.CanonicalURL("bucketB", "video.mp4")
	assert.Equal(t, "https://bucketB."+testDomain+"/video.mp4", canonical)

	account, key, err := ParseCanonicalURL(canonical)
	require.NoError(t, err)
	assert.Equal(t, "bucketB", account)
	assert.Equal(t, "video.mp4", key)
}
