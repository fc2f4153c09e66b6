package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNumberedStorageAccounts(t *testing.T) {
	t.Setenv("B2_BUCKET_1", "kuntv-media-1")
	t.Setenv("B2_KEY_ID_1", "key1")
	t.Setenv("B2_APP_KEY_1", "app1")
	t.Setenv("B2_BUCKET_2", "kuntv-media-2")
	t.Setenv("B2_KEY_ID_2", "key2")
	t.Setenv("B2_APP_KEY_2", "app2")
	// Gap stops the scan: bucket 4 must not be picked up.
	t.Setenv("B2_BUCKET_4", "kuntv-media-4")

	cfg, err := Load()
	require.NoError(t, err)
	require.Len(t, cfg.StorageAccounts, 2)
	assert.Equal(t, "kuntv-media-1", cfg.StorageAccounts[0].Bucket)
	assert.Equal(t, "key1", cfg.StorageAccounts[0].KeyID)
	assert.Equal(t, "kuntv-media-2", cfg.StorageAccounts[1].Bucket)
}

func TestLoadFailsWithoutStorageAccounts(t *testing.T) {
	t.Setenv("B2_BUCKET_1", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("B2_BUCKET_1", "kuntv-media-1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3.us-east-005.backblazeb2.com", cfg.StorageEndpoint)
	assert.Equal(t, cfg.StorageEndpoint, cfg.StorageDomain)
	assert.Equal(t, int64(1)<<40, cfg.CapacityCeiling)
	assert.Equal(t, time.Hour, cfg.SignedURLTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("B2_BUCKET_1", "kuntv-media-1")
	t.Setenv("SIGNED_URL_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.SignedURLTTL)
}
