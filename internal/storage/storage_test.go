package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDomain = "s3.test.example.com"

// fakeClient is an in-memory Client for one account.
type fakeClient struct {
	bucket  string
	objects map[string]int64

	listErr error
	putErr  error

	lastPutKey         string
	lastPutSize        int64
	lastPutContentType string
	removedKeys        []string
}

func newFakeClient(bucket string) *fakeClient {
	return &fakeClient{bucket: bucket, objects: map[string]int64{}}
}

func (f *fakeClient) Put(_ context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	n, err := io.Copy(io.Discard, reader)
	if err != nil {
		return err
	}
	f.lastPutKey = key
	f.lastPutSize = n
	f.lastPutContentType = contentType
	f.objects[key] = size
	return nil
}

func (f *fakeClient) UsedBytes(_ context.Context) (int64, error) {
	if f.listErr != nil {
		return 0, f.listErr
	}
	var total int64
	for _, size := range f.objects {
		total += size
	}
	return total, nil
}

// PresignGet fabricates a virtual-host-style signed URL, the same shape the
// real client produces with DNS bucket lookup.
func (f *fakeClient) PresignGet(_ context.Context, key string, validity time.Duration) (*url.URL, error) {
	raw := fmt.Sprintf("https://%s.%s/%s?X-Amz-Expires=%d&X-Amz-Signature=deadbeef",
		f.bucket, testDomain, key, int(validity.Seconds()))
	return url.Parse(raw)
}

func (f *fakeClient) Remove(_ context.Context, key string) error {
	// Mirrors the provider: deleting an absent key is not an error.
	delete(f.objects, key)
	f.removedKeys = append(f.removedKeys, key)
	return nil
}

// testRegistry builds a registry of fake-backed accounts with the given
// ceilings, in the given order.
func testRegistry(t *testing.T, ceilings map[string]int64, order ...string) (*Registry, map[string]*fakeClient) {
	t.Helper()
	accounts := make([]Account, 0, len(order))
	clients := make(map[string]Client, len(order))
	fakes := make(map[string]*fakeClient, len(order))
	for _, id := range order {
		accounts = append(accounts, Account{
			ID:      id,
			KeyID:   "key-" + id,
			AppKey:  "secret-" + id,
			Ceiling: ceilings[id],
		})
		fc := newFakeClient(id)
		clients[id] = fc
		fakes[id] = fc
	}
	return newRegistry(testDomain, accounts, clients), fakes
}

const mb = int64(1) << 20

func TestSelectFirstFitInConfigurationOrder(t *testing.T) {
	reg, fakes := testRegistry(t,
		map[string]int64{"acct1": 100 * mb, "acct2": 100 * mb, "acct3": 100 * mb},
		"acct1", "acct2", "acct3")
	fakes["acct1"].objects["a.mp4"] = 95 * mb
	fakes["acct2"].objects["b.mp4"] = 50 * mb

	sel := NewSelector(reg)

	// 40MB fits acct2 (50MB free); acct1 (5MB free) must be passed over.
	id, err := sel.Select(context.Background(), 40*mb)
	require.NoError(t, err)
	assert.Equal(t, "acct2", id)

	// 60MB only fits acct3.
	id, err = sel.Select(context.Background(), 60*mb)
	require.NoError(t, err)
	assert.Equal(t, "acct3", id)
}

func TestSelectNeverReturnsFullAccount(t *testing.T) {
	reg, fakes := testRegistry(t,
		map[string]int64{"acct1": 100 * mb, "acct2": 100 * mb},
		"acct1", "acct2")
	fakes["acct1"].objects["a.mp4"] = 100 * mb
	fakes["acct2"].objects["b.mp4"] = 100 * mb

	_, err := NewSelector(reg).Select(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoCapacity)
}

func TestSelectExactFitQualifies(t *testing.T) {
	reg, fakes := testRegistry(t, map[string]int64{"acct1": 100 * mb}, "acct1")
	fakes["acct1"].objects["a.mp4"] = 60 * mb

	id, err := NewSelector(reg).Select(context.Background(), 40*mb)
	require.NoError(t, err)
	assert.Equal(t, "acct1", id)
}

func TestSelectFailedProbeExcludesAccount(t *testing.T) {
	reg, fakes := testRegistry(t,
		map[string]int64{"acct1": 100 * mb, "acct2": 100 * mb},
		"acct1", "acct2")
	// acct1 is empty but unreachable; it must not win on the assumption that
	// unreachable means empty.
	fakes["acct1"].listErr = errors.New("connection refused")

	id, err := NewSelector(reg).Select(context.Background(), 10*mb)
	require.NoError(t, err)
	assert.Equal(t, "acct2", id)
}

func TestSelectAllProbesFailing(t *testing.T) {
	reg, fakes := testRegistry(t, map[string]int64{"acct1": 100 * mb}, "acct1")
	fakes["acct1"].listErr = errors.New("connection refused")

	_, err := NewSelector(reg).Select(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNoCapacity)
}

func TestProberHasRoomFor(t *testing.T) {
	reg, fakes := testRegistry(t, map[string]int64{"acct1": 100 * mb}, "acct1")
	fakes["acct1"].objects["a.mp4"] = 70 * mb

	p := NewProber(reg)

	ok, err := p.HasRoomFor(context.Background(), "acct1", 30*mb)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.HasRoomFor(context.Background(), "acct1", 31*mb)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.HasRoomFor(context.Background(), "nope", 1)
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestUploadDerivesKeyAndCanonicalURL(t *testing.T) {
	reg, fakes := testRegistry(t, map[string]int64{"bucketB": 100 * mb}, "bucketB")

	dir := t.TempDir()
	path := filepath.Join(dir, "video.mp4")
	require.NoError(t, os.WriteFile(path, []byte("fake mp4 payload"), 0o600))

	got, err := NewUploader(reg).Upload(context.Background(), "bucketB", path)
	require.NoError(t, err)
	assert.Equal(t, "https://bucketB."+testDomain+"/video.mp4", got)
	assert.Equal(t, "video.mp4", fakes["bucketB"].lastPutKey)
	assert.Equal(t, int64(len("fake mp4 payload")), fakes["bucketB"].lastPutSize)
	assert.Equal(t, "video/mp4", fakes["bucketB"].lastPutContentType)
}

func TestUploadUnknownAccount(t *testing.T) {
	reg, _ := testRegistry(t, map[string]int64{"acct1": 100 * mb}, "acct1")

	_, err := NewUploader(reg).Upload(context.Background(), "ghost", "/tmp/whatever.mp4")
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestUploadSurfacesPutFailure(t *testing.T) {
	reg, fakes := testRegistry(t, map[string]int64{"acct1": 100 * mb}, "acct1")
	fakes["acct1"].putErr = errors.New("503 slow down")

	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	_, err := NewUploader(reg).Upload(context.Background(), "acct1", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503 slow down")
}

func TestSelectAndUploadFallsOverToAccountWithSpace(t *testing.T) {
	reg, fakes := testRegistry(t,
		map[string]int64{"bucketA": 100 * mb, "bucketB": 100 * mb},
		"bucketA", "bucketB")
	fakes["bucketA"].objects["old.mp4"] = 100 * mb

	dir := t.TempDir()
	path := filepath.Join(dir, "video.mp4")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o600))

	m := NewManager(reg, time.Hour, 0, 0)
	got, err := m.SelectAndUpload(context.Background(), path, int64(len("payload")))
	require.NoError(t, err)
	assert.Equal(t, "https://bucketB."+testDomain+"/video.mp4", got)
	assert.Empty(t, fakes["bucketA"].lastPutKey)
}

func TestSignedURLResolvesOwningAccount(t *testing.T) {
	reg, _ := testRegistry(t, map[string]int64{"acct1": 100 * mb}, "acct1")
	m := NewManager(reg, time.Hour, 0, 0)

	before := time.Now()
	access, err := m.SignedURL(context.Background(), "https://acct1."+testDomain+"/movies/video.mp4")
	require.NoError(t, err)

	u, err := url.Parse(access.URL)
	require.NoError(t, err)
	assert.Equal(t, "acct1."+testDomain, u.Host)
	assert.Equal(t, "/movies/video.mp4", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.WithinDuration(t, before.Add(time.Hour), access.ExpiresAt, 5*time.Second)
}

func TestSignedURLUnknownAccount(t *testing.T) {
	reg, _ := testRegistry(t, map[string]int64{"acct1": 100 * mb}, "acct1")
	m := NewManager(reg, time.Hour, 0, 0)

	_, err := m.SignedURL(context.Background(), "https://unknown-bucket."+testDomain+"/video.mp4")
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestSigningASignedURLRecoversBareKey(t *testing.T) {
	reg, _ := testRegistry(t, map[string]int64{"acct1": 100 * mb}, "acct1")
	m := NewManager(reg, time.Hour, 0, 0)

	first, err := m.SignedURL(context.Background(), "https://acct1."+testDomain+"/video.mp4")
	require.NoError(t, err)

	second, err := m.SignedURL(context.Background(), first.URL)
	require.NoError(t, err)

	u, err := url.Parse(second.URL)
	require.NoError(t, err)
	assert.Equal(t, "/video.mp4", u.Path)
	// Exactly one signature parameter: fresh, not stacked on the old one.
	assert.Len(t, u.Query()["X-Amz-Signature"], 1)
}

func TestDeleteIsIdempotent(t *testing.T) {
	reg, fakes := testRegistry(t, map[string]int64{"acct1": 100 * mb}, "acct1")
	fakes["acct1"].objects["video.mp4"] = 5 * mb
	m := NewManager(reg, time.Hour, 0, 0)

	canonical := "https://acct1." + testDomain + "/video.mp4"
	require.NoError(t, m.Delete(context.Background(), canonical))
	require.NoError(t, m.Delete(context.Background(), canonical))
	assert.Equal(t, []string{"video.mp4", "video.mp4"}, fakes["acct1"].removedKeys)
}

func TestDeleteUnknownAccount(t *testing.T) {
	reg, _ := testRegistry(t, map[string]int64{"acct1": 100 * mb}, "acct1")
	m := NewManager(reg, time.Hour, 0, 0)

	err := m.Delete(context.Background(), "https://ghost."+testDomain+"/video.mp4")
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestSignedURLCredentialsMissing(t *testing.T) {
	// Account is known but was configured without a key pair: signing must
	// fail outright, never fall back to the unsigned URL.
	accounts := []Account{{ID: "acct1", Ceiling: 100 * mb}}
	clients := map[string]Client{"acct1": newFakeClient("acct1")}
	reg := newRegistry(testDomain, accounts, clients)
	m := NewManager(reg, time.Hour, 0, 0)

	_, err := m.SignedURL(context.Background(), "https://acct1."+testDomain+"/video.mp4")
	assert.ErrorIs(t, err, ErrCredentialsMissing)
}

func TestRegistryLookups(t *testing.T) {
	reg, _ := testRegistry(t, map[string]int64{"acct1": 0}, "acct1")

	acct, err := reg.AccountFor("acct1")
	require.NoError(t, err)
	// Zero ceiling falls back to the default.
	assert.Equal(t, DefaultCeiling, acct.Ceiling)

	keyID, appKey, err := reg.CredentialsFor("acct1")
	require.NoError(t, err)
	assert.Equal(t, "key-acct1", keyID)
	assert.Equal(t, "secret-acct1", appKey)

	_, _, err = reg.CredentialsFor("ghost")
	assert.ErrorIs(t, err, ErrCredentialsMissing)

	_, err = reg.ClientFor("ghost")
	assert.ErrorIs(t, err, ErrUnknownAccount)
}
