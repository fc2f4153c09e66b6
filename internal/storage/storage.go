package storage

import (
	"context"
	"time"
)

// Default provider-call timeouts. A hung provider call must fail the request,
// not starve the handler.
const (
	DefaultCallTimeout   = 30 * time.Second
	DefaultUploadTimeout = 10 * time.Minute
)

// Manager bundles placement, upload, signing and cleanup behind the three
// operations the rest of the service uses. A Manager is safe for concurrent
// use; every operation is stateless beyond calling the provider.
type Manager struct {
	selector *Selector
	uploader *Uploader
	signer   *Signer
	cleanup  *Cleanup

	callTimeout   time.Duration // probe, sign, delete
	uploadTimeout time.Duration
}

// NewManager wires the storage components over one registry. Non-positive
// durations fall back to the package defaults.
func NewManager(reg *Registry, validity, callTimeout, uploadTimeout time.Duration) *Manager {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	if uploadTimeout <= 0 {
		uploadTimeout = DefaultUploadTimeout
	}
	return &Manager{
		selector:      NewSelector(reg),
		uploader:      NewUploader(reg),
		signer:        NewSigner(reg, validity),
		cleanup:       NewCleanup(reg),
		callTimeout:   callTimeout,
		uploadTimeout: uploadTimeout,
	}
}

// SelectAndUpload picks the first account with room for size bytes and
// uploads the file at path there. The returned canonical URL is what the
// catalog persists; signing happens per read, never here.
//
// size is the declared size of the file as it will be uploaded, measured
// after any transcoding.
func (m *Manager) SelectAndUpload(ctx context.Context, path string, size int64) (string, error) {
	selectCtx, cancel := context.WithTimeout(ctx, m.callTimeout)
	accountID, err := m.selector.Select(selectCtx, size)
	cancel()
	if err != nil {
		return "", err
	}

	uploadCtx, cancel := context.WithTimeout(ctx, m.uploadTimeout)
	defer cancel()
	return m.uploader.Upload(uploadCtx, accountID, path)
}

// SignedURL exchanges a persisted canonical URL for a time-limited signed
// one. Errors are never downgraded to the unsigned URL.
func (m *Manager) SignedURL(ctx context.Context, canonicalURL string) (*SignedAccess, error) {
	ctx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()
	return m.signer.Sign(ctx, canonicalURL)
}

// Delete removes the stored object behind a canonical URL. Idempotent.
func (m *Manager) Delete(ctx context.Context, canonicalURL string) error {
	ctx, cancel := context.WithTimeout(ctx, m.callTimeout)
	defer cancel()
	return m.cleanup.Delete(ctx, canonicalURL)
}
