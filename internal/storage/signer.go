package storage

import (
	"context"
	"fmt"
	"time"
)

// DefaultValidity is how long a signed URL stays dereferenceable unless the
// configuration overrides it.
const DefaultValidity = time.Hour

// SignedAccess is a short-lived read capability for one stored object. It is
// generated per request and never persisted or cached.
type SignedAccess struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Signer issues presigned GET URLs for stored objects, resolving the owning
// account from the stored URL itself.
type Signer struct {
	reg      *Registry
	validity time.Duration
}

// NewSigner creates a Signer. A non-positive validity falls back to
// DefaultValidity.
func NewSigner(reg *Registry, validity time.Duration) *Signer {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &Signer{reg: reg, validity: validity}
}

// Sign returns a fresh presigned GET for the object behind the stored URL.
// Passing an already-signed URL re-signs the same underlying object; stale
// signature parameters are dropped during parsing, never double-encoded.
func (s *Signer) Sign(ctx context.Context, canonicalURL string) (*SignedAccess, error) {
	accountID, key, err := ParseCanonicalURL(canonicalURL)
	if err != nil {
		return nil, err
	}
	if _, err := s.reg.AccountFor(accountID); err != nil {
		return nil, err
	}
	if _, _, err := s.reg.CredentialsFor(accountID); err != nil {
		return nil, err
	}
	c, err := s.reg.ClientFor(accountID)
	if err != nil {
		return nil, err
	}

	issued := time.Now()
	signed, err := c.PresignGet(ctx, key, s.validity)
	if err != nil {
		return nil, fmt.Errorf("sign object %q in account %q: %w", key, accountID, err)
	}
	return &SignedAccess{URL: signed.String(), ExpiresAt: issued.Add(s.validity)}, nil
}
