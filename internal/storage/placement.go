package storage

import (
	"context"
	"log"
)

// Selector decides which account receives a new upload.
//
// The policy is first-fit by capacity probe: accounts are tried in
// configuration order and the first one with enough free space wins.
// Tie-breaking is purely positional. This is the only placement policy in the
// codebase.
type Selector struct {
	reg    *Registry
	prober *Prober
}

// NewSelector creates a Selector over the given registry.
func NewSelector(reg *Registry) *Selector {
	return &Selector{reg: reg, prober: NewProber(reg)}
}

// Select returns the ID of the first account, in configuration order, whose
// remaining space fits size. An account whose probe fails is unusable for
// this decision and is skipped. Returns ErrNoCapacity when no account
// qualifies.
//
// Two concurrent calls may both observe free space in the same account and
// both place there; the ceiling is advisory, not enforced by the provider.
func (s *Selector) Select(ctx context.Context, size int64) (string, error) {
	for _, acct := range s.reg.Accounts() {
		fits, err := s.prober.HasRoomFor(ctx, acct.ID, size)
		if err != nil {
			log.Printf("storage: account %q excluded from placement: %v", acct.ID, err)
			continue
		}
		if fits {
			return acct.ID, nil
		}
	}
	return "", ErrNoCapacity
}
