package storage

import (
	"context"
	"fmt"
)

// Prober reports how much data an account currently holds. It keeps no state;
// every call walks the provider's object listing, so cost grows with the
// number of objects in the bucket.
type Prober struct {
	reg *Registry
}

// NewProber creates a Prober over the given registry.
func NewProber(reg *Registry) *Prober {
	return &Prober{reg: reg}
}

// UsedBytes sums the sizes of every object in the account's bucket.
func (p *Prober) UsedBytes(ctx context.Context, accountID string) (int64, error) {
	c, err := p.reg.ClientFor(accountID)
	if err != nil {
		return 0, err
	}
	used, err := c.UsedBytes(ctx)
	if err != nil {
		return 0, fmt.Errorf("probe account %q: %w", accountID, err)
	}
	return used, nil
}

// HasRoomFor reports whether the account can take size more bytes without
// crossing its ceiling. A failed probe counts as no room: an unreachable
// account must not win placement on the assumption it is empty.
func (p *Prober) HasRoomFor(ctx context.Context, accountID string, size int64) (bool, error) {
	acct, err := p.reg.AccountFor(accountID)
	if err != nil {
		return false, err
	}
	used, err := p.UsedBytes(ctx, accountID)
	if err != nil {
		return false, err
	}
	return acct.Ceiling-used >= size, nil
}
