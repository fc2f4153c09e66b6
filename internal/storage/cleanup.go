package storage

import (
	"context"
	"fmt"
)

// Cleanup removes stored objects once their catalog record is gone. It is
// also the compensating action when an upload succeeds but the catalog write
// fails; the caller must invoke it explicitly, there is no automatic
// rollback.
type Cleanup struct {
	reg *Registry
}

// NewCleanup creates a Cleanup over the given registry.
func NewCleanup(reg *Registry) *Cleanup {
	return &Cleanup{reg: reg}
}

// Delete removes the object behind the stored URL from its owning account.
// Deleting an object that is already gone succeeds, so a parent record's
// deletion flow can be retried safely.
func (c *Cleanup) Delete(ctx context.Context, canonicalURL string) error {
	accountID, key, err := ParseCanonicalURL(canonicalURL)
	if err != nil {
		return err
	}
	client, err := c.reg.ClientFor(accountID)
	if err != nil {
		return err
	}
	if err := client.Remove(ctx, key); err != nil {
		return fmt.Errorf("delete object %q from account %q: %w", key, accountID, err)
	}
	return nil
}
