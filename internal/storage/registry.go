// Package storage places media files across multiple object storage accounts,
// issues time-limited signed URLs for stored objects, and cleans them up when
// their catalog record goes away.
//
// Each account maps to one bucket; the bucket name doubles as the account
// identifier and is embedded in the first DNS label of every canonical URL,
// so ownership of an object is always recoverable from its URL alone.
package storage

import (
	"fmt"
	"strings"
)

// DefaultCeiling is the per-account capacity ceiling applied when the
// configuration does not override it (1 TB).
const DefaultCeiling = int64(1) << 40

// Account describes one configured storage destination. ID is both the map
// key and the bucket name.
type Account struct {
	ID      string
	KeyID   string
	AppKey  string
	Ceiling int64 // advisory placement limit in bytes, not a provider quota
}

// Registry holds the fixed set of storage accounts and one ready client per
// account. It is built once at startup and never mutated afterwards, so
// concurrent lookups need no locking.
type Registry struct {
	accounts []Account // configuration order, drives placement
	byID     map[string]Account
	clients  map[string]Client
	domain   string
}

// NewRegistry builds a registry with a real provider client per account.
// endpoint is the provider host (e.g. "s3.us-east-005.backblazeb2.com");
// domain is the host suffix used in canonical URLs, normally the same value.
func NewRegistry(endpoint, region, domain string, accounts []Account) (*Registry, error) {
	if len(accounts) == 0 {
		return nil, fmt.Errorf("no storage accounts configured")
	}
	clients := make(map[string]Client, len(accounts))
	for _, acct := range accounts {
		c, err := newMinioClient(endpoint, region, acct)
		if err != nil {
			return nil, err
		}
		clients[acct.ID] = c
	}
	return newRegistry(domain, accounts, clients), nil
}

func newRegistry(domain string, accounts []Account, clients map[string]Client) *Registry {
	byID := make(map[string]Account, len(accounts))
	for _, acct := range accounts {
		if acct.Ceiling <= 0 {
			acct.Ceiling = DefaultCeiling
		}
		byID[acct.ID] = acct
	}
	ordered := make([]Account, 0, len(accounts))
	for _, acct := range accounts {
		ordered = append(ordered, byID[acct.ID])
	}
	return &Registry{
		accounts: ordered,
		byID:     byID,
		clients:  clients,
		domain:   domain,
	}
}

// Accounts returns all accounts in configuration order.
func (r *Registry) Accounts() []Account {
	return r.accounts
}

// AccountFor returns the account with the given ID.
func (r *Registry) AccountFor(id string) (Account, error) {
	acct, ok := r.byID[id]
	if !ok {
		return Account{}, fmt.Errorf("account %q: %w", id, ErrUnknownAccount)
	}
	return acct, nil
}

// CredentialsFor returns the key pair for the given account ID. A resolved
// account without credentials blocks signing and deletion, so the error is
// fatal for the operation, never defaulted.
func (r *Registry) CredentialsFor(id string) (keyID, appKey string, err error) {
	acct, ok := r.byID[id]
	if !ok || acct.KeyID == "" || acct.AppKey == "" {
		return "", "", fmt.Errorf("account %q: %w", id, ErrCredentialsMissing)
	}
	return acct.KeyID, acct.AppKey, nil
}

// ClientFor returns the provider client for the given account ID.
func (r *Registry) ClientFor(id string) (Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", id, ErrUnknownAccount)
	}
	return c, nil
}

// CanonicalURL builds the stable, unsigned address of an object. This is the
// form persisted in the catalog.
func (r *Registry) CanonicalURL(accountID, objectKey string) string {
	return fmt.Sprintf("https://%s.%s/%s", accountID, r.domain, strings.TrimPrefix(objectKey, "/"))
}
