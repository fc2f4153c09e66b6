package storage

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseCanonicalURL splits a stored object URL into its owning account ID and
// object key. The account is the first DNS label of the host; the key is the
// URL path without the leading slash. Query parameters are discarded, so a
// previously signed URL parses to the same account and key as the canonical
// one.
//
// Both signing and deletion resolve ownership through this function; there is
// deliberately no second parser.
func ParseCanonicalURL(raw string) (accountID, objectKey string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("parse stored URL: %w", err)
	}
	host := u.Hostname()
	if host == "" {
		return "", "", fmt.Errorf("stored URL %q has no host", raw)
	}
	accountID, _, _ = strings.Cut(host, ".")
	if accountID == "" {
		return "", "", fmt.Errorf("stored URL %q has no account label", raw)
	}
	objectKey = strings.TrimPrefix(u.Path, "/")
	if objectKey == "" {
		return "", "", fmt.Errorf("stored URL %q has no object key", raw)
	}
	return accountID, objectKey, nil
}
