package storage

import "errors"

// ErrNoCapacity is returned when no configured account has enough free space
// for a candidate upload.
var ErrNoCapacity = errors.New("no storage account has enough free space")

// ErrUnknownAccount is returned when a stored URL resolves to an account that
// is not configured.
var ErrUnknownAccount = errors.New("unknown storage account")

// ErrCredentialsMissing is returned when no credentials are configured for a
// resolved account.
var ErrCredentialsMissing = errors.New("storage account credentials missing")
