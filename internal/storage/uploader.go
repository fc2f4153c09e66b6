package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
)

// Uploader streams local files into a chosen account.
type Uploader struct {
	reg *Registry
}

// NewUploader creates an Uploader over the given registry.
func NewUploader(reg *Registry) *Uploader {
	return &Uploader{reg: reg}
}

// Upload pushes the file at path into accountID and returns the canonical URL
// to persist. The object key is the file's base name: two uploads with the
// same name into one account silently overwrite each other.
//
// Once an account has been selected there is no fallback to another account;
// an upload failure is surfaced as-is.
func (u *Uploader) Upload(ctx context.Context, accountID, path string) (string, error) {
	c, err := u.reg.ClientFor(accountID)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open upload file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat upload file: %w", err)
	}

	key := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if err := c.Put(ctx, key, f, info.Size(), contentType); err != nil {
		return "", fmt.Errorf("upload %q to account %q: %w", key, accountID, err)
	}
	return u.reg.CanonicalURL(accountID, key), nil
}
