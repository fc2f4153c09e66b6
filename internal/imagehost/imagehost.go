// Package imagehost uploads cover images to an external image host and
// returns their public URLs. Several accounts can be configured; an upload is
// tried against each in order until one succeeds.
package imagehost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/kuntv/service/internal/config"
)

// ErrNoAccounts is returned when no image hosting account is configured.
var ErrNoAccounts = errors.New("no image hosting accounts configured")

// Host uploads an image and returns its public URL.
type Host interface {
	Upload(ctx context.Context, data []byte) (string, error)
}

// Cloudinary is a Host backed by one or more Cloudinary accounts.
type Cloudinary struct {
	accounts []*cloudinary.Cloudinary
}

// NewCloudinary creates a client per configured account. An empty account
// list is allowed; uploads then fail with ErrNoAccounts.
func NewCloudinary(accounts []config.ImageAccount) (*Cloudinary, error) {
	clients := make([]*cloudinary.Cloudinary, 0, len(accounts))
	for _, a := range accounts {
		cld, err := cloudinary.NewFromParams(a.CloudName, a.APIKey, a.APISecret)
		if err != nil {
			return nil, fmt.Errorf("create cloudinary client for %q: %w", a.CloudName, err)
		}
		clients = append(clients, cld)
	}
	return &Cloudinary{accounts: clients}, nil
}

// Upload pushes the image to the first account that accepts it and returns
// the hosted URL. Accounts are tried in configuration order; only when every
// account fails does the upload fail.
func (c *Cloudinary) Upload(ctx context.Context, data []byte) (string, error) {
	if len(c.accounts) == 0 {
		return "", ErrNoAccounts
	}

	var lastErr error
	for i, cld := range c.accounts {
		res, err := cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
			ResourceType: "image",
		})
		if err != nil {
			lastErr = err
			log.Printf("imagehost: account %d upload failed: %v", i+1, err)
			continue
		}
		if res.Error.Message != "" {
			lastErr = errors.New(res.Error.Message)
			log.Printf("imagehost: account %d rejected upload: %s", i+1, res.Error.Message)
			continue
		}
		return res.SecureURL, nil
	}
	return "", fmt.Errorf("upload image: %w", lastErr)
}
