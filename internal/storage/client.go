package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client is the provider-facing surface for a single storage account. The
// production implementation wraps a minio-go client bound to one bucket; tests
// substitute in-memory fakes.
type Client interface {
	// Put streams reader into the account under key. size must be the exact
	// byte count of the content.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// UsedBytes returns the total size of all objects currently stored in the
	// account.
	UsedBytes(ctx context.Context) (int64, error)
	// PresignGet returns a presigned GET URL for key, valid for validity.
	PresignGet(ctx context.Context, key string, validity time.Duration) (*url.URL, error)
	// Remove deletes the object at key. Removing an absent object is not an
	// error.
	Remove(ctx context.Context, key string) error
}

// minioClient implements Client against any S3-compatible provider
// (Backblaze B2 in production, MinIO locally).
type minioClient struct {
	api    *minio.Client
	bucket string
}

func newMinioClient(endpoint, region string, acct Account) (*minioClient, error) {
	api, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(acct.KeyID, acct.AppKey, ""),
		Secure: true,
		Region: region,
		// Virtual-host addressing keeps presigned URLs on the same
		// {bucket}.{endpoint} host shape as canonical URLs, so a signed URL
		// still resolves to its account when fed back in.
		BucketLookup: minio.BucketLookupDNS,
	})
	if err != nil {
		return nil, fmt.Errorf("create client for account %q: %w", acct.ID, err)
	}
	return &minioClient{api: api, bucket: acct.ID}, nil
}

func (c *minioClient) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := c.api.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

func (c *minioClient) UsedBytes(ctx context.Context) (int64, error) {
	var total int64
	for obj := range c.api.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return 0, fmt.Errorf("list objects in %q: %w", c.bucket, obj.Err)
		}
		total += obj.Size
	}
	return total, nil
}

func (c *minioClient) PresignGet(ctx context.Context, key string, validity time.Duration) (*url.URL, error) {
	signed, err := c.api.PresignedGetObject(ctx, c.bucket, key, validity, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("presign object %q: %w", key, err)
	}
	return signed, nil
}

func (c *minioClient) Remove(ctx context.Context, key string) error {
	err := c.api.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		// S3 DELETE is idempotent, but be explicit in case the provider
		// reports the missing key instead.
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return fmt.Errorf("remove object %q: %w", key, err)
	}
	return nil
}
