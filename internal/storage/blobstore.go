// Package storage implements the blob store for attachment bytes. Blobs
// live in Redis under their storage path; access URLs are time-limited
// signed tokens served back through the download endpoint.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrBlobNotFound is returned when no blob exists at the given path.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the object storage contract the attachment manager depends
// on. Implementations must treat each call as a single atomic request.
type BlobStore interface {
	Upload(ctx context.Context, path, mimeType string, data []byte) error
	Fetch(ctx context.Context, path string) (data []byte, mimeType string, err error)
	Remove(ctx context.Context, path string) error
	CreateSignedURL(path string, ttl time.Duration) (string, error)
}

const blobKeyPrefix = "blob:"

// RedisStore stores blobs as Redis hashes. Attachment sizes are capped
// well below what Redis values tolerate.
type RedisStore struct {
	client  *redis.Client
	signer  *URLSigner
	baseURL string
}

// NewRedisStore constructs the store. baseURL is prepended to signed URLs;
// when empty the URL is path-relative.
func NewRedisStore(client *redis.Client, signer *URLSigner, baseURL string) *RedisStore {
	return &RedisStore{client: client, signer: signer, baseURL: baseURL}
}

// Upload writes the blob bytes and declared MIME type under path.
func (s *RedisStore) Upload(ctx context.Context, path, mimeType string, data []byte) error {
	return s.client.HSet(ctx, blobKeyPrefix+path, "data", data, "mime", mimeType).Err()
}

// Fetch reads the blob back.
func (s *RedisStore) Fetch(ctx context.Context, path string) ([]byte, string, error) {
	values, err := s.client.HGetAll(ctx, blobKeyPrefix+path).Result()
	if err != nil {
		return nil, "", err
	}
	data, ok := values["data"]
	if !ok {
		return nil, "", ErrBlobNotFound
	}
	return []byte(data), values["mime"], nil
}

// Remove deletes the blob. Removing an absent path is not an error; the
// store-side effect is the same.
func (s *RedisStore) Remove(ctx context.Context, path string) error {
	return s.client.Del(ctx, blobKeyPrefix+path).Err()
}

// CreateSignedURL returns a download URL valid for ttl.
func (s *RedisStore) CreateSignedURL(path string, ttl time.Duration) (string, error) {
	token, err := s.signer.Sign(path, ttl)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/files/download?token=%s", s.baseURL, url.QueryEscape(token)), nil
}
