package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ObjectStore is the part of a bucket that snapshot acquisition reads.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// GCSStore reads export blobs from a Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore opens bucket anonymously, or with the service account in
// credentialsFile when one is given.
func NewGCSStore(ctx context.Context, bucket, credentialsFile string) (*GCSStore, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}
	var opts []option.ClientOption
	if path := strings.TrimSpace(credentialsFile); path != "" {
		opts = append(opts, option.WithCredentialsFile(path), option.WithScopes(storage.ScopeReadOnly))
	} else {
		opts = append(opts, option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

// List returns the names of objects under prefix in sorted order.
func (g *GCSStore) List(ctx context.Context, prefix string) ([]string, error) {
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list gs://%s/%s: %w", g.bucket, prefix, err)
		}
		names = append(names, attrs.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Open returns a reader over the named object.
func (g *GCSStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	r, err := g.client.Bucket(g.bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", g.bucket, name, err)
	}
	return r, nil
}

// Close releases the underlying client.
func (g *GCSStore) Close() error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Close()
}
