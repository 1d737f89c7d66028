package chef

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"kachef/internal/config"
	"kachef/internal/kaapi"
	"kachef/internal/snapshot"
)

// Sources holds the external clients a run talks to. Nil fields are built
// from the configuration on first use.
type Sources struct {
	Objects snapshot.ObjectStore
	HTTP    *kaapi.Client
}

func (s *Sources) objects(cfg *config.Config) snapshot.ObjectStore {
	if s != nil && s.Objects != nil {
		return s.Objects
	}
	return &lazyGCS{bucket: cfg.Source.GCSBucket, credentials: cfg.Source.GCSCredentialsFile}
}

func (s *Sources) http(cfg *config.Config) *kaapi.Client {
	if s != nil && s.HTTP != nil {
		return s.HTTP
	}
	return NewHTTPClient(cfg)
}

// NewHTTPClient builds the KA client from the http section.
func NewHTTPClient(cfg *config.Config) *kaapi.Client {
	return kaapi.New(kaapi.Config{
		UserAgent:  cfg.HTTP.UserAgent,
		MaxRetries: cfg.HTTP.MaxRetries,
		HTTPClient: &http.Client{Timeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second},
	})
}

// lazyGCS opens the bucket client on first use so cached runs never create
// one.
type lazyGCS struct {
	bucket      string
	credentials string

	once  sync.Once
	store *snapshot.GCSStore
	err   error
}

func (l *lazyGCS) open(ctx context.Context) (*snapshot.GCSStore, error) {
	l.once.Do(func() {
		l.store, l.err = snapshot.NewGCSStore(ctx, l.bucket, l.credentials)
	})
	return l.store, l.err
}

func (l *lazyGCS) List(ctx context.Context, prefix string) ([]string, error) {
	store, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	return store.List(ctx, prefix)
}

func (l *lazyGCS) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	store, err := l.open(ctx)
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, name)
}

func (l *lazyGCS) Close() error {
	if l.store == nil {
		return nil
	}
	return l.store.Close()
}
