package sublangs

import (
	"context"
	"log/slog"
	"time"

	"kachef/internal/logging"
)

// Lister fetches the subtitle languages published for a video.
type Lister interface {
	SubtitleLanguages(ctx context.Context, urlTemplate, youtubeID string) ([]string, error)
}

// Cache answers subtitle-language lookups from the store, falling back to
// the lister when an entry is missing or older than the TTL.
type Cache struct {
	store       *Store
	lister      Lister
	urlTemplate string
	ttl         time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// NewCache wires store and lister together. A nil store disables
// persistence; a nil lister makes misses return no languages.
func NewCache(store *Store, lister Lister, urlTemplate string, ttl time.Duration, logger *slog.Logger, opts ...Option) *Cache {
	c := &Cache{
		store:       store,
		lister:      lister,
		urlTemplate: urlTemplate,
		ttl:         ttl,
		now:         time.Now,
		logger:      logging.NewComponentLogger(logger, "sublangs"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Languages returns the subtitle language codes for youtubeID. Failures are
// logged and yield an empty list; they never stop a build.
func (c *Cache) Languages(ctx context.Context, youtubeID string) []string {
	if c == nil || youtubeID == "" {
		return nil
	}
	if c.store != nil {
		entry, ok, err := c.store.Get(ctx, youtubeID)
		if err != nil {
			c.logger.Debug("subtitle cache read failed", logging.String("youtube_id", youtubeID), logging.Error(err))
		}
		if ok && (c.ttl <= 0 || c.now().Sub(entry.FetchedAt) < c.ttl) {
			return entry.Languages
		}
	}
	if c.lister == nil {
		return nil
	}
	codes, err := c.lister.SubtitleLanguages(ctx, c.urlTemplate, youtubeID)
	if err != nil {
		logging.WarnWithContext(c.logger, "subtitle listing failed", "subtitle_listing_failed",
			logging.String("youtube_id", youtubeID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "video is treated as having no subtitles"),
		)
		return nil
	}
	if c.store != nil {
		if err := c.store.Put(ctx, Entry{YouTubeID: youtubeID, Languages: codes, FetchedAt: c.now().UTC()}); err != nil {
			c.logger.Debug("subtitle cache write failed", logging.String("youtube_id", youtubeID), logging.Error(err))
		}
	}
	return codes
}
