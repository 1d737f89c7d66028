package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"kachef/internal/fileutil"
	"kachef/internal/language"
	"kachef/internal/logging"
	"kachef/internal/rawstore"
	"kachef/internal/services"
)

// Format names the snapshot source.
const (
	FormatTSV = "tsv"
	FormatAPI = "api"
)

// TopicTreeFetcher downloads a legacy topictree JSON document.
type TopicTreeFetcher interface {
	FetchTopicTree(ctx context.Context, baseURL, kalang string) ([]byte, error)
}

// Loader acquires one language's raw records, from the disk cache when
// allowed and from the bucket or the API otherwise.
type Loader struct {
	CacheDir          string
	UseCache          bool
	Objects           ObjectStore
	API               TopicTreeFetcher
	APIBaseURL        string
	ReferenceLanguage string
	Dubs              rawstore.DubRemapper
	Logger            *slog.Logger
}

// TSVCachePath returns the cache file for a TSV export.
func TSVCachePath(cacheDir, kalang string) string {
	return filepath.Join(cacheDir, fmt.Sprintf("topic_tree_export.%s.tsv", kalang))
}

// APICachePath returns the cache file for a legacy API document.
func APICachePath(cacheDir, lang string) string {
	return filepath.Join(cacheDir, fmt.Sprintf("khan_academy_json_%s.json", lang))
}

// Load returns the raw store for lang in the requested format. Any failure
// here is fatal to the run: there is no tree without a manifest.
func (l *Loader) Load(ctx context.Context, format, lang string) (*rawstore.Store, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatTSV:
		return l.LoadTSV(ctx, lang)
	case FormatAPI:
		return l.LoadAPI(ctx, lang)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "snapshot", "load", fmt.Sprintf("unknown format %q", format), nil)
	}
}

// LoadTSV returns the TSV export store for lang.
func (l *Loader) LoadTSV(ctx context.Context, lang string) (*rawstore.Store, error) {
	logger := l.logger()
	kalang := language.ToKALang(lang)
	path := TSVCachePath(l.CacheDir, kalang)

	if !(l.UseCache && fileutil.Exists(path)) {
		if err := l.downloadTSV(ctx, kalang, path); err != nil {
			return nil, err
		}
	} else {
		logger.Info("using cached tsv export", logging.String("path", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrNotFound, "snapshot", "open tsv", path, err)
	}
	defer f.Close()
	store, err := rawstore.ParseTSV(f, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("tsv export loaded",
		logging.String("kalang", kalang),
		logging.Int("records", store.Len()),
	)
	return store, nil
}

func (l *Loader) downloadTSV(ctx context.Context, kalang, path string) error {
	if l.Objects == nil {
		return services.Wrap(services.ErrConfiguration, "snapshot", "download tsv", "no object store configured", nil)
	}
	names, err := l.Objects.List(ctx, kalang)
	if err != nil {
		return services.Wrap(services.ErrExternal, "snapshot", "list exports", kalang, err)
	}
	latest, ok := LatestExport(names, kalang)
	if !ok {
		return services.Wrap(services.ErrNotFound, "snapshot", "list exports", "no export available for kalang="+kalang, nil)
	}
	l.logger().Info("downloading tsv export",
		logging.String("blob", latest),
		logging.Int("candidates", len(names)),
	)
	r, err := l.Objects.Open(ctx, latest)
	if err != nil {
		return services.Wrap(services.ErrExternal, "snapshot", "download tsv", latest, err)
	}
	defer r.Close()
	if err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	}); err != nil {
		return services.Wrap(services.ErrExternal, "snapshot", "download tsv", latest, err)
	}
	return nil
}

// LoadAPI returns the legacy API store for lang. Non-reference languages
// also read the reference tree to recover the English youtube ids.
func (l *Loader) LoadAPI(ctx context.Context, lang string) (*rawstore.Store, error) {
	reference := l.reference()
	opts := rawstore.APIOptions{
		Language:          lang,
		ReferenceLanguage: reference,
		Dubs:              l.Dubs,
		Logger:            l.Logger,
	}
	if lang != reference {
		english, err := l.LoadAPI(ctx, reference)
		if err != nil {
			return nil, err
		}
		opts.EnglishYouTubeIDs = EnglishYouTubeIDs(english)
	}
	data, err := l.apiDocument(ctx, lang)
	if err != nil {
		return nil, err
	}
	store, err := rawstore.ParseAPI(bytes.NewReader(data), opts)
	if err != nil {
		return nil, err
	}
	l.logger().Info("api topic tree loaded",
		logging.String(logging.FieldLanguage, lang),
		logging.Int("records", store.Len()),
	)
	return store, nil
}

func (l *Loader) apiDocument(ctx context.Context, lang string) ([]byte, error) {
	path := APICachePath(l.CacheDir, lang)
	if l.UseCache && fileutil.Exists(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, services.Wrap(services.ErrNotFound, "snapshot", "read api cache", path, err)
		}
		return data, nil
	}
	if l.API == nil {
		return nil, services.Wrap(services.ErrConfiguration, "snapshot", "fetch api", "no api client configured", nil)
	}
	data, err := l.API.FetchTopicTree(ctx, l.APIBaseURL, language.ToKALang(lang))
	if err != nil {
		return nil, err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		l.logger().Warn("api cache write failed",
			logging.String(logging.FieldEventType, "api_cache_write_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check cache_dir permissions"),
			logging.String(logging.FieldImpact, "next run downloads the tree again"),
		)
	}
	return data, nil
}

// EnglishYouTubeIDs maps video record ids to their youtube ids.
func EnglishYouTubeIDs(store *rawstore.Store) map[string]string {
	out := map[string]string{}
	for _, r := range store.ByKind()[rawstore.KindVideo] {
		if r.YouTubeID != "" {
			out[r.ID] = r.YouTubeID
		}
	}
	return out
}

func (l *Loader) reference() string {
	if l.ReferenceLanguage != "" {
		return l.ReferenceLanguage
	}
	return "en"
}

func (l *Loader) logger() *slog.Logger {
	return logging.NewComponentLogger(l.Logger, "snapshot")
}
