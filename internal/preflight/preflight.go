package preflight

import (
	"context"

	"kachef/internal/config"
	"kachef/internal/language"
	"kachef/internal/metadata"
	"kachef/internal/snapshot"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Options selects the optional checks.
type Options struct {
	// Objects is the export bucket; nil skips the bucket check.
	Objects snapshot.ObjectStore
	// Offline skips every check that needs the network.
	Offline bool
}

// RunAll executes all applicable preflight checks for cfg's run language.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckDirectoryAccess("Lock directory", cfg.Paths.LockDir),
	}

	mode, err := metadata.ParseMode(cfg.Metadata.Mode)
	if err == nil && metadata.Resolve(mode, cfg.Run.Language, cfg.Run.Variant, cfg.Run.ReferenceLanguage) == metadata.ModeConsume {
		results = append(results, CheckMetadataMap(cfg.Paths.MetadataPath))
	}

	kalang := language.ToKALang(language.Normalize(cfg.Run.Language))
	if cfg.Source.Format == "tsv" {
		results = append(results, CheckSnapshotCache(snapshot.TSVCachePath(cfg.Paths.CacheDir, kalang), cfg.Source.UseCache))
		if opts.Objects != nil && !opts.Offline {
			results = append(results, CheckBucket(ctx, opts.Objects, cfg.Source.GCSBucket, kalang))
		}
	}

	if opts.Offline {
		return results
	}
	if cfg.Dubbing.CSVURL != "" {
		results = append(results, CheckEndpoint(ctx, "Dubbed video sheet", cfg.Dubbing.CSVURL, cfg.HTTP.UserAgent))
	}
	if cfg.CommonCore.Enabled && cfg.CommonCore.CSVURL != "" {
		results = append(results, CheckEndpoint(ctx, "Common Core sheet", cfg.CommonCore.CSVURL, cfg.HTTP.UserAgent))
	}
	return results
}
