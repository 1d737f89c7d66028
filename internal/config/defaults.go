package config

const (
	defaultDataDir           = "~/.local/share/kachef"
	defaultCacheSubdir       = "khantsvcache"
	defaultOutputSubdir      = "trees"
	defaultLogSubdir         = "logs"
	defaultLockSubdir        = "locks"
	defaultMetadataFile      = "metadata_by_slug.json"
	defaultSubLangsFile      = "sublangs.db"
	defaultTranslationsDir   = "translations"
	defaultSourceFormat      = "tsv"
	defaultGCSBucket         = "public-content-export-data"
	defaultAPIBaseURL        = "https://www.khanacademy.org"
	defaultLanguage          = "en"
	defaultReferenceLanguage = "en"
	defaultBatchParallelism  = 2
	defaultMetadataMode      = "auto"
	defaultGraphQLURL        = "https://{lang}.khanacademy.org/graphql/LearningEquality_assessmentItems"
	defaultSubtitleListURL   = "https://video.google.com/timedtext?type=list&v={youtube_id}"
	defaultSubtitleTTLHours  = 24 * 30
	defaultDubbedCSVURL      = "https://docs.google.com/spreadsheets/d/1haV0KK8313Vz7VmVXmmdbfwrKoDpBzRGW5GBKXpSCuo/export?format=csv"
	defaultCommonCoreCSVURL  = "https://storage.googleapis.com/ka_uploads/share/Common_Core_Spreadsheet.csv"
	defaultHTTPTimeout       = 120
	defaultHTTPMaxRetries    = 5
	defaultUserAgent         = "kachef/dev"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultReportMaxLevel    = 7
)

// Default returns a Config populated with repository defaults. Derived paths
// under the data directory are filled in by normalize.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
		},
		Source: Source{
			Format:     defaultSourceFormat,
			GCSBucket:  defaultGCSBucket,
			APIBaseURL: defaultAPIBaseURL,
			UseCache:   true,
		},
		Run: Run{
			Language:          defaultLanguage,
			OnlyListed:        true,
			ReferenceLanguage: defaultReferenceLanguage,
			BatchParallelism:  defaultBatchParallelism,
		},
		Metadata: Metadata{
			Mode: defaultMetadataMode,
		},
		Assessment: Assessment{
			Enabled:    false,
			GraphQLURL: defaultGraphQLURL,
		},
		Subtitles: Subtitles{
			Enabled:       true,
			ListURL:       defaultSubtitleListURL,
			CacheTTLHours: defaultSubtitleTTLHours,
		},
		Dubbing: Dubbing{
			CSVURL: defaultDubbedCSVURL,
		},
		CommonCore: CommonCore{
			Enabled: true,
			CSVURL:  defaultCommonCoreCSVURL,
		},
		HTTP: HTTP{
			TimeoutSeconds: defaultHTTPTimeout,
			MaxRetries:     defaultHTTPMaxRetries,
			UserAgent:      defaultUserAgent,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Report: Report{
			MaxLevel: defaultReportMaxLevel,
		},
	}
}
