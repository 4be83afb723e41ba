// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for CampusHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_key, etc.
//   - Environment variables: CAMPUSHUB_MONGO_URI, CAMPUSHUB_SESSION_KEY, etc.
//   - Command-line flags: --mongo_uri, --session_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "campus_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Bearer token signing key (must be strong in production)"},
	{Name: "session_ttl", Default: "24h", Desc: "Bearer token lifetime (e.g., 24h, 30m)"},

	// File storage configuration (profile pictures)
	{Name: "storage_type", Default: "local", Desc: "Storage backend: 'local' or 's3'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local files"},

	// S3/CloudFront configuration
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "storage_s3_prefix", Default: "profile-pictures/", Desc: "S3 key prefix"},
	{Name: "storage_cf_url", Default: "", Desc: "CloudFront distribution URL"},
	{Name: "storage_cf_keypair_id", Default: "", Desc: "CloudFront key pair ID"},
	{Name: "storage_cf_key_path", Default: "", Desc: "Path to CloudFront private key file"},

	// Recommendation search configuration
	{Name: "search_api_url", Default: "", Desc: "Remote semantic-search service base URL (blank disables the remote path)"},
	{Name: "recommend_interpreter", Default: "python3", Desc: "Interpreter for the local search script (blank runs the script directly)"},
	{Name: "recommend_script", Default: "", Desc: "Path to the local fallback search script (blank disables the fallback)"},
	{Name: "recommend_dataset", Default: "", Desc: "Path to the organization dataset used by the fallback script"},
	{Name: "resolve_timeout", Default: "60s", Desc: "Budget for each search path (remote and fallback)"},

	// Google Calendar integration
	{Name: "google_client_id", Default: "", Desc: "Google OAuth2 client ID"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth2 client secret"},
	{Name: "google_redirect_url", Default: "", Desc: "OAuth2 redirect URL (derived from base_url when blank)"},
	{Name: "calendar_sync_period", Default: "15m", Desc: "Background Google Calendar sweep interval"},

	// Base URL of this deployment
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL used to derive the OAuth redirect"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have access
// to configuration before any backends or handlers are built. WAFFLE's
// config.LoadWithAppConfig merges .env files, config files, CAMPUSHUB_*
// environment variables, and command-line flags, with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CAMPUSHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey: appValues.String("session_key"),
		SessionTTL: appValues.Duration("session_ttl", 24*time.Hour),

		// File storage
		StorageType:      appValues.String("storage_type"),
		StorageLocalPath: appValues.String("storage_local_path"),
		StorageLocalURL:  appValues.String("storage_local_url"),

		// S3/CloudFront
		StorageS3Region:    appValues.String("storage_s3_region"),
		StorageS3Bucket:    appValues.String("storage_s3_bucket"),
		StorageS3Prefix:    appValues.String("storage_s3_prefix"),
		StorageCFURL:       appValues.String("storage_cf_url"),
		StorageCFKeyPairID: appValues.String("storage_cf_keypair_id"),
		StorageCFKeyPath:   appValues.String("storage_cf_key_path"),

		// Recommendation search
		SearchAPIURL:         appValues.String("search_api_url"),
		RecommendInterpreter: appValues.String("recommend_interpreter"),
		RecommendScript:      appValues.String("recommend_script"),
		RecommendDataset:     appValues.String("recommend_dataset"),
		ResolveTimeout:       appValues.Duration("resolve_timeout", 60*time.Second),

		// Google Calendar
		GoogleClientID:     appValues.String("google_client_id"),
		GoogleClientSecret: appValues.String("google_client_secret"),
		GoogleRedirectURL:  appValues.String("google_redirect_url"),
		CalendarSyncPeriod: appValues.Duration("calendar_sync_period", 15*time.Minute),

		BaseURL: appValues.String("base_url"),
	}

	// Derive the OAuth redirect from the base URL when not explicitly set.
	if appCfg.GoogleRedirectURL == "" && appCfg.BaseURL != "" {
		appCfg.GoogleRedirectURL = strings.TrimRight(appCfg.BaseURL, "/") + "/calendar/callback"
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// CampusHub validates the MongoDB URI format to catch configuration errors
// early, and rejects a half-configured Google OAuth client.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if (appCfg.GoogleClientID == "") != (appCfg.GoogleClientSecret == "") {
		return fmt.Errorf("google_client_id and google_client_secret must be set together")
	}

	if appCfg.RecommendScript != "" && appCfg.RecommendDataset == "" {
		return fmt.Errorf("recommend_script requires recommend_dataset")
	}

	return nil
}
