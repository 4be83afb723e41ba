// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig handles
// framework-level settings (ports, TLS, logging, CORS); AppConfig is where
// everything specific to this application lives.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey string        // Secret key for signing bearer tokens (must be strong in production)
	SessionTTL time.Duration // Bearer token lifetime

	// File storage configuration (profile pictures)
	StorageType      string // Storage backend: "local" or "s3"
	StorageLocalPath string // Local storage path (e.g., "./uploads")
	StorageLocalURL  string // URL prefix for serving local files

	// S3/CloudFront configuration (only used if StorageType is "s3")
	StorageS3Region    string // AWS region
	StorageS3Bucket    string // S3 bucket name
	StorageS3Prefix    string // Key prefix (e.g., "profile-pictures/")
	StorageCFURL       string // CloudFront distribution URL
	StorageCFKeyPairID string // CloudFront key pair ID
	StorageCFKeyPath   string // Path to CloudFront private key file

	// Recommendation search configuration
	SearchAPIURL         string        // Remote semantic-search service base URL (blank disables)
	RecommendInterpreter string        // Interpreter for the local search script (e.g., python3; blank runs the script directly)
	RecommendScript      string        // Path to the local fallback search script (blank disables)
	RecommendDataset     string        // Path to the organization dataset the script searches
	ResolveTimeout       time.Duration // Budget for each search path (remote and fallback)

	// Google Calendar integration
	GoogleClientID     string        // Google OAuth2 client ID
	GoogleClientSecret string        // Google OAuth2 client secret
	GoogleRedirectURL  string        // OAuth2 redirect URL (<base_url>/calendar/callback when blank)
	CalendarSyncPeriod time.Duration // Background calendar sweep interval

	// Base URL of this deployment, used to derive the OAuth redirect.
	BaseURL string
}
