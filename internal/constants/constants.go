package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// API endpoints.
const (
	// APIPrefix is prepended to every resource path before dispatch.
	APIPrefix = "/api/v1"

	// ProductionURL is the base URL used when Config.Production is set.
	ProductionURL = "https://api.pagedrest.io"

	// SandboxURL is the default base URL.
	SandboxURL = "https://sandbox.pagedrest.io"

	// NextPageField holds the continuation locator in list responses.
	NextPageField = "nextPage"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second

	// DefaultUserAgent is sent unless Config.UserAgent overrides it.
	DefaultUserAgent = "pagedrest-go/1.0"
)

// Cache defaults.
const (
	// DefaultCacheTTL is how long a GET response stays cached.
	DefaultCacheTTL = time.Hour

	// DefaultCacheSize is the memory cache capacity (0 means unbounded).
	DefaultCacheSize = 0

	// DefaultCacheNamespace prefixes keys in shared remote caches.
	DefaultCacheNamespace = "pagedrest"

	// DefaultNATSBucket is the JetStream key-value bucket used for caching.
	DefaultNATSBucket = "pagedrest-cache"

	// DefaultRedisScanCount is the SCAN batch size used when clearing Redis.
	DefaultRedisScanCount = 100
)

// Validation and limits.
const (
	// MinimumArgumentCount is the argument count for KEY VALUE commands.
	MinimumArgumentCount = 2

	// KeyValueParts is the number of parts in a key=value pair.
	KeyValueParts = 2
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Log format constants.
const (
	// LogFormatJSON selects the zap JSON logger.
	LogFormatJSON = "json"

	// LogFormatText selects the logrus text logger.
	LogFormatText = "text"
)
