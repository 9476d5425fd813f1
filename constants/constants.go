package constants

import "time"

// viper keys for process wide settings
const (
	StatePath     = "STATE_PATH"
	CatalogPath   = "CATALOG_PATH"
	EncryptionKey = "ENCRYPTION_KEY"
	LogLevel      = "LOG_LEVEL"
	LogFile       = "LOG_FILE"
	NoColor       = "NO_COLOR"
)

const (
	TapName               = "tap-monday"
	DefaultAPIURL         = "https://api.monday.com/v2"
	DefaultBoardLimit     = 10
	DefaultItemsPageSize  = 100
	DefaultMaxRetries     = 5
	DefaultBackoffInitial = time.Second
	DefaultRequestsPerSec = 5
	DefaultRequestTimeout = 60 * time.Second
	DefaultThreadCount    = 4
	// nested items fetched with every board page
	BoardItemsLimit = 25
)

// selection metadata inclusion values
const (
	InclusionAutomatic   = "automatic"
	InclusionAvailable   = "available"
	InclusionUnsupported = "unsupported"
)
