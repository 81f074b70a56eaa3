package config

// Default paths for on-disk state
const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./sitedocs.db"

	// DefaultMediaDir is where uploaded media files are stored
	DefaultMediaDir = "./uploads"

	// DefaultMediaURLPrefix is the URL path uploaded media is served from
	DefaultMediaURLPrefix = "/uploads"
)
