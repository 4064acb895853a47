package config

const (
	// DefaultDatabasePath is the default path for the SQLite database
	DefaultDatabasePath = "./bookcatalog.db"

	// DefaultAppName prefixes the alert/error response headers
	DefaultAppName = "bookcatalogApp"

	// DefaultPageSize and MaxPageSize bound GET collection requests
	DefaultPageSize = 20
	MaxPageSize     = 2000
)
