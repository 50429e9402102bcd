// Package constants contains values shared between configuration and wiring.
package constants

const (
	// EnvDevelop is the environment name used on developer machines.
	EnvDevelop = "develop"
	// EnvProduction is the environment name used in production.
	EnvProduction = "production"
)

// Pub/Sub providers.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Database drivers.
const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"
)

// Session store backends.
const (
	SessionStoreDatabase = "database"
	SessionStoreRedis    = "redis"
)

// DefaultSessionCookieName is used when session.cookieName is empty.
const DefaultSessionCookieName = "energy.sid"
