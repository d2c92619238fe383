// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where you put everything specific to YOUR application.
// Add fields here as the application grows. The struct is passed to most
// lifecycle hooks, so any configuration needed during startup, request
// handling, or shutdown should live here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Bearer-token configuration
	JWTSecret    string        // Secret for signing bearer tokens (must be strong in production)
	TokenTTL     time.Duration // Bearer token lifetime
	ReauthWindow time.Duration // How recently a token must be minted for sensitive operations

	// Websocket ticket signing
	WSTicketKey string // Secret for signing websocket upgrade tickets

	// Redis (geocode cache; blank disables caching)
	RedisURL string // e.g., "redis://localhost:6379/0"

	// Reverse geocoding
	GeocodeBaseURL  string        // Nominatim-compatible base URL
	GeocodeCacheTTL time.Duration // How long resolved addresses stay cached

	// Push notifications (blank endpoint disables push)
	PushEndpoint  string // FCM-compatible HTTP endpoint
	PushServerKey string // Server key sent in the Authorization header

	// Credential endpoint rate limiting
	LoginRateLimit  int           // Attempts allowed per client IP per window
	LoginRateWindow time.Duration // Window for the attempt budget

	// Background reference repair
	ReconcileInterval time.Duration // How often the reconcile worker runs
}
