// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for TagAuto.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: TAGAUTO_MONGO_URI, TAGAUTO_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "tagauto", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer tokens
	{Name: "jwt_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Bearer token signing secret (must be strong in production)"},
	{Name: "token_ttl", Default: "720h", Desc: "Bearer token lifetime (e.g., 720h for 30 days)"},
	{Name: "reauth_window", Default: "5m", Desc: "How recently a token must be minted for account deletion"},

	// Websocket tickets
	{Name: "ws_ticket_key", Default: "dev-only-change-me-too-0123456789ABCDEF", Desc: "Websocket upgrade ticket signing key"},

	// Redis geocode cache (blank disables caching)
	{Name: "redis_url", Default: "", Desc: "Redis URL for the geocode cache (blank disables caching)"},

	// Reverse geocoding
	{Name: "geocode_base_url", Default: "https://nominatim.openstreetmap.org", Desc: "Nominatim-compatible reverse geocoding base URL"},
	{Name: "geocode_cache_ttl", Default: "168h", Desc: "How long resolved addresses stay cached"},

	// Push notifications (blank endpoint disables push)
	{Name: "push_endpoint", Default: "", Desc: "FCM-compatible push endpoint (blank disables push)"},
	{Name: "push_server_key", Default: "", Desc: "Server key for the push endpoint"},

	// Credential endpoint rate limiting
	{Name: "login_rate_limit", Default: 10, Desc: "Credential attempts allowed per client IP per window"},
	{Name: "login_rate_window", Default: "1m", Desc: "Window for the credential attempt budget"},

	// Background reference repair
	{Name: "reconcile_interval", Default: "1h", Desc: "How often the reference reconcile worker runs"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, TAGAUTO_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TAGAUTO", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:    appValues.String("jwt_secret"),
		TokenTTL:     appValues.Duration("token_ttl", 720*time.Hour),
		ReauthWindow: appValues.Duration("reauth_window", 5*time.Minute),

		WSTicketKey: appValues.String("ws_ticket_key"),

		RedisURL: appValues.String("redis_url"),

		GeocodeBaseURL:  appValues.String("geocode_base_url"),
		GeocodeCacheTTL: appValues.Duration("geocode_cache_ttl", 168*time.Hour),

		PushEndpoint:  appValues.String("push_endpoint"),
		PushServerKey: appValues.String("push_server_key"),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", time.Minute),

		ReconcileInterval: appValues.Duration("reconcile_interval", time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// TagAuto validates the MongoDB URI format to catch configuration errors
// early, before attempting to connect, and refuses the dev-only secrets
// in production mode.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" {
		if appCfg.JWTSecret == "" || appCfg.JWTSecret == "dev-only-change-me-please-0123456789ABCDEF" {
			return fmt.Errorf("jwt_secret must be set to a strong value in production")
		}
		if appCfg.WSTicketKey == "" || appCfg.WSTicketKey == "dev-only-change-me-too-0123456789ABCDEF" {
			return fmt.Errorf("ws_ticket_key must be set to a strong value in production")
		}
	}

	if appCfg.ReauthWindow <= 0 {
		return fmt.Errorf("reauth_window must be positive")
	}

	return nil
}
