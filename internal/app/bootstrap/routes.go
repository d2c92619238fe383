// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	accountfeature "github.com/tagauto/tagauto/internal/app/features/account"
	authfeature "github.com/tagauto/tagauto/internal/app/features/auth"
	carsfeature "github.com/tagauto/tagauto/internal/app/features/cars"
	groupsfeature "github.com/tagauto/tagauto/internal/app/features/groups"
	healthfeature "github.com/tagauto/tagauto/internal/app/features/health"
	heartbeatfeature "github.com/tagauto/tagauto/internal/app/features/heartbeat"
	invitationsfeature "github.com/tagauto/tagauto/internal/app/features/invitations"
	mefeature "github.com/tagauto/tagauto/internal/app/features/me"
	wsfeature "github.com/tagauto/tagauto/internal/app/features/ws"
	groupstore "github.com/tagauto/tagauto/internal/app/store/groups"
	invitationstore "github.com/tagauto/tagauto/internal/app/store/invitations"
	userstore "github.com/tagauto/tagauto/internal/app/store/users"
	sysauth "github.com/tagauto/tagauto/internal/app/system/auth"
	"github.com/tagauto/tagauto/internal/app/system/cascade"
	"github.com/tagauto/tagauto/internal/app/system/events"
	"github.com/tagauto/tagauto/internal/app/system/geocode"
	"github.com/tagauto/tagauto/internal/app/system/metrics"
	"github.com/tagauto/tagauto/internal/app/system/push"
	"github.com/tagauto/tagauto/internal/app/system/ratelimit"
	"github.com/tagauto/tagauto/internal/app/system/wsticket"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// TagAuto is a JSON API for mobile clients. Public surface: health, metrics,
// the credential endpoints, and the ticket-authenticated websocket upgrade.
// Everything else sits behind the bearer-token middleware.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.TagAutoMongoDatabase

	users := userstore.New(db)
	groups := groupstore.New(db)
	invitations := invitationstore.New(db)
	casc := cascade.New(deps.TagAutoMongoClient, db, logger)

	tokens := sysauth.NewManager(appCfg.JWTSecret, appCfg.TokenTTL, appCfg.ReauthWindow, logger)
	tickets := wsticket.NewIssuer(appCfg.WSTicketKey)
	broadcaster := events.NewBroadcaster(eventHub)
	sender := push.New(appCfg.PushEndpoint, appCfg.PushServerKey, logger)
	geo := geocode.New(appCfg.GeocodeBaseURL, deps.Redis, appCfg.GeocodeCacheTTL, logger)
	loginLimiter := ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateWindow)

	r := chi.NewRouter()

	// Public surface
	healthHandler := healthfeature.NewHandler(deps.TagAutoMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", metrics.Handler())

	authHandler := authfeature.NewHandler(users, tokens, logger)
	r.Mount("/auth", authfeature.Routes(authHandler, loginLimiter))

	wsHandler := wsfeature.NewHandler(eventHub, tickets, logger)
	r.Get("/ws", wsHandler.ServeConnect)

	heartbeatHandler := heartbeatfeature.NewHandler(users, logger)
	r.Mount("/heartbeat", heartbeatfeature.Routes(heartbeatHandler, tokens))

	// Authenticated surface
	r.Group(func(r chi.Router) {
		r.Use(tokens.RequireUser)

		meHandler := mefeature.NewHandler(users, logger)
		r.Mount("/me", mefeature.Routes(meHandler))

		groupsHandler := groupsfeature.NewHandler(users, groups, casc, broadcaster, logger)
		r.Mount("/groups", groupsfeature.Routes(groupsHandler))

		invitationsHandler := invitationsfeature.NewHandler(users, groups, invitations, casc, broadcaster, sender, logger)
		r.Mount("/invitations", invitationsfeature.Routes(invitationsHandler))
		r.Mount("/groups/{groupID}/invitations", invitationsfeature.GroupRoutes(invitationsHandler))

		carsHandler := carsfeature.NewHandler(db, casc, broadcaster, geo, logger)
		r.Mount("/cars", carsfeature.Routes(carsHandler))
		r.Mount("/groups/{groupID}/cars", carsfeature.GroupRoutes(carsHandler))

		accountHandler := accountfeature.NewHandler(users, groups, casc, tokens, broadcaster, logger)
		r.Mount("/account", accountfeature.Routes(accountHandler))

		r.Mount("/ws/ticket", wsfeature.TicketRoutes(wsHandler))
	})

	return r, nil
}
