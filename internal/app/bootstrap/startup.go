// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"github.com/tagauto/tagauto/internal/app/system/events"
	"github.com/tagauto/tagauto/internal/app/system/workers"
	"go.uber.org/zap"
)

// Long-lived pieces created during Startup and torn down in Shutdown. They
// outlive the request handlers, so they cannot live in BuildHandler.
var (
	eventHub   *events.Hub
	hubCancel  context.CancelFunc
	reconciler *workers.Reconcile
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. TagAuto
// starts the websocket event hub and the background worker that repairs
// cross-collection references left behind by interrupted cascades.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	eventHub = events.NewHub(logger)
	hubCtx, cancel := context.WithCancel(context.Background())
	hubCancel = cancel
	go eventHub.Run(hubCtx)

	reconciler = workers.NewReconcile(deps.TagAutoMongoDatabase, logger, appCfg.ReconcileInterval)
	reconciler.Start()

	return nil
}
