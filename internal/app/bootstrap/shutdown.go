// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown cleanly tears down the background workers, the event hub, and the
// DB connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if reconciler != nil {
		reconciler.Stop()
	}
	if hubCancel != nil {
		hubCancel()
	}
	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			logger.Warn("redis close failed", zap.Error(err))
		}
	}
	if deps.TagAutoMongoClient != nil {
		logger.Info("disconnecting TagAuto MongoDB client")
		if err := deps.TagAutoMongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
