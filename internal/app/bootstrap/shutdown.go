// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/campushub/internal/app/system/tasks"
	"github.com/dalemusser/campushub/internal/app/system/usercache"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// rt holds the long-lived components BuildHandler starts, so Shutdown can
// stop them in reverse order.
var rt struct {
	hub    *usercache.Hub
	runner *tasks.Runner
}

// Shutdown cleanly tears down background jobs, cache subscriptions, and DB
// connections.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if rt.runner != nil {
		rt.runner.Stop()
	}
	if rt.hub != nil {
		rt.hub.Stop()
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
