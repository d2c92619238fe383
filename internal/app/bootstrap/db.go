// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"github.com/tagauto/tagauto/internal/app/system/indexes"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and, when configured, the
// Redis client backing the geocode cache.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{
		TagAutoMongoClient:   client,
		TagAutoMongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	if appCfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(appCfg.RedisURL)
		if err != nil {
			_ = client.Disconnect(ctx)
			return DBDeps{}, fmt.Errorf("parse redis url: %w", err)
		}
		deps.Redis = redis.NewClient(redisOpts)
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			// The cache is an optimization; start without it rather than fail.
			logger.Warn("redis unreachable, geocode cache disabled", zap.Error(err))
			_ = deps.Redis.Close()
			deps.Redis = nil
		}
	}

	return deps, nil
}

// EnsureSchema creates the collection indexes the queries depend on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := indexes.EnsureAll(ctx, deps.TagAutoMongoDatabase); err != nil {
		return err
	}
	logger.Info("indexes ensured")
	return nil
}
