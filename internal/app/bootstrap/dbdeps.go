// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
// Extend this struct as your app evolves.
type DBDeps struct {
	TagAutoMongoClient   *mongo.Client
	TagAutoMongoDatabase *mongo.Database

	// Redis is nil when redis_url is blank; geocoding then runs uncached.
	Redis *redis.Client
}
