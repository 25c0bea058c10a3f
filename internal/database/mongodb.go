package database

import (
	"context"
	"fmt"

	"github.com/privatinsolvenz/lead-dashboard/internal/config"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// ConnectMongo creates a MongoDB client for cfg.URI and returns the configured
// database. The client connects lazily and keeps reconnecting in the
// background, so a failed ping is reported as reachable=false instead of an
// error and the caller may keep serving in degraded mode.
func ConnectMongo(ctx context.Context, cfg *config.MongoDBConfig, dbCfg *config.DatabaseConfig, log *zap.Logger) (*mongo.Database, bool, error) {
	if cfg.URI == "" {
		return nil, false, fmt.Errorf("mongodb uri is not configured")
	}

	opts := options.Client().ApplyURI(cfg.URI)
	if timeout := cfg.TimeoutDuration(); timeout > 0 {
		opts.SetServerSelectionTimeout(timeout).SetConnectTimeout(timeout)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create mongodb client: %w", err)
	}

	db := client.Database(cfg.Database)

	err = withRetry(ctx, dbCfg.ConnectRetries, dbCfg.ConnectRetryDelayDuration(), log, func() error {
		return client.Ping(ctx, nil)
	})
	if err != nil {
		log.Warn("mongodb not reachable, starting degraded", zap.Error(err))
		return db, false, nil
	}

	return db, true, nil
}

// DisconnectMongo closes the client behind db
func DisconnectMongo(ctx context.Context, db *mongo.Database) error {
	return db.Client().Disconnect(ctx)
}
