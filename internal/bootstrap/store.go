package bootstrap

import (
	"context"
	"fmt"

	"github.com/PartyProtect/revive-your-hair-website/internal/config"
	"github.com/PartyProtect/revive-your-hair-website/internal/logger"
	"github.com/PartyProtect/revive-your-hair-website/internal/repository/postgres"
	redisRepo "github.com/PartyProtect/revive-your-hair-website/internal/repository/redis"
	s3Repo "github.com/PartyProtect/revive-your-hair-website/internal/repository/s3"
	"github.com/PartyProtect/revive-your-hair-website/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// OpenStore connects the document store selected by cfg.Store.Driver. The
// returned func releases its connections.
func OpenStore(ctx context.Context, cfg *config.Config) (service.DocumentStore, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		dbPool, err := setupDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewDocumentStore(dbPool, cfg.Store.Key)
		if err := store.EnsureSchema(ctx); err != nil {
			dbPool.Close()
			return nil, nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		return store, dbPool.Close, nil

	case config.DriverS3:
		client, err := s3Repo.NewClient(ctx, s3Repo.ClientConfig{
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, nil, err
		}
		return s3Repo.NewDocumentStore(client, cfg.S3.Bucket, cfg.S3.Prefix, cfg.Store.Key), func() {}, nil

	case config.DriverRedis:
		redisClient, err := setupRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		closeRedis := func() {
			if err := redisClient.Close(); err != nil {
				logger.Get().Error("Error closing Redis", "error", err)
			}
		}
		return redisRepo.NewDocumentStore(redisClient, cfg.Store.Key), closeRedis, nil
	}

	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

func setupDatabase(ctx context.Context, dbConfig config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbConfig.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(dbConfig.MaxConns)
	poolConfig.MinConns = int32(dbConfig.MinConns)
	poolConfig.MaxConnLifetime = dbConfig.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = dbConfig.MaxConnIdleTime

	return pgxpool.NewWithConfig(ctx, poolConfig)
}

func setupRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		MaxRetries:   cfg.MaxRetries,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return redisClient, nil
}
