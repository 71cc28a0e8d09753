package bootstrap

import (
	"context"
	"testing"

	"github.com/PartyProtect/revive-your-hair-website/internal/config"
	redisRepo "github.com/PartyProtect/revive-your-hair-website/internal/repository/redis"
	s3Repo "github.com/PartyProtect/revive-your-hair-website/internal/repository/s3"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Store: config.StoreConfig{Driver: config.DriverRedis, Key: "tracking-data"},
		Redis: config.RedisConfig{Addr: mr.Addr()},
	}

	store, closeStore, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closeStore()

	require.IsType(t, &redisRepo.DocumentStore{}, store)
	assert.Equal(t, "analytics:tracking-data", store.(*redisRepo.DocumentStore).Key())
	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpenStore_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := &config.Config{
		Store: config.StoreConfig{Driver: config.DriverRedis, Key: "tracking-data"},
		Redis: config.RedisConfig{Addr: addr},
	}

	_, _, err := OpenStore(context.Background(), cfg)

	assert.ErrorContains(t, err, "failed to connect to redis")
}

func TestOpenStore_S3(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{Driver: config.DriverS3, Key: "tracking-data"},
		S3: config.S3Config{
			Bucket:          "site-analytics",
			Prefix:          "analytics",
			Region:          "us-east-1",
			Endpoint:        "http://127.0.0.1:9000",
			AccessKeyID:     "minio",
			SecretAccessKey: "minio123",
			UsePathStyle:    true,
		},
	}

	store, closeStore, err := OpenStore(context.Background(), cfg)
	require.NoError(t, err)
	defer closeStore()

	require.IsType(t, &s3Repo.DocumentStore{}, store)
	assert.Equal(t, "analytics/tracking-data.json", store.(*s3Repo.DocumentStore).Key())
}

func TestOpenStore_PostgresBadURL(t *testing.T) {
	cfg := &config.Config{
		Store:    config.StoreConfig{Driver: config.DriverPostgres, Key: "tracking-data"},
		Database: config.DatabaseConfig{URL: "://not-a-url"},
	}

	_, _, err := OpenStore(context.Background(), cfg)

	assert.Error(t, err)
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Driver: "memcached"}}

	_, _, err := OpenStore(context.Background(), cfg)

	assert.ErrorContains(t, err, `unknown store driver "memcached"`)
}
