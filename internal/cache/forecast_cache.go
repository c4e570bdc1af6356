package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hacks11/inventory-health/backend-go/internal/config"
	"github.com/hacks11/inventory-health/backend-go/internal/domain"
)

const (
	forecastKeyPrefix     = "forecast:prediction"
	forecastScanBatchSize = 100
)

// PredictionKey identifies one cached forecast. Variant is part of the key
// so a redeploy under a different model variant never serves stale entries.
type PredictionKey struct {
	SKUID   string
	Horizon int
	Variant string
}

type ForecastCache interface {
	GetPrediction(ctx context.Context, key PredictionKey) (*domain.PredictionResponse, bool, error)
	SetPrediction(ctx context.Context, key PredictionKey, resp *domain.PredictionResponse) error
	InvalidateAll(ctx context.Context) error
}

type redisForecastCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopForecastCache struct{}

func NewForecastCache(cfg config.CacheConfig) (ForecastCache, error) {
	if !cfg.Enabled {
		return &noopForecastCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisForecastCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopForecastCache() ForecastCache {
	return &noopForecastCache{}
}

func (c *redisForecastCache) GetPrediction(ctx context.Context, key PredictionKey) (*domain.PredictionResponse, bool, error) {
	payload, err := c.client.Get(ctx, buildPredictionKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var resp domain.PredictionResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, false, fmt.Errorf("decode prediction cache: %w", err)
	}

	return &resp, true, nil
}

func (c *redisForecastCache) SetPrediction(ctx context.Context, key PredictionKey, resp *domain.PredictionResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode prediction cache: %w", err)
	}

	if err := c.client.Set(ctx, buildPredictionKey(key), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisForecastCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, forecastKeyPrefix, forecastScanBatchSize)
}

func (n *noopForecastCache) GetPrediction(ctx context.Context, key PredictionKey) (*domain.PredictionResponse, bool, error) {
	return nil, false, nil
}

func (n *noopForecastCache) SetPrediction(ctx context.Context, key PredictionKey, resp *domain.PredictionResponse) error {
	return nil
}

func (n *noopForecastCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildPredictionKey(key PredictionKey) string {
	raw := strings.Join([]string{
		"sku=" + strings.ToUpper(strings.TrimSpace(key.SKUID)),
		fmt.Sprintf("horizon=%d", key.Horizon),
		"variant=" + strings.ToLower(strings.TrimSpace(key.Variant)),
	}, "|")
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", forecastKeyPrefix, hex.EncodeToString(sum[:]))
}
