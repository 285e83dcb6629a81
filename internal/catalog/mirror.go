// Package catalog keeps a Redis read mirror of the product catalog so the
// storefront can read products without touching the relational database.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"store-backend-api/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const productKeyPrefix = "products:"

// Mirror writes consolidated product JSON to Redis. Mirror failures are
// logged but never abort the database operation that triggered them.
type Mirror struct {
	client *redis.Client
	logger *logrus.Logger
}

// Config holds mirror configuration
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewMirror creates a catalog mirror backed by Redis
func NewMirror(cfg Config, logger *logrus.Logger) *Mirror {
	if logger == nil {
		logger = logrus.New()
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &Mirror{client: client, logger: logger}
}

// NewMirrorWithClient wraps an existing Redis client (used by tests)
func NewMirrorWithClient(client *redis.Client, logger *logrus.Logger) *Mirror {
	if logger == nil {
		logger = logrus.New()
	}
	return &Mirror{client: client, logger: logger}
}

// Ping checks Redis connectivity
func (m *Mirror) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

// Close releases the Redis connection
func (m *Mirror) Close() error {
	return m.client.Close()
}

// SetProduct writes the full consolidated product JSON, variants included
func (m *Mirror) SetProduct(ctx context.Context, product *models.Product) error {
	if product == nil || product.ID == 0 {
		m.logger.Warn("Product missing ID, skipping mirror set")
		return nil
	}

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("encoding product %d for mirror: %w", product.ID, err)
	}

	key := productKey(product.ID)
	if err := m.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("mirror set %s: %w", key, err)
	}

	m.logger.WithField("product_id", product.ID).Debug("Catalog mirror: product synced")
	return nil
}

// GetProduct reads one consolidated product from the mirror. Returns
// nil without error when the product is not mirrored.
func (m *Mirror) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	data, err := m.client.Get(ctx, productKey(productID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mirror get product %d: %w", productID, err)
	}

	var product models.Product
	if err := json.Unmarshal(data, &product); err != nil {
		return nil, fmt.Errorf("decoding mirrored product %d: %w", productID, err)
	}

	return &product, nil
}

// DeleteProduct removes a product from the mirror
func (m *Mirror) DeleteProduct(ctx context.Context, productID int64) error {
	if err := m.client.Del(ctx, productKey(productID)).Err(); err != nil {
		return fmt.Errorf("mirror delete product %d: %w", productID, err)
	}

	m.logger.WithField("product_id", productID).Debug("Catalog mirror: product removed")
	return nil
}

func productKey(productID int64) string {
	return fmt.Sprintf("%s%d", productKeyPrefix, productID)
}
