package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/gocommission/internal/domain"
)

// ReceiptCache implements usecase.ReceiptCache using Redis.
// Receipts are stored as JSON under "receipt:<sale item id>".
type ReceiptCache struct {
	client *redis.Client
	prefix string
}

// NewReceiptCache creates a new ReceiptCache.
func NewReceiptCache(client *redis.Client) *ReceiptCache {
	return &ReceiptCache{
		client: client,
		prefix: "receipt:",
	}
}

// Get returns the cached receipt or domain.ErrReceiptNotCached.
func (c *ReceiptCache) Get(ctx context.Context, saleItemID string) (*domain.Receipt, error) {
	raw, err := c.client.Get(ctx, c.prefix+saleItemID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrReceiptNotCached
		}
		return nil, err
	}

	var receipt domain.Receipt
	if err := json.Unmarshal(raw, &receipt); err != nil {
		return nil, fmt.Errorf("decode cached receipt %s: %w", saleItemID, err)
	}

	return &receipt, nil
}

// Set stores a receipt with TTL.
func (c *ReceiptCache) Set(ctx context.Context, receipt *domain.Receipt, ttl time.Duration) error {
	raw, err := json.Marshal(receipt)
	if err != nil {
		return fmt.Errorf("encode receipt %s: %w", receipt.SaleItemID, err)
	}

	return c.client.Set(ctx, c.prefix+receipt.SaleItemID, raw, ttl).Err()
}

// Delete removes a cached receipt.
func (c *ReceiptCache) Delete(ctx context.Context, saleItemID string) error {
	return c.client.Del(ctx, c.prefix+saleItemID).Err()
}
