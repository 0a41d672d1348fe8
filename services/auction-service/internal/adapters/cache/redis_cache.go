package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/floroz/bidmaster/services/auction-service/internal/domain/auctions"
)

const keyPrefix = "auction:"

// Timestamps keep nanoseconds so a cached snapshot compares equal to the stored row
var encMode, _ = cbor.EncOptions{Time: cbor.TimeRFC3339Nano}.EncMode()

// RedisAuctionCache stores CBOR-encoded auction snapshots with a TTL.
// Failures degrade to cache misses; the database stays authoritative.
type RedisAuctionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisAuctionCache creates a cache that expires entries after ttl
func NewRedisAuctionCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisAuctionCache {
	return &RedisAuctionCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(auctionID uuid.UUID) string {
	return keyPrefix + auctionID.String()
}

func encodeAuction(a *auctions.Auction) ([]byte, error) {
	return encMode.Marshal(a)
}

func decodeAuction(data []byte) (*auctions.Auction, error) {
	var a auctions.Auction
	if err := cbor.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode cached auction: %w", err)
	}
	return &a, nil
}

func (c *RedisAuctionCache) Get(ctx context.Context, auctionID uuid.UUID) (*auctions.Auction, bool) {
	data, err := c.client.Get(ctx, cacheKey(auctionID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Auction cache read failed", "auction_id", auctionID, "error", err)
		}
		return nil, false
	}

	a, err := decodeAuction(data)
	if err != nil {
		c.logger.Warn("Dropping unreadable cache entry", "auction_id", auctionID, "error", err)
		c.Invalidate(ctx, auctionID)
		return nil, false
	}
	return a, true
}

func (c *RedisAuctionCache) Set(ctx context.Context, a *auctions.Auction) {
	data, err := encodeAuction(a)
	if err != nil {
		c.logger.Warn("Failed to encode auction for cache", "auction_id", a.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(a.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Auction cache write failed", "auction_id", a.ID, "error", err)
	}
}

func (c *RedisAuctionCache) Invalidate(ctx context.Context, auctionIDs ...uuid.UUID) {
	if len(auctionIDs) == 0 {
		return
	}
	keys := make([]string, len(auctionIDs))
	for i, id := range auctionIDs {
		keys[i] = cacheKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Auction cache invalidation failed", "count", len(keys), "error", err)
	}
}
