// internal/providers/travel/cache.go
package travel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"trip-planner/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// CachingFlightProvider wraps a FlightProvider with a Redis read-through
// cache. Offers for the same route and date window are served from cache
// within the TTL; cache failures fall through to the inner provider.
type CachingFlightProvider struct {
	inner  FlightProvider
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachingFlightProvider(inner FlightProvider, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachingFlightProvider {
	return &CachingFlightProvider{
		inner:  inner,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"cache": "flight"}),
	}
}

func flightCacheKey(origin, destination, departureDate, returnDate string) string {
	return fmt.Sprintf("offer:flight:%s:%s:%s:%s",
		LocationCode(origin), LocationCode(destination), departureDate, returnDate)
}

func (c *CachingFlightProvider) CheapestOffer(ctx context.Context, origin, destination, departureDate, returnDate string) (FlightOffer, error) {
	key := flightCacheKey(origin, destination, departureDate, returnDate)

	if cached, err := c.redis.Get(ctx, key).Result(); err == nil {
		var offer FlightOffer
		if err := json.Unmarshal([]byte(cached), &offer); err == nil {
			c.logger.Debug("cache hit", map[string]interface{}{"key": key})
			return offer, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	offer, err := c.inner.CheapestOffer(ctx, origin, destination, departureDate, returnDate)
	if err != nil {
		return offer, err
	}

	if payload, err := json.Marshal(offer); err == nil {
		if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	return offer, nil
}

// CachingHotelProvider wraps a HotelProvider with the same read-through
// cache behavior.
type CachingHotelProvider struct {
	inner  HotelProvider
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCachingHotelProvider(inner HotelProvider, rdb *redis.Client, ttl time.Duration, log logger.Logger) *CachingHotelProvider {
	return &CachingHotelProvider{
		inner:  inner,
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"cache": "hotel"}),
	}
}

func hotelCacheKey(destination, checkIn, checkOut string) string {
	return fmt.Sprintf("offer:hotel:%s:%s:%s", LocationCode(destination), checkIn, checkOut)
}

func (c *CachingHotelProvider) CheapestOffer(ctx context.Context, destination, checkIn, checkOut string) (HotelOffer, error) {
	key := hotelCacheKey(destination, checkIn, checkOut)

	if cached, err := c.redis.Get(ctx, key).Result(); err == nil {
		var offer HotelOffer
		if err := json.Unmarshal([]byte(cached), &offer); err == nil {
			c.logger.Debug("cache hit", map[string]interface{}{"key": key})
			return offer, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("cache read failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}

	offer, err := c.inner.CheapestOffer(ctx, destination, checkIn, checkOut)
	if err != nil {
		return offer, err
	}

	if payload, err := json.Marshal(offer); err == nil {
		if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}

	return offer, nil
}
