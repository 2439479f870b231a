package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/flightdesk/booking-backend/internal/config"
	"github.com/flightdesk/booking-backend/internal/models"
)

// ErrMiss is returned when a key is not cached
var ErrMiss = errors.New("cache miss")

// NewRedisClient connects to Redis and pings it. An empty address disables caching
// and yields a nil client.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// FlightCache is a read-through cache for flight catalog entries
type FlightCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFlightCache creates a flight cache on top of client
func NewFlightCache(client *redis.Client, ttl time.Duration) *FlightCache {
	return &FlightCache{client: client, ttl: ttl}
}

// FlightKey returns the cache key for a flight
func FlightKey(id int64) string {
	return fmt.Sprintf("flight:%d", id)
}

// GetFlight returns a cached flight or ErrMiss
func (c *FlightCache) GetFlight(ctx context.Context, id int64) (*models.Flight, error) {
	data, err := c.client.Get(ctx, FlightKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return decodeFlight(data)
}

// SetFlight stores a flight for the configured TTL
func (c *FlightCache) SetFlight(ctx context.Context, flight *models.Flight) error {
	data, err := json.Marshal(flight)
	if err != nil {
		return fmt.Errorf("failed to marshal flight: %w", err)
	}
	return c.client.Set(ctx, FlightKey(flight.ID), data, c.ttl).Err()
}

// InvalidateFlight drops a cached flight after it changes
func (c *FlightCache) InvalidateFlight(ctx context.Context, id int64) error {
	return c.client.Del(ctx, FlightKey(id)).Err()
}

func decodeFlight(data []byte) (*models.Flight, error) {
	var flight models.Flight
	if err := json.Unmarshal(data, &flight); err != nil {
		return nil, fmt.Errorf("failed to decode cached flight: %w", err)
	}
	return &flight, nil
}
