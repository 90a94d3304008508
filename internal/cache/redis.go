package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-station/internal/models"
)

const tripsKey = "station:trips:list"

// TripCache keeps the availability-annotated trip listing in redis for
// a short TTL. Writers invalidate it so the annotation never drifts far.
type TripCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewTripCache(client *redis.Client, ttl time.Duration) *TripCache {
	return &TripCache{client: client, ttl: ttl}
}

func (c *TripCache) GetTrips(ctx context.Context) ([]models.Trip, error) {
	data, err := c.client.Get(ctx, tripsKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var trips []models.Trip
	if err := json.Unmarshal(data, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

func (c *TripCache) SetTrips(ctx context.Context, trips []models.Trip) error {
	payload, err := json.Marshal(trips)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, tripsKey, payload, c.ttl).Err()
}

func (c *TripCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, tripsKey).Err()
}
