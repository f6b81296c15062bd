package order

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/orderhub/orderhub-api/internal/domain/user"
)

const geoKey = "orders:geo"

// GeoIndex answers "which orders are near this point" queries
type GeoIndex interface {
	Add(ctx context.Context, orderID uuid.UUID, point user.GeoPoint) error
	Search(ctx context.Context, point user.GeoPoint, radiusMeters float64) ([]uuid.UUID, error)
}

// RedisGeoIndex keeps order locations in a Redis GEO set
type RedisGeoIndex struct {
	client *redis.Client
}

// NewRedisGeoIndex creates a Redis-backed geo index
func NewRedisGeoIndex(client *redis.Client) *RedisGeoIndex {
	return &RedisGeoIndex{client: client}
}

func (g *RedisGeoIndex) Add(ctx context.Context, orderID uuid.UUID, point user.GeoPoint) error {
	return g.client.GeoAdd(ctx, geoKey, &redis.GeoLocation{
		Name:      orderID.String(),
		Longitude: point.Longitude,
		Latitude:  point.Latitude,
	}).Err()
}

// Search returns order IDs within radiusMeters of point, nearest first
func (g *RedisGeoIndex) Search(ctx context.Context, point user.GeoPoint, radiusMeters float64) ([]uuid.UUID, error) {
	locations, err := g.client.GeoSearchLocation(ctx, geoKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  point.Longitude,
			Latitude:   point.Latitude,
			Radius:     radiusMeters,
			RadiusUnit: "m",
			Sort:       "ASC",
		},
		WithCoord: false,
		WithDist:  true,
	}).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(locations))
	for _, loc := range locations {
		id, err := uuid.Parse(loc.Name)
		if err != nil {
			continue // stale entry with a foreign key format
		}
		ids = append(ids, id)
	}
	return ids, nil
}
