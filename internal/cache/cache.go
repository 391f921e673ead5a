package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/faresweep/internal/models"
)

// Cache stores provider offers per fare query. An empty, found result means
// the provider had no offers for that pair; failures are never cached.
type Cache interface {
	Get(ctx context.Context, q models.FareQuery) ([]models.FlightRecord, bool)
	Set(ctx context.Context, q models.FareQuery, flights []models.FlightRecord) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      30 * time.Minute,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, q models.FareQuery) ([]models.FlightRecord, bool) {
	data, err := c.client.Get(ctx, generateKey(q)).Bytes()
	if err != nil {
		return nil, false
	}

	var flights []models.FlightRecord
	if err := json.Unmarshal(data, &flights); err != nil {
		return nil, false
	}

	return flights, true
}

func (c *RedisCache) Set(ctx context.Context, q models.FareQuery, flights []models.FlightRecord) error {
	if flights == nil {
		flights = []models.FlightRecord{}
	}

	data, err := json.Marshal(flights)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, generateKey(q), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, q models.FareQuery) ([]models.FlightRecord, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, q models.FareQuery, flights []models.FlightRecord) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

func generateKey(q models.FareQuery) string {
	keyData := struct {
		Provider      string
		Origin        string
		Destination   string
		DepartureDate string
		ReturnDate    string
		Adults        int
		Seat          string
	}{
		Provider:      q.Provider,
		Origin:        q.Origin,
		Destination:   q.Destination,
		DepartureDate: q.Pair.Departure.Format(models.DateLayout),
		ReturnDate:    q.Pair.Return.Format(models.DateLayout),
		Adults:        q.Adults,
		Seat:          string(q.Seat),
	}

	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return "fare:" + hex.EncodeToString(hash[:])
}
