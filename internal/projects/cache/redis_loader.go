package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/argentech/argentech-backend/internal/logging"
	"github.com/argentech/argentech-backend/internal/projects/directory"
	"github.com/argentech/argentech-backend/internal/projects/domain"
)

const (
	snapshotKey = "directory:snapshot" // JSON list of projects with founders
	defaultTTL  = 5 * time.Minute
)

// RedisLoader shares the last fetched directory between API instances.
// Redis problems are logged and fall through to the wrapped loader.
type RedisLoader struct {
	next   directory.Loader
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLoader(next directory.Loader, client *redis.Client, ttl time.Duration) *RedisLoader {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisLoader{next: next, client: client, ttl: ttl}
}

// ListWithFounders serves the cached list when present, otherwise loads from
// the wrapped loader and caches the result.
func (l *RedisLoader) ListWithFounders(ctx context.Context) ([]domain.Project, error) {
	log := logging.Op(ctx, "directory.cache")

	data, err := l.client.Get(ctx, snapshotKey).Bytes()
	switch {
	case err == nil:
		var projects []domain.Project
		jsonErr := json.Unmarshal(data, &projects)
		if jsonErr == nil {
			return projects, nil
		}
		log.WithError(jsonErr).Warn("discarding unreadable cached directory")
	case errors.Is(err, redis.Nil):
	default:
		log.WithError(err).Warn("redis get failed, loading from store")
	}

	projects, err := l.next.ListWithFounders(ctx)
	if err != nil {
		return nil, err
	}

	if err := l.store(ctx, projects); err != nil {
		log.WithError(err).Warn("failed to cache directory")
	}
	return projects, nil
}

// Invalidate drops the cached list so the next load reaches the store.
func (l *RedisLoader) Invalidate(ctx context.Context) error {
	if err := l.client.Del(ctx, snapshotKey).Err(); err != nil {
		return fmt.Errorf("invalidate directory cache: %w", err)
	}
	return nil
}

func (l *RedisLoader) store(ctx context.Context, projects []domain.Project) error {
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("marshal directory: %w", err)
	}
	return l.client.Set(ctx, snapshotKey, data, l.ttl).Err()
}
