package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
)

const (
	historyKeyPrefix = "busfinder:history:"
	historyTTL       = 24 * time.Hour
)

// RedisHistory guarda o histórico de uma sessão numa lista Redis, em ordem cronológica.
type RedisHistory struct {
	client redis.UniversalClient
	key    string
}

func NewRedisHistory(client redis.UniversalClient, sessionID string) *RedisHistory {
	return &RedisHistory{client: client, key: historyKeyPrefix + sessionID}
}

func (h *RedisHistory) Record(ctx context.Context, event domain.SearchEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode search event: %w", err)
	}

	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, h.key, data)
	pipe.Expire(ctx, h.key, historyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record search event: %w", err)
	}
	return nil
}

func (h *RedisHistory) Recent(ctx context.Context, n int) ([]domain.SearchEvent, error) {
	if n <= 0 {
		return []domain.SearchEvent{}, nil
	}

	values, err := h.client.LRange(ctx, h.key, int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read search history: %w", err)
	}

	events := make([]domain.SearchEvent, 0, len(values))
	for _, v := range values {
		var event domain.SearchEvent
		if err := json.Unmarshal([]byte(v), &event); err != nil {
			return nil, fmt.Errorf("decode search event: %w", err)
		}
		events = append(events, event)
	}
	return domain.NewestFirst(events, n), nil
}

// Clear apaga o histórico quando a sessão termina.
func (h *RedisHistory) Clear(ctx context.Context) error {
	return h.client.Del(ctx, h.key).Err()
}
