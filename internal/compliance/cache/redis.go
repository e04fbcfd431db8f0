package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"slfcert/internal/compliance/models"
	id "slfcert/pkg/domain"
)

const keyPrefix = "slf:cache:"

// Redis stores cache entries as JSON with a Redis-side expiry, so several
// API instances share one view.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: client, ttl: ttl}
}

func redisKey(kind models.Kind, key string) string {
	return keyPrefix + string(kind) + ":" + key
}

func (c *Redis) GetInspection(ctx context.Context, inspectionID id.InspectionID) (*models.InspectionWithChecklist, error) {
	var insp models.InspectionWithChecklist
	ok, err := c.getJSON(ctx, redisKey(models.KindInspection, inspectionID.String()), &insp)
	if err != nil || !ok {
		return nil, err
	}
	return &insp, nil
}

func (c *Redis) SetInspection(ctx context.Context, insp models.InspectionWithChecklist) error {
	return c.setJSON(ctx, redisKey(models.KindInspection, insp.ID.String()), insp)
}

func (c *Redis) GetChecklistItems(ctx context.Context, templateID string) ([]models.ChecklistItemRow, bool, error) {
	var items []models.ChecklistItemRow
	ok, err := c.getJSON(ctx, redisKey(models.KindChecklistItems, templateID), &items)
	return items, ok, err
}

func (c *Redis) SetChecklistItems(ctx context.Context, templateID string, items []models.ChecklistItemRow) error {
	if items == nil {
		items = []models.ChecklistItemRow{}
	}
	return c.setJSON(ctx, redisKey(models.KindChecklistItems, templateID), items)
}

func (c *Redis) Clear(ctx context.Context, kind models.Kind) error {
	return c.deleteMatching(ctx, keyPrefix+string(kind)+":*")
}

func (c *Redis) ClearAll(ctx context.Context) error {
	return c.deleteMatching(ctx, keyPrefix+"*")
}

func (c *Redis) getJSON(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, nil
}

func (c *Redis) setJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cached %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *Redis) deleteMatching(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 200).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 200 {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", pattern, err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	return nil
}
