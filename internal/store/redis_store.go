package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each collection as a hash of position-prefixed fields
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the Redis instance at url
func NewRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{client: client, prefix: prefix}, nil
}

// Close closes the underlying client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) key(collection string) string {
	return s.prefix + ":records:" + collection
}

func (s *RedisStore) LoadAll(ctx context.Context, collection string) ([]Record, error) {
	fields, err := s.client.HGetAll(ctx, s.key(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", collection, err)
	}

	type positioned struct {
		pos    int
		record Record
	}
	items := make([]positioned, 0, len(fields))
	for field, data := range fields {
		pos, id, err := splitField(field)
		if err != nil {
			return nil, fmt.Errorf("corrupt %s field %q: %w", collection, field, err)
		}
		items = append(items, positioned{pos: pos, record: Record{ID: id, Data: []byte(data)}})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].pos < items[j].pos })

	records := make([]Record, len(items))
	for i, item := range items {
		records[i] = item.record
	}
	return records, nil
}

// SaveAll swaps the hash inside a MULTI/EXEC block
func (s *RedisStore) SaveAll(ctx context.Context, collection string, records []Record) error {
	key := s.key(collection)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(records) == 0 {
			return nil
		}
		values := make(map[string]interface{}, len(records))
		for i, r := range records {
			values[joinField(i, r.ID)] = string(r.Data)
		}
		pipe.HSet(ctx, key, values)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", collection, err)
	}
	return nil
}

func joinField(pos int, id string) string {
	return fmt.Sprintf("%08d:%s", pos, id)
}

func splitField(field string) (int, string, error) {
	head, id, ok := strings.Cut(field, ":")
	if !ok {
		return 0, "", fmt.Errorf("missing position")
	}
	pos, err := strconv.Atoi(head)
	if err != nil {
		return 0, "", err
	}
	return pos, id, nil
}
