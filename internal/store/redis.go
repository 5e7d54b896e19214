package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/volleyhq/volley/internal/config"
	"github.com/volleyhq/volley/pkg/api"
)

type (
	// RedisRepository stores one entity kind as JSON documents under
	// <prefix>:<kind>:<id>, with a set of known IDs under <prefix>:index:<kind>
	RedisRepository[T Entity[T]] struct {
		client *redis.Client
		prefix string
		kind   string
	}

	redisSecrets struct {
		client *redis.Client
		prefix string
	}

	redisSettings struct {
		client *redis.Client
		prefix string
	}
)

// NewRedisClient creates a Redis client from store configuration
func NewRedisClient(cfg config.StoreConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisStores creates a store bundle backed by the given Redis client
func NewRedisStores(client *redis.Client, prefix string) *Stores {
	return &Stores{
		Environments: NewRedisRepository[*api.Environment](
			client, prefix, KindEnvironment,
		),
		Collections: NewRedisRepository[*api.Collection](
			client, prefix, KindCollection,
		),
		Requests: NewRedisRepository[*api.Request](
			client, prefix, KindRequest,
		),
		Flows: NewRedisRepository[*api.Flow](
			client, prefix, KindFlow,
		),
		Secrets:  &redisSecrets{client: client, prefix: prefix},
		Settings: &redisSettings{client: client, prefix: prefix},
	}
}

// NewRedisRepository creates a Redis-backed repository for one entity kind
func NewRedisRepository[T Entity[T]](
	client *redis.Client, prefix, kind string,
) *RedisRepository[T] {
	return &RedisRepository[T]{
		client: client,
		prefix: prefix,
		kind:   kind,
	}
}

func (r *RedisRepository[T]) Get(ctx context.Context, id api.ID) (T, error) {
	var zero T
	data, err := r.client.Get(ctx, r.entityKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, r.kind, id)
	}
	if err != nil {
		return zero, err
	}
	return r.decode(data)
}

func (r *RedisRepository[T]) GetMany(
	ctx context.Context, ids []api.ID,
) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.entityKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	res := make([]T, 0, len(values))
	for i, value := range values {
		data, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, r.kind, ids[i])
		}
		item, err := r.decode([]byte(data))
		if err != nil {
			return nil, err
		}
		res = append(res, item)
	}
	return res, nil
}

func (r *RedisRepository[T]) List(ctx context.Context) ([]T, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []T{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.entityKey(api.ID(id))
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	res := make([]T, 0, len(values))
	for _, value := range values {
		data, ok := value.(string)
		if !ok {
			// index can briefly outlive a deleted record
			continue
		}
		item, err := r.decode([]byte(data))
		if err != nil {
			return nil, err
		}
		res = append(res, item)
	}
	sortByKey(res)
	return res, nil
}

func (r *RedisRepository[T]) Add(ctx context.Context, item T) error {
	if item.Key().IsEmpty() {
		return fmt.Errorf("%w: %s", ErrEmptyKey, r.kind)
	}

	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	ok, err := r.client.SetNX(
		ctx, r.entityKey(item.Key()), data, 0,
	).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrDuplicate, r.kind, item.Key())
	}
	return r.client.SAdd(ctx, r.indexKey(), string(item.Key())).Err()
}

func (r *RedisRepository[T]) Update(ctx context.Context, item T) error {
	if item.Key().IsEmpty() {
		return fmt.Errorf("%w: %s", ErrEmptyKey, r.kind)
	}

	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	ok, err := r.client.SetXX(
		ctx, r.entityKey(item.Key()), data, 0,
	).Result()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s %s", ErrNotFound, r.kind, item.Key())
	}
	return nil
}

func (r *RedisRepository[T]) Delete(ctx context.Context, id api.ID) error {
	removed, err := r.client.Del(ctx, r.entityKey(id)).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, r.kind, id)
	}
	return r.client.SRem(ctx, r.indexKey(), string(id)).Err()
}

func (r *RedisRepository[T]) decode(data []byte) (T, error) {
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		var zero T
		return zero, err
	}
	return item, nil
}

func (r *RedisRepository[T]) entityKey(id api.ID) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, r.kind, id)
}

func (r *RedisRepository[T]) indexKey() string {
	return fmt.Sprintf("%s:index:%s", r.prefix, r.kind)
}

func (s *redisSecrets) Secrets(
	ctx context.Context, kind string, id api.ID,
) (map[string]string, error) {
	return s.client.HGetAll(ctx, s.secretKey(kind, id)).Result()
}

func (s *redisSecrets) SaveSecrets(
	ctx context.Context, kind string, id api.ID, values map[string]string,
) error {
	if len(values) == 0 {
		return nil
	}
	return s.client.HSet(ctx, s.secretKey(kind, id), values).Err()
}

func (s *redisSecrets) DeleteSecrets(
	ctx context.Context, kind string, id api.ID,
) error {
	return s.client.Del(ctx, s.secretKey(kind, id)).Err()
}

func (s *redisSecrets) secretKey(kind string, id api.ID) string {
	return fmt.Sprintf("%s:secret:%s:%s", s.prefix, kind, id)
}

func (s *redisSettings) ActiveEnvironment(
	ctx context.Context,
) (api.ID, error) {
	id, err := s.client.Get(ctx, s.settingKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return api.ID(id), nil
}

func (s *redisSettings) SetActiveEnvironment(
	ctx context.Context, id api.ID,
) error {
	if id.IsEmpty() {
		return s.client.Del(ctx, s.settingKey()).Err()
	}
	return s.client.Set(ctx, s.settingKey(), string(id), 0).Err()
}

func (s *redisSettings) settingKey() string {
	return s.prefix + ":settings:active_environment"
}
