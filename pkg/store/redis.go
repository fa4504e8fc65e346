package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/mindlayout/pkg/errors"
	"github.com/matzehuels/mindlayout/pkg/scene"
)

// Redis key layout.
const (
	redisScenePrefix = "mindlayout:scene:"
	redisIndexKey    = "mindlayout:scenes"
)

// Redis stores each scene document under its own key and keeps the set of
// names in an index set.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the server described by a redis:// URL.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(c *redis.Client) *Redis { return &Redis{client: c} }

// Load implements Store.
func (s *Redis) Load(ctx context.Context, name string) ([]*scene.Object, error) {
	if err := errors.ValidateSceneName(name); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, redisScenePrefix+name).Bytes()
	if err == redis.Nil {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, fmt.Errorf("load scene %s: %w", name, err)
	}
	return scene.UnmarshalObjects(data)
}

// Save implements Store.
func (s *Redis) Save(ctx context.Context, name string, objs []*scene.Object) error {
	if err := errors.ValidateSceneName(name); err != nil {
		return err
	}
	data, err := scene.MarshalObjects(objs)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, redisScenePrefix+name, data, 0)
		p.SAdd(ctx, redisIndexKey, name)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save scene %s: %w", name, err)
	}
	return nil
}

// List implements Store.
func (s *Redis) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

// Delete implements Store.
func (s *Redis) Delete(ctx context.Context, name string) error {
	n, err := s.client.Del(ctx, redisScenePrefix+name).Result()
	if err != nil {
		return err
	}
	s.client.SRem(ctx, redisIndexKey, name)
	if n == 0 {
		return notFound(name)
	}
	return nil
}

// Close closes the client.
func (s *Redis) Close() error { return s.client.Close() }

var _ Store = (*Redis)(nil)
