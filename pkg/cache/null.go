package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. It backs --no-cache and runners built without
// a cache, so every layout and render is recomputed.
type NullCache struct{}

// NewNullCache returns a cache that always misses.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

var _ Cache = NullCache{}
