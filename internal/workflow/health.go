package workflow

import (
	"context"
	"sync"

	"shipit/internal/stage"
)

// healthCache runs each stage's HealthCheck at most once per batch, and only
// when first asked.
type healthCache struct {
	mu      sync.Mutex
	results map[string]stage.Health
}

func newHealthCache() *healthCache {
	return &healthCache{results: make(map[string]stage.Health)}
}

func (c *healthCache) gate(handler stage.Handler) func(context.Context) stage.Health {
	return func(ctx context.Context) stage.Health {
		name := string(handler.Stage())
		c.mu.Lock()
		defer c.mu.Unlock()
		if health, ok := c.results[name]; ok {
			return health
		}
		health := handler.HealthCheck(ctx)
		c.results[name] = health
		return health
	}
}
