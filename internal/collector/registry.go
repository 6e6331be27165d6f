// Registry for metric collectors. Collectors are registered at startup; the
// aggregator asks the registry for one concurrent sweep per tick. A failed
// collector is logged and simply absent from the sweep's results — it never
// fails the cycle.
package collector

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Registry manages all registered collectors and runs them concurrently.
type Registry struct {
	collectors []Collector
	logger     *zap.Logger
}

// NewRegistry creates a new collector registry with the given logger.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{logger: logger}
}

// Register adds a collector if it's available on the current platform.
// Unavailable collectors are logged and skipped.
func (r *Registry) Register(c Collector) {
	if !c.IsAvailable() {
		r.logger.Warn("Collector not available, skipping", zap.String("name", c.Name()))
		return
	}
	r.collectors = append(r.collectors, c)
	r.logger.Debug("Registered collector", zap.String("name", c.Name()))
}

// CollectAll runs every registered collector concurrently and returns a map
// of collector name -> result. Collectors that error are logged and omitted
// from the map.
func (r *Registry) CollectAll(ctx context.Context) map[string]interface{} {
	results := make(map[string]interface{}, len(r.collectors))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range r.collectors {
		c := c
		g.Go(func() error {
			data, err := c.Collect(gctx)
			if err != nil {
				r.logger.Warn("Collection failed",
					zap.String("collector", c.Name()),
					zap.Error(err))
				return nil
			}
			mu.Lock()
			results[c.Name()] = data
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}
