package slabmap

import "go.uber.org/zap"

type config struct {
	capacity int
	logger   *zap.Logger
}

type Option func(c *config)

// Reserve room for at least `capacity` values at construction.
// Keys are still issued from 0 upwards.
func WithCapacity(capacity int) Option {
	return func(c *config) {
		c.capacity = capacity
	}
}

// Override the default no-op logger. Only maintenance operations
// (Optimize, Clear, Reserve) log, at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
