// Package config carries the tunables shared across the buffer pool,
// extendible hash, and B+tree: pool size, bucket capacity, and the
// logger they should all report through. Grounded on the teacher's
// plain-struct-plus-functional-options style (BufferPoolConfig) and on
// smythg4-go-database/internal/pager's Options pattern — no config-file
// parser, since spec.md never asks for one.
package config

import "github.com/sirupsen/logrus"

// Options configures a buffer pool and its dependent structures. Page
// size is not configurable here: it lives as page.PageSize, a build-time
// constant the on-disk layout (slot strides, header overflow checks) is
// derived from.
type Options struct {
	PoolSize       int
	BucketCapacity int
	Logger         *logrus.Logger
}

// Option mutates an Options in place.
type Option func(*Options)

// Default returns sane defaults: a 128-frame pool, 4-entry hash buckets,
// and a logrus logger at Info level writing to stderr (logrus's own
// default).
func Default() Options {
	return Options{
		PoolSize:       128,
		BucketCapacity: 4,
		Logger:         logrus.StandardLogger(),
	}
}

// New builds an Options from Default() with the given overrides applied.
func New(opts ...Option) Options {
	o := Default()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func WithPoolSize(n int) Option {
	return func(o *Options) { o.PoolSize = n }
}

func WithBucketCapacity(n int) Option {
	return func(o *Options) { o.BucketCapacity = n }
}

func WithLogger(l *logrus.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// NoLogging disables logging entirely, mirroring spec.md §6's optional,
// possibly-absent LogManager.
func NoLogging() Option {
	return func(o *Options) { o.Logger = nil }
}
