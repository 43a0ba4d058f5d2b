package memo

import "go.uber.org/zap"

// Metrics exposes registry-level observability hooks, labelled by site name.
// A NoopMetrics implementation is provided and used by default.
// Implementations must be safe for concurrent use.
type Metrics interface {
	// Hit is called when a lookup finds a cached result.
	Hit(site string)
	// Miss is called when a lookup falls through to the computation.
	Miss(site string)
	// Insert is called after a computed result is offered to the store,
	// whether or not the store admitted it.
	Insert(site string)
	// Slot is called when a new (site, instantiation) slot is created.
	Slot(site string)
}

// Option configures a Registry.
type Option func(*options)

// options holds Registry settings. Zero values are replaced in NewRegistry:
//   - nil logger   => zap.NewNop()
//   - nil metrics  => NoopMetrics
//   - shards <= 0  => util.ReasonableShardCount()
type options struct {
	logger  *zap.Logger
	metrics Metrics
	shards  int
}

// WithLogger sets the logger used for slot creation and poisoning events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics sets the metrics sink shared by every site of the registry.
func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithShards sets the number of directory shards. It is rounded up to a
// power of two.
func WithShards(n int) Option {
	return func(o *options) { o.shards = n }
}
