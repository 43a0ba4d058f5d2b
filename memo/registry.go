package memo

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/sitememo/internal/util"
)

// Registry is a directory of call sites. Sites are created on first lookup
// and never removed; there is no teardown.
// All methods are safe for concurrent use by multiple goroutines.
type Registry struct {
	shards  []*directoryShard
	logger  *zap.Logger
	metrics Metrics
}

// directoryShard is one partition of the site directory with its own lock.
type directoryShard struct {
	mu    sync.RWMutex
	sites map[string]*Site
}

// DefaultRegistry is the process-wide registry used by At.
var DefaultRegistry = NewRegistry()

// At returns the site registered under name in DefaultRegistry,
// creating it on first use. Hoist the result into a package-level variable
// to keep the directory lookup off the hot path.
func At(name string) *Site { return DefaultRegistry.At(name) }

// NewRegistry constructs an empty registry.
// Defaults:
//   - no logger   -> zap.NewNop()
//   - no metrics  -> NoopMetrics
//   - no shards   -> auto, rounded up to the next power of two
func NewRegistry(opts ...Option) *Registry {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.metrics == nil {
		o.metrics = NoopMetrics{}
	}
	n := util.ReasonableShardCount()
	if o.shards > 0 {
		n = util.ShardCount(o.shards)
	}

	shards := make([]*directoryShard, n)
	for i := range shards {
		shards[i] = &directoryShard{sites: make(map[string]*Site)}
	}
	return &Registry{shards: shards, logger: o.logger, metrics: o.metrics}
}

// At returns the site registered under name, creating it on first use.
// Concurrent first calls for the same name all receive the same *Site.
func (r *Registry) At(name string) *Site {
	sh := r.shardFor(name)

	sh.mu.RLock()
	s, ok := sh.sites[name]
	sh.mu.RUnlock()
	if ok {
		return s
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()
	// another goroutine may have registered it meanwhile
	if s, ok = sh.sites[name]; ok {
		return s
	}
	s = newSite(r, name)
	sh.sites[name] = s
	r.logger.Debug("memo: site registered", zap.String("site", name))
	return s
}

// Lookup returns the site registered under name without creating it.
func (r *Registry) Lookup(name string) (*Site, bool) {
	sh := r.shardFor(name)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	s, ok := sh.sites[name]
	return s, ok
}

// Sites returns every registered site ordered by name.
func (r *Registry) Sites() []*Site {
	var out []*Site
	for _, sh := range r.shards {
		sh.mu.RLock()
		for _, s := range sh.sites {
			out = append(out, s)
		}
		sh.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// shardFor picks a directory shard by hashing the site name.
func (r *Registry) shardFor(name string) *directoryShard {
	return r.shards[util.ShardIndex(util.Hash(name), len(r.shards))]
}
