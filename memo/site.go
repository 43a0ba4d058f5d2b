package memo

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/sitememo/internal/util"
)

// Site is one memoized call site. It maps every instantiation seen at the
// site to a slot holding that instantiation's store.
// Sites are created by Registry.At and live as long as their registry.
type Site struct {
	name string
	reg  *Registry

	// ---- guarded by mu ----
	mu       sync.RWMutex
	slots    map[Instantiation]*slot
	poisoned bool

	// ---- hot counters ----
	_       util.CacheLinePad
	hits    util.Counter
	misses  util.Counter
	inserts util.Counter
}

func newSite(reg *Registry, name string) *Site {
	return &Site{name: name, reg: reg}
}

// Name returns the name the site was registered under.
func (s *Site) Name() string { return s.name }

// Stats returns a snapshot of the site's counters.
func (s *Site) Stats() Stats {
	s.mu.RLock()
	n := len(s.slots)
	s.mu.RUnlock()
	return Stats{
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Inserts: s.inserts.Load(),
		Slots:   n,
	}
}

// Instantiations lists the instantiations that own a slot at this site,
// ordered by their string form.
func (s *Site) Instantiations() []Instantiation {
	s.mu.RLock()
	out := make([]Instantiation, 0, len(s.slots))
	for inst := range s.slots {
		out = append(out, inst)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// resolve returns the slot for inst, running init to create its store on
// first use. init runs at most once per instantiation: creation happens under
// the write lock after a re-check, so racing callers reuse the winner's slot.
//
// init must not call back into the same site; it runs under the site lock.
func (s *Site) resolve(inst Instantiation, init func() any) *slot {
	// Fast path: the slot already exists.
	s.mu.RLock()
	if s.poisoned {
		s.mu.RUnlock()
		panic(poisoned("registry entry", s.name))
	}
	sl, ok := s.slots[inst]
	s.mu.RUnlock()
	if ok {
		return sl
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.poisoned {
		panic(poisoned("registry entry", s.name))
	}
	if sl, ok := s.slots[inst]; ok {
		return sl
	}

	done := false
	defer func() {
		if !done {
			s.poisoned = true
			s.reg.logger.Error("memo: registry entry poisoned by store initializer",
				zap.String("site", s.name),
				zap.Stringer("instantiation", inst))
		}
	}()
	sl = newSlot(inst, init())
	if s.slots == nil {
		s.slots = make(map[Instantiation]*slot)
	}
	s.slots[inst] = sl
	done = true

	s.reg.metrics.Slot(s.name)
	s.reg.logger.Debug("memo: slot created",
		zap.String("site", s.name),
		zap.Stringer("key_type", inst.Key),
		zap.Stringer("result_type", inst.Result),
		zap.Stringer("store_type", sl.typ))
	return sl
}

func (s *Site) hit() {
	s.hits.Inc()
	s.reg.metrics.Hit(s.name)
}

func (s *Site) miss() {
	s.misses.Inc()
	s.reg.metrics.Miss(s.name)
}

func (s *Site) inserted() {
	s.inserts.Inc()
	s.reg.metrics.Insert(s.name)
}
