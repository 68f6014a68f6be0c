// SPDX-License-Identifier: MIT

// Package timing collects named wall-clock measurements in an explicit
// Context value. There is no package-level state: whoever wants timings
// creates a Context and passes it down.
//
// A nil *Context is valid and records nothing, so timed code paths need no
// branches.
package timing

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Stats aggregates all measurements recorded under one name.
type Stats struct {
	Count int
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Mean returns Total/Count, or 0 for an empty Stats.
func (s Stats) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}

	return s.Total / time.Duration(s.Count)
}

func (s *Stats) add(d time.Duration) {
	if s.Count == 0 || d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	s.Count++
	s.Total += d
}

// Entry is one named row of a Report.
type Entry struct {
	Name string
	Stats
}

// Context records durations by name. Safe for concurrent use.
type Context struct {
	mu    sync.Mutex
	now   func() time.Time
	stats map[string]*Stats
}

// Option configures a Context.
type Option func(*Context)

// WithClock replaces time.Now; used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Context) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns an empty Context.
func New(opts ...Option) *Context {
	c := &Context{now: time.Now, stats: make(map[string]*Stats)}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Start begins a measurement and returns the function that ends it.
//
//	defer tc.Start("evaluate")()
func (c *Context) Start(name string) (stop func()) {
	if c == nil {
		return func() {}
	}
	t0 := c.now()

	return func() { c.Record(name, c.now().Sub(t0)) }
}

// Measure runs fn and records its duration under name, whatever fn returns.
func (c *Context) Measure(name string, fn func() error) error {
	defer c.Start(name)()

	return fn()
}

// Record adds one duration under name.
func (c *Context) Record(name string, d time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stats[name]
	if !ok {
		s = &Stats{}
		c.stats[name] = s
	}
	s.add(d)
}

// Stats returns the aggregate for name.
func (c *Context) Stats(name string) (Stats, bool) {
	if c == nil {
		return Stats{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.stats[name]
	if !ok {
		return Stats{}, false
	}

	return *s, true
}

// Report returns all entries sorted by name.
func (c *Context) Report() []Entry {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Entry, 0, len(c.stats))
	for name, s := range c.stats {
		out = append(out, Entry{Name: name, Stats: *s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// Merge folds every entry of other into c.
func (c *Context) Merge(other *Context) {
	if c == nil {
		return
	}
	for _, e := range other.Report() {
		c.mu.Lock()
		s, ok := c.stats[e.Name]
		if !ok {
			s = &Stats{}
			c.stats[e.Name] = s
		}
		if s.Count == 0 || (e.Count > 0 && e.Min < s.Min) {
			s.Min = e.Min
		}
		s.Max = max(s.Max, e.Max)
		s.Count += e.Count
		s.Total += e.Total
		c.mu.Unlock()
	}
}

// Log writes one debug line per entry.
func (c *Context) Log(log logrus.FieldLogger) {
	for _, e := range c.Report() {
		log.WithFields(logrus.Fields{
			"timer": e.Name,
			"count": e.Count,
			"total": e.Total,
			"mean":  e.Mean(),
			"min":   e.Min,
			"max":   e.Max,
		}).Debug("timing")
	}
}
