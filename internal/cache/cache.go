// Package cache holds query results keyed by Key, deduplicates concurrent
// fetches of the same key and lets writers patch results in place.
//
// Cached values are shared between readers and must be treated as
// immutable: updaters return a new value instead of modifying the old one.
package cache

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

var ErrClosed = errors.New("cache closed")

// Status is the observable state of a key.
type Status int

const (
	Absent Status = iota
	Loading
	Ready
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	default:
		return "absent"
	}
}

// FetchFunc loads the value of a key from the source of truth.
type FetchFunc func(ctx context.Context) (any, error)

// Cache is safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	values  map[Key]any
	gens    map[Key]uint64
	loading map[Key]bool
	closed  bool

	group singleflight.Group
}

func New() *Cache {
	return &Cache{
		values:  make(map[Key]any),
		gens:    make(map[Key]uint64),
		loading: make(map[Key]bool),
	}
}

// Get returns the cached value of key, fetching it when absent. Concurrent
// Gets of one key share a single fetch. The fetch runs detached from ctx, so a
// caller that gives up does not cancel it for the others.
func (c *Cache) Get(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if v, ok := c.values[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key.String(), func() (any, error) {
		return c.load(detached, key, fetch)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Cache) load(ctx context.Context, key Key, fetch FetchFunc) (any, error) {
	c.mu.Lock()
	if v, ok := c.values[key]; ok {
		c.mu.Unlock()
		return v, nil
	}
	gen := c.gens[key]
	c.loading[key] = true
	c.mu.Unlock()

	v, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.loading, key)
	if err != nil {
		return nil, err
	}
	if c.closed {
		return v, nil
	}
	if c.gens[key] != gen {
		// Written or invalidated while fetching: the newer state wins.
		if cur, ok := c.values[key]; ok {
			return cur, nil
		}
		return v, nil
	}
	c.values[key] = v
	return v, nil
}

// Lookup reads key without fetching.
func (c *Cache) Lookup(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *Cache) Status(key Key) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; ok {
		return Ready
	}
	if c.loading[key] {
		return Loading
	}
	return Absent
}

// Set stores value under key, replacing whatever was there.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.gens[key]++
	c.values[key] = value
}

// Patch replaces the value of key with updater(current) under the cache lock
// and reports whether a value was present. An absent key is left absent, but
// a fetch already in flight for it will not be stored.
func (c *Cache) Patch(key Key, updater func(any) any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.gens[key]++
	v, ok := c.values[key]
	if !ok {
		return false
	}
	c.values[key] = updater(v)
	return true
}

// PatchScope applies updater to every cached key of scope in one critical section.
func (c *Cache) PatchScope(scope Scope, updater func(Key, any) any) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0
	}
	n := 0
	for key, v := range c.values {
		if key.Scope != scope {
			continue
		}
		c.gens[key]++
		c.values[key] = updater(key, v)
		n++
	}
	for key := range c.loading {
		if key.Scope == scope {
			c.gens[key]++
		}
	}
	return n
}

// Keys lists the cached keys of scope.
func (c *Cache) Keys(scope Scope) []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []Key
	for key := range c.values {
		if key.Scope == scope {
			keys = append(keys, key)
		}
	}
	return keys
}

func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[key]++
	delete(c.values, key)
}

func (c *Cache) InvalidateScope(scope Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(func(k Key) bool { return k.Scope == scope })
}

// InvalidateAll drops every cached value.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked(func(Key) bool { return true })
}

func (c *Cache) invalidateLocked(match func(Key) bool) {
	for key := range c.values {
		if match(key) {
			c.gens[key]++
			delete(c.values, key)
		}
	}
	for key := range c.loading {
		if match(key) {
			c.gens[key]++
		}
	}
}

// Close drops all values. Later Gets fail with ErrClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.values = make(map[Key]any)
	return nil
}
