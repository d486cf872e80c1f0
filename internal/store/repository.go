// Package store keeps client-side state (chats, contacts) in memory and
// notifies subscribers of every change.
package store

import (
	"slices"
	"sync"
)

type EventKind int

const (
	Upserted EventKind = iota + 1
	Deleted
)

func (k EventKind) String() string {
	switch k {
	case Upserted:
		return "upserted"
	case Deleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event describes one change. Value is the zero value for Deleted.
type Event[K comparable, V any] struct {
	Kind  EventKind
	Key   K
	Value V
}

// Repository is a keyed collection ordered by most recent upsert.
// Subscribers are called synchronously after the change is applied, outside
// the repository lock, in subscription order.
type Repository[K comparable, V any] struct {
	mu     sync.RWMutex
	items  map[K]V
	order  []K
	subs   map[int]func(Event[K, V])
	nextID int
}

func New[K comparable, V any]() *Repository[K, V] {
	return &Repository[K, V]{
		items: make(map[K]V),
		subs:  make(map[int]func(Event[K, V])),
	}
}

func (r *Repository[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[key]
	return v, ok
}

// Keys returns keys, most recently upserted first.
func (r *Repository[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

func (r *Repository[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Upsert stores value under key and moves key to the front.
func (r *Repository[K, V]) Upsert(key K, value V) {
	r.Update(key, func(V, bool) V { return value })
}

// Update replaces the value under key with fn(current, exists) atomically.
func (r *Repository[K, V]) Update(key K, fn func(current V, exists bool) V) V {
	r.mu.Lock()
	cur, ok := r.items[key]
	next := fn(cur, ok)
	r.items[key] = next
	r.moveToFront(key, ok)
	subs := r.subscribers()
	r.mu.Unlock()

	notify(subs, Event[K, V]{Kind: Upserted, Key: key, Value: next})
	return next
}

// UpdateExisting replaces the value under key with fn(current) only if key
// is present, and reports whether it did. A key deleted concurrently stays
// deleted.
func (r *Repository[K, V]) UpdateExisting(key K, fn func(current V) V) bool {
	r.mu.Lock()
	cur, ok := r.items[key]
	if !ok {
		r.mu.Unlock()
		return false
	}
	next := fn(cur)
	r.items[key] = next
	r.moveToFront(key, true)
	subs := r.subscribers()
	r.mu.Unlock()

	notify(subs, Event[K, V]{Kind: Upserted, Key: key, Value: next})
	return true
}

// Delete removes key and reports whether it was present.
func (r *Repository[K, V]) Delete(key K) bool {
	r.mu.Lock()
	if _, ok := r.items[key]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.items, key)
	r.order = slices.DeleteFunc(r.order, func(k K) bool { return k == key })
	subs := r.subscribers()
	r.mu.Unlock()

	notify(subs, Event[K, V]{Kind: Deleted, Key: key})
	return true
}

// Subscribe registers fn for future events and returns a function that
// removes it.
func (r *Repository[K, V]) Subscribe(fn func(Event[K, V])) (cancel func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.subs, id)
			r.mu.Unlock()
		})
	}
}

func (r *Repository[K, V]) moveToFront(key K, existed bool) {
	if existed {
		r.order = slices.DeleteFunc(r.order, func(k K) bool { return k == key })
	}
	r.order = slices.Insert(r.order, 0, key)
}

// subscribers must be called with r.mu held.
func (r *Repository[K, V]) subscribers() []func(Event[K, V]) {
	ids := make([]int, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]func(Event[K, V]), 0, len(ids))
	for _, id := range ids {
		out = append(out, r.subs[id])
	}
	return out
}

func notify[K comparable, V any](subs []func(Event[K, V]), ev Event[K, V]) {
	for _, fn := range subs {
		fn(ev)
	}
}
