package fsmx

import "sync"

// Blackboard is thread-safe key/value memory shared by the callbacks of a machine.
// Actions and conditions are closures without arguments, so state they need to
// share (timers, targets, counters) lives in a Blackboard they capture.
type Blackboard struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewBlackboard creates an empty blackboard.
func NewBlackboard() *Blackboard {
	return &Blackboard{
		data: make(map[string]any),
	}
}

// Get retrieves a value by key. Returns nil if the key does not exist.
func (b *Blackboard) Get(key string) any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.data[key]
}

// Lookup retrieves a value and reports whether the key exists.
func (b *Blackboard) Lookup(key string) (any, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.data[key]
	return v, ok
}

// Set stores a value by key.
func (b *Blackboard) Set(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data[key] = value
}

// Add increments a float64 counter and returns the new value. Missing or
// non-numeric keys start from zero.
func (b *Blackboard) Add(key string, delta float64) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, _ := b.data[key].(float64)
	v += delta
	b.data[key] = v
	return v
}

// Delete removes a key.
func (b *Blackboard) Delete(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
}

// GetAll returns a snapshot copy of all data for serialization.
func (b *Blackboard) GetAll() map[string]any {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snapshot := make(map[string]any, len(b.data))
	for k, v := range b.data {
		snapshot[k] = v
	}
	return snapshot
}

// LoadAll replaces all data. The map is copied.
func (b *Blackboard) LoadAll(data map[string]any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = make(map[string]any, len(data))
	for k, v := range data {
		b.data[k] = v
	}
}
