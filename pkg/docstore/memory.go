package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-process Store. Watch callbacks run synchronously on the
// writer's goroutine after the write is visible.
type Memory struct {
	mu       sync.RWMutex
	data     map[string]map[string]Record
	watchers map[string]map[int]func(Change)
	nextID   int
}

func NewMemory() *Memory {
	return &Memory{
		data:     make(map[string]map[string]Record),
		watchers: make(map[string]map[int]func(Change)),
	}
}

func (m *Memory) Get(_ context.Context, collection, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *Memory) Insert(_ context.Context, collection string, rec Record) (string, error) {
	id := rec.ID()
	if id == "" {
		id = uuid.NewString()
	}
	stored := rec.Clone()
	if stored == nil {
		stored = Record{}
	}
	stored[IDField] = id

	m.mu.Lock()
	coll := m.collection(collection)
	coll[id] = stored
	fns := m.listeners(collection)
	m.mu.Unlock()

	notify(fns, Change{Kind: ChangeInsert, ID: id, Record: stored.Clone()})
	return id, nil
}

func (m *Memory) Put(_ context.Context, collection, id string, rec Record) error {
	stored := rec.Clone()
	if stored == nil {
		stored = Record{}
	}
	stored[IDField] = id

	m.mu.Lock()
	coll := m.collection(collection)
	_, existed := coll[id]
	coll[id] = stored
	fns := m.listeners(collection)
	m.mu.Unlock()

	kind := ChangeUpdate
	if !existed {
		kind = ChangeInsert
	}
	notify(fns, Change{Kind: kind, ID: id, Record: stored.Clone()})
	return nil
}

func (m *Memory) Update(_ context.Context, collection, id string, fields Record) error {
	m.mu.Lock()
	rec, ok := m.data[collection][id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	next := rec.Clone()
	for k, v := range fields {
		if k == IDField {
			continue
		}
		next[k] = v
	}
	m.data[collection][id] = next
	fns := m.listeners(collection)
	m.mu.Unlock()

	notify(fns, Change{Kind: ChangeUpdate, ID: id, Record: next.Clone()})
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	if _, ok := m.data[collection][id]; !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	delete(m.data[collection], id)
	fns := m.listeners(collection)
	m.mu.Unlock()

	notify(fns, Change{Kind: ChangeDelete, ID: id})
	return nil
}

func (m *Memory) Find(_ context.Context, collection string, q Query) ([]Record, error) {
	m.mu.RLock()
	out := make([]Record, 0, len(m.data[collection]))
	for _, rec := range m.data[collection] {
		if matches(rec, q.Where) {
			out = append(out, rec.Clone())
		}
	}
	m.mu.RUnlock()

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = IDField
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i][sortBy], out[j][sortBy])
		if q.Desc {
			return c > 0
		}
		return c < 0
	})

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *Memory) Watch(ctx context.Context, collection string, fn func(Change)) (func(), error) {
	m.mu.Lock()
	if m.watchers[collection] == nil {
		m.watchers[collection] = make(map[int]func(Change))
	}
	id := m.nextID
	m.nextID++
	m.watchers[collection][id] = fn
	m.mu.Unlock()

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.watchers[collection], id)
			m.mu.Unlock()
			close(done)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return cancel, nil
}

// CloseWatchers ends every watch on collection the way a failed change
// stream does: each watcher gets a final ChangeClosed.
func (m *Memory) CloseWatchers(collection string) {
	m.mu.Lock()
	fns := m.listeners(collection)
	delete(m.watchers, collection)
	m.mu.Unlock()

	notify(fns, Change{Kind: ChangeClosed})
}

func (m *Memory) collection(name string) map[string]Record {
	coll, ok := m.data[name]
	if !ok {
		coll = make(map[string]Record)
		m.data[name] = coll
	}
	return coll
}

func (m *Memory) listeners(collection string) []func(Change) {
	fns := make([]func(Change), 0, len(m.watchers[collection]))
	for _, fn := range m.watchers[collection] {
		fns = append(fns, fn)
	}
	return fns
}

func notify(fns []func(Change), c Change) {
	for _, fn := range fns {
		fn(c)
	}
}

func matches(rec Record, where map[string]any) bool {
	for k, want := range where {
		if !equal(rec[k], want) {
			return false
		}
	}
	return true
}
