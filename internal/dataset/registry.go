package dataset

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carlosmardo/App-Estadisticas/internal/ingest"
)

// Entry describes one loaded season table.
type Entry struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	Mode         string    `json:"mode"`
	League       string    `json:"league"`
	Rows         int       `json:"rows"`
	Competitions []string  `json:"competitions"`
	Players      []string  `json:"players"`
	LoadedAtUTC  time.Time `json:"loaded_at_utc"`
	Seq          uint64    `json:"seq"`

	table *ingest.Table
}

func (e Entry) Table() *ingest.Table { return e.table }

// NotFoundError is returned for unknown dataset ids.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("dataset not found: %s", e.ID)
}

// Registry holds loaded tables for the lifetime of a server. Tables are
// immutable once loaded; a new load gets a new id.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	seq     uint64
	now     func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry), now: time.Now}
}

func (r *Registry) Put(t *ingest.Table, source string) Entry {
	e := Entry{
		ID:           uuid.NewString(),
		Source:       source,
		Mode:         t.Mode().String(),
		League:       t.League(),
		Rows:         t.Len(),
		Competitions: t.Competitions(),
		Players:      t.Players(),
		LoadedAtUTC:  r.now().UTC(),
		table:        t,
	}
	r.mu.Lock()
	r.seq++
	e.Seq = r.seq
	r.entries[e.ID] = e
	r.mu.Unlock()
	return e
}

func (r *Registry) Get(id string) (Entry, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return Entry{}, &NotFoundError{ID: id}
	}
	return e, nil
}

// Latest returns the most recently loaded table.
func (r *Registry) Latest() (Entry, bool) {
	list := r.List()
	if len(list) == 0 {
		return Entry{}, false
	}
	return list[len(list)-1], true
}

// Resolve returns the named dataset, or the latest one when id is empty.
func (r *Registry) Resolve(id string) (Entry, error) {
	if id != "" {
		return r.Get(id)
	}
	e, ok := r.Latest()
	if !ok {
		return Entry{}, fmt.Errorf("no dataset loaded; call load_season first")
	}
	return e, nil
}

// List returns entries in load order, oldest first.
func (r *Registry) List() []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Seq < out[j].Seq
	})
	return out
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[id]; !ok {
		return false
	}
	delete(r.entries, id)
	return true
}
