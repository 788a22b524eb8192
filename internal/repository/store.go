package repository

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record with the given id does not exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a caller-supplied id is already taken
	ErrAlreadyExists = errors.New("already exists")
)

// IDGenerator produces process-unique identifiers. The counter keeps ids distinct
// within the same clock tick and the random suffix keeps them distinct across restarts.
type IDGenerator struct {
	counter atomic.Uint64
}

// Next returns a new identifier with the given prefix
func (g *IDGenerator) Next(prefix string) string {
	n := g.counter.Add(1)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s_%d_%s", prefix, n, suffix)
}

// schema tells a Collection how to reach the id and creation time of T
type schema[T any] struct {
	prefix string
	id     func(*T) *string
	stamp  func(*T, time.Time)
	clone  func(T) T
}

// Collection is an insertion-ordered, mutex-guarded set of records of one kind
type Collection[T any] struct {
	mu     sync.RWMutex
	items  map[string]*T
	order  []string
	schema schema[T]
	ids    *IDGenerator
	now    func() time.Time
}

func newCollection[T any](s schema[T], ids *IDGenerator, now func() time.Time) *Collection[T] {
	if s.clone == nil {
		s.clone = func(v T) T { return v }
	}
	return &Collection[T]{
		items:  make(map[string]*T),
		schema: s,
		ids:    ids,
		now:    now,
	}
}

// Create assigns an id (when empty) and a creation timestamp, stores a copy and returns it
func (c *Collection[T]) Create(entity T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.schema.id(&entity)
	if *id == "" {
		*id = c.ids.Next(c.schema.prefix)
	} else if _, exists := c.items[*id]; exists {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", c.schema.prefix, *id, ErrAlreadyExists)
	}
	if c.schema.stamp != nil {
		c.schema.stamp(&entity, c.now())
	}

	stored := c.schema.clone(entity)
	c.items[*id] = &stored
	c.order = append(c.order, *id)
	return c.schema.clone(stored), nil
}

// Get returns a copy of the record with the given id
func (c *Collection[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	return c.schema.clone(*item), true
}

// Update applies mutate to a copy of the record and stores the result atomically.
// The id cannot be changed by mutate. If mutate fails the record is left untouched.
func (c *Collection[T]) Update(id string, mutate func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	item, ok := c.items[id]
	if !ok {
		return zero, fmt.Errorf("%s %s: %w", c.schema.prefix, id, ErrNotFound)
	}

	next := c.schema.clone(*item)
	if err := mutate(&next); err != nil {
		return zero, err
	}
	*c.schema.id(&next) = id

	c.items[id] = &next
	return c.schema.clone(next), nil
}

// Delete removes the record and reports whether it existed
func (c *Collection[T]) Delete(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	for i, key := range c.order {
		if key == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Query scans every record in insertion order and returns copies of those matching pred.
// A nil pred matches everything.
func (c *Collection[T]) Query(pred func(*T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []T
	for _, id := range c.order {
		item := c.items[id]
		if pred == nil || pred(item) {
			out = append(out, c.schema.clone(*item))
		}
	}
	return out
}

// Len returns the number of stored records
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Stats holds record counts per entity kind
type Stats struct {
	Users    int `json:"users"`
	Listings int `json:"listings"`
	Swipes   int `json:"swipes"`
	Matches  int `json:"matches"`
	Messages int `json:"messages"`
	Tasks    int `json:"tasks"`
}

// Store is the single owner of every entity. Build one per process (or per test)
// with NewStore and pass it to the services that need it.
type Store struct {
	Users    *UserRepository
	Listings *ListingRepository
	Swipes   *SwipeRepository
	Matches  *MatchRepository
	Messages *MessageRepository
	Tasks    *TaskRepository
}

// NewStore creates an empty in-memory store. A nil now defaults to time.Now in UTC.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	ids := &IDGenerator{}
	return &Store{
		Users:    NewUserRepository(ids, now),
		Listings: NewListingRepository(ids, now),
		Swipes:   NewSwipeRepository(ids, now),
		Matches:  NewMatchRepository(ids, now),
		Messages: NewMessageRepository(ids, now),
		Tasks:    NewTaskRepository(ids, now),
	}
}

// Stats returns the current record counts
func (s *Store) Stats() Stats {
	return Stats{
		Users:    s.Users.items.Len(),
		Listings: s.Listings.items.Len(),
		Swipes:   s.Swipes.items.Len(),
		Matches:  s.Matches.items.Len(),
		Messages: s.Messages.items.Len(),
		Tasks:    s.Tasks.items.Len(),
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneStringPtr(in *string) *string {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}

func cloneTimePtr(in *time.Time) *time.Time {
	if in == nil {
		return nil
	}
	v := *in
	return &v
}
