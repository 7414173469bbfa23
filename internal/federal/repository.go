package federal

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound       = errors.New("division not found")
	ErrParentNotFound = errors.New("parent division not found")
	ErrHasDependents  = errors.New("division has dependents")
)

type Repository interface {
	List(ctx context.Context) ([]Division, error)
	GetByID(ctx context.Context, id int) (Division, error)
	Exists(ctx context.Context, id int) (bool, error)
	Create(ctx context.Context, d Division) (Division, error)
	Update(ctx context.Context, d Division) (Division, error)
	Delete(ctx context.Context, id int) error
}

// InMemoryRepository for tests. Repositories of one hierarchy share a lock so
// parent checks and RESTRICT deletes see a consistent view.
type InMemoryRepository struct {
	mu       *sync.Mutex
	level    *Level
	parent   *InMemoryRepository
	children []*InMemoryRepository
	rows     map[int]Division
	nextID   int
}

// NewInMemoryRepository creates the store for level. parent must be the store
// of level.Parent, or nil for the root level.
func NewInMemoryRepository(level *Level, parent *InMemoryRepository) *InMemoryRepository {
	r := &InMemoryRepository{level: level, parent: parent, rows: map[int]Division{}, nextID: 1}
	if parent != nil {
		r.mu = parent.mu
		parent.children = append(parent.children, r)
	} else {
		r.mu = &sync.Mutex{}
	}
	return r
}

// NewInMemoryHierarchy wires one store per level.
func NewInMemoryHierarchy() map[*Level]*InMemoryRepository {
	out := make(map[*Level]*InMemoryRepository, len(Levels))
	for _, l := range Levels {
		var parent *InMemoryRepository
		if l.Parent != nil {
			parent = out[l.Parent]
		}
		out[l] = NewInMemoryRepository(l, parent)
	}
	return out
}

func (r *InMemoryRepository) List(_ context.Context) ([]Division, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Division, 0, len(r.rows))
	for _, d := range r.rows {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetByID(_ context.Context, id int) (Division, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.rows[id]
	if !ok {
		return Division{}, ErrNotFound
	}
	return d, nil
}

func (r *InMemoryRepository) Exists(_ context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.rows[id]
	return ok, nil
}

func (r *InMemoryRepository) Create(_ context.Context, d Division) (Division, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.parentExists(d.ParentID) {
		return Division{}, ErrParentNotFound
	}
	d.ID = r.nextID
	r.nextID++
	r.rows[d.ID] = d
	return d, nil
}

func (r *InMemoryRepository) Update(_ context.Context, d Division) (Division, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[d.ID]; !ok {
		return Division{}, ErrNotFound
	}
	if !r.parentExists(d.ParentID) {
		return Division{}, ErrParentNotFound
	}
	r.rows[d.ID] = d
	return d, nil
}

func (r *InMemoryRepository) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	for _, child := range r.children {
		for _, row := range child.rows {
			if row.ParentID == id {
				return ErrHasDependents
			}
		}
	}
	delete(r.rows, id)
	return nil
}

// parentExists must be called with mu held.
func (r *InMemoryRepository) parentExists(id int) bool {
	if r.parent == nil {
		return true
	}
	_, ok := r.parent.rows[id]
	return ok
}
