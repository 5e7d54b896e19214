package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/volleyhq/volley/pkg/api"
)

type (
	// MemoryRepository keeps one entity kind in a mutex-guarded map. Items
	// are cloned on the way in and out.
	MemoryRepository[T Entity[T]] struct {
		kind  string
		items map[api.ID]T
		mu    sync.RWMutex
	}

	memorySecrets struct {
		values map[string]map[string]string
		mu     sync.RWMutex
	}

	memorySettings struct {
		activeEnv api.ID
		mu        sync.RWMutex
	}
)

// NewMemoryStores creates a fully in-process store bundle
func NewMemoryStores() *Stores {
	return &Stores{
		Environments: NewMemoryRepository[*api.Environment](KindEnvironment),
		Collections:  NewMemoryRepository[*api.Collection](KindCollection),
		Requests:     NewMemoryRepository[*api.Request](KindRequest),
		Flows:        NewMemoryRepository[*api.Flow](KindFlow),
		Secrets:      &memorySecrets{values: map[string]map[string]string{}},
		Settings:     &memorySettings{},
	}
}

// NewMemoryRepository creates an empty in-process repository for one entity
// kind
func NewMemoryRepository[T Entity[T]](kind string) *MemoryRepository[T] {
	return &MemoryRepository[T]{
		kind:  kind,
		items: map[api.ID]T{},
	}
}

func (r *MemoryRepository[T]) Get(_ context.Context, id api.ID) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %s %s", ErrNotFound, r.kind, id)
	}
	return item.Clone(), nil
}

func (r *MemoryRepository[T]) GetMany(
	ctx context.Context, ids []api.ID,
) ([]T, error) {
	res := make([]T, 0, len(ids))
	for _, id := range ids {
		item, err := r.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		res = append(res, item)
	}
	return res, nil
}

func (r *MemoryRepository[T]) List(_ context.Context) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]T, 0, len(r.items))
	for _, item := range r.items {
		res = append(res, item.Clone())
	}
	sortByKey(res)
	return res, nil
}

func (r *MemoryRepository[T]) Add(_ context.Context, item T) error {
	if item.Key().IsEmpty() {
		return fmt.Errorf("%w: %s", ErrEmptyKey, r.kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.Key()]; ok {
		return fmt.Errorf("%w: %s %s", ErrDuplicate, r.kind, item.Key())
	}
	r.items[item.Key()] = item.Clone()
	return nil
}

func (r *MemoryRepository[T]) Update(_ context.Context, item T) error {
	if item.Key().IsEmpty() {
		return fmt.Errorf("%w: %s", ErrEmptyKey, r.kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[item.Key()]; !ok {
		return fmt.Errorf("%w: %s %s", ErrNotFound, r.kind, item.Key())
	}
	r.items[item.Key()] = item.Clone()
	return nil
}

func (r *MemoryRepository[T]) Delete(_ context.Context, id api.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: %s %s", ErrNotFound, r.kind, id)
	}
	delete(r.items, id)
	return nil
}

func (s *memorySecrets) Secrets(
	_ context.Context, kind string, id api.ID,
) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res := map[string]string{}
	for name, value := range s.values[secretOwner(kind, id)] {
		res[name] = value
	}
	return res, nil
}

func (s *memorySecrets) SaveSecrets(
	_ context.Context, kind string, id api.ID, values map[string]string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := secretOwner(kind, id)
	stored, ok := s.values[owner]
	if !ok {
		stored = map[string]string{}
		s.values[owner] = stored
	}
	for name, value := range values {
		stored[name] = value
	}
	return nil
}

func (s *memorySecrets) DeleteSecrets(
	_ context.Context, kind string, id api.ID,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, secretOwner(kind, id))
	return nil
}

func (s *memorySettings) ActiveEnvironment(_ context.Context) (api.ID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeEnv, nil
}

func (s *memorySettings) SetActiveEnvironment(
	_ context.Context, id api.ID,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeEnv = id
	return nil
}

func secretOwner(kind string, id api.ID) string {
	return kind + ":" + string(id)
}

// sortByKey orders listings deterministically regardless of backend
func sortByKey[T Entity[T]](items []T) {
	slices.SortFunc(items, func(a, b T) int {
		return strings.Compare(string(a.Key()), string(b.Key()))
	})
}
