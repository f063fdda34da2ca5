package local

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore guarda cuentas en proceso. Se pierde al reiniciar.
type MemoryStore struct{ c *gocache.Cache }

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: gocache.New(gocache.NoExpiration, 10*time.Minute)}
}

func (m *MemoryStore) Create(_ context.Context, a *Account) error {
	cp := *a
	// Add falla si la key ya existe (atómico dentro de go-cache)
	if err := m.c.Add(a.Username, cp, gocache.NoExpiration); err != nil {
		return ErrExists
	}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, username string) (*Account, error) {
	v, ok := m.c.Get(username)
	if !ok {
		return nil, ErrNotFound
	}
	a, _ := v.(Account)
	return &a, nil
}

func (m *MemoryStore) Update(_ context.Context, a *Account) error {
	if err := m.c.Replace(a.Username, *a, gocache.NoExpiration); err != nil {
		return ErrNotFound
	}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, username string) error {
	m.c.Delete(username)
	return nil
}
