package profile

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu        sync.RWMutex
	customers map[string]Customer
	admins    map[string]Admin
}

// NewMemoryRepository builds an in-memory profile store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{customers: make(map[string]Customer), admins: make(map[string]Admin)}
}

func (r *memoryRepository) CreateCustomer(_ context.Context, c Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers[c.ID] = c
	return nil
}

func (r *memoryRepository) CreateAdmin(_ context.Context, a Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admins[a.ID] = a
	return nil
}

func (r *memoryRepository) FindCustomer(_ context.Context, id string) (Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.customers[id]
	if !ok {
		return Customer{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryRepository) FindAdmin(_ context.Context, id string) (Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.admins[id]
	if !ok {
		return Admin{}, ErrNotFound
	}
	return a, nil
}

func (r *memoryRepository) CountByUser(_ context.Context, userID string) (int, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var customers, admins int
	for _, c := range r.customers {
		if c.UserID == userID {
			customers++
		}
	}
	for _, a := range r.admins {
		if a.UserID == userID {
			admins++
		}
	}
	return customers, admins, nil
}

func (r *memoryRepository) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.customers {
		if c.UserID == userID {
			delete(r.customers, id)
		}
	}
	for id, a := range r.admins {
		if a.UserID == userID {
			delete(r.admins, id)
		}
	}
	return nil
}

func (r *memoryRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = make(map[string]Customer)
	r.admins = make(map[string]Admin)
	return nil
}
