package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemoryRepository builds an in-memory user store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	r.users[user.ID] = clone(user)
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return clone(user), nil
}

func (r *memoryRepository) FindOne(_ context.Context, q Query) (User, error) {
	if q.empty() {
		return User{}, ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if matches(user, q) {
			return clone(user), nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) Update(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return ErrNotFound
	}
	for id, existing := range r.users {
		if id != user.ID && existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	r.users[user.ID] = clone(user)
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	delete(r.users, id)
	return user, nil
}

func (r *memoryRepository) Search(_ context.Context, f SearchFilter) ([]User, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keyword := strings.ToLower(f.Keyword)
	var matched []User
	for _, user := range r.users {
		switch {
		case f.Type != "" && user.Type != f.Type:
			continue
		case f.Type == "" && f.ExcludeType != "" && user.Type == f.ExcludeType:
			continue
		case f.ExcludeID != "" && user.ID == f.ExcludeID:
			continue
		case keyword != "" &&
			!strings.Contains(strings.ToLower(user.Email), keyword) &&
			!strings.Contains(strings.ToLower(user.Name), keyword):
			continue
		}
		matched = append(matched, user)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	page := []User{}
	if f.Offset >= 0 && f.Offset < total {
		end := f.Offset + f.Limit
		if end > total {
			end = total
		}
		for _, user := range matched[f.Offset:end] {
			page = append(page, clone(user))
		}
	}
	return page, total, nil
}

func (r *memoryRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	at = at.UTC()
	user.LastLogin = &at
	r.users[id] = user
	return nil
}

func (r *memoryRepository) DeleteAll(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = make(map[string]User)
	return nil
}

func matches(user User, q Query) bool {
	return (q.ID == "" || user.ID == q.ID) &&
		(q.Email == "" || user.Email == q.Email) &&
		(q.Phone == "" || user.Phone == q.Phone) &&
		(q.GoogleID == "" || user.GoogleID == q.GoogleID) &&
		(q.FacebookID == "" || user.FacebookID == q.FacebookID) &&
		(q.TwitterID == "" || user.TwitterID == q.TwitterID)
}

// clone detaches slices so callers cannot mutate stored records.
func clone(user User) User {
	if user.FCMs != nil {
		user.FCMs = append([]FCM(nil), user.FCMs...)
	}
	if user.Location != nil {
		loc := *user.Location
		loc.Coordinates = append([]float64(nil), loc.Coordinates...)
		user.Location = &loc
	}
	if user.PasswordHash != nil {
		user.PasswordHash = append([]byte(nil), user.PasswordHash...)
	}
	return user
}
