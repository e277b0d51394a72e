package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"quicktask/internal/models"
	"quicktask/internal/repositories"
)

type UserRepository struct {
	mu      sync.RWMutex
	nextID  int64
	byID    map[int64]models.User
	byEmail map[string]int64
}

var _ repositories.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[int64]models.User),
		byEmail: make(map[string]int64),
	}
}

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[user.Email]; exists {
		return fmt.Errorf("user %q: %w", user.Email, repositories.ErrDuplicate)
	}
	r.nextID++
	user.ID = r.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, repositories.ErrNotFound)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", email, repositories.ErrNotFound)
	}
	u := r.byID[id]
	return &u, nil
}

func (r *UserRepository) ListAll(_ context.Context) ([]models.UserRef, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.UserRef, 0, len(r.byID))
	for id := range r.byID {
		out = append(out, models.UserRef{ID: id})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
