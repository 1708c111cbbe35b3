package users

import (
	"context"
	"sync"

	"github.com/brizzai/moodlist/internal/models"
)

// MemoryStore keeps records in process memory. Records are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[string]models.User)}
}

func (m *MemoryStore) Get(ctx context.Context, uid string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (m *MemoryStore) Save(ctx context.Context, user *models.User) error {
	if err := validate(user); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[user.UID] = *user
	return nil
}
