package users

import (
	"context"
	"sync"
	"time"

	"github.com/avolkov/filevault/internal/common"
	"github.com/avolkov/filevault/internal/server/models"
	"github.com/google/uuid"
)

// InMemoryRepository keeps credential records in a map guarded by a mutex.
// The lock is scoped to this store, so unrelated stores are never serialized
// against each other. Two concurrent Create calls for the same username
// result in exactly one success.
type InMemoryRepository struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{users: make(map[string]*models.User)}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserName]; ok {
		return nil, common.ErrorAlreadyExists
	}

	stored := &models.User{
		ID:           uuid.New().String(),
		UserName:     user.UserName,
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Now(),
	}
	r.users[stored.UserName] = stored

	copy := *stored
	return &copy, nil
}

func (r *InMemoryRepository) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[userName]
	if !ok {
		return nil, common.ErrorNotFound
	}

	copy := *stored
	return &copy, nil
}
