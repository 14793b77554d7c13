package users

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/avolkov/filevault/internal/common"
	"github.com/avolkov/filevault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_CreateAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{UserName: "alice", PasswordHash: "h"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := repo.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "h", got.PasswordHash)
}

func TestInMemory_CreateDuplicate(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{UserName: "alice", PasswordHash: "h1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &models.User{UserName: "alice", PasswordHash: "h2"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestInMemory_GetNotFound(t *testing.T) {
	repo := NewInMemoryRepository()

	_, err := repo.GetUserByLogin(context.Background(), "nobody")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInMemory_CaseSensitiveUsernames(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.User{UserName: "Alice", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = repo.GetUserByLogin(ctx, "alice")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInMemory_ConcurrentCreateSameUsername(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	results := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, &models.User{UserName: "race", PasswordHash: "h"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, common.ErrorAlreadyExists):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one Create must win")
	assert.Equal(t, n-1, conflicts)
}

func TestInMemory_ReturnsCopies(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.User{UserName: "alice", PasswordHash: "h"})
	require.NoError(t, err)

	created.PasswordHash = "mutated"

	got, err := repo.GetUserByLogin(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "h", got.PasswordHash, "callers must not be able to mutate stored records")
}

func TestInMemory_CancelledContext(t *testing.T) {
	repo := NewInMemoryRepository()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Create(ctx, &models.User{UserName: "alice", PasswordHash: "h"})
	require.Error(t, err)
}
