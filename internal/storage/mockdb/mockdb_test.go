package mockdb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/licence-portal/internal/storage"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestStore_Seed(t *testing.T) {
	s := NewWithClock(fixedClock)

	u, err := s.GetUserByEmail(context.Background(), DemoEmail)
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, DemoPassword, u.Password)
	assert.Equal(t, fixedClock(), u.CreatedAt)
	assert.Equal(t, 1, s.Len())
}

func TestStore_CreateUser(t *testing.T) {
	ctx := context.Background()
	s := NewWithClock(fixedClock)

	u, err := s.CreateUser(ctx, "alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), u.ID)

	u2, err := s.CreateUser(ctx, "bob@example.com", "secret2")
	require.NoError(t, err)
	assert.Equal(t, int64(3), u2.ID)

	_, err = s.CreateUser(ctx, "alice@example.com", "other")
	assert.ErrorIs(t, err, storage.ErrUserExists)
	assert.Equal(t, 3, s.Len())
}

func TestStore_GetUserByEmail_NotFound(t *testing.T) {
	s := New()

	_, err := s.GetUserByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.GetUserByEmail(context.Background(), "DEMO@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestStore_CanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.GetUserByEmail(ctx, DemoEmail)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.CreateUser(ctx, "x@example.com", "123456")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_ConcurrentCreate(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.CreateUser(ctx, fmt.Sprintf("user%d@example.com", i), "pw")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 51, s.Len())
}
