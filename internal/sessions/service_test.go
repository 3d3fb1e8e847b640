package sessions

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateValidateDeleteSession(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	sess, err := svc.CreateSession(ctx, "admin-1", "test-agent", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)

	got, err := svc.Validate(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "admin-1", got.AdminID)

	require.NoError(t, svc.Delete(ctx, sess.ID))
	gone, err := svc.Validate(ctx, sess.ID)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestValidate_ExpiredSessionIsRemoved(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Session{ID: "old", AdminID: "a", ExpiresAt: time.Now().UTC().Add(-time.Minute)}))
	got, err := svc.Validate(ctx, "old")
	require.NoError(t, err)
	require.Nil(t, got)

	stored, _ := repo.Get(ctx, "old")
	require.Nil(t, stored, "expired session should be deleted on validation")
}

func TestConsume_OnlyOnce(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	first, err := svc.CreateSession(ctx, "admin-7", "", time.Hour)
	require.NoError(t, err)

	got, err := svc.Consume(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "admin-7", got.AdminID)

	again, err := svc.Consume(ctx, first.ID)
	require.NoError(t, err)
	require.Nil(t, again)

	old, err := svc.Validate(ctx, first.ID)
	require.NoError(t, err)
	require.Nil(t, old)
}

func TestConsume_ConcurrentCallersSingleWinner(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	sess, err := svc.CreateSession(ctx, "admin-8", "", time.Hour)
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, err := svc.Consume(ctx, sess.ID); err == nil && got != nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), wins.Load())
}

func TestConsume_ExpiredSession(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &Session{ID: "stale", AdminID: "a", ExpiresAt: time.Now().UTC().Add(-time.Minute)}))
	got, err := svc.Consume(ctx, "stale")
	require.NoError(t, err)
	require.Nil(t, got)
	stored, _ := repo.Get(ctx, "stale")
	require.Nil(t, stored)
}
