package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/foundersportal/portal/backend/go-services/internal/config"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	var s Store = NewMemoryStore()

	require.NoError(t, s.Upload(ctx, "resources/c1/a.txt", strings.NewReader("hello"), 5, "text/plain"))

	rc, err := s.Download(ctx, "resources/c1/a.txt")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	require.Equal(t, "hello", string(b))

	u, err := s.PresignedURL(ctx, "resources/c1/a.txt", 15*time.Minute)
	require.NoError(t, err)
	require.Equal(t, "memory://resources/c1/a.txt", u)

	require.NoError(t, s.Delete(ctx, "resources/c1/a.txt"))
	_, err = s.Download(ctx, "resources/c1/a.txt")
	require.ErrorIs(t, err, ErrObjectNotFound)
	_, err = s.PresignedURL(ctx, "resources/c1/a.txt", time.Minute)
	require.ErrorIs(t, err, ErrObjectNotFound)
}

func TestNewMinIOStorage_RequiresEndpoint(t *testing.T) {
	_, err := NewMinIOStorage(context.Background(), config.StorageConfig{})
	require.Error(t, err)
}
