package resources

import (
	"context"
	"strings"
	"testing"

	"github.com/foundersportal/portal/backend/go-services/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() (*Service, *storage.MemoryStore) {
	store := storage.NewMemoryStore()
	return NewService(NewMemoryRepository(), store), store
}

func TestCategoryLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService()

	cat, err := svc.CreateCategory(ctx, CategoryInput{Name: "Pitch Decks", Order: 2})
	require.NoError(t, err)
	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "  pitch decks "})
	require.ErrorIs(t, err, ErrDuplicate)
	_, err = svc.CreateCategory(ctx, CategoryInput{Name: ""})
	require.Error(t, err)
	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Legal", Order: 1})
	require.NoError(t, err)

	list, err := svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Legal", list[0].Name)

	item, err := svc.AddItem(ctx, cat.ID, ItemInput{File: &Upload{Name: "../deck v1.pdf", Size: 3, ContentType: "application/pdf", Body: strings.NewReader("pdf")}})
	require.NoError(t, err)
	assert.Equal(t, "deck v1.pdf", item.Title)
	assert.Equal(t, "resources/"+cat.ID+"/"+item.ID+"-deck_v1.pdf", item.ObjectKey)
	assert.True(t, store.Has(item.ObjectKey))

	link, err := svc.AddItem(ctx, cat.ID, ItemInput{Title: "YC guide", URL: "https://ycombinator.com/library"})
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, cat.ID, ItemInput{Title: "nothing"})
	require.ErrorIs(t, err, ErrItemSource)
	_, err = svc.AddItem(ctx, cat.ID, ItemInput{Title: "bad", URL: "not a url"})
	require.Error(t, err)

	u, err := svc.ItemDownloadURL(ctx, cat.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "memory://"+item.ObjectKey, u)
	u, err = svc.ItemDownloadURL(ctx, cat.ID, link.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://ycombinator.com/library", u)

	updated, err := svc.UpdateCategory(ctx, cat.ID, CategoryInput{Name: "Decks", Order: 3})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 2)
	_, err = svc.UpdateCategory(ctx, cat.ID, CategoryInput{Name: "legal"})
	require.ErrorIs(t, err, ErrDuplicate)

	require.NoError(t, svc.DeleteItem(ctx, cat.ID, link.ID))
	require.ErrorIs(t, svc.DeleteItem(ctx, cat.ID, link.ID), ErrItemNotFound)

	require.NoError(t, svc.DeleteCategory(ctx, cat.ID))
	assert.False(t, store.Has(item.ObjectKey))
	_, err = svc.GetCategory(ctx, cat.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
