package resources

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/foundersportal/portal/backend/go-services/internal/storage"
	"github.com/foundersportal/portal/backend/go-services/pkg/logger"
	"github.com/foundersportal/portal/backend/go-services/pkg/response"
	"github.com/google/uuid"
)

// DownloadURLTTL is how long a presigned download link stays valid.
const DownloadURLTTL = 15 * time.Minute

var ErrItemSource = errors.New("either a file or a url is required")

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

type Service struct {
	repo  Repository
	store storage.Store
	now   func() time.Time
}

func NewService(repo Repository, store storage.Store) *Service {
	return &Service{repo: repo, store: store, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id string) (*Category, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (*Category, error) {
	now := s.now()
	c := &Category{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Icon:        in.Icon,
		Order:       in.Order,
		Items:       []Item{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	c.NameKey = strings.ToLower(c.Name)
	if err := response.Validator().Struct(c); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCategory replaces name, description, icon and order. Items are untouched.
func (s *Service) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*Category, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.NameKey = strings.ToLower(c.Name)
	c.Description = in.Description
	c.Icon = in.Icon
	c.Order = in.Order
	c.UpdatedAt = s.now()
	if err := response.Validator().Struct(c); err != nil {
		return nil, err
	}
	if err := s.repo.Replace(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCategory removes the category and the stored files of its items.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	for _, it := range c.Items {
		if it.ObjectKey == "" {
			continue
		}
		if err := s.store.Delete(ctx, it.ObjectKey); err != nil {
			logger.Warnf("delete object %s of category %s: %v", it.ObjectKey, id, err)
		}
	}
	return nil
}

// AddItem uploads the file, if any, and appends the item to the category.
func (s *Service) AddItem(ctx context.Context, categoryID string, in ItemInput) (*Item, error) {
	if in.File == nil && strings.TrimSpace(in.URL) == "" {
		return nil, ErrItemSource
	}
	if _, err := s.repo.Get(ctx, categoryID); err != nil {
		return nil, err
	}
	it := Item{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		URL:         strings.TrimSpace(in.URL),
		CreatedAt:   s.now(),
	}
	if in.File != nil {
		it.URL = ""
		it.FileName = path.Base(in.File.Name)
		it.ContentType = in.File.ContentType
		it.Size = in.File.Size
		it.ObjectKey = ObjectKey(categoryID, it.ID, it.FileName)
		if it.Title == "" {
			it.Title = it.FileName
		}
	}
	if err := response.Validator().Struct(it); err != nil {
		return nil, err
	}
	if in.File != nil {
		if err := s.store.Upload(ctx, it.ObjectKey, in.File.Body, in.File.Size, in.File.ContentType); err != nil {
			return nil, fmt.Errorf("upload %s: %w", it.ObjectKey, err)
		}
	}
	if err := s.repo.PushItem(ctx, categoryID, it); err != nil {
		if it.ObjectKey != "" {
			_ = s.store.Delete(ctx, it.ObjectKey)
		}
		return nil, err
	}
	return &it, nil
}

// DeleteItem removes the item and its stored object.
func (s *Service) DeleteItem(ctx context.Context, categoryID, itemID string) error {
	it, err := s.findItem(ctx, categoryID, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.PullItem(ctx, categoryID, itemID); err != nil {
		return err
	}
	if it.ObjectKey != "" {
		if err := s.store.Delete(ctx, it.ObjectKey); err != nil {
			logger.Warnf("delete object %s: %v", it.ObjectKey, err)
		}
	}
	return nil
}

// ItemDownloadURL returns the external link or a presigned URL for the stored file.
func (s *Service) ItemDownloadURL(ctx context.Context, categoryID, itemID string) (string, error) {
	it, err := s.findItem(ctx, categoryID, itemID)
	if err != nil {
		return "", err
	}
	if it.ObjectKey == "" {
		return it.URL, nil
	}
	return s.store.PresignedURL(ctx, it.ObjectKey, DownloadURLTTL)
}

func (s *Service) findItem(ctx context.Context, categoryID, itemID string) (*Item, error) {
	c, err := s.repo.Get(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i], nil
		}
	}
	return nil, ErrItemNotFound
}

// ObjectKey builds resources/<categoryId>/<itemId>-<sanitised filename>.
func ObjectKey(categoryID, itemID, fileName string) string {
	name := unsafeName.ReplaceAllString(fileName, "_")
	if name == "" || name == "." || name == ".." {
		name = "file"
	}
	return fmt.Sprintf("resources/%s/%s-%s", categoryID, itemID, name)
}
