package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/foundersportal/portal/backend/go-services/internal/directory"
	"github.com/foundersportal/portal/backend/go-services/internal/directory/repository"
	"github.com/foundersportal/portal/backend/go-services/internal/tabular"
	"github.com/foundersportal/portal/backend/go-services/pkg/logger"
	"github.com/foundersportal/portal/backend/go-services/pkg/metrics"
	"github.com/foundersportal/portal/backend/go-services/pkg/response"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = errors.New("not found")
)

// ImportResult summarises a bulk import.
type ImportResult struct {
	Imported int                `json:"imported"`
	Failed   int                `json:"failed"`
	Errors   []tabular.RowError `json:"errors"`
}

// Service implements the directory operations for one kind.
type Service[T directory.Record] struct {
	kind directory.Kind[T]
	repo repository.Repository[T]
	now  func() time.Time
}

func New[T directory.Record](kind directory.Kind[T], repo repository.Repository[T]) *Service[T] {
	return &Service[T]{kind: kind, repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService[T directory.Record](kind directory.Kind[T]) *Service[T] {
	return New(kind, repository.NewMemoryRepo(kind))
}

// NewMongoService returns a Service backed by the kind's collection in db.
func NewMongoService[T directory.Record](kind directory.Kind[T], db *mongo.Database) *Service[T] {
	return New(kind, repository.NewMongoRepo(kind, db))
}

func (s *Service[T]) Kind() directory.Kind[T] { return s.kind }

// List returns the records matching f, ordered by name.
func (s *Service[T]) List(ctx context.Context, f directory.Filter) ([]T, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind.Name, err)
	}
	if f.IsZero() {
		return all, nil
	}
	out := make([]T, 0, len(all))
	for _, it := range all {
		if s.kind.Matches(f, it) {
			out = append(out, it)
		}
	}
	return out, nil
}

func (s *Service[T]) Get(ctx context.Context, id string) (T, error) {
	it, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return it, ErrNotFound
	}
	return it, err
}

// Create validates item, assigns a new id and stamps both timestamps.
func (s *Service[T]) Create(ctx context.Context, item T) (T, error) {
	if err := response.Validator().Struct(item); err != nil {
		return item, err
	}
	now := s.now()
	m := item.Meta()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := s.repo.Create(ctx, item); err != nil {
		return item, fmt.Errorf("create %s: %w", s.kind.Name, err)
	}
	return item, nil
}

// Update replaces the mutable fields of the record with id. The id and
// createdAt of the stored record are kept.
func (s *Service[T]) Update(ctx context.Context, id string, item T) (T, error) {
	if err := response.Validator().Struct(item); err != nil {
		return item, err
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return item, err
	}
	m := item.Meta()
	m.ID = id
	m.CreatedAt = existing.Meta().CreatedAt
	m.UpdatedAt = s.now()
	if err := s.repo.Replace(ctx, item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return item, ErrNotFound
		}
		return item, fmt.Errorf("update %s: %w", s.kind.Name, err)
	}
	return item, nil
}

func (s *Service[T]) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// Import decodes rows by column name and inserts every valid row. Invalid rows
// are reported with their sheet row number and skipped.
func (s *Service[T]) Import(ctx context.Context, format tabular.Format, r io.Reader) (*ImportResult, error) {
	recs, rowErrs, err := tabular.Read(r, format, s.kind.Columns, s.kind.New)
	if err != nil {
		return nil, err
	}
	res := &ImportResult{Errors: []tabular.RowError{}}
	res.Errors = append(res.Errors, rowErrs...)
	for _, rec := range recs {
		if _, err := s.Create(ctx, rec.Item); err != nil {
			res.Errors = append(res.Errors, tabular.RowError{Row: rec.Row, Error: response.Describe(err)})
			continue
		}
		res.Imported++
	}
	res.Failed = len(res.Errors)
	metrics.ImportRows.WithLabelValues(s.kind.Name, "imported").Add(float64(res.Imported))
	metrics.ImportRows.WithLabelValues(s.kind.Name, "failed").Add(float64(res.Failed))
	logger.Infof("import %s: imported=%d failed=%d", s.kind.Name, res.Imported, res.Failed)
	return res, nil
}

// Export writes the records matching f in the given format.
func (s *Service[T]) Export(ctx context.Context, format tabular.Format, w io.Writer, f directory.Filter) error {
	items, err := s.List(ctx, f)
	if err != nil {
		return err
	}
	return tabular.Write(w, format, s.kind.Columns, items)
}
