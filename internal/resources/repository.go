package resources

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("a category with this name already exists")
	ErrItemNotFound = errors.New("resource item not found")
)

// Repository persists categories with their embedded items.
type Repository interface {
	Create(ctx context.Context, c *Category) error
	Get(ctx context.Context, id string) (*Category, error)
	List(ctx context.Context) ([]Category, error)
	Replace(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
	PushItem(ctx context.Context, categoryID string, it Item) error
	PullItem(ctx context.Context, categoryID, itemID string) error
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, c *Category) error {
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*Category, error) {
	var c Category
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "nameKey", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	out := []Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoRepository) Replace(ctx context.Context, c *Category) error {
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": c.ID}, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) PushItem(ctx context.Context, categoryID string, it Item) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": categoryID}, bson.M{
		"$push": bson.M{"items": it},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) PullItem(ctx context.Context, categoryID, itemID string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": categoryID, "items.id": itemID}, bson.M{
		"$pull": bson.M{"items": bson.M{"id": itemID}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrItemNotFound
	}
	return nil
}

// MemoryRepository is the in-memory Repository used in dev mode and tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]Category
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: map[string]Category{}}
}

func (r *MemoryRepository) nameTaken(key, exceptID string) bool {
	for id, c := range r.byID {
		if id != exceptID && c.NameKey == key {
			return true
		}
	}
	return false
}

func (r *MemoryRepository) Create(_ context.Context, c *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(c.NameKey, "") {
		return ErrDuplicate
	}
	r.byID[c.ID] = clone(*c)
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	c = clone(c)
	return &c, nil
}

func (r *MemoryRepository) List(_ context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Category, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, clone(c))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].NameKey < out[j].NameKey
	})
	return out, nil
}

func (r *MemoryRepository) Replace(_ context.Context, c *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[c.ID]; !ok {
		return ErrNotFound
	}
	if r.nameTaken(c.NameKey, c.ID) {
		return ErrDuplicate
	}
	r.byID[c.ID] = clone(*c)
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemoryRepository) PushItem(_ context.Context, categoryID string, it Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[categoryID]
	if !ok {
		return ErrNotFound
	}
	c = clone(c)
	c.Items = append(c.Items, it)
	c.UpdatedAt = time.Now().UTC()
	r.byID[categoryID] = c
	return nil
}

func (r *MemoryRepository) PullItem(_ context.Context, categoryID, itemID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[categoryID]
	if !ok {
		return ErrItemNotFound
	}
	kept := make([]Item, 0, len(c.Items))
	for _, it := range c.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(c.Items) {
		return ErrItemNotFound
	}
	c.Items = kept
	c.UpdatedAt = time.Now().UTC()
	r.byID[categoryID] = c
	return nil
}

func clone(c Category) Category {
	c.Items = append([]Item{}, c.Items...)
	return c
}
