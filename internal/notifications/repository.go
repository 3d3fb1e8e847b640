package notifications

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateTemplate = errors.New("a template with this name already exists")
	ErrDuplicateEmail    = errors.New("email already subscribed")
)

type TemplateRepository interface {
	Create(ctx context.Context, t *Template) error
	Get(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context) ([]Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, id string) error
}

type SubscriberRepository interface {
	Create(ctx context.Context, s *Subscriber) error
	GetByEmail(ctx context.Context, email string) (*Subscriber, error)
	// List returns every subscriber, or only active ones when activeOnly is set.
	List(ctx context.Context, activeOnly bool) ([]Subscriber, error)
	Update(ctx context.Context, s *Subscriber) error
	Delete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	// List returns the history newest first.
	List(ctx context.Context) ([]Notification, error)
}

// mongoCollection holds the lookups shared by the mongo repositories.
type mongoCollection[T any] struct {
	col *mongo.Collection
	dup error
}

func (m mongoCollection[T]) insert(ctx context.Context, v *T) error {
	if _, err := m.col.InsertOne(ctx, v); err != nil {
		if mongo.IsDuplicateKeyError(err) && m.dup != nil {
			return m.dup
		}
		return err
	}
	return nil
}

func (m mongoCollection[T]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	var v T
	if err := m.col.FindOne(ctx, filter).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (m mongoCollection[T]) find(ctx context.Context, filter bson.M, sort bson.D) ([]T, error) {
	cur, err := m.col.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m mongoCollection[T]) replace(ctx context.Context, id string, v *T) error {
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": id}, v)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) && m.dup != nil {
			return m.dup
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m mongoCollection[T]) delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type MongoTemplateRepository struct{ m mongoCollection[Template] }

func NewMongoTemplateRepository(col *mongo.Collection) *MongoTemplateRepository {
	return &MongoTemplateRepository{m: mongoCollection[Template]{col: col, dup: ErrDuplicateTemplate}}
}

func (r *MongoTemplateRepository) Create(ctx context.Context, t *Template) error {
	return r.m.insert(ctx, t)
}

func (r *MongoTemplateRepository) Get(ctx context.Context, id string) (*Template, error) {
	return r.m.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoTemplateRepository) List(ctx context.Context) ([]Template, error) {
	return r.m.find(ctx, bson.M{}, bson.D{{Key: "name", Value: 1}})
}

func (r *MongoTemplateRepository) Update(ctx context.Context, t *Template) error {
	return r.m.replace(ctx, t.ID, t)
}

func (r *MongoTemplateRepository) Delete(ctx context.Context, id string) error {
	return r.m.delete(ctx, id)
}

type MongoSubscriberRepository struct{ m mongoCollection[Subscriber] }

func NewMongoSubscriberRepository(col *mongo.Collection) *MongoSubscriberRepository {
	return &MongoSubscriberRepository{m: mongoCollection[Subscriber]{col: col, dup: ErrDuplicateEmail}}
}

func (r *MongoSubscriberRepository) Create(ctx context.Context, s *Subscriber) error {
	return r.m.insert(ctx, s)
}

func (r *MongoSubscriberRepository) GetByEmail(ctx context.Context, email string) (*Subscriber, error) {
	return r.m.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *MongoSubscriberRepository) List(ctx context.Context, activeOnly bool) ([]Subscriber, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	return r.m.find(ctx, filter, bson.D{{Key: "subscribedAt", Value: -1}})
}

func (r *MongoSubscriberRepository) Update(ctx context.Context, s *Subscriber) error {
	return r.m.replace(ctx, s.ID, s)
}

func (r *MongoSubscriberRepository) Delete(ctx context.Context, id string) error {
	return r.m.delete(ctx, id)
}

type MongoNotificationRepository struct{ m mongoCollection[Notification] }

func NewMongoNotificationRepository(col *mongo.Collection) *MongoNotificationRepository {
	return &MongoNotificationRepository{m: mongoCollection[Notification]{col: col}}
}

func (r *MongoNotificationRepository) Create(ctx context.Context, n *Notification) error {
	return r.m.insert(ctx, n)
}

func (r *MongoNotificationRepository) List(ctx context.Context) ([]Notification, error) {
	return r.m.find(ctx, bson.M{}, bson.D{{Key: "createdAt", Value: -1}})
}

// MemoryTemplateRepository keeps templates in a map. Used in dev mode and tests.
type MemoryTemplateRepository struct {
	mu   sync.RWMutex
	byID map[string]Template
}

func NewMemoryTemplateRepository() *MemoryTemplateRepository {
	return &MemoryTemplateRepository{byID: map[string]Template{}}
}

func (r *MemoryTemplateRepository) nameTaken(name, exceptID string) bool {
	for id, t := range r.byID {
		if id != exceptID && t.Name == name {
			return true
		}
	}
	return false
}

func (r *MemoryTemplateRepository) Create(_ context.Context, t *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nameTaken(t.Name, "") {
		return ErrDuplicateTemplate
	}
	r.byID[t.ID] = *t
	return nil
}

func (r *MemoryTemplateRepository) Get(_ context.Context, id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (r *MemoryTemplateRepository) List(_ context.Context) ([]Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Template, 0, len(r.byID))
	for _, t := range r.byID {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryTemplateRepository) Update(_ context.Context, t *Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; !ok {
		return ErrNotFound
	}
	if r.nameTaken(t.Name, t.ID) {
		return ErrDuplicateTemplate
	}
	r.byID[t.ID] = *t
	return nil
}

func (r *MemoryTemplateRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type MemorySubscriberRepository struct {
	mu   sync.RWMutex
	byID map[string]Subscriber
}

func NewMemorySubscriberRepository() *MemorySubscriberRepository {
	return &MemorySubscriberRepository{byID: map[string]Subscriber{}}
}

func (r *MemorySubscriberRepository) Create(_ context.Context, s *Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if strings.EqualFold(existing.Email, s.Email) {
			return ErrDuplicateEmail
		}
	}
	r.byID[s.ID] = *s
	return nil
}

func (r *MemorySubscriberRepository) GetByEmail(_ context.Context, email string) (*Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.byID {
		if strings.EqualFold(s.Email, email) {
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemorySubscriberRepository) List(_ context.Context, activeOnly bool) ([]Subscriber, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []Subscriber{}
	for _, s := range r.byID {
		if activeOnly && !s.Active {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubscribedAt.Equal(out[j].SubscribedAt) {
			return out[i].SubscribedAt.After(out[j].SubscribedAt)
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

func (r *MemorySubscriberRepository) Update(_ context.Context, s *Subscriber) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[s.ID]; !ok {
		return ErrNotFound
	}
	r.byID[s.ID] = *s
	return nil
}

func (r *MemorySubscriberRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type MemoryNotificationRepository struct {
	mu    sync.Mutex
	items []Notification
}

func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{}
}

func (r *MemoryNotificationRepository) Create(_ context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *n)
	return nil
}

func (r *MemoryNotificationRepository) List(_ context.Context) ([]Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		out = append(out, r.items[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
