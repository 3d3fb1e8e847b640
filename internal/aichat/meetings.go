package aichat

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const MeetingRequested = "requested"

// Meeting is a meeting request left through the assistant.
type Meeting struct {
	ID            string    `json:"id" bson:"_id"`
	Name          string    `json:"name" bson:"name" binding:"required"`
	Email         string    `json:"email" bson:"email" binding:"required,email"`
	Company       string    `json:"company,omitempty" bson:"company,omitempty"`
	Topic         string    `json:"topic,omitempty" bson:"topic,omitempty"`
	PreferredTime string    `json:"preferredTime,omitempty" bson:"preferredTime,omitempty"`
	Notes         string    `json:"notes,omitempty" bson:"notes,omitempty" binding:"max=2000"`
	Status        string    `json:"status" bson:"status"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

// MeetingRepository stores meeting requests.
type MeetingRepository interface {
	Create(ctx context.Context, m *Meeting) error
	// List returns requests newest first.
	List(ctx context.Context) ([]Meeting, error)
}

type MongoMeetingRepository struct {
	col *mongo.Collection
}

func NewMongoMeetingRepository(col *mongo.Collection) *MongoMeetingRepository {
	return &MongoMeetingRepository{col: col}
}

func (r *MongoMeetingRepository) Create(ctx context.Context, m *Meeting) error {
	_, err := r.col.InsertOne(ctx, m)
	return err
}

func (r *MongoMeetingRepository) List(ctx context.Context) ([]Meeting, error) {
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []Meeting{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type MemoryMeetingRepository struct {
	mu    sync.Mutex
	items []Meeting
}

func NewMemoryMeetingRepository() *MemoryMeetingRepository {
	return &MemoryMeetingRepository{}
}

func (r *MemoryMeetingRepository) Create(_ context.Context, m *Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *m)
	return nil
}

func (r *MemoryMeetingRepository) List(_ context.Context) ([]Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Meeting, 0, len(r.items))
	for i := len(r.items) - 1; i >= 0; i-- {
		out = append(out, r.items[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
