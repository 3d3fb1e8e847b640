package repository

import (
	"context"
	"errors"

	"github.com/foundersportal/portal/backend/go-services/internal/directory"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Repository on the kind's collection. Records are keyed
// by their string UUID in _id.
type MongoRepo[T directory.Record] struct {
	kind directory.Kind[T]
	col  *mongo.Collection
}

func NewMongoRepo[T directory.Record](kind directory.Kind[T], db *mongo.Database) *MongoRepo[T] {
	return &MongoRepo[T]{kind: kind, col: db.Collection(kind.Collection)}
}

func (m *MongoRepo[T]) Create(ctx context.Context, item T) error {
	_, err := m.col.InsertOne(ctx, item)
	return err
}

func (m *MongoRepo[T]) Get(ctx context.Context, id string) (T, error) {
	item := m.kind.New()
	if err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(item); err != nil {
		var zero T
		if errors.Is(err, mongo.ErrNoDocuments) {
			return zero, ErrNotFound
		}
		return zero, err
	}
	return item, nil
}

func (m *MongoRepo[T]) List(ctx context.Context) ([]T, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: m.kind.SortField, Value: 1}}).
		SetCollation(&options.Collation{Locale: "en", Strength: 2})
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []T{}
	for cur.Next(ctx) {
		item := m.kind.New()
		if err := cur.Decode(item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, cur.Err()
}

func (m *MongoRepo[T]) Replace(ctx context.Context, item T) error {
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": item.Meta().ID}, item)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo[T]) Delete(ctx context.Context, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
