package repository

import (
	"context"
	"errors"
	"time"

	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo keeps the document as one record in a collection:
// {_id: <key>, body: <raw JSON>, updatedAt}. ReplaceOne swaps the whole
// record, so readers never see a mix of old and new members.
type MongoRepo struct {
	col *mongo.Collection
	key string
}

type mongoRecord struct {
	ID        string    `bson:"_id"`
	Body      string    `bson:"body"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func NewMongoRepo(col *mongo.Collection, key string) *MongoRepo {
	if key == "" {
		key = "site-content"
	}
	return &MongoRepo{col: col, key: key}
}

func (m *MongoRepo) Name() string { return "mongo" }

func (m *MongoRepo) Load(ctx context.Context) ([]byte, error) {
	var rec mongoRecord
	if err := m.col.FindOne(ctx, bson.M{"_id": m.key}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, content.ErrNotFound
		}
		return nil, err
	}
	return []byte(rec.Body), nil
}

func (m *MongoRepo) Save(ctx context.Context, data []byte) error {
	rec := mongoRecord{ID: m.key, Body: string(data), UpdatedAt: time.Now().UTC()}
	_, err := m.col.ReplaceOne(ctx, bson.M{"_id": m.key}, rec, options.Replace().SetUpsert(true))
	return err
}
