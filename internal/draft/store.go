package draft

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kazzy/internal/models"
)

// RemoteStore is the remote tier for the single draft document. The
// concrete store returns errors; best-effort semantics (log and continue)
// live in the Manager and Syncer.
type RemoteStore interface {
	Save(ctx context.Context, d models.DraftOrder) error
	Load(ctx context.Context) (models.DraftOrder, bool, error)
	Delete(ctx context.Context) error
}

// MongoStore keeps the draft in the draftOrders collection, one document
// per operator key.
type MongoStore struct {
	col    *mongo.Collection
	userID string
}

func NewMongoStore(db *mongo.Database, userID string) *MongoStore {
	return &MongoStore{col: db.Collection("draftOrders"), userID: userID}
}

// Save upserts the full draft document. lastUpdated is stamped by the
// server, not the client clock; the field is dropped from the $set so it
// cannot conflict with $currentDate.
func (s *MongoStore) Save(ctx context.Context, d models.DraftOrder) error {
	d.LastUpdated = time.Time{}
	update := bson.M{
		"$set":         d,
		"$currentDate": bson.M{"lastUpdated": true},
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": s.userID}, update, options.Update().SetUpsert(true))
	return err
}

// Load fetches the draft by key. A missing document is ok=false, not an
// error.
func (s *MongoStore) Load(ctx context.Context) (models.DraftOrder, bool, error) {
	var d models.DraftOrder
	err := s.col.FindOne(ctx, bson.M{"_id": s.userID}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return models.DraftOrder{}, false, nil
	}
	if err != nil {
		return models.DraftOrder{}, false, err
	}
	return d, true, nil
}

// Delete removes the draft document. Deleting an absent draft is fine.
func (s *MongoStore) Delete(ctx context.Context) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": s.userID})
	return err
}
