package store

import (
	"context"
	"time"

	"examguard/internal/database"
	"examguard/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRecordingRepository persists recordings in the recordings collection.
type MongoRecordingRepository struct {
	collection *mongo.Collection
}

// NewMongoRecordingRepository creates a Mongo-backed recording repository.
func NewMongoRecordingRepository(db *database.MongoDB) *MongoRecordingRepository {
	return &MongoRecordingRepository{
		collection: db.Collection(database.CollectionRecordings),
	}
}

func (r *MongoRecordingRepository) Append(ctx context.Context, rec *models.Recording) error {
	_, err := r.collection.InsertOne(ctx, rec)
	return err
}

func (r *MongoRecordingRepository) All(ctx context.Context) ([]models.Recording, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoRecordingRepository) Active(ctx context.Context, now time.Time) ([]models.Recording, error) {
	return r.find(ctx, bson.M{
		"status":    models.RecordingActive,
		"expiresAt": bson.M{"$gt": now},
	})
}

func (r *MongoRecordingRepository) find(ctx context.Context, filter bson.M) ([]models.Recording, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	recordings := []models.Recording{}
	if err := cursor.All(ctx, &recordings); err != nil {
		return nil, &CorruptionError{Collection: database.CollectionRecordings, Err: err}
	}
	return recordings, nil
}

func (r *MongoRecordingRepository) MarkExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := r.collection.UpdateMany(ctx,
		bson.M{
			"status":    models.RecordingActive,
			"expiresAt": bson.M{"$lte": now},
		},
		bson.M{"$set": bson.M{"status": models.RecordingExpired}},
	)
	if err != nil {
		return 0, err
	}
	return int(result.ModifiedCount), nil
}

func (r *MongoRecordingRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{
		"status":    models.RecordingExpired,
		"expiresAt": bson.M{"$lte": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return int(result.DeletedCount), nil
}

// MongoEventRepository persists flagged events in the flagged_events collection.
type MongoEventRepository struct {
	collection *mongo.Collection
}

// NewMongoEventRepository creates a Mongo-backed event repository.
func NewMongoEventRepository(db *database.MongoDB) *MongoEventRepository {
	return &MongoEventRepository{
		collection: db.Collection(database.CollectionEvents),
	}
}

func (r *MongoEventRepository) Append(ctx context.Context, ev *models.FlaggedEvent) error {
	_, err := r.collection.InsertOne(ctx, ev)
	return err
}

func (r *MongoEventRepository) All(ctx context.Context) ([]models.FlaggedEvent, error) {
	return r.find(ctx, bson.M{}, nil)
}

func (r *MongoEventRepository) Active(ctx context.Context, now time.Time) ([]models.FlaggedEvent, error) {
	return r.find(ctx, bson.M{"expiresAt": bson.M{"$gt": now}}, nil)
}

func (r *MongoEventRepository) ActiveByStudent(ctx context.Context, studentID string, now time.Time) ([]models.FlaggedEvent, error) {
	// ObjectIDs are monotonic per insertion, so the secondary sort keeps
	// insertion order for equal timestamps.
	opts := options.Find().SetSort(bson.D{
		{Key: "timestamp", Value: -1},
		{Key: "_id", Value: 1},
	})
	return r.find(ctx, bson.M{
		"studentId": studentID,
		"expiresAt": bson.M{"$gt": now},
	}, opts)
}

func (r *MongoEventRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.FlaggedEvent, error) {
	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.collection.Find(ctx, filter, opts)
	} else {
		cursor, err = r.collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	events := []models.FlaggedEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, &CorruptionError{Collection: database.CollectionEvents, Err: err}
	}
	return events, nil
}

func (r *MongoEventRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{
		"expiresAt": bson.M{"$lte": now},
	})
	if err != nil {
		return 0, err
	}
	return int(result.DeletedCount), nil
}
