package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureMongoIndexes creates the indexes the Mongo repositories rely on:
// one appointment per slot, lock expiry and the lookup paths of search.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		appointmentsCollection: {
			{Keys: bson.D{{Key: "slot_id", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "hospital_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "patient_id", Value: 1}}},
		},
		slotsCollection: {
			{Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "is_booked", Value: 1}, {Key: "start_time", Value: 1}}},
		},
		affiliationsCollection: {
			{Keys: bson.D{{Key: "hospital_id", Value: 1}}},
			{Keys: bson.D{{Key: "doctor_id", Value: 1}, {Key: "hospital_id", Value: 1}}},
		},
		departmentsCollection: {
			{Keys: bson.D{{Key: "hospital_id", Value: 1}}},
		},
		locksCollection: {
			{Keys: bson.D{{Key: "expires_at", Value: 1}}, Options: options.Index().SetExpireAfterSeconds(0)},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ошибка создания индексов коллекции %s: %w", collection, err)
		}
	}

	return nil
}
