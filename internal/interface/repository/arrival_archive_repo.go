package repository

import (
	"context"
	"fmt"
	"time"

	"silentskies-service/internal/domain/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoArrivalArchiveRepository implements ArrivalArchiveRepository
type MongoArrivalArchiveRepository struct {
	collection *mongo.Collection
}

// NewMongoArrivalArchiveRepository creates a new arrival archive repository
func NewMongoArrivalArchiveRepository(db *mongo.Database) *MongoArrivalArchiveRepository {
	return &MongoArrivalArchiveRepository{
		collection: db.Collection("arrival_archive"),
	}
}

// EnsureIndexes creates the unique arrivalKey index and the lookup index
func (r *MongoArrivalArchiveRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.M{"arrivalKey": 1},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "icao", Value: 1}, {Key: "arrivalDay", Value: 1}},
		},
	})
	return err
}

// FindByAirportDay returns the archived arrivals of one airport and day
// ordered by scheduled time
func (r *MongoArrivalArchiveRepository) FindByAirportDay(ctx context.Context, icao, day string) ([]*entity.ArrivalRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "scheduledArrivalUtc", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"icao": icao, "arrivalDay": day}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*entity.ArrivalRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}
	return records, nil
}

// SaveAll upserts records by arrivalKey
func (r *MongoArrivalArchiveRepository) SaveAll(ctx context.Context, records []*entity.ArrivalRecord) error {
	if len(records) == 0 {
		return nil
	}

	now := time.Now()
	models := make([]mongo.WriteModel, 0, len(records))
	for _, record := range records {
		if record.ArrivalKey == "" {
			record.ArrivalKey = record.Key()
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = now
		}

		updateDoc := bson.M{
			"arrivalKey":          record.ArrivalKey,
			"icao":                record.AirportCode,
			"arrivalDay":          record.ArrivalDay,
			"flightNumber":        record.FlightNumber,
			"scheduledArrivalUtc": record.ScheduledArrivalUTC,
			"origin":              record.Origin,
			"aircraftModel":       record.AircraftModel,
			"latitude":            record.Latitude,
			"longitude":           record.Longitude,
			"createdAt":           record.CreatedAt,
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"arrivalKey": record.ArrivalKey}).
			SetUpdate(bson.M{"$set": updateDoc}).
			SetUpsert(true))
	}

	_, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("failed to archive arrivals: %w", err)
	}
	return nil
}
