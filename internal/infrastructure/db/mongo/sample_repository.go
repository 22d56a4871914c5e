package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/triplog/tracking-system/internal/core/domain"
	"github.com/triplog/tracking-system/internal/core/ports"
)

const collectionSamples = "position_samples"

type SampleRepository struct {
	col *mongo.Collection
}

func NewSampleRepository(db *mongo.Database) *SampleRepository {
	return &SampleRepository{col: db.Collection(collectionSamples)}
}

// Insert persists one submitted position sample.
func (r *SampleRepository) Insert(ctx context.Context, s ports.StoredSample) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"trip_id":     s.TripID,
		"device_id":   s.Sample.DeviceID,
		"coordinates": bson.M{"lat": s.Sample.Coordinates.Lat, "lng": s.Sample.Coordinates.Lng},
		"accuracy_m":  s.Sample.AccuracyM,
		"captured_at": s.Sample.CapturedAt.UTC(),
		"stored_at":   time.Now().UTC(),
	}

	_, err := r.col.InsertOne(ctx, doc)
	return err
}

// LatestByTrip retrieves the most recent sample for the trip by capture
// time. Returns domain.ErrNoSamples when the trip has none.
func (r *SampleRepository) LatestByTrip(ctx context.Context, tripID string) (*ports.StoredSample, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "captured_at", Value: -1}})

	var doc struct {
		TripID      string             `bson:"trip_id"`
		DeviceID    string             `bson:"device_id"`
		Coordinates domain.Coordinates `bson:"coordinates"`
		AccuracyM   float64            `bson:"accuracy_m"`
		CapturedAt  time.Time          `bson:"captured_at"`
	}
	err := r.col.FindOne(ctx, bson.M{"trip_id": tripID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoSamples
		}
		return nil, err
	}

	return &ports.StoredSample{
		TripID: doc.TripID,
		Sample: domain.Sample{
			DeviceID:    doc.DeviceID,
			Coordinates: doc.Coordinates,
			AccuracyM:   doc.AccuracyM,
			CapturedAt:  doc.CapturedAt.UTC(),
		},
	}, nil
}

// EnsureIndexes creates necessary indexes on the samples collection.
func (r *SampleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "trip_id", Value: 1}, {Key: "captured_at", Value: -1}}},
		{Keys: bson.D{{Key: "device_id", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
