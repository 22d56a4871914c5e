package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/triplog/tracking-system/internal/core/domain"
)

const collectionItineraries = "itineraries"

// WaypointRepository stores one itinerary document per trip. The whole
// ordered sequence is replaced on write, matching how itineraries are
// edited: as a unit, not waypoint by waypoint.
type WaypointRepository struct {
	col *mongo.Collection
}

func NewWaypointRepository(db *mongo.Database) *WaypointRepository {
	return &WaypointRepository{col: db.Collection(collectionItineraries)}
}

type waypointDoc struct {
	ID          string              `bson:"id,omitempty"`
	Name        string              `bson:"name"`
	Ordinal     int                 `bson:"ordinal"`
	Coordinates *domain.Coordinates `bson:"coordinates,omitempty"`
}

type itineraryDoc struct {
	TripID    string        `bson:"trip_id"`
	Waypoints []waypointDoc `bson:"waypoints"`
}

// ByTrip returns the trip's waypoints ordered by ordinal. Returns
// domain.ErrTripNotFound when no itinerary exists.
func (r *WaypointRepository) ByTrip(ctx context.Context, tripID string) ([]domain.Waypoint, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc itineraryDoc
	err := r.col.FindOne(ctx, bson.M{"trip_id": tripID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTripNotFound
		}
		return nil, err
	}

	waypoints := make([]domain.Waypoint, 0, len(doc.Waypoints))
	for _, w := range doc.Waypoints {
		waypoints = append(waypoints, domain.Waypoint{
			ID:          w.ID,
			Name:        w.Name,
			Ordinal:     w.Ordinal,
			Coordinates: w.Coordinates,
		})
	}
	return waypoints, nil
}

// Replace swaps the trip's entire itinerary for the given sequence,
// creating the document when missing.
func (r *WaypointRepository) Replace(ctx context.Context, tripID string, waypoints []domain.Waypoint) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	docs := make([]waypointDoc, 0, len(waypoints))
	for i, w := range waypoints {
		docs = append(docs, waypointDoc{
			ID:          w.ID,
			Name:        w.Name,
			Ordinal:     i,
			Coordinates: w.Coordinates,
		})
	}

	opts := options.Replace().SetUpsert(true)
	_, err := r.col.ReplaceOne(ctx, bson.M{"trip_id": tripID}, itineraryDoc{TripID: tripID, Waypoints: docs}, opts)
	return err
}

// EnsureIndexes creates necessary indexes on the itineraries collection.
func (r *WaypointRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "trip_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
