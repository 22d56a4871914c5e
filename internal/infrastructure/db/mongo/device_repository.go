package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/triplog/tracking-system/internal/core/domain"
)

const collectionDevices = "devices"

type DeviceRepository struct {
	coll *mongo.Collection
}

func NewDeviceRepository(db *mongo.Database) *DeviceRepository {
	return &DeviceRepository{coll: db.Collection(collectionDevices)}
}

type mongoDevice struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	DeviceID   string             `bson:"device_id"`
	TripID     string             `bson:"trip_id,omitempty"`
	SecretHash string             `bson:"secret_hash"`
	Role       string             `bson:"role"`
	CreatedAt  int64              `bson:"created_at"`
	UpdatedAt  int64              `bson:"updated_at"`
}

func (r *DeviceRepository) Create(ctx context.Context, device *domain.Device) (*domain.Device, error) {
	doc := mongoDevice{
		DeviceID:   device.DeviceID,
		TripID:     device.TripID,
		SecretHash: device.SecretHash,
		Role:       device.Role,
		CreatedAt:  device.CreatedAt.Unix(),
		UpdatedAt:  device.UpdatedAt.Unix(),
	}

	_, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDeviceExists
		}
		return nil, fmt.Errorf("insert device: %w", err)
	}

	// fetch back to get ID
	created, err := r.FindByDeviceID(ctx, device.DeviceID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *DeviceRepository) FindByDeviceID(ctx context.Context, deviceID string) (*domain.Device, error) {
	var md mongoDevice
	if err := r.coll.FindOne(ctx, bson.M{"device_id": deviceID}).Decode(&md); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("find device: %w", err)
	}

	return &domain.Device{
		ID:         md.ID.Hex(),
		DeviceID:   md.DeviceID,
		TripID:     md.TripID,
		SecretHash: md.SecretHash,
		Role:       md.Role,
		CreatedAt:  unixToTime(md.CreatedAt),
		UpdatedAt:  unixToTime(md.UpdatedAt),
	}, nil
}

// EnsureIndexes enforces device-id uniqueness.
func (r *DeviceRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "device_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
