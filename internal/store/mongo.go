package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/auralab/auralab/internal/domain"
)

// NewMongo builds a DataContext over db. Save has upsert semantics.
func NewMongo(db *mongo.Database) DataContext {
	return DataContext{
		Users:        &mongoUsers{col: db.Collection("users")},
		Rooms:        &mongoRooms{col: db.Collection("rooms")},
		Measurements: &mongoMeasurements{col: db.Collection("measurements")},
	}
}

// Connect dials uri and pings the deployment before returning the database.
func Connect(ctx context.Context, uri, dbName string) (*mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client.Database(dbName), nil
}

type mongoUsers struct{ col *mongo.Collection }

func (r *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var u domain.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id.Hex(), err)
	}
	return &u, nil
}

func (r *mongoUsers) Save(ctx context.Context, user *domain.User) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": user.ID}, user, opts); err != nil {
		return fmt.Errorf("save user %s: %w", user.ID.Hex(), err)
	}
	return nil
}

func (r *mongoUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete user %s: %w", id.Hex(), err)
	}
	return nil
}

type mongoRooms struct{ col *mongo.Collection }

func (r *mongoRooms) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Room, error) {
	var room domain.Room
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find room %s: %w", id.Hex(), err)
	}
	return &room, nil
}

func (r *mongoRooms) Save(ctx context.Context, room *domain.Room) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": room.ID}, room, opts); err != nil {
		return fmt.Errorf("save room %s: %w", room.ID.Hex(), err)
	}
	return nil
}

type mongoMeasurements struct{ col *mongo.Collection }

func (r *mongoMeasurements) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Measurement, error) {
	var m domain.Measurement
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find measurement %s: %w", id.Hex(), err)
	}
	return &m, nil
}

func (r *mongoMeasurements) Save(ctx context.Context, m *domain.Measurement) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": m.ID}, m, opts); err != nil {
		return fmt.Errorf("save measurement %s: %w", m.ID.Hex(), err)
	}
	return nil
}
