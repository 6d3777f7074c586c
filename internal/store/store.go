// Package store abstracts the document store. Lookups report absence as
// (nil, nil); callers decide whether absence is NotFound or an integrity
// fault.
package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/auralab/auralab/internal/domain"
)

type Users interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type Rooms interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Room, error)
	Save(ctx context.Context, room *domain.Room) error
}

type Measurements interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Measurement, error)
	Save(ctx context.Context, m *domain.Measurement) error
}

// DataContext bundles the three collections a request path works with.
type DataContext struct {
	Users        Users
	Rooms        Rooms
	Measurements Measurements
}
