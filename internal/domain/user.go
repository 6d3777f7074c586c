// Package domain contains stored documents and lobby value types, no logic.
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the account document. Rooms and Measurements hold document ids
// in string form; they are membership lists, not strict foreign keys.
type User struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	Rooms        []string           `bson:"rooms" json:"rooms"`
	Measurements []string           `bson:"measurements" json:"measurements"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// NewUser avoids raw literals in adapters and keeps construction obvious.
func NewUser(id primitive.ObjectID) *User {
	return &User{
		ID:           id,
		Rooms:        []string{},
		Measurements: []string{},
		UpdatedAt:    time.Now(),
	}
}
