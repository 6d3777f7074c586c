// Package identity validates opaque tokens and converts them into
// canonical document ids before anything touches the store.
package identity

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrInvalidIdentity = errors.New("invalid identity token")

// Resolve parses token into a canonical 12-byte object id. A token that is
// not 24 hex characters fails with ErrInvalidIdentity; the store is never
// consulted here.
func Resolve(token string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(token)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidIdentity
	}
	return id, nil
}
