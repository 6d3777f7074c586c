package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// OwnerToken is the owning user's id in string form. It is not validated
// against the user collection and may go stale.
type Room struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	OwnerToken string             `bson:"ownerToken" json:"ownerToken"`
}

type Measurement struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	OwnerToken string             `bson:"ownerToken" json:"ownerToken"`
}
