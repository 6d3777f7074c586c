package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/auralab/auralab/internal/domain"
	"github.com/auralab/auralab/internal/identity"
	"github.com/auralab/auralab/internal/store"
)

// failingUsers fails the test on any write.
type failingUsers struct {
	t *testing.T
	store.Users
}

func (f failingUsers) Save(context.Context, *domain.User) error {
	f.t.Fatal("Save must not be reached for an invalid token")
	return nil
}

func TestRegisterCreatesEmptyUser(t *testing.T) {
	mem := store.NewMemory()
	data := mem.Context()
	r := &Registrar{Data: data}

	id := primitive.NewObjectID()
	require.NoError(t, r.Register(context.Background(), id.Hex()))

	u, err := data.Users.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Empty(t, u.Rooms)
	assert.Empty(t, u.Measurements)
	assert.False(t, u.UpdatedAt.IsZero())
}

func TestRegisterInvalidTokenWritesNothing(t *testing.T) {
	r := &Registrar{Data: store.DataContext{Users: failingUsers{t: t}}}

	err := r.Register(context.Background(), "not-a-valid-id")
	assert.ErrorIs(t, err, identity.ErrInvalidIdentity)
}
