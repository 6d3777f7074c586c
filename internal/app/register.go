package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/auralab/auralab/internal/domain"
	"github.com/auralab/auralab/internal/identity"
	"github.com/auralab/auralab/internal/store"
)

// Registrar creates fresh accounts with empty membership lists.
type Registrar struct {
	Data store.DataContext
}

// Register validates the token before any store write; a malformed token
// fails with identity.ErrInvalidIdentity and touches nothing.
func (r *Registrar) Register(ctx context.Context, token string) error {
	id, err := identity.Resolve(token)
	if err != nil {
		log.Warn().Str("module", "app.register").Msg("invalid user id provided")
		return err
	}
	if err := r.Data.Users.Save(ctx, domain.NewUser(id)); err != nil {
		return err
	}
	log.Info().Str("module", "app.register").Str("user", id.Hex()).Msg("user registered")
	return nil
}
