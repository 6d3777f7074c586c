package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/auralab/auralab/internal/domain"
	"github.com/auralab/auralab/internal/identity"
	"github.com/auralab/auralab/internal/store"
)

// Migrator merges one account's owned resources into another.
//
// The workflow is not transactional: room and measurement rewrites are
// persisted before the destination user is saved and before the source is
// deleted, and every sub-step is idempotent (append-if-absent,
// unconditional save), so re-running after a partial failure converges.
type Migrator struct {
	Data store.DataContext
}

// Migrate re-owns every room and measurement of the source account to the
// destination account, merges the membership lists, and deletes the source.
//
// The source token arrives from the caller's auth layer, so a malformed
// source surfaces as ErrNotFound; only a malformed destination is the
// client's fault (ErrInvalidIdentity).
func (m *Migrator) Migrate(ctx context.Context, sourceToken, destToken string) error {
	srcID, err := identity.Resolve(sourceToken)
	if err != nil {
		return ErrNotFound
	}
	src, err := m.Data.Users.FindByID(ctx, srcID)
	if err != nil {
		return err
	}
	if src == nil {
		return ErrNotFound
	}

	dstID, err := identity.Resolve(destToken)
	if err != nil {
		return err
	}
	dst, err := m.Data.Users.FindByID(ctx, dstID)
	if err != nil {
		return err
	}
	if dst == nil {
		return ErrNotFound
	}

	if err := m.migrateRooms(ctx, src, dst, destToken); err != nil {
		return err
	}
	if err := m.migrateMeasurements(ctx, src, dst, destToken); err != nil {
		return err
	}

	dst.UpdatedAt = time.Now()
	if err := m.Data.Users.Save(ctx, dst); err != nil {
		return err
	}
	if err := m.Data.Users.Delete(ctx, src.ID); err != nil {
		return err
	}
	log.Info().Str("module", "app.migrate").Str("source", srcID.Hex()).Str("dest", dstID.Hex()).Int("rooms", len(src.Rooms)).Int("measurements", len(src.Measurements)).Msg("account migrated")
	return nil
}

func (m *Migrator) migrateRooms(ctx context.Context, src, dst *domain.User, destToken string) error {
	sourceToken := src.ID.Hex()
	for _, ref := range src.Rooms {
		if !contains(dst.Rooms, ref) {
			dst.Rooms = append(dst.Rooms, ref)
		}
		id, err := identity.Resolve(ref)
		if err != nil {
			return fmt.Errorf("%w: user %s lists malformed room id %q", ErrIntegrity, sourceToken, ref)
		}
		room, err := m.Data.Rooms.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if room == nil {
			return fmt.Errorf("%w: room %s listed by user %s is missing", ErrIntegrity, ref, sourceToken)
		}
		if room.OwnerToken == sourceToken {
			room.OwnerToken = destToken
		}
		// Saved even when the owner was unchanged; the rewrite is
		// idempotent per room.
		if err := m.Data.Rooms.Save(ctx, room); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) migrateMeasurements(ctx context.Context, src, dst *domain.User, destToken string) error {
	sourceToken := src.ID.Hex()
	for _, ref := range src.Measurements {
		if !contains(dst.Measurements, ref) {
			dst.Measurements = append(dst.Measurements, ref)
		}
		id, err := identity.Resolve(ref)
		if err != nil {
			return fmt.Errorf("%w: user %s lists malformed measurement id %q", ErrIntegrity, sourceToken, ref)
		}
		meas, err := m.Data.Measurements.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if meas == nil {
			return fmt.Errorf("%w: measurement %s listed by user %s is missing", ErrIntegrity, ref, sourceToken)
		}
		if meas.OwnerToken == sourceToken {
			meas.OwnerToken = destToken
		}
		if err := m.Data.Measurements.Save(ctx, meas); err != nil {
			return err
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
