//go:generate go run go.uber.org/mock/mockgen -source=profile.go -destination=../mocks/mock_profile_repository.go -package=mocks
package repositories

import (
	"context"
	"dm-lab/domain"
	"dm-lab/errors"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const profilePrefix = "profile:"

// IProfileRepository is the read side of the identity collaborator:
// it resolves participant ids into display identities.
type IProfileRepository interface {
	SaveProfile(ctx context.Context, profile Profile) error
	GetIdentities(ctx context.Context, ids ...string) (map[string]domain.Identity, error)
}

type ProfileRepository struct {
	db *badger.DB
}

func NewProfileRepository(db *badger.DB) IProfileRepository {
	return &ProfileRepository{db: db}
}

// Profile is the stored display identity of a participant.
type Profile struct {
	ID        string
	Name      string
	Email     string
	UpdatedAt time.Time
}

// SaveProfile creates or replaces the profile of a participant.
func (p ProfileRepository) SaveProfile(ctx context.Context, profile Profile) error {
	if strings.TrimSpace(profile.ID) == "" {
		return errors.ErrEmptyParticipant
	}
	profile.UpdatedAt = time.Now().UTC()
	err := p.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(profileKey(profile.ID), marshalProfile(profile)); err != nil {
			return err
		}
		return ctx.Err()
	})
	if err != nil {
		return wrapStorageError(ctx, err)
	}
	return nil
}

// GetIdentities resolves every id in a single read transaction.
// Unknown participants resolve to an identity carrying only their id.
func (p ProfileRepository) GetIdentities(ctx context.Context, ids ...string) (map[string]domain.Identity, error) {
	ids = lo.Uniq(lo.Compact(ids))
	identities := make(map[string]domain.Identity, len(ids))
	err := p.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := txn.Get(profileKey(id))
			if stderrors.Is(err, badger.ErrKeyNotFound) {
				identities[id] = domain.Identity{ID: id}
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(value []byte) error {
				profile, err := unmarshalProfile(value)
				if err != nil {
					return fmt.Errorf("profile %s: %w", id, err)
				}
				identities[id] = toIdentity(profile)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStorageError(ctx, err)
	}
	return identities, nil
}

func profileKey(id string) []byte {
	return []byte(profilePrefix + encodeID(id))
}

func toIdentity(profile Profile) domain.Identity {
	return domain.Identity{
		ID:    profile.ID,
		Name:  profile.Name,
		Email: profile.Email,
	}
}
