package repositories

import (
	"context"
	"dm-lab/domain"
	"dm-lab/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()
	repository := NewProfileRepository(openDB(t))

	t.Run("should resolve saved profiles and fall back on unknown ids", func(t *testing.T) {
		req := require.New(t)
		req.NoError(repository.SaveProfile(ctx, Profile{ID: "alice", Name: "Alice", Email: "alice@example.com"}))

		identities, err := repository.GetIdentities(ctx, "alice", "ghost", "alice", "")
		req.NoError(err)
		req.Len(identities, 2)
		req.Equal(domain.Identity{ID: "alice", Name: "Alice", Email: "alice@example.com"}, identities["alice"])
		req.Equal(domain.Identity{ID: "ghost"}, identities["ghost"])
	})

	t.Run("should replace an existing profile", func(t *testing.T) {
		req := require.New(t)
		req.NoError(repository.SaveProfile(ctx, Profile{ID: "bob", Name: "Bob"}))
		req.NoError(repository.SaveProfile(ctx, Profile{ID: "bob", Name: "Robert", Email: "bob@example.com"}))

		identities, err := repository.GetIdentities(ctx, "bob")
		req.NoError(err)
		req.Equal("Robert", identities["bob"].Name)
		req.Equal("bob@example.com", identities["bob"].Email)
	})

	t.Run("should reject a profile without id", func(t *testing.T) {
		err := repository.SaveProfile(ctx, Profile{Name: "Nobody"})
		require.ErrorIs(t, err, errors.ErrValidation)
	})
}

func TestCodec_Skips_Unknown_Fields(t *testing.T) {
	req := require.New(t)
	encoded := marshalProfile(Profile{ID: "alice", Name: "Alice"})
	// field 9, varint 1: written by a newer version
	encoded = append(encoded, 0x48, 0x01)

	profile, err := unmarshalProfile(encoded)
	req.NoError(err)
	req.Equal("alice", profile.ID)
	req.Equal("Alice", profile.Name)

	_, err = unmarshalMessage([]byte{0x0a, 0x05, 0x01})
	req.Error(err)
}
