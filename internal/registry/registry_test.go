package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pulsescalp/channel-gate/internal/core/errors"
	db "github.com/pulsescalp/channel-gate/internal/storage"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()

	logger := zerolog.Nop()
	store := db.NewStore(filepath.Join(t.TempDir(), "channels.json"), &logger)

	return New(store, &logger)
}

func TestUpsert_InvalidID(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Upsert(ctx, Input{ID: "   ", Title: "X"})
	require.ErrorIs(t, err, apperrors.ErrInvalidChannelID)

	channels, err := reg.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, channels, "failed upsert must leave the store unchanged")
}

func TestUpsert_InvalidTitle(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Upsert(ctx, Input{ID: "c1", Title: ""})
	require.ErrorIs(t, err, apperrors.ErrInvalidChannelTitle)

	channels, err := reg.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, channels)
}

func TestUpsert_TrimsAndPersists(t *testing.T) {
	reg := newTestRegistry(t)

	saved, err := reg.Upsert(context.Background(), Input{
		ID:          " c1 ",
		Title:       " Signals ",
		InviteLink:  " https://t.me/+x ",
		Description: " vip alerts ",
	})
	require.NoError(t, err)

	assert.Equal(t, "c1", saved.ID)
	assert.Equal(t, "Signals", saved.Title)
	assert.Equal(t, "https://t.me/+x", saved.InviteLink)
	assert.Equal(t, "vip alerts", saved.Description)
	assert.NotZero(t, saved.UpdatedAt)
}

func TestDelete(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Upsert(ctx, Input{ID: "c1", Title: "One"})
	require.NoError(t, err)

	require.NoError(t, reg.Delete(ctx, "c1"))

	err = reg.Delete(ctx, "c1")
	require.ErrorIs(t, err, apperrors.ErrChannelNotFound)
}

func TestClear(t *testing.T) {
	reg := newTestRegistry(t)
	ctx := context.Background()

	for _, in := range []Input{
		{ID: "c1", Title: "One"},
		{ID: "c2", Title: "Two"},
	} {
		_, err := reg.Upsert(ctx, in)
		require.NoError(t, err)
	}

	require.NoError(t, reg.Clear(ctx))

	channels, err := reg.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, channels)
}
