// Package registry is the admin-facing surface over the channel store.
//
// The store silently sanitizes whatever it finds on disk; this layer instead
// rejects malformed operator input with a specific error, so the two layers
// deliberately have different leniency postures.
package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	apperrors "github.com/pulsescalp/channel-gate/internal/core/errors"
	db "github.com/pulsescalp/channel-gate/internal/storage"
)

// Input carries an operator-supplied channel record. ID and Title are
// mandatory; the rest is optional.
type Input struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	InviteLink  string `json:"inviteLink,omitempty"`
	Description string `json:"description,omitempty"`
	FileID      string `json:"fileId,omitempty"`
}

type Registry struct {
	store  *db.Store
	logger *zerolog.Logger
}

func New(store *db.Store, logger *zerolog.Logger) *Registry {
	return &Registry{
		store:  store,
		logger: logger,
	}
}

// ListAll returns the registered channels in UI order (most recently touched
// first).
func (r *Registry) ListAll(ctx context.Context) ([]db.Channel, error) {
	return r.store.ListChannels(ctx)
}

// Upsert validates the input, trims every string field and forwards the
// record to the store. On success it returns the entry as persisted,
// including the store-stamped UpdatedAt.
func (r *Registry) Upsert(ctx context.Context, in Input) (db.Channel, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return db.Channel{}, apperrors.ErrInvalidChannelID
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return db.Channel{}, apperrors.ErrInvalidChannelTitle
	}

	saved, err := r.store.AddOrUpdateChannel(ctx, db.Channel{
		ID:          id,
		Title:       title,
		InviteLink:  strings.TrimSpace(in.InviteLink),
		Description: strings.TrimSpace(in.Description),
		FileID:      strings.TrimSpace(in.FileID),
	})
	if err != nil {
		return db.Channel{}, fmt.Errorf("upsert channel: %w", err)
	}

	r.logger.Info().Str("channel_id", saved.ID).Str("title", saved.Title).Msg("channel upserted")

	return saved, nil
}

// Delete removes a channel by id. Unlike the store, a missing id is an
// error here so the operator gets a distinct not-found response.
func (r *Registry) Delete(ctx context.Context, id string) error {
	removed, err := r.store.RemoveChannel(ctx, id)
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}

	if !removed {
		return fmt.Errorf("%w: %s", apperrors.ErrChannelNotFound, strings.TrimSpace(id))
	}

	r.logger.Info().Str("channel_id", strings.TrimSpace(id)).Msg("channel deleted")

	return nil
}

// Clear removes every registered channel in one persisted write.
func (r *Registry) Clear(ctx context.Context) error {
	if err := r.store.ClearChannels(ctx); err != nil {
		return fmt.Errorf("clear channels: %w", err)
	}

	r.logger.Info().Msg("channel registry cleared")

	return nil
}
