package db

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	apperrors "github.com/pulsescalp/channel-gate/internal/core/errors"
)

// Channel is one registered messaging channel the gate requires membership
// in. The JSON tags match the persisted document format; optional fields are
// omitted when absent rather than written as empty strings.
type Channel struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	InviteLink  string `json:"inviteLink,omitempty"`
	Description string `json:"description,omitempty"`
	FileID      string `json:"fileId,omitempty"`

	// UpdatedAt is an epoch-millisecond timestamp stamped by the store on
	// every write. Callers cannot supply or preserve it.
	UpdatedAt int64 `json:"updatedAt,omitempty"`
}

// sanitizeChannel trims every field, falls back to ID for an empty title and
// reports whether the record is usable at all (non-empty id).
func sanitizeChannel(ch Channel) (Channel, bool) {
	ch.ID = strings.TrimSpace(ch.ID)
	if ch.ID == "" {
		return Channel{}, false
	}

	ch.Title = strings.TrimSpace(ch.Title)
	if ch.Title == "" {
		ch.Title = ch.ID
	}

	ch.InviteLink = strings.TrimSpace(ch.InviteLink)
	ch.Description = strings.TrimSpace(ch.Description)
	ch.FileID = strings.TrimSpace(ch.FileID)

	return ch, true
}

// GetChannels returns a defensive copy of all entries in store order.
func (s *Store) GetChannels(_ context.Context) ([]Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}

	channels := make([]Channel, len(s.channels))
	copy(channels, s.channels)

	return channels, nil
}

// ListChannels returns entries sorted by UpdatedAt descending, ties broken
// by collated title comparison ascending. This is the UI-facing ordering.
func (s *Store) ListChannels(ctx context.Context) ([]Channel, error) {
	channels, err := s.GetChannels(ctx)
	if err != nil {
		return nil, err
	}

	coll := collate.New(language.Und)

	sort.SliceStable(channels, func(i, j int) bool {
		if channels[i].UpdatedAt != channels[j].UpdatedAt {
			return channels[i].UpdatedAt > channels[j].UpdatedAt
		}

		return coll.CompareString(channels[i].Title, channels[j].Title) < 0
	})

	return channels, nil
}

// AddOrUpdateChannel validates and normalizes the entry, stamps UpdatedAt,
// replaces any existing entry with the same id wholesale and persists the
// full collection before returning. The returned value is the entry as
// persisted.
func (s *Store) AddOrUpdateChannel(_ context.Context, ch Channel) (Channel, error) {
	ch, ok := sanitizeChannel(ch)
	if !ok {
		return Channel{}, fmt.Errorf("%w: empty id", apperrors.ErrInvalidChannelEntry)
	}

	ch.UpdatedAt = s.now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return Channel{}, err
	}

	next := make([]Channel, 0, len(s.channels)+1)
	replaced := false

	for _, existing := range s.channels {
		if existing.ID == ch.ID {
			next = append(next, ch)
			replaced = true

			continue
		}

		next = append(next, existing)
	}

	if !replaced {
		next = append(next, ch)
	}

	if err := s.persist(next); err != nil {
		return Channel{}, err
	}

	s.channels = next

	return ch, nil
}

// RemoveChannel reports whether an entry with that id existed. Removing a
// nonexistent id is a no-op, not an error, and skips the disk write.
func (s *Store) RemoveChannel(_ context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return false, err
	}

	next := make([]Channel, 0, len(s.channels))
	removed := false

	for _, existing := range s.channels {
		if existing.ID == id {
			removed = true

			continue
		}

		next = append(next, existing)
	}

	if !removed {
		return false, nil
	}

	if err := s.persist(next); err != nil {
		return false, err
	}

	s.channels = next

	return true, nil
}

// ClearChannels resets the store to empty and persists. Administrative and
// testing use only.
func (s *Store) ClearChannels(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(nil); err != nil {
		return err
	}

	s.channels = nil
	s.loaded = true

	return nil
}
