// Package db implements the durable channel store backing the gate.
//
// The store is a single JSON document on disk, cached in memory after the
// first read. Reads are lenient: malformed records and unrecognized document
// shapes degrade to fewer (or zero) visible channels, never to a load
// failure. Writes are strict: every mutation validates its input, rewrites
// the whole sanitized collection through a temp file + rename, and only then
// updates the in-memory cache, so the cache never diverges from what was
// durably written.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulsescalp/channel-gate/internal/platform/observability"
)

const storeFileMode = 0o600

type Store struct {
	path   string
	logger *zerolog.Logger
	now    func() time.Time

	mu       sync.Mutex
	loaded   bool
	channels []Channel
}

func NewStore(path string, logger *zerolog.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger,
		now:    time.Now,
	}
}

// Ping forces a load of the backing file so readiness probes surface I/O
// problems before traffic does.
func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// load populates the cache from disk on first use. A missing file is an
// empty store, not an error. Callers must hold s.mu.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.channels = nil
			s.loaded = true

			return nil
		}

		return fmt.Errorf("read channel store: %w", err)
	}

	s.channels = decodeDocument(data, s.logger)
	s.loaded = true
	observability.ChannelsConfigured.Set(float64(len(s.channels)))

	return nil
}

// decodeDocument accepts either a bare JSON array of channel records or an
// object with a "channels" array. Anything else decodes to an empty store.
// Records are decoded one by one so a single malformed element is dropped
// instead of poisoning the whole document.
func decodeDocument(data []byte, logger *zerolog.Logger) []Channel {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var wrapped struct {
			Channels []json.RawMessage `json:"channels"`
		}

		if err := json.Unmarshal(data, &wrapped); err != nil {
			logger.Warn().Msg("channel store document has unrecognized shape, treating as empty")

			return nil
		}

		raw = wrapped.Channels
	}

	channels := make([]Channel, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, r := range raw {
		var ch Channel
		if err := json.Unmarshal(r, &ch); err != nil {
			logger.Debug().Err(err).Msg("dropping malformed channel record")

			continue
		}

		ch, ok := sanitizeChannel(ch)
		if !ok {
			continue
		}

		if _, dup := seen[ch.ID]; dup {
			continue
		}

		seen[ch.ID] = struct{}{}

		channels = append(channels, ch)
	}

	return channels
}

// persist writes the full collection durably. The temp file lives in the
// store directory so the rename stays on one filesystem. Callers must hold
// s.mu and must only update the cache after persist returns nil.
func (s *Store) persist(channels []Channel) error {
	if err := s.persistFile(channels); err != nil {
		observability.StoreWrites.WithLabelValues(observability.StatusError).Inc()

		return err
	}

	observability.StoreWrites.WithLabelValues(observability.StatusOK).Inc()
	observability.ChannelsConfigured.Set(float64(len(channels)))

	return nil
}

func (s *Store) persistFile(channels []Channel) error {
	if channels == nil {
		channels = []Channel{}
	}

	data, err := json.MarshalIndent(channels, "", "  ")
	if err != nil {
		return fmt.Errorf("encode channel store: %w", err)
	}

	dir := filepath.Dir(s.path)

	tmp, err := os.CreateTemp(dir, ".channels-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("write channel store: %w", err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("close channel store: %w", err)
	}

	if err := os.Chmod(tmp.Name(), storeFileMode); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("chmod channel store: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("replace channel store: %w", err)
	}

	return nil
}
