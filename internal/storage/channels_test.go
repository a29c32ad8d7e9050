package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	logger := zerolog.Nop()

	return NewStore(filepath.Join(t.TempDir(), "channels.json"), &logger)
}

func TestAddOrUpdateChannel_NewEntry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	before := time.Now().UnixMilli()

	saved, err := store.AddOrUpdateChannel(ctx, Channel{
		ID:         "  -1001234567890  ",
		Title:      " Signals VIP ",
		InviteLink: " https://t.me/+abc ",
	})
	require.NoError(t, err)

	assert.Equal(t, "-1001234567890", saved.ID)
	assert.Equal(t, "Signals VIP", saved.Title)
	assert.Equal(t, "https://t.me/+abc", saved.InviteLink)
	assert.Empty(t, saved.Description)
	assert.GreaterOrEqual(t, saved.UpdatedAt, before)

	channels, err := store.GetChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, saved, channels[0])
}

func TestAddOrUpdateChannel_TitleFallsBackToID(t *testing.T) {
	store := newTestStore(t)

	saved, err := store.AddOrUpdateChannel(context.Background(), Channel{ID: "c1", Title: "   "})
	require.NoError(t, err)
	assert.Equal(t, "c1", saved.Title)
}

func TestAddOrUpdateChannel_EmptyID(t *testing.T) {
	store := newTestStore(t)

	_, err := store.AddOrUpdateChannel(context.Background(), Channel{ID: "   ", Title: "X"})
	require.Error(t, err)

	channels, err := store.GetChannels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, channels)
}

func TestAddOrUpdateChannel_ReplacesWholesale(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddOrUpdateChannel(ctx, Channel{
		ID:          "c1",
		Title:       "Old",
		Description: "stale description",
		FileID:      "file-1",
	})
	require.NoError(t, err)

	_, err = store.AddOrUpdateChannel(ctx, Channel{ID: "c1", Title: "New"})
	require.NoError(t, err)

	channels, err := store.GetChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 1)

	assert.Equal(t, "New", channels[0].Title)
	assert.Empty(t, channels[0].Description, "fields absent from the new input must be dropped, not merged")
	assert.Empty(t, channels[0].FileID)
}

func TestRemoveChannel(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddOrUpdateChannel(ctx, Channel{ID: "c1", Title: "One"})
	require.NoError(t, err)

	removed, err := store.RemoveChannel(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, removed)

	channels, err := store.GetChannels(ctx)
	require.NoError(t, err)
	assert.Empty(t, channels)

	removed, err = store.RemoveChannel(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestListChannels_Ordering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ts := time.UnixMilli(1_700_000_000_000)
	store.now = func() time.Time { return ts }

	_, err := store.AddOrUpdateChannel(ctx, Channel{ID: "b", Title: "Beta"})
	require.NoError(t, err)
	_, err = store.AddOrUpdateChannel(ctx, Channel{ID: "a", Title: "Alpha"})
	require.NoError(t, err)

	store.now = func() time.Time { return ts.Add(time.Minute) }

	_, err = store.AddOrUpdateChannel(ctx, Channel{ID: "z", Title: "Zulu"})
	require.NoError(t, err)

	channels, err := store.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 3)

	// Most recently touched first, equal timestamps ordered by title.
	assert.Equal(t, "z", channels[0].ID)
	assert.Equal(t, "a", channels[1].ID)
	assert.Equal(t, "b", channels[2].ID)
}

func TestLoad_UnrecognizedShapes(t *testing.T) {
	for name, content := range map[string]string{
		"bare string":  `"not a store"`,
		"number":       `42`,
		"null":         `null`,
		"wrong object": `{"someKey": 1}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "channels.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

			logger := zerolog.Nop()
			store := NewStore(path, &logger)

			channels, err := store.GetChannels(context.Background())
			require.NoError(t, err)
			assert.Empty(t, channels)
		})
	}
}

func TestLoad_DropsMalformedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	doc := `[
		{"id": "good", "title": "Good"},
		"not an object",
		{"id": "   ", "title": "blank id"},
		{"id": "untitled"},
		17
	]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	logger := zerolog.Nop()
	store := NewStore(path, &logger)

	channels, err := store.GetChannels(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 2)

	assert.Equal(t, "good", channels[0].ID)
	assert.Equal(t, "untitled", channels[1].ID)
	assert.Equal(t, "untitled", channels[1].Title, "missing title defaults to id")
}

func TestLoad_WrappedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	doc := `{"channels": [{"id": "c1", "title": "One"}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	logger := zerolog.Nop()
	store := NewStore(path, &logger)

	channels, err := store.GetChannels(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "c1", channels[0].ID)
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	store := newTestStore(t)

	channels, err := store.GetChannels(context.Background())
	require.NoError(t, err)
	assert.Empty(t, channels)
}

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	logger := zerolog.Nop()
	ctx := context.Background()

	store := NewStore(path, &logger)

	_, err := store.AddOrUpdateChannel(ctx, Channel{ID: "c1", Title: "One", InviteLink: "https://t.me/+x"})
	require.NoError(t, err)
	_, err = store.AddOrUpdateChannel(ctx, Channel{ID: "c2", Title: "Two", Description: "desc", FileID: "f2"})
	require.NoError(t, err)

	written, err := store.GetChannels(ctx)
	require.NoError(t, err)

	reloaded := NewStore(path, &logger)

	read, err := reloaded.GetChannels(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, written, read)
}

func TestStore_OmitsAbsentOptionalFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "channels.json")
	logger := zerolog.Nop()

	store := NewStore(path, &logger)

	_, err := store.AddOrUpdateChannel(context.Background(), Channel{ID: "c1", Title: "One"})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "inviteLink")
	assert.NotContains(t, string(data), "fileId")
}

func TestAddOrUpdateChannel_PersistFailureKeepsCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channels.json")
	logger := zerolog.Nop()
	ctx := context.Background()

	store := NewStore(path, &logger)

	_, err := store.AddOrUpdateChannel(ctx, Channel{ID: "c1", Title: "One"})
	require.NoError(t, err)

	// Make the store directory unwritable so the temp-file persist fails.
	require.NoError(t, os.Chmod(dir, 0o500))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	_, err = store.AddOrUpdateChannel(ctx, Channel{ID: "c2", Title: "Two"})
	require.Error(t, err)

	channels, err := store.GetChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 1, "cache must not serve state that was never durably written")
	assert.Equal(t, "c1", channels[0].ID)
}

func TestAddOrUpdateChannel_ConcurrentWriters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	const writers = 16

	var wg sync.WaitGroup

	// Every writer upserts a distinct id; without serialized
	// read-modify-write-persist cycles, concurrent writers overwrite the
	// whole collection and silently drop each other's entries.
	for i := 0; i < writers; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_, err := store.AddOrUpdateChannel(ctx, Channel{
				ID:    fmt.Sprintf("c%d", i),
				Title: fmt.Sprintf("Channel %d", i),
			})
			assert.NoError(t, err)
		}(i)
	}

	wg.Wait()

	channels, err := store.GetChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, writers)

	logger := zerolog.Nop()
	reloaded := NewStore(store.path, &logger)

	persisted, err := reloaded.GetChannels(ctx)
	require.NoError(t, err)
	assert.Len(t, persisted, writers, "every concurrent write must reach disk")
}

func TestClearChannels(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.AddOrUpdateChannel(ctx, Channel{ID: "c1", Title: "One"})
	require.NoError(t, err)

	require.NoError(t, store.ClearChannels(ctx))

	channels, err := store.GetChannels(ctx)
	require.NoError(t, err)
	assert.Empty(t, channels)
}
