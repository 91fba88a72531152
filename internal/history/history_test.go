package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/seithi/internal/domain"
	"github.com/Adda-Baaj/seithi/pkg/publishers"
)

func openStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := OpenBolt(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTracker(store Store) *Tracker {
	tr := NewTracker(store, store, nil)
	n := 0
	tr.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	tr.now = func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) }
	return tr
}

func article(i int) domain.Article {
	return domain.Article{
		Title:  fmt.Sprintf("Story %d", i),
		URL:    fmt.Sprintf("https://www.bbc.com/tamil/articles/%d", i),
		Image:  "https://ichef.bbci.co.uk/a.jpg",
		Source: domain.Source{Name: "BBC Tamil", URL: "https://www.bbc.com/tamil"},
	}
}

func TestBoltStoreRecentNewestFirst(t *testing.T) {
	store := openStore(t)
	tr := newTracker(store)
	ctx := context.Background()

	for i := range 55 {
		_, err := tr.Record(ctx, article(i), "u1", ActivityClick, "general")
		require.NoError(t, err)
	}
	_, err := tr.Record(ctx, article(99), "u2", ActivityReadAloud, "")
	require.NoError(t, err)

	got, err := tr.Recent(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, DefaultRecentLimit)
	assert.Equal(t, "Story 54", got[0].Title)
	assert.Equal(t, "Story 5", got[49].Title)
	assert.Equal(t, ActivityClick, got[0].Activity)
	assert.Equal(t, "BBC Tamil", got[0].Source)
	assert.Equal(t, "general", got[0].Category)

	other, err := store.Recent(ctx, "u2", 10)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, ActivityReadAloud, other[0].Activity)

	none, err := store.Recent(ctx, "nobody", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBoltStoreReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(context.Background(), Entry{ID: "a", UserID: "u1", Activity: ActivityClick, Title: "T"}))
	require.NoError(t, store.Close())

	store, err = OpenBolt(path)
	require.NoError(t, err)
	defer store.Close()
	got, err := store.Recent(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
}

func TestTrackerValidation(t *testing.T) {
	tr := newTracker(openStore(t))
	ctx := context.Background()

	_, err := tr.Record(ctx, article(1), " ", ActivityClick, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = tr.Record(ctx, domain.Article{Title: "No url"}, "u1", ActivityClick, "")
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = tr.RecordQuery(ctx, "  ", "u1")
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)

	e, err := tr.RecordQuery(ctx, " chennai rain ", "u1")
	require.NoError(t, err)
	assert.Equal(t, "chennai rain", e.Query)
	assert.Equal(t, ActivityVoiceSearch, e.Activity)
	assert.Equal(t, "id-1", e.ID)

	_, err = tr.Recent(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

type fakePublisher struct {
	events []publishers.Event
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, evt publishers.Event) error {
	f.events = append(f.events, evt)
	return f.err
}

type failingSink struct{}

func (failingSink) Record(context.Context, Entry) error { return errors.New("disk full") }

func TestPublishingSink(t *testing.T) {
	store := openStore(t)
	pub := &fakePublisher{err: errors.New("queue down")}
	sink := NewPublishingSink(store, pub, nil)
	tr := NewTracker(sink, store, nil)

	e, err := tr.Record(context.Background(), article(3), "u1", ActivityReadAloud, "tamil")
	require.NoError(t, err, "publisher failures do not fail the record")
	require.Len(t, pub.events, 1)
	assert.Equal(t, e.ID, pub.events[0].ID)
	assert.Equal(t, "read_aloud", pub.events[0].Activity)
	assert.Equal(t, "u1", pub.events[0].UserID)

	stored, err := store.Recent(context.Background(), "u1", 5)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	pub.events = nil
	_, err = NewTracker(NewPublishingSink(failingSink{}, pub, nil), store, nil).
		Record(context.Background(), article(4), "u1", ActivityClick, "")
	assert.ErrorContains(t, err, "disk full")
	assert.Empty(t, pub.events)
}
