package historydb

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cwilliams/rsinc/internal/driver"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), ":memory:", slog.Default())
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestRecord_RoundTripsThroughRecent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Record(ctx, driver.HistoryEntry{Folder: "cpp", Actions: 3, Duration: 2 * time.Second})
	s.Record(ctx, driver.HistoryEntry{Folder: "docs", DryRun: true, Actions: 0, Duration: time.Second})

	runs, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// newest first
	require.Equal(t, "docs", runs[0].Folder)
	require.True(t, runs[0].DryRun)
	require.Equal(t, "cpp", runs[1].Folder)
	require.Equal(t, 3, runs[1].Actions)
}

func TestRecord_CapturesError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Record(ctx, driver.HistoryEntry{Folder: "cpp", Err: errors.New("agent exited nonzero")})

	runs, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "agent exited nonzero", runs[0].Error)
}

func TestRecent_RespectsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.Record(ctx, driver.HistoryEntry{Folder: "cpp"})
	}

	runs, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
}
