package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"testing"
	"time"

	"github.com/lanternpress/novelsite/internal/admin/store/drivers/sqlite"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a fresh in-memory database with migrations applied.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func TestNewsletterExportCSV(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("refuses an empty export", func(t *testing.T) {
		svc := &NewsletterService{Store: newTestStore(t)}

		_, err := svc.ExportCSV(ctx)
		require.ErrorIs(t, err, ErrNoSubscribers)
	})

	t.Run("emits BOM, header and rows newest first", func(t *testing.T) {
		st := newTestStore(t)
		svc := &NewsletterService{Store: st}

		older := time.Date(2026, 1, 10, 9, 30, 0, 0, time.UTC)
		newer := time.Date(2026, 2, 20, 18, 45, 0, 0, time.UTC)
		_, err := st.Subscribers().Create(ctx, "first@example.com", older)
		require.NoError(t, err)
		_, err = st.Subscribers().Create(ctx, "second@example.com", newer)
		require.NoError(t, err)

		data, err := svc.ExportCSV(ctx)
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))

		records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		require.Equal(t, []string{"ID", "Email", "Date Subscribed"}, records[0])
		require.Equal(t, "second@example.com", records[1][1])
		require.Equal(t, "2026-02-20 18:45:00", records[1][2])
		require.Equal(t, "first@example.com", records[2][1])
	})
}

func TestNewsletterDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := newTestStore(t)
	svc := &NewsletterService{Store: st}

	id, err := st.Subscribers().Create(ctx, "reader@example.com", time.Now().UTC())
	require.NoError(t, err)

	t.Run("invalid ids are no-ops", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, "abc"))
		require.NoError(t, svc.Delete(ctx, "-3"))
		require.NoError(t, svc.Delete(ctx, ""))

		subs, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, subs, 1)
	})

	t.Run("deletes by id", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, "999"))
		subs, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, subs, 1, "unknown id removes nothing")

		require.NoError(t, svc.Delete(ctx, strconv.FormatInt(id, 10)))
		subs, err = svc.List(ctx)
		require.NoError(t, err)
		require.Empty(t, subs)
	})
}
