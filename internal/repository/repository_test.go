package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/domain"
)

func newSQLiteStore(t *testing.T) *KVRepo {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"), "test-key")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, database.RunMigrations())
	return NewKVRepo(database)
}

// stores returns every KVStore implementation so each behaviour is checked on both
func stores(t *testing.T) map[string]KVStore {
	return map[string]KVStore{
		"mem":    NewMemStore(),
		"sqlite": newSQLiteStore(t),
	}
}

func TestKVStore(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Set(ctx, "k", "one"))
			require.NoError(t, store.Set(ctx, "k", "two"))
			v, ok, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "two", v)

			require.NoError(t, store.Delete(ctx, "k"))
			require.NoError(t, store.Delete(ctx, "k"))
			_, ok, err = store.Get(ctx, "k")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestCounterRepo(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	counter := NewCounterRepo(store, 0)

	n, err := counter.Peek(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1001, n)

	// peeking twice does not advance
	n, err = counter.Peek(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1001, n)

	require.NoError(t, counter.Commit(ctx, 1001))
	n, err = counter.Peek(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1002, n)

	// committing an older number never moves the counter back
	require.NoError(t, counter.Commit(ctx, 900))
	last, err := counter.Last(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1001, last)

	raw, ok, err := store.Get(ctx, KeyLastInvoiceNumber)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1001", raw)

	require.NoError(t, counter.Reset(ctx))
	n, err = counter.Peek(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1001, n)
}

func TestCounterRepo_QuotedLegacyValue(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.Set(ctx, KeyLastInvoiceNumber, `"1041"`))

	n, err := NewCounterRepo(store, 1001).Peek(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1042, n)

	require.NoError(t, store.Set(ctx, KeyLastInvoiceNumber, "garbage"))
	_, err = NewCounterRepo(store, 1001).Peek(ctx)
	assert.Error(t, err)
}

func TestDraftRepo(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			repo := NewDraftRepo(store)

			got, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, got)

			draft := domain.NewInvoiceDraft("INV-1001", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
			draft.ClientName = "Acme"
			draft.LineItems[0].Description = "Audit"
			draft.LineItems[0].Rate = domain.MustNumber("120.50")
			draft.Tax = domain.MustNumber("8.25")
			require.NoError(t, repo.Save(ctx, draft))

			got, err = repo.Load(ctx)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "Acme", got.ClientName)
			assert.Equal(t, "2026-05-01", got.Date.String())
			assert.True(t, got.Total().Equal(draft.Total()))

			require.NoError(t, repo.Clear(ctx))
			got, err = repo.Load(ctx)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestDraftRepo_RepairsEmptyItems(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	require.NoError(t, store.Set(ctx, KeyCurrentInvoiceData, `{"invoiceNumber":"INV-1003","lineItems":[]}`))

	got, err := NewDraftRepo(store).Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got.LineItems, 1)
}

func TestHistoryRepo(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			repo := NewHistoryRepo(store)

			list, err := repo.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)

			first := savedInvoice("INV-1001", "Acme", "100")
			second := savedInvoice("INV-1002", "Globex", "250.75")
			require.NoError(t, repo.Prepend(ctx, first))
			require.NoError(t, repo.Prepend(ctx, second))

			list, err = repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "INV-1002", list[0].InvoiceNumber)
			assert.Equal(t, "INV-1001", list[1].InvoiceNumber)
			assert.True(t, list[0].Total.Equal(decimal.RequireFromString("250.75")))
			assert.True(t, list[0].Data.Total().Equal(list[0].Total.Decimal))

			got, err := repo.Get(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, "Acme", got.ClientName)

			_, err = repo.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)

			removed, err := repo.Delete(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, removed)

			removed, err = repo.Delete(ctx, second.ID)
			require.NoError(t, err)
			assert.True(t, removed)

			list, err = repo.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, first.ID, list[0].ID)

			require.NoError(t, repo.Clear(ctx))
			list, err = repo.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func savedInvoice(number, client, rate string) *domain.SavedInvoice {
	d := domain.NewInvoiceDraft(number, time.Now())
	d.ClientName = client
	d.LineItems[0].Description = "Work"
	d.LineItems[0].Rate = domain.MustNumber(rate)
	return domain.NewSavedInvoice(d, time.Now())
}
