package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/repository"
)

// failingStore wraps a MemStore and fails writes to one key when armed
type failingStore struct {
	*repository.MemStore
	failKey string
}

var errDiskFull = errors.New("disk full")

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if key == f.failKey {
		return errDiskFull
	}
	return f.MemStore.Set(ctx, key, value)
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	store   *failingStore
	counter *repository.CounterRepo
	drafts  *repository.DraftRepo
	history HistoryService
	svc     *draftService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &failingStore{MemStore: repository.NewMemStore()}

	counter := repository.NewCounterRepo(store, repository.DefaultStartNumber)
	drafts := repository.NewDraftRepo(store)
	history := NewHistoryService(repository.NewHistoryRepo(store), logger)
	svc := NewDraftService(drafts, counter, history, DraftDefaults{NumberPrefix: "INV-"}, logger).(*draftService)
	svc.now = func() time.Time { return time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC) }

	return &fixture{
		t:       t,
		ctx:     context.Background(),
		store:   store,
		counter: counter,
		drafts:  drafts,
		history: history,
		svc:     svc,
	}
}

func (f *fixture) current() *domain.InvoiceDraft {
	f.t.Helper()
	d, err := f.svc.Current(f.ctx)
	require.NoError(f.t, err)
	return d
}

func (f *fixture) set(field domain.DraftField, value string) *domain.InvoiceDraft {
	f.t.Helper()
	d, err := f.svc.SetField(f.ctx, field, value)
	require.NoError(f.t, err)
	return d
}

func (f *fixture) updateItem(id string, field domain.LineItemField, value string) *domain.InvoiceDraft {
	f.t.Helper()
	d, err := f.svc.UpdateLineItem(f.ctx, id, field, value)
	require.NoError(f.t, err)
	return d
}

func (f *fixture) lastCommitted() int64 {
	f.t.Helper()
	last, err := f.counter.Last(f.ctx)
	require.NoError(f.t, err)
	return last
}

func (f *fixture) historyLen() int {
	f.t.Helper()
	list, err := f.history.List(f.ctx)
	require.NoError(f.t, err)
	return len(list)
}

func mustDecimal(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCurrent_CreatesDefaultDraft(t *testing.T) {
	f := newFixture(t)

	d := f.current()
	assert.Equal(t, "INV-1001", d.InvoiceNumber)
	assert.Len(t, d.LineItems, 1)
	assert.Equal(t, "2026-04-02", d.Date.String())

	// the default draft is persisted but the counter is not advanced
	stored, err := f.drafts.Load(f.ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "INV-1001", stored.InvoiceNumber)
	assert.Zero(t, f.lastCommitted())
}

func TestCurrent_LoadsStoredDraft(t *testing.T) {
	f := newFixture(t)

	stored := domain.NewInvoiceDraft("INV-1042", time.Now())
	stored.ClientName = "Acme"
	require.NoError(t, f.drafts.Save(f.ctx, stored))

	d := f.current()
	assert.Equal(t, "INV-1042", d.InvoiceNumber)
	assert.Equal(t, "Acme", d.ClientName)
}

func TestMutationsArePersisted(t *testing.T) {
	f := newFixture(t)

	f.set(domain.FieldClientName, "Acme")
	first := f.current().LineItems[0].ID
	f.updateItem(first, domain.LineItemDescription, "Design")
	f.updateItem(first, domain.LineItemQuantity, "2")
	f.updateItem(first, domain.LineItemRate, "50")

	added, err := f.svc.AddLineItem(f.ctx)
	require.NoError(t, err)
	f.updateItem(added.ID, domain.LineItemDescription, "Build")
	f.updateItem(added.ID, domain.LineItemRate, "100")
	f.set(domain.FieldTax, "10")
	d := f.set(domain.FieldDiscount, "5")

	assert.True(t, d.Total().Equal(mustDecimal("210")), "total = %s", d.Total())

	// a fresh service over the same store sees the same draft
	other := NewDraftService(f.drafts, f.counter, f.history, DraftDefaults{}, nil)
	reloaded, err := other.Current(f.ctx)
	require.NoError(t, err)
	assert.True(t, reloaded.Total().Equal(mustDecimal("210")), "persisted total = %s", reloaded.Total())
}

func TestRemoveLineItem_KeepsLastRow(t *testing.T) {
	f := newFixture(t)

	d, err := f.svc.RemoveLineItem(f.ctx, f.current().LineItems[0].ID)
	require.NoError(t, err)
	assert.Len(t, d.LineItems, 1)
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	f := newFixture(t)

	d := f.current()
	d.ClientName = "Mutated outside"
	d.LineItems[0].Description = "Mutated outside"

	again := f.current()
	assert.Empty(t, again.ClientName)
	assert.Empty(t, again.LineItems[0].Description)
}

func TestSetField_InvalidDateLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SetField(f.ctx, domain.FieldDate, "not a date")
	require.Error(t, err)
	assert.Equal(t, "2026-04-02", f.current().Date.String())
}

func TestMutation_StorageFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	f.current()

	f.store.failKey = repository.KeyCurrentInvoiceData
	_, err := f.svc.SetField(f.ctx, domain.FieldClientName, "Acme")
	require.ErrorIs(t, err, errDiskFull)

	f.store.failKey = ""
	assert.Empty(t, f.current().ClientName)
}

func TestSave_RequiresClientName(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Save(f.ctx)
	require.ErrorIs(t, err, domain.ErrClientNameRequired)
	assert.Zero(t, f.historyLen())
	assert.Zero(t, f.lastCommitted())
}

func TestGenerate_RequiresBillableItem(t *testing.T) {
	f := newFixture(t)

	f.set(domain.FieldClientName, "Acme")
	_, err := f.svc.Generate(f.ctx)
	require.ErrorIs(t, err, domain.ErrNoBillableItem)
	assert.Zero(t, f.historyLen())
}

func TestGenerate_FreezesAndCommits(t *testing.T) {
	f := newFixture(t)

	f.set(domain.FieldClientName, "Acme")
	id := f.current().LineItems[0].ID
	f.updateItem(id, domain.LineItemDescription, "Audit")
	f.updateItem(id, domain.LineItemRate, "300")

	saved, err := f.svc.Generate(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-1001", saved.InvoiceNumber)
	assert.True(t, saved.Total.Equal(mustDecimal("300")), "saved total = %s", saved.Total)
	assert.True(t, saved.Data.Generated)

	assert.True(t, f.current().Generated)
	assert.Equal(t, int64(1001), f.lastCommitted())

	// later edits do not touch the frozen snapshot
	f.updateItem(id, domain.LineItemRate, "999")
	got, err := f.history.Get(f.ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, got.Total.Equal(mustDecimal("300")), "frozen total = %s", got.Total)
	assert.True(t, got.Data.Total().Equal(mustDecimal("300")), "frozen payload total = %s", got.Data.Total())
}

func TestNewInvoice_NumbersNeverCollide(t *testing.T) {
	f := newFixture(t)

	// discarding an unsaved draft does not skip a number
	d, err := f.svc.NewInvoice(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-1001", d.InvoiceNumber)

	f.set(domain.FieldClientName, "Acme")
	_, err = f.svc.Save(f.ctx)
	require.NoError(t, err)

	d, err = f.svc.NewInvoice(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-1002", d.InvoiceNumber)
	assert.Empty(t, d.ClientName)
	assert.False(t, d.Generated)
	assert.Len(t, d.LineItems, 1)
}

func TestLoadFromHistory_ReplacesDraft(t *testing.T) {
	f := newFixture(t)

	f.set(domain.FieldClientName, "Acme")
	f.set(domain.FieldTax, "10")
	id := f.current().LineItems[0].ID
	f.updateItem(id, domain.LineItemRate, "0.1")
	f.updateItem(id, domain.LineItemQuantity, "3")
	saved, err := f.svc.Save(f.ctx)
	require.NoError(t, err)

	_, err = f.svc.NewInvoice(f.ctx)
	require.NoError(t, err)
	f.set(domain.FieldClientName, "Globex")

	loaded, err := f.svc.LoadFromHistory(f.ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "INV-1001", loaded.InvoiceNumber)
	assert.Equal(t, "Acme", loaded.ClientName)
	assert.True(t, loaded.Total().Equal(saved.Total.Decimal),
		"reloaded total %s, frozen total %s", loaded.Total(), saved.Total)

	stored, err := f.drafts.Load(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.ClientName)

	_, err = f.svc.LoadFromHistory(f.ctx, "missing")
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestHistoryService_DeleteUnknownIsNoop(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.history.Delete(f.ctx, "missing"))
}

func TestHistoryService_SaveValidates(t *testing.T) {
	f := newFixture(t)

	d := domain.NewInvoiceDraft("INV-1001", time.Now())
	_, err := f.history.Save(f.ctx, d)
	assert.ErrorIs(t, err, domain.ErrClientNameRequired)
}

func TestSave_HistoryFailureDoesNotCommitCounter(t *testing.T) {
	f := newFixture(t)

	f.set(domain.FieldClientName, "Acme")
	f.store.failKey = repository.KeyInvoiceHistory
	_, err := f.svc.Save(f.ctx)
	require.ErrorIs(t, err, errDiskFull)
	assert.Zero(t, f.lastCommitted())
}
