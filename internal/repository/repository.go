package repository

import (
	"context"
	"errors"

	"github.com/andy/invoicer/internal/domain"
)

// Storage keys. Values are JSON, compatible with the browser version's localStorage layout.
const (
	KeyLastInvoiceNumber  = "lastInvoiceNumber"
	KeyCurrentInvoiceData = "currentInvoiceData"
	KeyInvoiceHistory     = "invoiceHistory"
)

// ErrNotFound is returned when a history entry does not exist
var ErrNotFound = errors.New("not found")

// KVStore is a durable string-keyed slot store
type KVStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// CounterRepository manages the last committed invoice number
type CounterRepository interface {
	Last(ctx context.Context) (int64, error)  // 0 when nothing was committed yet
	Peek(ctx context.Context) (int64, error)  // next number, never persisted
	Commit(ctx context.Context, n int64) error // stores max(last, n)
}

// DraftRepository manages the single active draft slot
type DraftRepository interface {
	Load(ctx context.Context) (*domain.InvoiceDraft, error) // Returns nil if no draft is stored
	Save(ctx context.Context, draft *domain.InvoiceDraft) error
	Clear(ctx context.Context) error
}

// HistoryRepository manages saved invoices, newest first
type HistoryRepository interface {
	List(ctx context.Context) ([]*domain.SavedInvoice, error)
	Get(ctx context.Context, id string) (*domain.SavedInvoice, error)
	Prepend(ctx context.Context, inv *domain.SavedInvoice) error
	Delete(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
}
