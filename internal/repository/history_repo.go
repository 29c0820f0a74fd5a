package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/andy/invoicer/internal/domain"
)

// HistoryRepo stores saved invoices as one JSON array under invoiceHistory, newest first
type HistoryRepo struct {
	store KVStore
	mu    sync.Mutex
}

func NewHistoryRepo(store KVStore) *HistoryRepo {
	return &HistoryRepo{store: store}
}

// List returns all saved invoices, newest first
func (r *HistoryRepo) List(ctx context.Context) ([]*domain.SavedInvoice, error) {
	var list []*domain.SavedInvoice
	if _, err := loadJSON(ctx, r.store, KeyInvoiceHistory, &list); err != nil {
		return nil, err
	}
	for _, inv := range list {
		if inv.Data != nil {
			inv.Data.Normalize()
		}
	}
	return list, nil
}

// Get returns the entry with the given id
func (r *HistoryRepo) Get(ctx context.Context, id string) (*domain.SavedInvoice, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, inv := range list {
		if inv.ID == id {
			return inv, nil
		}
	}
	return nil, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
}

// Prepend adds inv at the front of the list
func (r *HistoryRepo) Prepend(ctx context.Context, inv *domain.SavedInvoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	list = append([]*domain.SavedInvoice{inv}, list...)
	return storeJSON(ctx, r.store, KeyInvoiceHistory, list)
}

// Delete removes the entry with the given id. Returns false if it did not exist.
func (r *HistoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	kept := list[:0]
	for _, inv := range list {
		if inv.ID != id {
			kept = append(kept, inv)
		}
	}
	if len(kept) == len(list) {
		return false, nil
	}
	return true, storeJSON(ctx, r.store, KeyInvoiceHistory, kept)
}

// Clear removes all saved invoices
func (r *HistoryRepo) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Delete(ctx, KeyInvoiceHistory)
}
