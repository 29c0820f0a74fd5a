package repository

import (
	"context"

	"github.com/andy/invoicer/internal/domain"
)

// DraftRepo persists the active draft under currentInvoiceData
type DraftRepo struct {
	store KVStore
}

func NewDraftRepo(store KVStore) *DraftRepo {
	return &DraftRepo{store: store}
}

// Load returns the stored draft, or nil if none is stored
func (r *DraftRepo) Load(ctx context.Context) (*domain.InvoiceDraft, error) {
	var draft domain.InvoiceDraft
	ok, err := loadJSON(ctx, r.store, KeyCurrentInvoiceData, &draft)
	if err != nil || !ok {
		return nil, err
	}
	draft.Normalize()
	return &draft, nil
}

func (r *DraftRepo) Save(ctx context.Context, draft *domain.InvoiceDraft) error {
	return storeJSON(ctx, r.store, KeyCurrentInvoiceData, draft)
}

func (r *DraftRepo) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, KeyCurrentInvoiceData)
}
