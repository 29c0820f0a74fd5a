package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/repository"
)

// DraftDefaults configures freshly created drafts
type DraftDefaults struct {
	NumberPrefix string
	Tax          decimal.Decimal // percent
	Discount     decimal.Decimal // percent
}

// DraftService owns the single active invoice draft.
// Every mutation is persisted before it returns; on a storage error the
// in-memory draft is left unchanged.
type DraftService interface {
	// Current returns a copy of the active draft, loading or creating it on first use
	Current(ctx context.Context) (*domain.InvoiceDraft, error)

	SetField(ctx context.Context, field domain.DraftField, value string) (*domain.InvoiceDraft, error)

	// AddLineItem appends a default row and returns it
	AddLineItem(ctx context.Context) (*domain.LineItem, error)

	// UpdateLineItem changes one field of a row. Unknown ids are a no-op.
	UpdateLineItem(ctx context.Context, id string, field domain.LineItemField, value string) (*domain.InvoiceDraft, error)

	// RemoveLineItem deletes a row. The last remaining row is kept.
	RemoveLineItem(ctx context.Context, id string) (*domain.InvoiceDraft, error)

	// NewInvoice discards the active draft and starts over with the next invoice number
	NewInvoice(ctx context.Context) (*domain.InvoiceDraft, error)

	// LoadFromHistory replaces the active draft with a saved invoice, number included
	LoadFromHistory(ctx context.Context, id string) (*domain.InvoiceDraft, error)

	// Save requires a client name, freezes the draft into history and commits its number
	Save(ctx context.Context) (*domain.SavedInvoice, error)

	// Generate additionally requires one billable line item and marks the draft generated
	Generate(ctx context.Context) (*domain.SavedInvoice, error)
}

type draftService struct {
	drafts   repository.DraftRepository
	counter  repository.CounterRepository
	history  HistoryService
	defaults DraftDefaults
	now      func() time.Time
	logger   *slog.Logger

	mu    sync.Mutex
	draft *domain.InvoiceDraft
}

// NewDraftService creates a new draft service
func NewDraftService(
	drafts repository.DraftRepository,
	counter repository.CounterRepository,
	history HistoryService,
	defaults DraftDefaults,
	logger *slog.Logger,
) DraftService {
	if logger == nil {
		logger = slog.Default()
	}
	if defaults.NumberPrefix == "" {
		defaults.NumberPrefix = "INV-"
	}
	return &draftService{
		drafts:   drafts,
		counter:  counter,
		history:  history,
		defaults: defaults,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *draftService) Current(ctx context.Context) (*domain.InvoiceDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.active(ctx)
	if err != nil {
		return nil, err
	}
	return d.Clone(), nil
}

func (s *draftService) SetField(ctx context.Context, field domain.DraftField, value string) (*domain.InvoiceDraft, error) {
	return s.mutate(ctx, func(d *domain.InvoiceDraft) error {
		return d.Set(field, value)
	})
}

func (s *draftService) AddLineItem(ctx context.Context) (*domain.LineItem, error) {
	var added *domain.LineItem
	_, err := s.mutate(ctx, func(d *domain.InvoiceDraft) error {
		added = d.AddLineItem()
		return nil
	})
	if err != nil {
		return nil, err
	}
	c := *added
	return &c, nil
}

func (s *draftService) UpdateLineItem(ctx context.Context, id string, field domain.LineItemField, value string) (*domain.InvoiceDraft, error) {
	return s.mutate(ctx, func(d *domain.InvoiceDraft) error {
		d.UpdateLineItem(id, field, value)
		return nil
	})
}

func (s *draftService) RemoveLineItem(ctx context.Context, id string) (*domain.InvoiceDraft, error) {
	return s.mutate(ctx, func(d *domain.InvoiceDraft) error {
		d.RemoveLineItem(id)
		return nil
	})
}

func (s *draftService) NewInvoice(ctx context.Context) (*domain.InvoiceDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.drafts.Clear(ctx); err != nil {
		return nil, fmt.Errorf("failed to clear draft: %w", err)
	}
	fresh, err := s.fresh(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to persist draft: %w", err)
	}
	s.draft = fresh
	s.logger.Info("new invoice started", slog.String("invoice_number", fresh.InvoiceNumber))
	return fresh.Clone(), nil
}

func (s *draftService) LoadFromHistory(ctx context.Context, id string) (*domain.InvoiceDraft, error) {
	loaded, err := s.history.LoadAsDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.drafts.Save(ctx, loaded); err != nil {
		return nil, fmt.Errorf("failed to persist draft: %w", err)
	}
	s.draft = loaded
	s.logger.Info("invoice loaded from history",
		slog.String("id", id),
		slog.String("invoice_number", loaded.InvoiceNumber))
	return loaded.Clone(), nil
}

func (s *draftService) Save(ctx context.Context) (*domain.SavedInvoice, error) {
	return s.commit(ctx, false)
}

func (s *draftService) Generate(ctx context.Context) (*domain.SavedInvoice, error) {
	return s.commit(ctx, true)
}

func (s *draftService) commit(ctx context.Context, generate bool) (*domain.SavedInvoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.active(ctx)
	if err != nil {
		return nil, err
	}

	validate := d.ValidateForSave
	if generate {
		validate = d.ValidateForGenerate
	}
	if err := validate(); err != nil {
		return nil, err
	}

	next := d.Clone()
	if generate {
		next.Generated = true
	}

	saved, err := s.history.Save(ctx, next)
	if err != nil {
		return nil, err
	}

	// Drafts numbered outside the prefix scheme (edited stores, old data) leave the counter alone
	if n, ok := domain.ParseInvoiceNumber(s.defaults.NumberPrefix, next.InvoiceNumber); ok {
		if err := s.counter.Commit(ctx, n); err != nil {
			return nil, fmt.Errorf("failed to commit invoice number: %w", err)
		}
	}

	if generate {
		if err := s.drafts.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to persist draft: %w", err)
		}
		s.draft = next
	}
	return saved, nil
}

// mutate applies fn to a copy of the active draft, persists it, then swaps it in
func (s *draftService) mutate(ctx context.Context, fn func(*domain.InvoiceDraft) error) (*domain.InvoiceDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.active(ctx)
	if err != nil {
		return nil, err
	}

	next := d.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to persist draft: %w", err)
	}
	s.draft = next
	return next.Clone(), nil
}

// active returns the in-memory draft, loading it or creating a fresh one. Callers hold mu.
func (s *draftService) active(ctx context.Context) (*domain.InvoiceDraft, error) {
	if s.draft != nil {
		return s.draft, nil
	}

	stored, err := s.drafts.Load(ctx)
	if err != nil {
		// an unreadable slot is replaced rather than blocking the editor
		s.logger.Warn("discarding unreadable draft", slog.Any("error", err))
	}
	if stored != nil {
		s.draft = stored
		return s.draft, nil
	}

	fresh, err := s.fresh(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to persist draft: %w", err)
	}
	s.draft = fresh
	return s.draft, nil
}

func (s *draftService) fresh(ctx context.Context) (*domain.InvoiceDraft, error) {
	n, err := s.counter.Peek(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read invoice counter: %w", err)
	}
	d := domain.NewInvoiceDraft(domain.FormatInvoiceNumber(s.defaults.NumberPrefix, n), s.now())
	d.Tax = domain.NewNumber(s.defaults.Tax)
	d.Discount = domain.NewNumber(s.defaults.Discount)
	return d, nil
}
