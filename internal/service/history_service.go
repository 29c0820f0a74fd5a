package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/repository"
)

var ErrInvoiceNotFound = errors.New("saved invoice not found")

// HistoryService manages the durable list of saved invoices
type HistoryService interface {
	// Save freezes a snapshot of the draft at the front of the history
	Save(ctx context.Context, draft *domain.InvoiceDraft) (*domain.SavedInvoice, error)

	// List returns saved invoices, newest first
	List(ctx context.Context) ([]*domain.SavedInvoice, error)

	Get(ctx context.Context, id string) (*domain.SavedInvoice, error)

	// Delete removes an entry. Unknown ids are ignored.
	Delete(ctx context.Context, id string) error

	// LoadAsDraft returns a copy of the saved draft payload
	LoadAsDraft(ctx context.Context, id string) (*domain.InvoiceDraft, error)

	// Clear removes every saved invoice
	Clear(ctx context.Context) error
}

type historyService struct {
	repo   repository.HistoryRepository
	now    func() time.Time
	logger *slog.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(repo repository.HistoryRepository, logger *slog.Logger) HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &historyService{
		repo:   repo,
		now:    time.Now,
		logger: logger,
	}
}

func (s *historyService) Save(ctx context.Context, draft *domain.InvoiceDraft) (*domain.SavedInvoice, error) {
	if err := draft.ValidateForSave(); err != nil {
		return nil, err
	}

	saved := domain.NewSavedInvoice(draft, s.now())
	if err := s.repo.Prepend(ctx, saved); err != nil {
		return nil, fmt.Errorf("failed to save invoice %s: %w", saved.InvoiceNumber, err)
	}

	s.logger.Info("invoice saved to history",
		slog.String("id", saved.ID),
		slog.String("invoice_number", saved.InvoiceNumber),
		slog.String("total", saved.Total.StringFixed(2)))
	return saved, nil
}

func (s *historyService) List(ctx context.Context) ([]*domain.SavedInvoice, error) {
	return s.repo.List(ctx)
}

func (s *historyService) Get(ctx context.Context, id string) (*domain.SavedInvoice, error) {
	saved, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)
		}
		return nil, err
	}
	return saved, nil
}

func (s *historyService) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete invoice %s: %w", id, err)
	}
	if removed {
		s.logger.Info("invoice removed from history", slog.String("id", id))
	}
	return nil
}

func (s *historyService) LoadAsDraft(ctx context.Context, id string) (*domain.InvoiceDraft, error) {
	saved, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if saved.Data == nil {
		return nil, fmt.Errorf("saved invoice %s has no draft data", id)
	}
	draft := saved.Data.Clone()
	draft.Normalize()
	return draft, nil
}

func (s *historyService) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	s.logger.Info("history cleared")
	return nil
}
