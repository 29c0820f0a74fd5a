package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// DefaultStartNumber is used when no invoice number was ever committed
const DefaultStartNumber int64 = 1001

// CounterRepo stores the last committed invoice number as a decimal string
type CounterRepo struct {
	store KVStore
	base  int64
	mu    sync.Mutex
}

// NewCounterRepo creates a counter. base is the first number handed out.
func NewCounterRepo(store KVStore, base int64) *CounterRepo {
	if base < 1 {
		base = DefaultStartNumber
	}
	return &CounterRepo{store: store, base: base}
}

// Last returns the last committed number, 0 if none
func (r *CounterRepo) Last(ctx context.Context) (int64, error) {
	raw, ok, err := r.store.Get(ctx, KeyLastInvoiceNumber)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	// the browser version stored the number as a JSON string or bare number
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s %q: %w", KeyLastInvoiceNumber, raw, err)
	}
	return n, nil
}

// Peek returns the number the next invoice would get
func (r *CounterRepo) Peek(ctx context.Context) (int64, error) {
	last, err := r.Last(ctx)
	if err != nil {
		return 0, err
	}
	if last == 0 {
		return r.base, nil
	}
	return max(last+1, r.base), nil
}

// Commit records n as used. The counter never moves backwards.
func (r *CounterRepo) Commit(ctx context.Context, n int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	last, err := r.Last(ctx)
	if err != nil {
		return err
	}
	if n <= last {
		return nil
	}
	return r.store.Set(ctx, KeyLastInvoiceNumber, strconv.FormatInt(n, 10))
}

// Reset forgets the last committed number
func (r *CounterRepo) Reset(ctx context.Context) error {
	return r.store.Delete(ctx, KeyLastInvoiceNumber)
}
