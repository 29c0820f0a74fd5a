package export

import (
	"sort"
	"sync"
	"time"
)

type State string

const (
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Status is the latest user-facing state of one export operation
type Status struct {
	Operation string
	State     State
	Message   string
	Path      string
	UpdatedAt time.Time

	gen uint64
}

// StatusBoard keeps one status per operation name. Starting an operation
// again replaces its status; a finished run that has since been superseded
// does not overwrite the newer one.
type StatusBoard struct {
	mu       sync.RWMutex
	statuses map[string]Status
	gens     map[string]uint64
	now      func() time.Time
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{
		statuses: make(map[string]Status),
		gens:     make(map[string]uint64),
		now:      time.Now,
	}
}

// begin marks op as loading and returns the generation to finish with
func (b *StatusBoard) begin(op, message string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.gens[op]++
	gen := b.gens[op]
	b.statuses[op] = Status{Operation: op, State: StateLoading, Message: message, UpdatedAt: b.now(), gen: gen}
	return gen
}

// finish records the outcome unless a newer run of op has started
func (b *StatusBoard) finish(op string, gen uint64, state State, message, path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.gens[op] != gen {
		return false
	}
	b.statuses[op] = Status{Operation: op, State: state, Message: message, Path: path, UpdatedAt: b.now(), gen: gen}
	return true
}

// Get returns the status of one operation
func (b *StatusBoard) Get(op string) (Status, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.statuses[op]
	return s, ok
}

// All returns every status ordered by operation name
func (b *StatusBoard) All() []Status {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Status, 0, len(b.statuses))
	for _, s := range b.statuses {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}
