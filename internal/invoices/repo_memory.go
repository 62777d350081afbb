package invoices

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Invoice

	// ListErr, if set, makes ListPending fail.
	ListErr error
	// MarkErr, if set, makes MarkUploaded fail.
	MarkErr error

	markCalls map[string]int
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data:      make(map[string]Invoice),
		markCalls: make(map[string]int),
	}
}

// Put stores an invoice row.
func (r *MemoryRepo) Put(inv Invoice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv.Status == "" {
		inv.Status = StatusPending
	}
	r.data[inv.ID] = inv
}

// Get returns an invoice row by id.
func (r *MemoryRepo) Get(id string) (Invoice, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.data[id]
	return inv, ok
}

// ListPending returns pending rows, oldest first.
func (r *MemoryRepo) ListPending(ctx context.Context) ([]Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.ListErr != nil {
		return nil, r.ListErr
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Invoice
	for _, inv := range r.data {
		if inv.Status == StatusPending {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// MarkUploaded flips a pending row to uploaded.
func (r *MemoryRepo) MarkUploaded(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.MarkErr != nil {
		return r.MarkErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.markCalls[id]++
	inv, ok := r.data[id]
	if !ok || inv.Status != StatusPending {
		return ErrNotFound
	}
	inv.Status = StatusUploaded
	r.data[id] = inv
	return nil
}

// MarkCalls reports how many times MarkUploaded was invoked for a row.
func (r *MemoryRepo) MarkCalls(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.markCalls[id]
}
