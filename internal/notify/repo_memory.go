package notify

import (
	"context"
	"sync"
)

// MemoryProfileRepo is an in-memory implementation of ProfileRepo.
type MemoryProfileRepo struct {
	mu   sync.RWMutex
	data map[string]Profile
}

// NewMemoryProfileRepo constructs a MemoryProfileRepo.
func NewMemoryProfileRepo() *MemoryProfileRepo {
	return &MemoryProfileRepo{data: make(map[string]Profile)}
}

// Put stores a profile.
func (r *MemoryProfileRepo) Put(profile Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[profile.CustomerID] = profile
}

// GetByCustomer returns the SMS profile for a customer.
func (r *MemoryProfileRepo) GetByCustomer(ctx context.Context, customerID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.data[customerID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return profile, nil
}

// MemoryLogRepo is an in-memory implementation of LogRepo.
type MemoryLogRepo struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewMemoryLogRepo constructs a MemoryLogRepo.
func NewMemoryLogRepo() *MemoryLogRepo {
	return &MemoryLogRepo{}
}

// Append stores a log entry.
func (r *MemoryLogRepo) Append(ctx context.Context, entry LogEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// Entries returns a copy of the appended entries.
func (r *MemoryLogRepo) Entries() []LogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}
