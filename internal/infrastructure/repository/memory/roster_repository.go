package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/veloleague/veloleague/internal/domain/roster"
)

type RosterRepository struct {
	mu    sync.RWMutex
	items map[string]roster.Entry
}

func NewRosterRepository() *RosterRepository {
	return &RosterRepository{items: make(map[string]roster.Entry)}
}

func (r *RosterRepository) GetByID(_ context.Context, entryID string) (roster.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.items[entryID]
	if !ok {
		return roster.Entry{}, false, nil
	}

	return cloneEntry(entry), true, nil
}

func (r *RosterRepository) GetByOwnership(_ context.Context, gameID, userID, riderID string) (roster.Entry, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.items {
		if entry.GameID == gameID && entry.UserID == userID && entry.RiderID == riderID {
			return cloneEntry(entry), true, nil
		}
	}

	return roster.Entry{}, false, nil
}

func (r *RosterRepository) ListByUser(_ context.Context, gameID, userID string, activeOnly bool) ([]roster.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Entry, 0)
	for _, entry := range r.items {
		if entry.GameID != gameID || entry.UserID != userID {
			continue
		}
		if activeOnly && !entry.Active {
			continue
		}
		out = append(out, cloneEntry(entry))
	}

	return out, nil
}

func (r *RosterRepository) ListByGame(_ context.Context, gameID string, activeOnly bool) ([]roster.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]roster.Entry, 0)
	for _, entry := range r.items {
		if entry.GameID != gameID {
			continue
		}
		if activeOnly && !entry.Active {
			continue
		}
		out = append(out, cloneEntry(entry))
	}

	return out, nil
}

func (r *RosterRepository) Insert(_ context.Context, entry roster.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[entry.ID]; exists {
		return fmt.Errorf("roster entry %s already exists", entry.ID)
	}
	r.items[entry.ID] = cloneEntry(entry)

	return nil
}

func (r *RosterRepository) Update(_ context.Context, entry roster.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[entry.ID]; !ok {
		return fmt.Errorf("roster entry %s not found", entry.ID)
	}
	r.items[entry.ID] = cloneEntry(entry)

	return nil
}

func (r *RosterRepository) Deactivate(_ context.Context, entryID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.items[entryID]
	if !ok {
		return fmt.Errorf("roster entry %s not found", entryID)
	}
	entry.Active = false
	r.items[entryID] = entry

	return nil
}

func cloneEntry(e roster.Entry) roster.Entry {
	copied := e
	copied.PointsBreakdown = append([]roster.PointsEvent(nil), e.PointsBreakdown...)
	return copied
}
