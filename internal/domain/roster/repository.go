package roster

import "context"

// Repository describes roster persistence needs from use cases. Writes
// that touch one entry's breakdown must be serialized per rider by the
// caller; the repository only guarantees per-call atomicity.
type Repository interface {
	GetByID(ctx context.Context, entryID string) (Entry, bool, error)
	// GetByOwnership looks up an entry by its natural key regardless of
	// active flag; settlement uses it as its idempotence check.
	GetByOwnership(ctx context.Context, gameID, userID, riderID string) (Entry, bool, error)
	ListByUser(ctx context.Context, gameID, userID string, activeOnly bool) ([]Entry, error)
	ListByGame(ctx context.Context, gameID string, activeOnly bool) ([]Entry, error)
	Insert(ctx context.Context, entry Entry) error
	Update(ctx context.Context, entry Entry) error
	Deactivate(ctx context.Context, entryID string) error
}
