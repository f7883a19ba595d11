package game

import "context"

// Repository stores game configuration.
type Repository interface {
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
	List(ctx context.Context) ([]Game, error)
}

// ParticipantRepository stores the derived per-user aggregates.
type ParticipantRepository interface {
	Get(ctx context.Context, gameID, userID string) (Participant, bool, error)
	ListByGame(ctx context.Context, gameID string) ([]Participant, error)
	Upsert(ctx context.Context, participant Participant) error
}
