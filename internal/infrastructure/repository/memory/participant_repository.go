package memory

import (
	"context"
	"sync"

	"github.com/veloleague/veloleague/internal/domain/game"
)

type ParticipantRepository struct {
	mu    sync.RWMutex
	items map[string]game.Participant
}

func NewParticipantRepository() *ParticipantRepository {
	return &ParticipantRepository{items: make(map[string]game.Participant)}
}

func (r *ParticipantRepository) Get(_ context.Context, gameID, userID string) (game.Participant, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	participant, ok := r.items[participantKey(gameID, userID)]
	if !ok {
		return game.Participant{}, false, nil
	}

	return participant, true, nil
}

func (r *ParticipantRepository) ListByGame(_ context.Context, gameID string) ([]game.Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Participant, 0)
	for _, participant := range r.items {
		if participant.GameID == gameID {
			out = append(out, participant)
		}
	}

	return out, nil
}

func (r *ParticipantRepository) Upsert(_ context.Context, participant game.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[participantKey(participant.GameID, participant.UserID)] = participant
	return nil
}

func participantKey(gameID, userID string) string {
	return gameID + "::" + userID
}
