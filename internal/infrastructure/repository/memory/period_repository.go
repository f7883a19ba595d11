package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/veloleague/veloleague/internal/domain/auction"
)

type PeriodRepository struct {
	mu    sync.RWMutex
	items map[string]auction.Period
}

func NewPeriodRepository(periods []auction.Period) *PeriodRepository {
	items := make(map[string]auction.Period, len(periods))
	for _, p := range periods {
		items[periodKey(p.GameID, p.Name)] = p
	}

	return &PeriodRepository{items: items}
}

func (r *PeriodRepository) GetByGameAndName(_ context.Context, gameID, name string) (auction.Period, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	period, ok := r.items[periodKey(gameID, name)]
	if !ok {
		return auction.Period{}, false, nil
	}

	return period, true, nil
}

func (r *PeriodRepository) GetOpenByGame(_ context.Context, gameID string, at time.Time) (auction.Period, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, period := range r.items {
		if period.GameID != gameID || period.Status != auction.PeriodStatusOpen {
			continue
		}
		if period.Contains(at) {
			return period, true, nil
		}
	}

	return auction.Period{}, false, nil
}

func (r *PeriodRepository) Upsert(_ context.Context, period auction.Period) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[periodKey(period.GameID, period.Name)] = period
	return nil
}

func (r *PeriodRepository) UpdateStatus(_ context.Context, gameID, name string, status auction.PeriodStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := periodKey(gameID, name)
	period, ok := r.items[key]
	if !ok {
		return fmt.Errorf("period %s not found for game %s", name, gameID)
	}
	period.Status = status
	r.items[key] = period

	return nil
}

func periodKey(gameID, name string) string {
	return gameID + "::" + name
}
