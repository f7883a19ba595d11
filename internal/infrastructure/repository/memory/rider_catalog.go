package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/veloleague/veloleague/internal/domain/rider"
)

type RiderCatalog struct {
	mu       sync.RWMutex
	riders   map[string]rider.Rider
	rankings map[string]rider.SeasonRanking
}

func NewRiderCatalog(riders []rider.Rider, rankings []rider.SeasonRanking) *RiderCatalog {
	riderIndex := make(map[string]rider.Rider, len(riders))
	for _, r := range riders {
		riderIndex[r.NameID] = r
	}
	rankingIndex := make(map[string]rider.SeasonRanking, len(rankings))
	for _, ranking := range rankings {
		rankingIndex[rankingKey(ranking.RiderID, ranking.Season)] = ranking
	}

	return &RiderCatalog{riders: riderIndex, rankings: rankingIndex}
}

func (c *RiderCatalog) GetByID(_ context.Context, riderID string) (rider.Rider, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.riders[riderID]
	if !ok {
		return rider.Rider{}, false, nil
	}

	return r, true, nil
}

func (c *RiderCatalog) ListByIDs(_ context.Context, riderIDs []string) ([]rider.Rider, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]rider.Rider, 0, len(riderIDs))
	for _, id := range riderIDs {
		r, ok := c.riders[id]
		if !ok {
			continue
		}
		out = append(out, r)
	}

	return out, nil
}

func (c *RiderCatalog) GetSeasonRanking(_ context.Context, riderID string, season int) (rider.SeasonRanking, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ranking, ok := c.rankings[rankingKey(riderID, season)]
	if !ok {
		return rider.SeasonRanking{}, false, nil
	}

	return ranking, true, nil
}

func rankingKey(riderID string, season int) string {
	return riderID + "::" + strconv.Itoa(season)
}
