package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/veloleague/veloleague/internal/domain/race"
)

// StageResultFeed serves canned stage results. It stands in for the
// scraped feed in tests and in the local wiring.
type StageResultFeed struct {
	mu    sync.RWMutex
	items map[string]race.StageResult
}

func NewStageResultFeed(results []race.StageResult) *StageResultFeed {
	items := make(map[string]race.StageResult, len(results))
	for _, result := range results {
		items[stageKey(result.RaceSlug, result.Stage, result.Year)] = result
	}

	return &StageResultFeed{items: items}
}

func (f *StageResultFeed) GetStageResult(_ context.Context, raceSlug string, stage, year int) (race.StageResult, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	result, ok := f.items[stageKey(raceSlug, stage, year)]
	if !ok {
		return race.StageResult{}, false, nil
	}

	return cloneStageResult(result), true, nil
}

// Put replaces the stored result for the stage, matching how a corrected
// scrape overwrites the original.
func (f *StageResultFeed) Put(result race.StageResult) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items[stageKey(result.RaceSlug, result.Stage, result.Year)] = result
}

func stageKey(raceSlug string, stage, year int) string {
	return raceSlug + "::" + strconv.Itoa(stage) + "::" + strconv.Itoa(year)
}

func cloneStageResult(r race.StageResult) race.StageResult {
	copied := r
	copied.Combativity = append([]string(nil), r.Combativity...)
	if r.Rankings != nil {
		copied.Rankings = make(map[race.Classification][]race.Row, len(r.Rankings))
		for c, rows := range r.Rankings {
			copied.Rankings[c] = append([]race.Row(nil), rows...)
		}
	}
	return copied
}
