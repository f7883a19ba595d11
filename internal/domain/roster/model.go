package roster

import (
	"fmt"
	"time"
)

// AcquisitionType records how a roster entry came to exist.
type AcquisitionType string

const (
	AcquisitionAuction AcquisitionType = "auction"
	AcquisitionAdmin   AcquisitionType = "admin"
)

// PointsEvent is one scoring record per (rider, race, stage). The pair
// (RaceSlug, Stage) keys the event inside an entry's breakdown; stage
// recalculation replaces the event rather than appending a second one.
type PointsEvent struct {
	RaceSlug     string
	Stage        int
	Placing      int
	GC           int
	PointsClass  int
	Mountains    int
	Youth        int
	TeamClass    int
	Combativity  int
	Total        int
	CalculatedAt time.Time
}

// Entry is one rider owned by a participant. Entries are created only by
// settlement and leave the roster through soft-deactivation; history is
// never hard-deleted.
type Entry struct {
	ID              string
	GameID          string
	UserID          string
	RiderID         string
	PricePaid       int64
	AcquiredAt      time.Time
	AcquisitionType AcquisitionType
	Active          bool
	PointsScored    int
	PointsBreakdown []PointsEvent
}

func (e Entry) ValidateBasic() error {
	if e.GameID == "" {
		return fmt.Errorf("game id is required")
	}
	if e.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if e.RiderID == "" {
		return fmt.Errorf("rider id is required")
	}
	if e.PricePaid < 0 {
		return fmt.Errorf("price paid cannot be negative")
	}
	return nil
}

// ReplaceEvent swaps the event keyed by (raceSlug, stage) for the given
// one, appending when absent, and returns the recomputed points total
// over the whole breakdown.
func (e *Entry) ReplaceEvent(event PointsEvent) int {
	replaced := false
	for i := range e.PointsBreakdown {
		if e.PointsBreakdown[i].RaceSlug == event.RaceSlug && e.PointsBreakdown[i].Stage == event.Stage {
			e.PointsBreakdown[i] = event
			replaced = true
			break
		}
	}
	if !replaced {
		e.PointsBreakdown = append(e.PointsBreakdown, event)
	}

	total := 0
	for _, item := range e.PointsBreakdown {
		total += item.Total
	}
	e.PointsScored = total
	return total
}

// RemoveEvent drops the event keyed by (raceSlug, stage) when present and
// recomputes the points total.
func (e *Entry) RemoveEvent(raceSlug string, stage int) {
	kept := e.PointsBreakdown[:0]
	for _, item := range e.PointsBreakdown {
		if item.RaceSlug == raceSlug && item.Stage == stage {
			continue
		}
		kept = append(kept, item)
	}
	e.PointsBreakdown = kept

	total := 0
	for _, item := range e.PointsBreakdown {
		total += item.Total
	}
	e.PointsScored = total
}
