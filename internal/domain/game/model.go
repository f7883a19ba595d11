package game

import "fmt"

// Type selects the scoring variant for a game.
type Type string

const (
	// TypeClassic scores stage results through the classification tables.
	TypeClassic Type = "classic"
	// TypeMarginalGains scores season-over-season ranking improvement.
	TypeMarginalGains Type = "marginal_gains"
)

// CountingRace restricts scoring to one race, optionally to specific
// stages of it. An empty Stages slice counts every stage.
type CountingRace struct {
	RaceSlug string
	Stages   []int
}

// Game holds the configuration the core reads: caps, scoring variant and
// the optional counting-races restriction.
type Game struct {
	ID            string
	Name          string
	Season        int
	Type          Type
	BudgetCap     int64
	MinRosterSize int
	MaxRosterSize int
	CountingRaces []CountingRace
}

func (g Game) ValidateBasic() error {
	if g.ID == "" {
		return fmt.Errorf("game id is required")
	}
	if g.BudgetCap <= 0 {
		return fmt.Errorf("budget cap must be greater than zero")
	}
	if g.MaxRosterSize <= 0 {
		return fmt.Errorf("max roster size must be greater than zero")
	}
	if g.MinRosterSize < 0 || g.MinRosterSize > g.MaxRosterSize {
		return fmt.Errorf("min roster size must be between 0 and max roster size")
	}
	return nil
}

// StageCounts reports whether (raceSlug, stage) scores in this game.
// Games without a restriction count every stage of every race.
func (g Game) StageCounts(raceSlug string, stage int) bool {
	if len(g.CountingRaces) == 0 {
		return true
	}
	for _, cr := range g.CountingRaces {
		if cr.RaceSlug != raceSlug {
			continue
		}
		if len(cr.Stages) == 0 {
			return true
		}
		for _, s := range cr.Stages {
			if s == stage {
				return true
			}
		}
	}
	return false
}

// Participant is the derived aggregate per (game, user). SpentBudget,
// RosterSize and TotalPoints must always equal the sums over the user's
// active roster entries; they are recomputed from source records, never
// patched incrementally.
type Participant struct {
	GameID         string
	UserID         string
	SpentBudget    int64
	RosterSize     int
	RosterComplete bool
	TotalPoints    int
	Ranking        int
}
