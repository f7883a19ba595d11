package game

import "testing"

func TestGameValidateBasic(t *testing.T) {
	valid := Game{
		ID:            "game-1",
		Name:          "Tour 2026",
		Season:        2026,
		Type:          TypeClassic,
		BudgetCap:     100,
		MinRosterSize: 4,
		MaxRosterSize: 9,
	}
	if err := valid.ValidateBasic(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	tests := []struct {
		name string
		game Game
	}{
		{"missing id", Game{BudgetCap: 100, MaxRosterSize: 9}},
		{"zero budget", Game{ID: "g", MaxRosterSize: 9}},
		{"zero max roster", Game{ID: "g", BudgetCap: 100}},
		{"min above max", Game{ID: "g", BudgetCap: 100, MinRosterSize: 10, MaxRosterSize: 9}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.game.ValidateBasic(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestStageCounts(t *testing.T) {
	unrestricted := Game{ID: "g", BudgetCap: 100, MaxRosterSize: 9}
	if !unrestricted.StageCounts("tour-de-france", 12) {
		t.Fatal("games without counting races score every stage")
	}

	restricted := Game{
		ID:            "g",
		BudgetCap:     100,
		MaxRosterSize: 9,
		CountingRaces: []CountingRace{
			{RaceSlug: "tour-de-france", Stages: []int{1, 9, 21}},
			{RaceSlug: "vuelta-a-espana"},
		},
	}

	if !restricted.StageCounts("tour-de-france", 9) {
		t.Fatal("listed stage of a counting race must score")
	}
	if restricted.StageCounts("tour-de-france", 10) {
		t.Fatal("unlisted stage of a restricted race must not score")
	}
	if !restricted.StageCounts("vuelta-a-espana", 15) {
		t.Fatal("counting race without a stage list scores every stage")
	}
	if restricted.StageCounts("giro-d-italia", 1) {
		t.Fatal("race outside the counting set must not score")
	}
}
