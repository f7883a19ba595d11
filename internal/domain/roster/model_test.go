package roster

import (
	"testing"
	"time"
)

func TestReplaceEventAppendsAndReplaces(t *testing.T) {
	entry := Entry{
		ID:      "entry-1",
		GameID:  "game-1",
		UserID:  "user-1",
		RiderID: "jonas-vingegaard",
		Active:  true,
	}

	total := entry.ReplaceEvent(PointsEvent{
		RaceSlug:     "tour-de-france",
		Stage:        5,
		Placing:      50,
		Total:        50,
		CalculatedAt: time.Now().UTC(),
	})
	if total != 50 {
		t.Fatalf("expected total 50 after first event, got %d", total)
	}

	total = entry.ReplaceEvent(PointsEvent{
		RaceSlug:     "tour-de-france",
		Stage:        6,
		Placing:      30,
		GC:           20,
		Total:        50,
		CalculatedAt: time.Now().UTC(),
	})
	if total != 100 {
		t.Fatalf("expected total 100 after second stage, got %d", total)
	}

	// Recalculating stage 5 replaces the event instead of double counting.
	total = entry.ReplaceEvent(PointsEvent{
		RaceSlug:     "tour-de-france",
		Stage:        5,
		Placing:      20,
		Total:        20,
		CalculatedAt: time.Now().UTC(),
	})
	if total != 70 {
		t.Fatalf("expected total 70 after recalculation, got %d", total)
	}
	if len(entry.PointsBreakdown) != 2 {
		t.Fatalf("expected 2 breakdown events, got %d", len(entry.PointsBreakdown))
	}
	if entry.PointsScored != 70 {
		t.Fatalf("expected points scored 70, got %d", entry.PointsScored)
	}
}

func TestReplaceEventKeysByRaceAndStage(t *testing.T) {
	entry := Entry{GameID: "game-1", UserID: "user-1", RiderID: "remco-evenepoel"}

	entry.ReplaceEvent(PointsEvent{RaceSlug: "tour-de-france", Stage: 1, Total: 10})
	total := entry.ReplaceEvent(PointsEvent{RaceSlug: "vuelta-a-espana", Stage: 1, Total: 25})

	if total != 35 {
		t.Fatalf("expected events on different races to both count, got %d", total)
	}
}

func TestRemoveEvent(t *testing.T) {
	entry := Entry{GameID: "game-1", UserID: "user-1", RiderID: "wout-van-aert"}
	entry.ReplaceEvent(PointsEvent{RaceSlug: "tour-de-france", Stage: 1, Total: 10})
	entry.ReplaceEvent(PointsEvent{RaceSlug: "tour-de-france", Stage: 2, Total: 40})

	entry.RemoveEvent("tour-de-france", 1)
	if entry.PointsScored != 40 {
		t.Fatalf("expected 40 points after removal, got %d", entry.PointsScored)
	}
	if len(entry.PointsBreakdown) != 1 {
		t.Fatalf("expected single remaining event, got %d", len(entry.PointsBreakdown))
	}

	// Removing an absent event is a no-op.
	entry.RemoveEvent("giro-d-italia", 3)
	if entry.PointsScored != 40 {
		t.Fatalf("expected total unchanged after removing absent event, got %d", entry.PointsScored)
	}
}

func TestEntryValidateBasic(t *testing.T) {
	valid := Entry{GameID: "game-1", UserID: "user-1", RiderID: "mathieu-van-der-poel", PricePaid: 40}
	if err := valid.ValidateBasic(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	tests := []struct {
		name  string
		entry Entry
	}{
		{"missing game", Entry{UserID: "user-1", RiderID: "r1"}},
		{"missing user", Entry{GameID: "game-1", RiderID: "r1"}},
		{"missing rider", Entry{GameID: "game-1", UserID: "user-1"}},
		{"negative price", Entry{GameID: "game-1", UserID: "user-1", RiderID: "r1", PricePaid: -1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.entry.ValidateBasic(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
