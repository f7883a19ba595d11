package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/veloleague/veloleague/internal/domain/game"
	"github.com/veloleague/veloleague/internal/domain/race"
	"github.com/veloleague/veloleague/internal/domain/roster"
	"github.com/veloleague/veloleague/internal/infrastructure/repository/memory"
	"github.com/veloleague/veloleague/internal/platform/logging"
)

type pointsFixture struct {
	service *PointsService
	rosters *memory.RosterRepository
	players *memory.ParticipantRepository
	feed    *memory.StageResultFeed
	nextID  int
}

func newPointsFixture(t *testing.T, games []game.Game, results []race.StageResult) *pointsFixture {
	t.Helper()

	f := &pointsFixture{
		rosters: memory.NewRosterRepository(),
		players: memory.NewParticipantRepository(),
		feed:    memory.NewStageResultFeed(results),
	}
	f.service = NewPointsService(
		memory.NewGameRepository(games),
		f.players,
		f.rosters,
		memory.NewRiderCatalog(memory.SeedRiders(), memory.SeedSeasonRankings()),
		f.feed,
		logging.NewNop(),
	)
	f.service.now = func() time.Time {
		return time.Date(2026, 7, 5, 18, 0, 0, 0, time.UTC)
	}
	return f
}

func (f *pointsFixture) ownRider(t *testing.T, gameID, userID, riderID string, price int64) {
	t.Helper()

	f.nextID++
	entry := roster.Entry{
		ID:              fmt.Sprintf("entry-%03d", f.nextID),
		GameID:          gameID,
		UserID:          userID,
		RiderID:         riderID,
		PricePaid:       price,
		AcquiredAt:      time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		AcquisitionType: roster.AcquisitionAuction,
		Active:          true,
	}
	if err := f.rosters.Insert(context.Background(), entry); err != nil {
		t.Fatalf("insert entry: %v", err)
	}
	if err := f.players.Upsert(context.Background(), game.Participant{
		GameID: gameID, UserID: userID,
	}); err != nil {
		t.Fatalf("upsert participant: %v", err)
	}
}

func (f *pointsFixture) riderEvents(t *testing.T, gameID, userID, riderID string) []roster.PointsEvent {
	t.Helper()

	entry, found, err := f.rosters.GetByOwnership(context.Background(), gameID, userID, riderID)
	if err != nil || !found {
		t.Fatalf("get entry %s: found=%v err=%v", riderID, found, err)
	}
	return entry.PointsBreakdown
}

func classicTourGame() game.Game {
	return game.Game{
		ID:            memory.GameIDTourClassic,
		Name:          "Tour de France 2026",
		Season:        2026,
		Type:          game.TypeClassic,
		BudgetCap:     100,
		MinRosterSize: 1,
		MaxRosterSize: 32,
		CountingRaces: []game.CountingRace{{RaceSlug: memory.RaceSlugTour}},
	}
}

func ordinaryStage(stage int, rows map[race.Classification][]race.Row, combative ...string) race.StageResult {
	return race.StageResult{
		RaceSlug:    memory.RaceSlugTour,
		Stage:       stage,
		Year:        2026,
		Position:    race.StageOrdinary,
		Rankings:    rows,
		Combativity: combative,
	}
}

func TestPointsService_CalculatePoints_StageWin(t *testing.T) {
	result := ordinaryStage(1, map[race.Classification][]race.Row{
		race.ClassificationStage: {
			{Rank: 1, RiderID: "jasper-philipsen"},
			{Rank: 2, RiderID: "mads-pedersen"},
			{Rank: 21, RiderID: "wout-van-aert"},
		},
	})
	f := newPointsFixture(t, []game.Game{classicTourGame()}, []race.StageResult{result})
	f.ownRider(t, memory.GameIDTourClassic, "user-1", "jasper-philipsen", 10)
	f.ownRider(t, memory.GameIDTourClassic, "user-1", "wout-van-aert", 8)
	f.ownRider(t, memory.GameIDTourClassic, "user-2", "mads-pedersen", 9)

	out, err := f.service.CalculatePoints(t.Context(), memory.RaceSlugTour, 1, 2026)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if out.GamesAffected != 1 || out.RidersScored != 2 {
		t.Fatalf("expected 1 game 2 riders scored, got %+v", out)
	}

	events := f.riderEvents(t, memory.GameIDTourClassic, "user-1", "jasper-philipsen")
	if len(events) != 1 || events[0].Placing != 50 || events[0].Total != 50 {
		t.Fatalf("expected a 50 point stage win, got %+v", events)
	}

	// Rank 21 is outside the scoring table.
	if events := f.riderEvents(t, memory.GameIDTourClassic, "user-1", "wout-van-aert"); len(events) != 0 {
		t.Fatalf("expected no event beyond rank 20, got %+v", events)
	}

	leaderboard, err := f.service.Leaderboard(t.Context(), memory.GameIDTourClassic)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if leaderboard[0].UserID != "user-1" || leaderboard[0].TotalPoints != 50 {
		t.Fatalf("expected user-1 leading with 50, got %+v", leaderboard[0])
	}
	if leaderboard[1].UserID != "user-2" || leaderboard[1].TotalPoints != 44 {
		t.Fatalf("expected user-2 second with 44, got %+v", leaderboard[1])
	}
}

func TestPointsService_CalculatePoints_GCMultiplierByStagePosition(t *testing.T) {
	gcRows := map[race.Classification][]race.Row{
		race.ClassificationGeneral: {{Rank: 1, RiderID: "tadej-pogacar"}},
	}
	cases := []struct {
		name     string
		position race.StagePosition
		want     int
	}{
		{"ordinary pays nothing", race.StageOrdinary, 0},
		{"first rest day pays 1x", race.StageFirstRestDay, 50},
		{"second rest day pays 2x", race.StageSecondRestDay, 100},
		{"final pays 3x", race.StageFinal, 150},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := ordinaryStage(9, gcRows)
			result.Position = tc.position

			f := newPointsFixture(t, []game.Game{classicTourGame()}, []race.StageResult{result})
			f.ownRider(t, memory.GameIDTourClassic, "user-1", "tadej-pogacar", 20)

			if _, err := f.service.CalculatePoints(t.Context(), memory.RaceSlugTour, 9, 2026); err != nil {
				t.Fatalf("calculate failed: %v", err)
			}

			events := f.riderEvents(t, memory.GameIDTourClassic, "user-1", "tadej-pogacar")
			if tc.want == 0 {
				if len(events) != 0 {
					t.Fatalf("expected no event, got %+v", events)
				}
				return
			}
			if len(events) != 1 || events[0].GC != tc.want {
				t.Fatalf("expected gc=%d, got %+v", tc.want, events)
			}
		})
	}
}

func TestPointsService_CalculatePoints_FinalStageClassifications(t *testing.T) {
	result := race.StageResult{
		RaceSlug: memory.RaceSlugTour,
		Stage:    21,
		Year:     2026,
		Position: race.StageFinal,
		Rankings: map[race.Classification][]race.Row{
			race.ClassificationPoints:    {{Rank: 1, RiderID: "jasper-philipsen"}},
			race.ClassificationMountains: {{Rank: 2, RiderID: "tadej-pogacar"}},
			race.ClassificationYouth:     {{Rank: 1, RiderID: "juan-ayuso"}},
			race.ClassificationTeam:      {{Rank: 1, TeamName: "UAE Team Emirates"}},
		},
		Combativity: []string{"wout-van-aert"},
	}
	f := newPointsFixture(t, []game.Game{classicTourGame()}, []race.StageResult{result})
	f.ownRider(t, memory.GameIDTourClassic, "user-1", "jasper-philipsen", 10)
	f.ownRider(t, memory.GameIDTourClassic, "user-1", "tadej-pogacar", 20)
	f.ownRider(t, memory.GameIDTourClassic, "user-1", "juan-ayuso", 8)
	f.ownRider(t, memory.GameIDTourClassic, "user-1", "adam-yates", 6)
	f.ownRider(t, memory.GameIDTourClassic, "user-2", "wout-van-aert", 9)

	if _, err := f.service.CalculatePoints(t.Context(), memory.RaceSlugTour, 21, 2026); err != nil {
		t.Fatalf("calculate failed: %v", err)
	}

	if events := f.riderEvents(t, memory.GameIDTourClassic, "user-1", "jasper-philipsen"); events[0].PointsClass != 50 {
		t.Fatalf("expected points classification 50, got %+v", events)
	}
	if events := f.riderEvents(t, memory.GameIDTourClassic, "user-1", "juan-ayuso"); events[0].Youth != 50 {
		t.Fatalf("expected youth 50, got %+v", events)
	}
	if events := f.riderEvents(t, memory.GameIDTourClassic, "user-2", "wout-van-aert"); events[0].Combativity != 10 {
		t.Fatalf("expected combativity 10, got %+v", events)
	}

	// Pogacar and Yates both ride for the winning team; each owned rider
	// carries the team award alongside any individual components.
	events := f.riderEvents(t, memory.GameIDTourClassic, "user-1", "tadej-pogacar")
	if events[0].Mountains != 44 || events[0].TeamClass != 20 || events[0].Total != 64 {
		t.Fatalf("expected mountains=44 team=20 total=64, got %+v", events[0])
	}
	if events := f.riderEvents(t, memory.GameIDTourClassic, "user-1", "adam-yates"); events[0].TeamClass != 20 {
		t.Fatalf("expected team award for yates, got %+v", events)
	}
}

func TestPointsService_CalculatePoints_MidRaceIgnoresFinalOnlyClassifications(t *testing.T) {
	result := ordinaryStage(5, map[race.Classification][]race.Row{
		race.ClassificationPoints:    {{Rank: 1, RiderID: "jasper-philipsen"}},
		race.ClassificationMountains: {{Rank: 1, RiderID: "tadej-pogacar"}},
		race.ClassificationYouth:     {{Rank: 1, RiderID: "juan-ayuso"}},
	})
	f := newPointsFixture(t, []game.Game{classicTourGame()}, []race.StageResult{result})
	f.ownRider(t, memory.GameIDTourClassic, "user-1", "jasper-philipsen", 10)
	f.ownRider(t, memory.GameIDTourClassic, "user-1", "tadej-pogacar", 20)
	f.ownRider(t, memory.GameIDTourClassic, "user-1", "juan-ayuso", 8)

	out, err := f.service.CalculatePoints(t.Context(), memory.RaceSlugTour, 5, 2026)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if out.RidersScored != 0 {
		t.Fatalf("expected no riders scored mid-race, got %+v", out)
	}
}

func TestPointsService_CalculatePoints_CorrectedResultReplacesEvents(t *testing.T) {
	first := ordinaryStage(3, map[race.Classification][]race.Row{
		race.ClassificationStage: {
			{Rank: 1, RiderID: "jasper-philipsen"},
			{Rank: 2, RiderID: "mads-pedersen"},
		},
	})
	f := newPointsFixture(t, []game.Game{classicTourGame()}, []race.StageResult{first})
	f.ownRider(t, memory.GameIDTourClassic, "user-1", "jasper-philipsen", 10)
	f.ownRider(t, memory.GameIDTourClassic, "user-2", "mads-pedersen", 9)

	if _, err := f.service.CalculatePoints(t.Context(), memory.RaceSlugTour, 3, 2026); err != nil {
		t.Fatalf("first calculation failed: %v", err)
	}

	// The jury relegates philipsen; pedersen inherits the win.
	corrected := ordinaryStage(3, map[race.Classification][]race.Row{
		race.ClassificationStage: {
			{Rank: 1, RiderID: "mads-pedersen"},
		},
	})
	f.feed.Put(corrected)

	if _, err := f.service.CalculatePoints(t.Context(), memory.RaceSlugTour, 3, 2026); err != nil {
		t.Fatalf("second calculation failed: %v", err)
	}

	if events := f.riderEvents(t, memory.GameIDTourClassic, "user-1", "jasper-philipsen"); len(events) != 0 {
		t.Fatalf("expected relegated rider's event removed, got %+v", events)
	}
	events := f.riderEvents(t, memory.GameIDTourClassic, "user-2", "mads-pedersen")
	if len(events) != 1 || events[0].Total != 50 {
		t.Fatalf("expected single corrected event of 50, got %+v", events)
	}

	leaderboard, err := f.service.Leaderboard(t.Context(), memory.GameIDTourClassic)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if leaderboard[0].UserID != "user-2" || leaderboard[0].TotalPoints != 50 {
		t.Fatalf("expected user-2 on 50 after correction, got %+v", leaderboard[0])
	}
	if leaderboard[1].TotalPoints != 0 {
		t.Fatalf("expected user-1 back to zero, got %+v", leaderboard[1])
	}
}

func TestPointsService_CalculatePoints_SkipsNonCountingRace(t *testing.T) {
	result := race.StageResult{
		RaceSlug: memory.RaceSlugGiro,
		Stage:    1,
		Year:     2026,
		Position: race.StageOrdinary,
		Rankings: map[race.Classification][]race.Row{
			race.ClassificationStage: {{Rank: 1, RiderID: "tadej-pogacar"}},
		},
	}
	f := newPointsFixture(t, []game.Game{classicTourGame()}, []race.StageResult{result})
	f.ownRider(t, memory.GameIDTourClassic, "user-1", "tadej-pogacar", 20)

	out, err := f.service.CalculatePoints(t.Context(), memory.RaceSlugGiro, 1, 2026)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if out.GamesAffected != 0 {
		t.Fatalf("expected no games affected, got %+v", out)
	}
	if len(out.Games) != 1 || out.Games[0].Status != "skipped" {
		t.Fatalf("expected a skipped row, got %+v", out.Games)
	}
	if events := f.riderEvents(t, memory.GameIDTourClassic, "user-1", "tadej-pogacar"); len(events) != 0 {
		t.Fatalf("expected no events from a non-counting race, got %+v", events)
	}
}

func TestPointsService_RecalculateMarginalGains(t *testing.T) {
	marginal := game.Game{
		ID:            memory.GameIDGiroMarginal,
		Name:          "Giro Marginal Gains 2026",
		Season:        2026,
		Type:          game.TypeMarginalGains,
		BudgetCap:     100,
		MinRosterSize: 1,
		MaxRosterSize: 32,
	}
	f := newPointsFixture(t, []game.Game{marginal}, nil)
	// pogacar: 11200 - 10500 = +700; evenepoel: 6800 - 7100 = -300.
	f.ownRider(t, memory.GameIDGiroMarginal, "user-1", "tadej-pogacar", 20)
	f.ownRider(t, memory.GameIDGiroMarginal, "user-2", "remco-evenepoel", 15)

	out, err := f.service.RecalculateMarginalGains(t.Context(), memory.GameIDGiroMarginal)
	if err != nil {
		t.Fatalf("recalculate failed: %v", err)
	}
	if out.RidersScored != 2 || out.RidersUnranked != 0 {
		t.Fatalf("expected 2 riders scored, got %+v", out)
	}

	leaderboard, err := f.service.Leaderboard(t.Context(), memory.GameIDGiroMarginal)
	if err != nil {
		t.Fatalf("leaderboard failed: %v", err)
	}
	if leaderboard[0].UserID != "user-1" || leaderboard[0].TotalPoints != 700 {
		t.Fatalf("expected user-1 on +700, got %+v", leaderboard[0])
	}
	if leaderboard[1].UserID != "user-2" || leaderboard[1].TotalPoints != -300 {
		t.Fatalf("expected user-2 on -300, got %+v", leaderboard[1])
	}
}

func TestPointsService_RecalculateMarginalGains_RejectsClassicGame(t *testing.T) {
	f := newPointsFixture(t, []game.Game{classicTourGame()}, nil)

	if _, err := f.service.RecalculateMarginalGains(t.Context(), memory.GameIDTourClassic); err == nil {
		t.Fatal("expected error for classic game")
	}
}

func TestRankParticipants_CompetitionRanking(t *testing.T) {
	participants := []game.Participant{
		{UserID: "user-3", TotalPoints: 100},
		{UserID: "user-1", TotalPoints: 120},
		{UserID: "user-2", TotalPoints: 120},
	}

	RankParticipants(participants)

	wantOrder := []string{"user-1", "user-2", "user-3"}
	wantRanks := []int{1, 1, 3}
	for i := range participants {
		if participants[i].UserID != wantOrder[i] || participants[i].Ranking != wantRanks[i] {
			t.Fatalf("unexpected ranking at %d: %+v", i, participants[i])
		}
	}
}
