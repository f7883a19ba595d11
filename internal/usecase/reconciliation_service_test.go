package usecase

import (
	"context"
	"testing"

	"github.com/veloleague/veloleague/internal/domain/game"
	"github.com/veloleague/veloleague/internal/domain/roster"
	"github.com/veloleague/veloleague/internal/infrastructure/repository/memory"
	"github.com/veloleague/veloleague/internal/platform/logging"
)

func TestReconciliationService_Reconcile_DetectsAndRepairsDrift(t *testing.T) {
	gameRepo := memory.NewGameRepository(memory.SeedGames())
	participantRepo := memory.NewParticipantRepository()
	rosterRepo := memory.NewRosterRepository()
	service := NewReconciliationService(gameRepo, participantRepo, rosterRepo, logging.NewNop())

	if err := rosterRepo.Insert(context.Background(), roster.Entry{
		ID: "entry-001", GameID: memory.GameIDTourClassic, UserID: "user-1",
		RiderID: "tadej-pogacar", PricePaid: 20, Active: true, PointsScored: 50,
	}); err != nil {
		t.Fatalf("insert entry: %v", err)
	}
	// Stored aggregate disagrees with the entry on every field.
	if err := participantRepo.Upsert(context.Background(), game.Participant{
		GameID: memory.GameIDTourClassic, UserID: "user-1",
		SpentBudget: 35, RosterSize: 2, TotalPoints: 10,
	}); err != nil {
		t.Fatalf("upsert participant: %v", err)
	}

	report, err := service.Reconcile(t.Context(), memory.GameIDTourClassic, false)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if report.Drifted != 1 || len(report.Drifts) != 3 {
		t.Fatalf("expected one drifted user across three fields, got %+v", report)
	}

	// Dry run leaves the stored aggregate untouched.
	stored, _, err := participantRepo.Get(t.Context(), memory.GameIDTourClassic, "user-1")
	if err != nil {
		t.Fatalf("get participant: %v", err)
	}
	if stored.SpentBudget != 35 {
		t.Fatalf("dry run mutated the aggregate: %+v", stored)
	}

	if _, err := service.Reconcile(t.Context(), memory.GameIDTourClassic, true); err != nil {
		t.Fatalf("repair failed: %v", err)
	}
	repaired, _, err := participantRepo.Get(t.Context(), memory.GameIDTourClassic, "user-1")
	if err != nil {
		t.Fatalf("get participant: %v", err)
	}
	if repaired.SpentBudget != 20 || repaired.RosterSize != 1 || repaired.TotalPoints != 50 {
		t.Fatalf("expected repaired aggregate, got %+v", repaired)
	}

	clean, err := service.Reconcile(t.Context(), memory.GameIDTourClassic, false)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if clean.Drifted != 0 {
		t.Fatalf("expected no drift after repair, got %+v", clean)
	}
}

func TestReconciliationService_Reconcile_IgnoresInactiveEntries(t *testing.T) {
	gameRepo := memory.NewGameRepository(memory.SeedGames())
	participantRepo := memory.NewParticipantRepository()
	rosterRepo := memory.NewRosterRepository()
	service := NewReconciliationService(gameRepo, participantRepo, rosterRepo, logging.NewNop())

	if err := rosterRepo.Insert(context.Background(), roster.Entry{
		ID: "entry-001", GameID: memory.GameIDTourClassic, UserID: "user-1",
		RiderID: "tadej-pogacar", PricePaid: 20, Active: true,
	}); err != nil {
		t.Fatalf("insert entry: %v", err)
	}
	if err := rosterRepo.Insert(context.Background(), roster.Entry{
		ID: "entry-002", GameID: memory.GameIDTourClassic, UserID: "user-1",
		RiderID: "jonas-vingegaard", PricePaid: 15, Active: false,
	}); err != nil {
		t.Fatalf("insert entry: %v", err)
	}
	if err := participantRepo.Upsert(context.Background(), game.Participant{
		GameID: memory.GameIDTourClassic, UserID: "user-1",
		SpentBudget: 20, RosterSize: 1,
	}); err != nil {
		t.Fatalf("upsert participant: %v", err)
	}

	report, err := service.Reconcile(t.Context(), memory.GameIDTourClassic, false)
	if err != nil {
		t.Fatalf("reconcile failed: %v", err)
	}
	if report.Drifted != 0 {
		t.Fatalf("deactivated entry counted toward aggregates: %+v", report)
	}
}
