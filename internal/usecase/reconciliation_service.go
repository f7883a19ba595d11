package usecase

import (
	"context"
	"fmt"

	"github.com/veloleague/veloleague/internal/domain/game"
	"github.com/veloleague/veloleague/internal/domain/roster"
	"github.com/veloleague/veloleague/internal/platform/logging"
)

// ReconciliationService detects drift between stored participant
// aggregates and the sums over their source records, and repairs it by
// recomputation. It replaces the pile of one-off repair scripts the
// aggregates historically needed.
type ReconciliationService struct {
	gameRepo        game.Repository
	participantRepo game.ParticipantRepository
	rosterRepo      roster.Repository
	logger          *logging.Logger
}

func NewReconciliationService(
	gameRepo game.Repository,
	participantRepo game.ParticipantRepository,
	rosterRepo roster.Repository,
	logger *logging.Logger,
) *ReconciliationService {
	if logger == nil {
		logger = logging.Default()
	}

	return &ReconciliationService{
		gameRepo:        gameRepo,
		participantRepo: participantRepo,
		rosterRepo:      rosterRepo,
		logger:          logger,
	}
}

type ReconciliationReport struct {
	GameID       string             `json:"game_id"`
	Participants int                `json:"participants"`
	Drifted      int                `json:"drifted"`
	Repaired     bool               `json:"repaired"`
	Drifts       []ParticipantDrift `json:"drifts"`
}

type ParticipantDrift struct {
	UserID     string `json:"user_id"`
	Field      string `json:"field"`
	Stored     int64  `json:"stored"`
	Recomputed int64  `json:"recomputed"`
}

// Reconcile compares every participant's stored aggregates against full
// recomputation from active roster entries. With repair set, drifted
// participants are overwritten with the recomputed values.
func (s *ReconciliationService) Reconcile(ctx context.Context, gameID string, repair bool) (ReconciliationReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReconciliationService.Reconcile")
	defer span.End()

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return ReconciliationReport{}, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return ReconciliationReport{}, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	participants, err := s.participantRepo.ListByGame(ctx, gameID)
	if err != nil {
		return ReconciliationReport{}, fmt.Errorf("list participants: %w", err)
	}

	entries, err := s.rosterRepo.ListByGame(ctx, gameID, true)
	if err != nil {
		return ReconciliationReport{}, fmt.Errorf("list roster entries: %w", err)
	}

	type sums struct {
		spent  int64
		size   int
		points int
	}
	byUser := make(map[string]sums, len(participants))
	for _, entry := range entries {
		agg := byUser[entry.UserID]
		agg.spent += entry.PricePaid
		agg.size++
		agg.points += entry.PointsScored
		byUser[entry.UserID] = agg
	}

	report := ReconciliationReport{GameID: gameID, Participants: len(participants), Repaired: repair}
	drifted := make(map[string]struct{})

	for _, participant := range participants {
		expected := byUser[participant.UserID]

		if participant.SpentBudget != expected.spent {
			report.Drifts = append(report.Drifts, ParticipantDrift{
				UserID: participant.UserID, Field: "spent_budget",
				Stored: participant.SpentBudget, Recomputed: expected.spent,
			})
			drifted[participant.UserID] = struct{}{}
		}
		if participant.RosterSize != expected.size {
			report.Drifts = append(report.Drifts, ParticipantDrift{
				UserID: participant.UserID, Field: "roster_size",
				Stored: int64(participant.RosterSize), Recomputed: int64(expected.size),
			})
			drifted[participant.UserID] = struct{}{}
		}
		if participant.TotalPoints != expected.points {
			report.Drifts = append(report.Drifts, ParticipantDrift{
				UserID: participant.UserID, Field: "total_points",
				Stored: int64(participant.TotalPoints), Recomputed: int64(expected.points),
			})
			drifted[participant.UserID] = struct{}{}
		}

		if _, ok := drifted[participant.UserID]; !ok || !repair {
			continue
		}

		participant.SpentBudget = expected.spent
		participant.RosterSize = expected.size
		participant.TotalPoints = expected.points
		participant.RosterComplete = expected.size >= g.MinRosterSize
		if err := s.participantRepo.Upsert(ctx, participant); err != nil {
			return ReconciliationReport{}, fmt.Errorf("repair participant %s: %w", participant.UserID, err)
		}
	}

	report.Drifted = len(drifted)
	if report.Drifted > 0 {
		s.logger.WarnContext(ctx, "participant aggregates drifted",
			"game_id", gameID, "drifted", report.Drifted, "repaired", repair, "error", ErrAggregateDrift)
	}

	return report, nil
}
