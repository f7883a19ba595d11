package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/veloleague/veloleague/internal/domain/game"
	"github.com/veloleague/veloleague/internal/domain/race"
	"github.com/veloleague/veloleague/internal/domain/rider"
	"github.com/veloleague/veloleague/internal/domain/roster"
	"github.com/veloleague/veloleague/internal/platform/lock"
	"github.com/veloleague/veloleague/internal/platform/logging"
)

const defaultScoringWorkers = 4

// PointsService converts one stage's classification lists into point
// events on roster entries and rolls them up into participant totals.
// Games score independently and in parallel; writes to one entry's
// breakdown are serialized per (game, rider).
type PointsService struct {
	gameRepo        game.Repository
	participantRepo game.ParticipantRepository
	rosterRepo      roster.Repository
	catalog         rider.Catalog
	feed            race.ResultFeed
	riderLocks      *lock.Keyed
	logger          *logging.Logger
	now             func() time.Time
	maxWorkers      int
}

func NewPointsService(
	gameRepo game.Repository,
	participantRepo game.ParticipantRepository,
	rosterRepo roster.Repository,
	catalog rider.Catalog,
	feed race.ResultFeed,
	logger *logging.Logger,
) *PointsService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PointsService{
		gameRepo:        gameRepo,
		participantRepo: participantRepo,
		rosterRepo:      rosterRepo,
		catalog:         catalog,
		feed:            feed,
		riderLocks:      lock.NewKeyed(),
		logger:          logger,
		now:             time.Now,
		maxWorkers:      defaultScoringWorkers,
	}
}

// WithMaxWorkers overrides the per-game scoring fanout width. Values
// below one keep the default.
func (s *PointsService) WithMaxWorkers(n int) *PointsService {
	if n > 0 {
		s.maxWorkers = n
	}
	return s
}

type CalculatePointsResult struct {
	RaceSlug      string           `json:"race_slug"`
	Stage         int              `json:"stage"`
	Year          int              `json:"year"`
	GamesAffected int              `json:"games_affected"`
	RidersScored  int              `json:"riders_scored"`
	Games         []GameStageScore `json:"games"`
}

type GameStageScore struct {
	GameID       string `json:"game_id"`
	Status       string `json:"status"`
	RidersScored int    `json:"riders_scored"`
	Message      string `json:"message,omitempty"`
}

const (
	stageScoreStatusScored  = "scored"
	stageScoreStatusSkipped = "skipped"
	stageScoreStatusFailed  = "failed"
)

// CalculatePoints fetches one stage result and scores it into every
// classic game of the matching season. Re-invocation with a corrected
// result replaces the stage's events instead of stacking a second award.
func (s *PointsService) CalculatePoints(ctx context.Context, raceSlug string, stage, year int) (CalculatePointsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.CalculatePoints")
	defer span.End()

	if raceSlug == "" || stage < 1 || year < 1 {
		return CalculatePointsResult{}, fmt.Errorf("%w: race slug, stage and year are required", ErrInvalidInput)
	}

	result, found, err := s.feed.GetStageResult(ctx, raceSlug, stage, year)
	if err != nil {
		return CalculatePointsResult{}, fmt.Errorf("fetch stage result: %w", err)
	}
	if !found {
		return CalculatePointsResult{}, fmt.Errorf("%w: stage result %s/%d", ErrNotFound, raceSlug, stage)
	}

	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return CalculatePointsResult{}, fmt.Errorf("list games: %w", err)
	}

	out := CalculatePointsResult{RaceSlug: raceSlug, Stage: stage, Year: year}
	rows := make(chan GameStageScore, len(games))

	workers := pool.New().WithMaxGoroutines(s.maxWorkers)
	for _, g := range games {
		g := g
		if g.Type != game.TypeClassic || g.Season != year {
			continue
		}
		workers.Go(func() {
			row := GameStageScore{GameID: g.ID, Status: stageScoreStatusScored}

			scored, skipped, scoreErr := s.scoreGameStage(ctx, g, result)
			switch {
			case scoreErr != nil:
				s.logger.ErrorContext(ctx, "stage scoring failed",
					"game_id", g.ID, "race", raceSlug, "stage", stage, "error", scoreErr)
				row.Status = stageScoreStatusFailed
				row.Message = scoreErr.Error()
			case skipped:
				row.Status = stageScoreStatusSkipped
			default:
				row.RidersScored = scored
			}
			rows <- row
		})
	}
	workers.Wait()
	close(rows)

	for row := range rows {
		if row.Status == stageScoreStatusScored {
			out.GamesAffected++
			out.RidersScored += row.RidersScored
		}
		out.Games = append(out.Games, row)
	}
	sort.SliceStable(out.Games, func(i, j int) bool {
		return out.Games[i].GameID < out.Games[j].GameID
	})

	return out, nil
}

// scoreGameStage applies the stage result to one game. It returns the
// number of riders whose entries changed, or skipped=true when the
// game's counting-races restriction excludes this stage.
func (s *PointsService) scoreGameStage(ctx context.Context, g game.Game, result race.StageResult) (int, bool, error) {
	if !g.StageCounts(result.RaceSlug, result.Stage) {
		return 0, true, nil
	}

	entries, err := s.rosterRepo.ListByGame(ctx, g.ID, true)
	if err != nil {
		return 0, false, fmt.Errorf("list roster entries: %w", err)
	}
	if len(entries) == 0 {
		return 0, false, nil
	}

	teamByRider, err := s.riderTeams(ctx, entries)
	if err != nil {
		return 0, false, err
	}

	componentsByRider := stageComponents(result)
	teamRanks := teamRankIndex(result)
	now := s.now().UTC()

	scored := 0
	touchedUsers := make(map[string]struct{})
	for i := range entries {
		entry := entries[i]

		components, hasComponents := componentsByRider[entry.RiderID]
		if rank, ok := teamRanks[teamByRider[entry.RiderID]]; ok {
			components.TeamClass = teamPoints(rank)
			hasComponents = true
		}

		hadEvent := hasStageEvent(entry, result.RaceSlug, result.Stage)
		if !hasComponents && !hadEvent {
			continue
		}

		unlock := s.riderLocks.Lock(g.ID + "::" + entry.RiderID)
		if !hasComponents {
			// The corrected result no longer credits this rider; drop
			// the stale event so nothing double-counts.
			entry.RemoveEvent(result.RaceSlug, result.Stage)
		} else {
			components.RaceSlug = result.RaceSlug
			components.Stage = result.Stage
			components.CalculatedAt = now
			components.Total = components.Placing + components.GC + components.PointsClass +
				components.Mountains + components.Youth + components.TeamClass + components.Combativity
			entry.ReplaceEvent(components)
			scored++
		}
		err := s.rosterRepo.Update(ctx, entry)
		unlock()
		if err != nil {
			return 0, false, fmt.Errorf("update roster entry %s: %w", entry.ID, err)
		}
		touchedUsers[entry.UserID] = struct{}{}
	}

	if len(touchedUsers) > 0 {
		if err := s.recomputeGameTotals(ctx, g); err != nil {
			return 0, false, err
		}
	}

	return scored, false, nil
}

// stageComponents folds every classification list into per-rider
// component scores, leaving Total unset for the caller.
func stageComponents(result race.StageResult) map[string]roster.PointsEvent {
	out := make(map[string]roster.PointsEvent)

	add := func(riderID string, apply func(*roster.PointsEvent)) {
		event := out[riderID]
		apply(&event)
		out[riderID] = event
	}

	for _, row := range result.Ranking(race.ClassificationStage) {
		points := individualPoints(row.Rank)
		if points == 0 {
			continue
		}
		add(row.RiderID, func(e *roster.PointsEvent) { e.Placing = points })
	}

	if mult := gcMultiplier(result.Position); mult > 0 {
		for _, row := range result.Ranking(race.ClassificationGeneral) {
			points := individualPoints(row.Rank) * mult
			if points == 0 {
				continue
			}
			add(row.RiderID, func(e *roster.PointsEvent) { e.GC = points })
		}
	}

	if finalStageMultiplier(result.Position) > 0 {
		for _, row := range result.Ranking(race.ClassificationPoints) {
			points := individualPoints(row.Rank)
			if points == 0 {
				continue
			}
			add(row.RiderID, func(e *roster.PointsEvent) { e.PointsClass = points })
		}
		for _, row := range result.Ranking(race.ClassificationMountains) {
			points := individualPoints(row.Rank)
			if points == 0 {
				continue
			}
			add(row.RiderID, func(e *roster.PointsEvent) { e.Mountains = points })
		}
		// Youth pays once, at the final stage. The source material also
		// mentions a mid-season award but never implemented it; a single
		// payout keeps re-runs unambiguous.
		for _, row := range result.Ranking(race.ClassificationYouth) {
			points := individualPoints(row.Rank)
			if points == 0 {
				continue
			}
			add(row.RiderID, func(e *roster.PointsEvent) { e.Youth = points })
		}
	}

	for _, riderID := range result.Combativity {
		add(riderID, func(e *roster.PointsEvent) { e.Combativity = combativityBonus })
	}

	return out
}

func teamRankIndex(result race.StageResult) map[string]int {
	rows := result.Ranking(race.ClassificationTeam)
	if len(rows) == 0 {
		return nil
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		if row.TeamName == "" || teamPoints(row.Rank) == 0 {
			continue
		}
		out[row.TeamName] = row.Rank
	}
	return out
}

func hasStageEvent(entry roster.Entry, raceSlug string, stage int) bool {
	for _, event := range entry.PointsBreakdown {
		if event.RaceSlug == raceSlug && event.Stage == stage {
			return true
		}
	}
	return false
}

func (s *PointsService) riderTeams(ctx context.Context, entries []roster.Entry) (map[string]string, error) {
	riderIDs := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if _, ok := seen[entry.RiderID]; ok {
			continue
		}
		seen[entry.RiderID] = struct{}{}
		riderIDs = append(riderIDs, entry.RiderID)
	}

	riders, err := s.catalog.ListByIDs(ctx, riderIDs)
	if err != nil {
		return nil, fmt.Errorf("list riders: %w", err)
	}

	out := make(map[string]string, len(riders))
	for _, r := range riders {
		out[r.NameID] = r.Team
	}
	return out, nil
}

// recomputeGameTotals rebuilds every participant's point total from the
// active roster entries and reassigns competition rankings.
func (s *PointsService) recomputeGameTotals(ctx context.Context, g game.Game) error {
	entries, err := s.rosterRepo.ListByGame(ctx, g.ID, true)
	if err != nil {
		return fmt.Errorf("list roster entries for totals: %w", err)
	}

	pointsByUser := make(map[string]int)
	for _, entry := range entries {
		pointsByUser[entry.UserID] += entry.PointsScored
	}

	participants, err := s.participantRepo.ListByGame(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}

	for i := range participants {
		participants[i].TotalPoints = pointsByUser[participants[i].UserID]
	}
	RankParticipants(participants)

	for _, participant := range participants {
		if err := s.participantRepo.Upsert(ctx, participant); err != nil {
			return fmt.Errorf("upsert participant %s: %w", participant.UserID, err)
		}
	}
	return nil
}

type MarginalGainsResult struct {
	GameID         string `json:"game_id"`
	RidersScored   int    `json:"riders_scored"`
	RidersUnranked int    `json:"riders_unranked"`
}

// RecalculateMarginalGains rescores a marginal-gains game: each rider
// contributes currentSeasonPoints minus the ranking seed they entered
// the season with. The season source is already an aggregate, so this is
// a full scalar recompute per rider on every invocation, not an
// incremental per-stage event.
func (s *PointsService) RecalculateMarginalGains(ctx context.Context, gameID string) (MarginalGainsResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.RecalculateMarginalGains")
	defer span.End()

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return MarginalGainsResult{}, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return MarginalGainsResult{}, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	if g.Type != game.TypeMarginalGains {
		return MarginalGainsResult{}, fmt.Errorf("%w: game %s does not use marginal-gains scoring", ErrInvalidInput, gameID)
	}

	entries, err := s.rosterRepo.ListByGame(ctx, g.ID, true)
	if err != nil {
		return MarginalGainsResult{}, fmt.Errorf("list roster entries: %w", err)
	}

	out := MarginalGainsResult{GameID: gameID}
	for i := range entries {
		entry := entries[i]

		ranking, found, err := s.catalog.GetSeasonRanking(ctx, entry.RiderID, g.Season)
		if err != nil {
			return MarginalGainsResult{}, fmt.Errorf("get season ranking for %s: %w", entry.RiderID, err)
		}
		if !found {
			out.RidersUnranked++
			continue
		}

		unlock := s.riderLocks.Lock(g.ID + "::" + entry.RiderID)
		entry.PointsScored = ranking.Points - ranking.StartingPoints
		err = s.rosterRepo.Update(ctx, entry)
		unlock()
		if err != nil {
			return MarginalGainsResult{}, fmt.Errorf("update roster entry %s: %w", entry.ID, err)
		}
		out.RidersScored++
	}

	if err := s.recomputeGameTotals(ctx, g); err != nil {
		return MarginalGainsResult{}, err
	}
	return out, nil
}

// Leaderboard returns the game's participants in competition order.
func (s *PointsService) Leaderboard(ctx context.Context, gameID string) ([]game.Participant, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.Leaderboard")
	defer span.End()

	if _, found, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	} else if !found {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	participants, err := s.participantRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}

	RankParticipants(participants)
	return participants, nil
}

// RankParticipants sorts by total points descending and assigns
// competition ranking: tied totals share a rank and the next distinct
// total's rank is one plus the number of participants strictly ahead,
// so totals [120, 120, 100] rank [1, 1, 3].
func RankParticipants(participants []game.Participant) {
	sort.SliceStable(participants, func(i, j int) bool {
		if participants[i].TotalPoints != participants[j].TotalPoints {
			return participants[i].TotalPoints > participants[j].TotalPoints
		}
		return participants[i].UserID < participants[j].UserID
	})

	rank := 0
	for i := range participants {
		if i == 0 || participants[i].TotalPoints != participants[i-1].TotalPoints {
			rank = i + 1
		}
		participants[i].Ranking = rank
	}
}
