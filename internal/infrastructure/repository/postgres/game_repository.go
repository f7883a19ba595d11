package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/veloleague/veloleague/internal/domain/game"
	qb "github.com/veloleague/veloleague/internal/platform/querybuilder"
)

type gameTableModel struct {
	ID            int64      `db:"id"`
	PublicID      string     `db:"public_id"`
	Name          string     `db:"name"`
	Season        int        `db:"season"`
	GameType      string     `db:"game_type"`
	BudgetCap     int64      `db:"budget_cap"`
	MinRosterSize int        `db:"min_roster_size"`
	MaxRosterSize int        `db:"max_roster_size"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

type countingRaceTableModel struct {
	ID           int64         `db:"id"`
	GamePublicID string        `db:"game_public_id"`
	RaceSlug     string        `db:"race_slug"`
	Stages       pq.Int64Array `db:"stages"`
}

type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	query, args, err := qb.Select("*").From("games").
		Where(
			qb.Eq("public_id", gameID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game by id: %w", err)
	}

	racesByGame, err := r.loadCountingRaces(ctx, []string{row.PublicID})
	if err != nil {
		return game.Game{}, false, err
	}

	return gameFromRow(row, racesByGame[row.PublicID]), true, nil
}

func (r *GameRepository) List(ctx context.Context) ([]game.Game, error) {
	query, args, err := qb.Select("*").From("games").
		Where(qb.IsNull("deleted_at")).
		OrderBy("public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}

	gameIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		gameIDs = append(gameIDs, row.PublicID)
	}
	racesByGame, err := r.loadCountingRaces(ctx, gameIDs)
	if err != nil {
		return nil, err
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row, racesByGame[row.PublicID]))
	}
	return out, nil
}

func (r *GameRepository) loadCountingRaces(ctx context.Context, gameIDs []string) (map[string][]game.CountingRace, error) {
	if len(gameIDs) == 0 {
		return nil, nil
	}

	ids := make([]any, 0, len(gameIDs))
	for _, id := range gameIDs {
		ids = append(ids, id)
	}
	query, args, err := qb.Select("*").From("game_counting_races").
		Where(qb.In("game_public_id", ids)).
		OrderBy("race_slug").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list counting races query: %w", err)
	}

	var rows []countingRaceTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select counting races: %w", err)
	}

	out := make(map[string][]game.CountingRace, len(gameIDs))
	for _, row := range rows {
		stages := make([]int, 0, len(row.Stages))
		for _, stage := range row.Stages {
			stages = append(stages, int(stage))
		}
		out[row.GamePublicID] = append(out[row.GamePublicID], game.CountingRace{
			RaceSlug: row.RaceSlug,
			Stages:   stages,
		})
	}
	return out, nil
}

func gameFromRow(row gameTableModel, races []game.CountingRace) game.Game {
	return game.Game{
		ID:            row.PublicID,
		Name:          row.Name,
		Season:        row.Season,
		Type:          game.Type(row.GameType),
		BudgetCap:     row.BudgetCap,
		MinRosterSize: row.MinRosterSize,
		MaxRosterSize: row.MaxRosterSize,
		CountingRaces: races,
	}
}
