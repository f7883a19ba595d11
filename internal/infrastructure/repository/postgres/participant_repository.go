package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/veloleague/veloleague/internal/domain/game"
	qb "github.com/veloleague/veloleague/internal/platform/querybuilder"
)

type participantTableModel struct {
	ID             int64     `db:"id"`
	GameID         string    `db:"game_id"`
	UserID         string    `db:"user_id"`
	SpentBudget    int64     `db:"spent_budget"`
	RosterSize     int       `db:"roster_size"`
	RosterComplete bool      `db:"roster_complete"`
	TotalPoints    int       `db:"total_points"`
	Ranking        int       `db:"ranking"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type participantInsertModel struct {
	GameID         string `db:"game_id"`
	UserID         string `db:"user_id"`
	SpentBudget    int64  `db:"spent_budget"`
	RosterSize     int    `db:"roster_size"`
	RosterComplete bool   `db:"roster_complete"`
	TotalPoints    int    `db:"total_points"`
	Ranking        int    `db:"ranking"`
}

type ParticipantRepository struct {
	db *sqlx.DB
}

func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Get(ctx context.Context, gameID, userID string) (game.Participant, bool, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("user_id", userID),
		).
		ToSQL()
	if err != nil {
		return game.Participant{}, false, fmt.Errorf("build get participant query: %w", err)
	}

	var row participantTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Participant{}, false, nil
		}
		return game.Participant{}, false, fmt.Errorf("get participant: %w", err)
	}

	return participantFromRow(row), true, nil
}

func (r *ParticipantRepository) ListByGame(ctx context.Context, gameID string) ([]game.Participant, error) {
	query, args, err := qb.Select("*").From("participants").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("ranking", "user_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list participants query: %w", err)
	}

	var rows []participantTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select participants: %w", err)
	}

	out := make([]game.Participant, 0, len(rows))
	for _, row := range rows {
		out = append(out, participantFromRow(row))
	}
	return out, nil
}

func (r *ParticipantRepository) Upsert(ctx context.Context, participant game.Participant) error {
	query, args, err := qb.InsertModel("participants", participantInsertModel{
		GameID:         participant.GameID,
		UserID:         participant.UserID,
		SpentBudget:    participant.SpentBudget,
		RosterSize:     participant.RosterSize,
		RosterComplete: participant.RosterComplete,
		TotalPoints:    participant.TotalPoints,
		Ranking:        participant.Ranking,
	}, `ON CONFLICT (game_id, user_id) DO UPDATE SET
    spent_budget = EXCLUDED.spent_budget,
    roster_size = EXCLUDED.roster_size,
    roster_complete = EXCLUDED.roster_complete,
    total_points = EXCLUDED.total_points,
    ranking = EXCLUDED.ranking,
    updated_at = NOW()`)
	if err != nil {
		return fmt.Errorf("build upsert participant query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert participant: %w", err)
	}
	return nil
}

func participantFromRow(row participantTableModel) game.Participant {
	return game.Participant{
		GameID:         row.GameID,
		UserID:         row.UserID,
		SpentBudget:    row.SpentBudget,
		RosterSize:     row.RosterSize,
		RosterComplete: row.RosterComplete,
		TotalPoints:    row.TotalPoints,
		Ranking:        row.Ranking,
	}
}
