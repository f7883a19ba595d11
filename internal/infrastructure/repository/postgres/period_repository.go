package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/veloleague/veloleague/internal/domain/auction"
	qb "github.com/veloleague/veloleague/internal/platform/querybuilder"
)

type periodTableModel struct {
	ID        int64      `db:"id"`
	GameID    string     `db:"game_id"`
	Name      string     `db:"name"`
	StartDate time.Time  `db:"start_date"`
	EndDate   time.Time  `db:"end_date"`
	Status    string     `db:"status"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type periodInsertModel struct {
	GameID    string    `db:"game_id"`
	Name      string    `db:"name"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
	Status    string    `db:"status"`
}

type PeriodRepository struct {
	db *sqlx.DB
}

func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

func (r *PeriodRepository) GetByGameAndName(ctx context.Context, gameID, name string) (auction.Period, bool, error) {
	query, args, err := qb.Select("*").From("auction_periods").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("name", name),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return auction.Period{}, false, fmt.Errorf("build get period query: %w", err)
	}

	var row periodTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return auction.Period{}, false, nil
		}
		return auction.Period{}, false, fmt.Errorf("get period: %w", err)
	}

	return periodFromRow(row), true, nil
}

func (r *PeriodRepository) GetOpenByGame(ctx context.Context, gameID string, at time.Time) (auction.Period, bool, error) {
	query, args, err := qb.Select("*").From("auction_periods").
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("status", string(auction.PeriodStatusOpen)),
			qb.Expr("start_date <= ?", at),
			qb.Expr("end_date >= ?", at),
			qb.IsNull("deleted_at"),
		).
		OrderBy("start_date").
		Limit(1).
		ToSQL()
	if err != nil {
		return auction.Period{}, false, fmt.Errorf("build get open period query: %w", err)
	}

	var row periodTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return auction.Period{}, false, nil
		}
		return auction.Period{}, false, fmt.Errorf("get open period: %w", err)
	}

	return periodFromRow(row), true, nil
}

func (r *PeriodRepository) Upsert(ctx context.Context, period auction.Period) error {
	query, args, err := qb.InsertModel("auction_periods", periodInsertModel{
		GameID:    period.GameID,
		Name:      period.Name,
		StartDate: period.StartDate,
		EndDate:   period.EndDate,
		Status:    string(period.Status),
	}, `ON CONFLICT (game_id, name) DO UPDATE SET
    start_date = EXCLUDED.start_date,
    end_date = EXCLUDED.end_date,
    status = EXCLUDED.status,
    updated_at = NOW(),
    deleted_at = NULL`)
	if err != nil {
		return fmt.Errorf("build upsert period query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert period: %w", err)
	}
	return nil
}

func (r *PeriodRepository) UpdateStatus(ctx context.Context, gameID, name string, status auction.PeriodStatus) error {
	query, args, err := qb.Update("auction_periods").
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("game_id", gameID),
			qb.Eq("name", name),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update period status query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update period status: %w", err)
	}
	return nil
}

func periodFromRow(row periodTableModel) auction.Period {
	return auction.Period{
		GameID:    row.GameID,
		Name:      row.Name,
		StartDate: row.StartDate,
		EndDate:   row.EndDate,
		Status:    auction.PeriodStatus(row.Status),
	}
}
