package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/veloleague/veloleague/internal/domain/rider"
	qb "github.com/veloleague/veloleague/internal/platform/querybuilder"
)

type riderTableModel struct {
	ID      int64  `db:"id"`
	NameID  string `db:"name_id"`
	Name    string `db:"name"`
	Team    string `db:"team"`
	Country string `db:"country"`
}

type seasonRankingTableModel struct {
	ID             int64  `db:"id"`
	RiderNameID    string `db:"rider_name_id"`
	Season         int    `db:"season"`
	Points         int    `db:"points"`
	StartingPoints int    `db:"starting_points"`
}

type RiderCatalog struct {
	db *sqlx.DB
}

func NewRiderCatalog(db *sqlx.DB) *RiderCatalog {
	return &RiderCatalog{db: db}
}

func (c *RiderCatalog) GetByID(ctx context.Context, riderID string) (rider.Rider, bool, error) {
	query, args, err := qb.Select("*").From("riders").
		Where(qb.Eq("name_id", riderID)).
		ToSQL()
	if err != nil {
		return rider.Rider{}, false, fmt.Errorf("build get rider query: %w", err)
	}

	var row riderTableModel
	if err := c.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return rider.Rider{}, false, nil
		}
		return rider.Rider{}, false, fmt.Errorf("get rider by id: %w", err)
	}

	return riderFromRow(row), true, nil
}

func (c *RiderCatalog) ListByIDs(ctx context.Context, riderIDs []string) ([]rider.Rider, error) {
	if len(riderIDs) == 0 {
		return nil, nil
	}

	ids := make([]any, 0, len(riderIDs))
	for _, id := range riderIDs {
		ids = append(ids, id)
	}
	query, args, err := qb.Select("*").From("riders").
		Where(qb.In("name_id", ids)).
		OrderBy("name_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list riders query: %w", err)
	}

	var rows []riderTableModel
	if err := c.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select riders: %w", err)
	}

	out := make([]rider.Rider, 0, len(rows))
	for _, row := range rows {
		out = append(out, riderFromRow(row))
	}
	return out, nil
}

func (c *RiderCatalog) GetSeasonRanking(ctx context.Context, riderID string, season int) (rider.SeasonRanking, bool, error) {
	query, args, err := qb.Select("*").From("rider_season_rankings").
		Where(
			qb.Eq("rider_name_id", riderID),
			qb.Eq("season", season),
		).
		ToSQL()
	if err != nil {
		return rider.SeasonRanking{}, false, fmt.Errorf("build get season ranking query: %w", err)
	}

	var row seasonRankingTableModel
	if err := c.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return rider.SeasonRanking{}, false, nil
		}
		return rider.SeasonRanking{}, false, fmt.Errorf("get season ranking: %w", err)
	}

	return rider.SeasonRanking{
		RiderID:        row.RiderNameID,
		Season:         row.Season,
		Points:         row.Points,
		StartingPoints: row.StartingPoints,
	}, true, nil
}

func riderFromRow(row riderTableModel) rider.Rider {
	return rider.Rider{
		NameID:  row.NameID,
		Name:    row.Name,
		Team:    row.Team,
		Country: row.Country,
	}
}
