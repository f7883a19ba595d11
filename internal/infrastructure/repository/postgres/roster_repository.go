package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/veloleague/veloleague/internal/domain/roster"
	qb "github.com/veloleague/veloleague/internal/platform/querybuilder"
)

type RosterRepository struct {
	db *sqlx.DB
}

func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) GetByID(ctx context.Context, entryID string) (roster.Entry, bool, error) {
	return r.getOne(ctx, []qb.Condition{qb.Eq("public_id", entryID)})
}

func (r *RosterRepository) GetByOwnership(ctx context.Context, gameID, userID, riderID string) (roster.Entry, bool, error) {
	return r.getOne(ctx, []qb.Condition{
		qb.Eq("game_id", gameID),
		qb.Eq("user_id", userID),
		qb.Eq("rider_id", riderID),
	})
}

func (r *RosterRepository) ListByUser(ctx context.Context, gameID, userID string, activeOnly bool) ([]roster.Entry, error) {
	conditions := []qb.Condition{
		qb.Eq("game_id", gameID),
		qb.Eq("user_id", userID),
	}
	return r.list(ctx, conditions, activeOnly)
}

func (r *RosterRepository) ListByGame(ctx context.Context, gameID string, activeOnly bool) ([]roster.Entry, error) {
	return r.list(ctx, []qb.Condition{qb.Eq("game_id", gameID)}, activeOnly)
}

func (r *RosterRepository) Insert(ctx context.Context, entry roster.Entry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for roster insert: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("roster_entries", rosterEntryInsertModel{
		PublicID:        entry.ID,
		GameID:          entry.GameID,
		UserID:          entry.UserID,
		RiderID:         entry.RiderID,
		PricePaid:       entry.PricePaid,
		AcquiredAt:      entry.AcquiredAt,
		AcquisitionType: string(entry.AcquisitionType),
		Active:          entry.Active,
		PointsScored:    entry.PointsScored,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert roster entry query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert roster entry: %w", err)
	}

	if err := replaceEvents(ctx, tx, entry.ID, entry.PointsBreakdown); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster insert: %w", err)
	}
	return nil
}

func (r *RosterRepository) Update(ctx context.Context, entry roster.Entry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx for roster update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Update("roster_entries").
		Set("price_paid", entry.PricePaid).
		Set("active", entry.Active).
		Set("points_scored", entry.PointsScored).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("public_id", entry.ID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update roster entry query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update roster entry: %w", err)
	}

	if err := replaceEvents(ctx, tx, entry.ID, entry.PointsBreakdown); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit roster update: %w", err)
	}
	return nil
}

func (r *RosterRepository) Deactivate(ctx context.Context, entryID string) error {
	query, args, err := qb.Update("roster_entries").
		Set("active", false).
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("public_id", entryID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build deactivate roster entry query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deactivate roster entry: %w", err)
	}
	return nil
}

func (r *RosterRepository) getOne(ctx context.Context, conditions []qb.Condition) (roster.Entry, bool, error) {
	query, args, err := qb.Select("*").From("roster_entries").
		Where(append(conditions, qb.IsNull("deleted_at"))...).
		Limit(1).
		ToSQL()
	if err != nil {
		return roster.Entry{}, false, fmt.Errorf("build get roster entry query: %w", err)
	}

	var row rosterEntryTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return roster.Entry{}, false, nil
		}
		return roster.Entry{}, false, fmt.Errorf("get roster entry: %w", err)
	}

	eventsByEntry, err := r.loadEvents(ctx, []string{row.PublicID})
	if err != nil {
		return roster.Entry{}, false, err
	}

	return entryFromRow(row, eventsByEntry[row.PublicID]), true, nil
}

func (r *RosterRepository) list(ctx context.Context, conditions []qb.Condition, activeOnly bool) ([]roster.Entry, error) {
	conditions = append(conditions, qb.IsNull("deleted_at"))
	if activeOnly {
		conditions = append(conditions, qb.Eq("active", true))
	}

	query, args, err := qb.Select("*").From("roster_entries").
		Where(conditions...).
		OrderBy("acquired_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list roster entries query: %w", err)
	}

	var rows []rosterEntryTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select roster entries: %w", err)
	}

	entryIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		entryIDs = append(entryIDs, row.PublicID)
	}
	eventsByEntry, err := r.loadEvents(ctx, entryIDs)
	if err != nil {
		return nil, err
	}

	out := make([]roster.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, entryFromRow(row, eventsByEntry[row.PublicID]))
	}
	return out, nil
}

func (r *RosterRepository) loadEvents(ctx context.Context, entryIDs []string) (map[string][]roster.PointsEvent, error) {
	if len(entryIDs) == 0 {
		return nil, nil
	}

	ids := make([]any, 0, len(entryIDs))
	for _, id := range entryIDs {
		ids = append(ids, id)
	}
	query, args, err := qb.Select("*").From("points_events").
		Where(qb.In("entry_public_id", ids)).
		OrderBy("race_slug", "stage").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list points events query: %w", err)
	}

	var rows []pointsEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select points events: %w", err)
	}

	out := make(map[string][]roster.PointsEvent, len(entryIDs))
	for _, row := range rows {
		out[row.EntryPublicID] = append(out[row.EntryPublicID], eventFromRow(row))
	}
	return out, nil
}

// replaceEvents rewrites the entry's breakdown wholesale. The breakdown
// is small and bounded by race length, so a delete-and-reinsert keeps
// the child table exactly in step with the aggregate the caller holds.
func replaceEvents(ctx context.Context, tx *sqlx.Tx, entryID string, events []roster.PointsEvent) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM points_events WHERE entry_public_id = $1`, entryID); err != nil {
		return fmt.Errorf("clear points events: %w", err)
	}
	if len(events) == 0 {
		return nil
	}

	builder := qb.InsertInto("points_events").Columns(
		"entry_public_id", "race_slug", "stage", "placing", "gc",
		"points_class", "mountains", "youth", "team_class", "combativity",
		"total", "calculated_at",
	)
	for _, event := range events {
		builder.Values(
			entryID, event.RaceSlug, event.Stage, event.Placing, event.GC,
			event.PointsClass, event.Mountains, event.Youth, event.TeamClass, event.Combativity,
			event.Total, event.CalculatedAt,
		)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return fmt.Errorf("build insert points events query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert points events: %w", err)
	}
	return nil
}
