package postgres

import (
	"time"

	"github.com/veloleague/veloleague/internal/domain/roster"
)

type rosterEntryTableModel struct {
	ID              int64      `db:"id"`
	PublicID        string     `db:"public_id"`
	GameID          string     `db:"game_id"`
	UserID          string     `db:"user_id"`
	RiderID         string     `db:"rider_id"`
	PricePaid       int64      `db:"price_paid"`
	AcquiredAt      time.Time  `db:"acquired_at"`
	AcquisitionType string     `db:"acquisition_type"`
	Active          bool       `db:"active"`
	PointsScored    int        `db:"points_scored"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at"`
}

type rosterEntryInsertModel struct {
	PublicID        string    `db:"public_id"`
	GameID          string    `db:"game_id"`
	UserID          string    `db:"user_id"`
	RiderID         string    `db:"rider_id"`
	PricePaid       int64     `db:"price_paid"`
	AcquiredAt      time.Time `db:"acquired_at"`
	AcquisitionType string    `db:"acquisition_type"`
	Active          bool      `db:"active"`
	PointsScored    int       `db:"points_scored"`
}

type pointsEventTableModel struct {
	ID            int64     `db:"id"`
	EntryPublicID string    `db:"entry_public_id"`
	RaceSlug      string    `db:"race_slug"`
	Stage         int       `db:"stage"`
	Placing       int       `db:"placing"`
	GC            int       `db:"gc"`
	PointsClass   int       `db:"points_class"`
	Mountains     int       `db:"mountains"`
	Youth         int       `db:"youth"`
	TeamClass     int       `db:"team_class"`
	Combativity   int       `db:"combativity"`
	Total         int       `db:"total"`
	CalculatedAt  time.Time `db:"calculated_at"`
}

func entryFromRow(row rosterEntryTableModel, events []roster.PointsEvent) roster.Entry {
	return roster.Entry{
		ID:              row.PublicID,
		GameID:          row.GameID,
		UserID:          row.UserID,
		RiderID:         row.RiderID,
		PricePaid:       row.PricePaid,
		AcquiredAt:      row.AcquiredAt,
		AcquisitionType: roster.AcquisitionType(row.AcquisitionType),
		Active:          row.Active,
		PointsScored:    row.PointsScored,
		PointsBreakdown: events,
	}
}

func eventFromRow(row pointsEventTableModel) roster.PointsEvent {
	return roster.PointsEvent{
		RaceSlug:     row.RaceSlug,
		Stage:        row.Stage,
		Placing:      row.Placing,
		GC:           row.GC,
		PointsClass:  row.PointsClass,
		Mountains:    row.Mountains,
		Youth:        row.Youth,
		TeamClass:    row.TeamClass,
		Combativity:  row.Combativity,
		Total:        row.Total,
		CalculatedAt: row.CalculatedAt,
	}
}
