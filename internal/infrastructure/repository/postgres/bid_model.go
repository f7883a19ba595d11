package postgres

import "time"

type bidTableModel struct {
	ID        int64      `db:"id"`
	PublicID  string     `db:"public_id"`
	GameID    string     `db:"game_id"`
	UserID    string     `db:"user_id"`
	RiderID   string     `db:"rider_id"`
	Amount    int64      `db:"amount"`
	Status    string     `db:"status"`
	PlacedAt  time.Time  `db:"placed_at"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type bidInsertModel struct {
	PublicID string    `db:"public_id"`
	GameID   string    `db:"game_id"`
	UserID   string    `db:"user_id"`
	RiderID  string    `db:"rider_id"`
	Amount   int64     `db:"amount"`
	Status   string    `db:"status"`
	PlacedAt time.Time `db:"placed_at"`
}
