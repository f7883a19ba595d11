package auction

import (
	"context"
	"time"
)

// BidRepository describes bid ledger persistence needs from use cases.
type BidRepository interface {
	GetByID(ctx context.Context, bidID string) (Bid, bool, error)
	ListByGameAndRider(ctx context.Context, gameID, riderID string) ([]Bid, error)
	// ListByGameAndWindow returns bids placed inside [from, to] for one
	// game, optionally narrowed to one user (empty userID means all).
	ListByGameAndWindow(ctx context.Context, gameID, userID string, from, to time.Time) ([]Bid, error)
	ListActiveByUser(ctx context.Context, gameID, userID string) ([]Bid, error)
	Insert(ctx context.Context, bid Bid) error
	UpdateStatus(ctx context.Context, bidID string, status BidStatus) error
	UpdateAmount(ctx context.Context, bidID string, amount int64, placedAt time.Time) error
}

// PeriodRepository stores auction period windows and their lifecycle.
type PeriodRepository interface {
	GetByGameAndName(ctx context.Context, gameID, name string) (Period, bool, error)
	GetOpenByGame(ctx context.Context, gameID string, at time.Time) (Period, bool, error)
	Upsert(ctx context.Context, period Period) error
	UpdateStatus(ctx context.Context, gameID, name string, status PeriodStatus) error
}
