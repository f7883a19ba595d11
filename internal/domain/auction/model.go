package auction

import (
	"fmt"
	"time"
)

// BidStatus is the bid state machine. A bid is resolved to won/lost only
// by settlement; overflow statuses are terminal settlement outcomes.
type BidStatus string

const (
	BidStatusActive     BidStatus = "active"
	BidStatusOutbid     BidStatus = "outbid"
	BidStatusWon        BidStatus = "won"
	BidStatusLost       BidStatus = "lost"
	BidStatusCancelled  BidStatus = "cancelled"
	BidStatusOverflow   BidStatus = "cancelled_overflow"
	BidStatusOverbudget BidStatus = "cancelled_overbudget"
)

// Cancelled reports whether the status counts as a cancelled bid for the
// single-leader invariant: at most one non-cancelled bid per
// (game, rider) is active, and it holds the maximum amount.
func (s BidStatus) Cancelled() bool {
	switch s {
	case BidStatusCancelled, BidStatusOverflow, BidStatusOverbudget:
		return true
	}
	return false
}

// Resolved reports whether settlement already consumed the bid.
func (s BidStatus) Resolved() bool {
	switch s {
	case BidStatusWon, BidStatusLost:
		return true
	}
	return s.Cancelled()
}

// Bid is one credit offer on a rider within a game.
type Bid struct {
	ID       string
	GameID   string
	UserID   string
	RiderID  string
	Amount   int64
	Status   BidStatus
	PlacedAt time.Time
}

func (b Bid) ValidateBasic() error {
	if b.GameID == "" {
		return fmt.Errorf("game id is required")
	}
	if b.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if b.RiderID == "" {
		return fmt.Errorf("rider id is required")
	}
	if b.Amount <= 0 {
		return fmt.Errorf("bid amount must be greater than zero")
	}
	return nil
}

// PeriodStatus is the auction period state machine: open → closed → finalized.
type PeriodStatus string

const (
	PeriodStatusOpen      PeriodStatus = "open"
	PeriodStatusClosed    PeriodStatus = "closed"
	PeriodStatusFinalized PeriodStatus = "finalized"
)

// Period is a bounded bidding window whose bids settlement consumes
// exactly once.
type Period struct {
	GameID    string
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Status    PeriodStatus
}

// Contains reports whether a bid placed at t falls inside the window.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.StartDate) && !t.After(p.EndDate)
}
