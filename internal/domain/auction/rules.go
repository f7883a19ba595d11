package auction

import (
	"errors"
	"sort"
)

var (
	ErrAmountTooLow      = errors.New("bid amount does not beat current leader")
	ErrPeriodNotOpen     = errors.New("auction period is not open")
	ErrPeriodNotClosed   = errors.New("auction period is not closed")
	ErrBudgetExceeded    = errors.New("budget cap exceeded")
	ErrRosterCapExceeded = errors.New("roster size cap exceeded")
	ErrBidNotCancellable = errors.New("bid can no longer be cancelled")
	ErrBidNotOwned       = errors.New("bid belongs to another user")
)

// HighestActive returns the active bid among the given bids on a single
// rider, if any. Cancelled and resolved bids never lead.
func HighestActive(bids []Bid) (Bid, bool) {
	for _, b := range bids {
		if b.Status == BidStatusActive {
			return b, true
		}
	}
	return Bid{}, false
}

// NextLeader picks the outbid bid that should be promoted when the
// active bid is cancelled: highest amount, earliest placement on ties.
func NextLeader(bids []Bid) (Bid, bool) {
	candidates := make([]Bid, 0, len(bids))
	for _, b := range bids {
		if b.Status == BidStatusOutbid {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return Bid{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Amount != candidates[j].Amount {
			return candidates[i].Amount > candidates[j].Amount
		}
		return candidates[i].PlacedAt.Before(candidates[j].PlacedAt)
	})
	return candidates[0], true
}

// CheckLeaderInvariant verifies that at most one non-cancelled bid on a
// rider is active and that it carries the maximum amount.
func CheckLeaderInvariant(bids []Bid) error {
	var leader *Bid
	for i := range bids {
		if bids[i].Status != BidStatusActive {
			continue
		}
		if leader != nil {
			return errors.New("more than one active bid on rider")
		}
		leader = &bids[i]
	}
	if leader == nil {
		return nil
	}
	for _, b := range bids {
		if b.Status.Cancelled() {
			continue
		}
		if b.Amount > leader.Amount {
			return errors.New("active bid is not the maximum amount")
		}
	}
	return nil
}
