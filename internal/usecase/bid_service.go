package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/veloleague/veloleague/internal/domain/auction"
	"github.com/veloleague/veloleague/internal/domain/game"
	"github.com/veloleague/veloleague/internal/domain/rider"
	"github.com/veloleague/veloleague/internal/domain/roster"
	idgen "github.com/veloleague/veloleague/internal/platform/id"
	"github.com/veloleague/veloleague/internal/platform/lock"
	"github.com/veloleague/veloleague/internal/platform/logging"
)

// BidService is the bid ledger. Every mutation of one rider's ledger runs
// under a per-(game, rider) lock so the read-compare-write sequence that
// maintains the single-leader invariant cannot interleave.
type BidService struct {
	gameRepo   game.Repository
	bidRepo    auction.BidRepository
	periodRepo auction.PeriodRepository
	rosterRepo roster.Repository
	catalog    rider.Catalog
	ids        idgen.Generator
	riderLocks *lock.Keyed
	logger     *logging.Logger
	now        func() time.Time
}

func NewBidService(
	gameRepo game.Repository,
	bidRepo auction.BidRepository,
	periodRepo auction.PeriodRepository,
	rosterRepo roster.Repository,
	catalog rider.Catalog,
	ids idgen.Generator,
	logger *logging.Logger,
) *BidService {
	if logger == nil {
		logger = logging.Default()
	}

	return &BidService{
		gameRepo:   gameRepo,
		bidRepo:    bidRepo,
		periodRepo: periodRepo,
		rosterRepo: rosterRepo,
		catalog:    catalog,
		ids:        ids,
		riderLocks: lock.NewKeyed(),
		logger:     logger,
		now:        time.Now,
	}
}

type PlaceBidInput struct {
	GameID  string
	UserID  string
	RiderID string
	Amount  int64
}

type PlaceBidResult struct {
	BidID  string
	Status auction.BidStatus
	Amount int64
}

func (s *BidService) PlaceBid(ctx context.Context, input PlaceBidInput) (PlaceBidResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BidService.PlaceBid")
	defer span.End()

	candidate := auction.Bid{
		GameID:  input.GameID,
		UserID:  input.UserID,
		RiderID: input.RiderID,
		Amount:  input.Amount,
	}
	if err := candidate.ValidateBasic(); err != nil {
		return PlaceBidResult{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	g, found, err := s.gameRepo.GetByID(ctx, input.GameID)
	if err != nil {
		return PlaceBidResult{}, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return PlaceBidResult{}, fmt.Errorf("%w: game %s", ErrNotFound, input.GameID)
	}

	if _, found, err = s.catalog.GetByID(ctx, input.RiderID); err != nil {
		return PlaceBidResult{}, fmt.Errorf("lookup rider: %w", err)
	} else if !found {
		return PlaceBidResult{}, fmt.Errorf("%w: unknown rider %s", ErrInvalidInput, input.RiderID)
	}

	now := s.now().UTC()
	if _, found, err = s.periodRepo.GetOpenByGame(ctx, input.GameID, now); err != nil {
		return PlaceBidResult{}, fmt.Errorf("get open period: %w", err)
	} else if !found {
		return PlaceBidResult{}, fmt.Errorf("%w: game %s", auction.ErrPeriodNotOpen, input.GameID)
	}

	unlock := s.riderLocks.Lock(riderKey(input.GameID, input.RiderID))
	defer unlock()

	riderBids, err := s.bidRepo.ListByGameAndRider(ctx, input.GameID, input.RiderID)
	if err != nil {
		return PlaceBidResult{}, fmt.Errorf("list bids on rider: %w", err)
	}

	leader, hasLeader := auction.HighestActive(riderBids)
	if hasLeader && input.Amount <= leader.Amount {
		return PlaceBidResult{}, fmt.Errorf("%w: leader holds %d", auction.ErrAmountTooLow, leader.Amount)
	}

	ownBid, hasOwnBid := unresolvedBidByUser(riderBids, input.UserID)
	if err := s.checkCapacity(ctx, g, input); err != nil {
		return PlaceBidResult{}, err
	}

	// Demote the current leader before installing the new one so the
	// ledger never holds two active bids on the same rider.
	if hasLeader && (!hasOwnBid || leader.ID != ownBid.ID) {
		if err := s.bidRepo.UpdateStatus(ctx, leader.ID, auction.BidStatusOutbid); err != nil {
			return PlaceBidResult{}, fmt.Errorf("demote leader bid: %w", err)
		}
	}

	if hasOwnBid {
		// Same user, same rider: amend in place rather than duplicate.
		if err := s.bidRepo.UpdateAmount(ctx, ownBid.ID, input.Amount, now); err != nil {
			return PlaceBidResult{}, fmt.Errorf("amend bid amount: %w", err)
		}
		if ownBid.Status != auction.BidStatusActive {
			if err := s.bidRepo.UpdateStatus(ctx, ownBid.ID, auction.BidStatusActive); err != nil {
				return PlaceBidResult{}, fmt.Errorf("promote amended bid: %w", err)
			}
		}

		s.logger.InfoContext(ctx, "bid amended",
			"game_id", input.GameID, "user_id", input.UserID, "rider_id", input.RiderID, "amount", input.Amount)
		return PlaceBidResult{BidID: ownBid.ID, Status: auction.BidStatusActive, Amount: input.Amount}, nil
	}

	bidID, err := s.ids.NewID()
	if err != nil {
		return PlaceBidResult{}, fmt.Errorf("generate bid id: %w", err)
	}

	candidate.ID = bidID
	candidate.Status = auction.BidStatusActive
	candidate.PlacedAt = now
	if err := s.bidRepo.Insert(ctx, candidate); err != nil {
		return PlaceBidResult{}, fmt.Errorf("insert bid: %w", err)
	}

	s.logger.InfoContext(ctx, "bid placed",
		"game_id", input.GameID, "user_id", input.UserID, "rider_id", input.RiderID, "amount", input.Amount)
	return PlaceBidResult{BidID: bidID, Status: auction.BidStatusActive, Amount: input.Amount}, nil
}

// checkCapacity rejects a bid whose acceptance could not settle within
// the user's caps, counting committed roster entries plus the user's own
// pending active bids. An amendment replaces an existing pending bid, so
// its previous amount and slot are excluded from the count.
func (s *BidService) checkCapacity(ctx context.Context, g game.Game, input PlaceBidInput) error {
	entries, err := s.rosterRepo.ListByUser(ctx, input.GameID, input.UserID, true)
	if err != nil {
		return fmt.Errorf("list roster entries: %w", err)
	}

	var spent int64
	for _, entry := range entries {
		spent += entry.PricePaid
	}

	activeBids, err := s.bidRepo.ListActiveByUser(ctx, input.GameID, input.UserID)
	if err != nil {
		return fmt.Errorf("list active bids: %w", err)
	}

	pendingCount := 0
	var pendingSum int64
	for _, b := range activeBids {
		if b.RiderID == input.RiderID {
			continue
		}
		pendingCount++
		pendingSum += b.Amount
	}

	// The pending loop already skipped any own bid on this rider, so an
	// amendment and a fresh bid both claim exactly one slot here.
	slots := len(entries) + pendingCount + 1
	if slots > g.MaxRosterSize {
		return fmt.Errorf("%w: max %d riders", auction.ErrRosterCapExceeded, g.MaxRosterSize)
	}
	if spent+pendingSum+input.Amount > g.BudgetCap {
		return fmt.Errorf("%w: cap %d", auction.ErrBudgetExceeded, g.BudgetCap)
	}
	return nil
}

type CancelBidResult struct {
	BidID    string
	Status   auction.BidStatus
	Promoted string
}

func (s *BidService) CancelBid(ctx context.Context, gameID, userID, bidID string) (CancelBidResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BidService.CancelBid")
	defer span.End()

	if gameID == "" || userID == "" || bidID == "" {
		return CancelBidResult{}, fmt.Errorf("%w: game id, user id and bid id are required", ErrInvalidInput)
	}

	bid, found, err := s.bidRepo.GetByID(ctx, bidID)
	if err != nil {
		return CancelBidResult{}, fmt.Errorf("get bid: %w", err)
	}
	if !found || bid.GameID != gameID {
		return CancelBidResult{}, fmt.Errorf("%w: bid %s", ErrNotFound, bidID)
	}
	if bid.UserID != userID {
		return CancelBidResult{}, fmt.Errorf("%w: bid %s", auction.ErrBidNotOwned, bidID)
	}

	now := s.now().UTC()
	period, found, err := s.periodRepo.GetOpenByGame(ctx, gameID, now)
	if err != nil {
		return CancelBidResult{}, fmt.Errorf("get open period: %w", err)
	}
	if !found || !period.Contains(bid.PlacedAt) {
		return CancelBidResult{}, fmt.Errorf("%w: bids cannot be withdrawn once the period closes", auction.ErrPeriodNotOpen)
	}

	unlock := s.riderLocks.Lock(riderKey(bid.GameID, bid.RiderID))
	defer unlock()

	// Re-read inside the lock; a concurrent settlement or outbid may have
	// moved the bid since the ownership check.
	bid, found, err = s.bidRepo.GetByID(ctx, bidID)
	if err != nil || !found {
		return CancelBidResult{}, fmt.Errorf("reload bid: %w", err)
	}
	if bid.Status != auction.BidStatusActive && bid.Status != auction.BidStatusOutbid {
		return CancelBidResult{}, fmt.Errorf("%w: status %s", auction.ErrBidNotCancellable, bid.Status)
	}

	wasActive := bid.Status == auction.BidStatusActive
	if err := s.bidRepo.UpdateStatus(ctx, bidID, auction.BidStatusCancelled); err != nil {
		return CancelBidResult{}, fmt.Errorf("cancel bid: %w", err)
	}

	result := CancelBidResult{BidID: bidID, Status: auction.BidStatusCancelled}
	if !wasActive {
		return result, nil
	}

	riderBids, err := s.bidRepo.ListByGameAndRider(ctx, bid.GameID, bid.RiderID)
	if err != nil {
		return CancelBidResult{}, fmt.Errorf("list bids on rider: %w", err)
	}
	next, ok := auction.NextLeader(riderBids)
	if !ok {
		return result, nil
	}
	if err := s.bidRepo.UpdateStatus(ctx, next.ID, auction.BidStatusActive); err != nil {
		return CancelBidResult{}, fmt.Errorf("promote next bid: %w", err)
	}

	s.logger.InfoContext(ctx, "bid cancelled, next leader promoted",
		"game_id", bid.GameID, "rider_id", bid.RiderID, "promoted_bid_id", next.ID)
	result.Promoted = next.ID
	return result, nil
}

// LedgerView returns all non-cancelled bids on a rider, leader first.
func (s *BidService) LedgerView(ctx context.Context, gameID, riderID string) ([]auction.Bid, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BidService.LedgerView")
	defer span.End()

	bids, err := s.bidRepo.ListByGameAndRider(ctx, gameID, riderID)
	if err != nil {
		return nil, fmt.Errorf("list bids on rider: %w", err)
	}

	out := make([]auction.Bid, 0, len(bids))
	if leader, ok := auction.HighestActive(bids); ok {
		out = append(out, leader)
	}
	for _, b := range bids {
		if b.Status == auction.BidStatusActive || b.Status.Cancelled() {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func unresolvedBidByUser(bids []auction.Bid, userID string) (auction.Bid, bool) {
	for _, b := range bids {
		if b.UserID != userID || b.Status.Resolved() {
			continue
		}
		return b, true
	}
	return auction.Bid{}, false
}

func riderKey(gameID, riderID string) string {
	return gameID + "::" + riderID
}
