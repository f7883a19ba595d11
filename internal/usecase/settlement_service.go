package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/veloleague/veloleague/internal/domain/auction"
	"github.com/veloleague/veloleague/internal/domain/game"
	"github.com/veloleague/veloleague/internal/domain/roster"
	idgen "github.com/veloleague/veloleague/internal/platform/id"
	"github.com/veloleague/veloleague/internal/platform/lock"
	"github.com/veloleague/veloleague/internal/platform/logging"
)

const defaultSettlementWorkers = 8

const (
	settleStatusSettled = "settled"
	settleStatusFailed  = "failed"
)

// SettlementService converts period-end bid state into committed roster
// ownership. Settlement runs per user under a per-(game, user) lock and
// every write is existence-checked, so an interrupted run resumes by
// simply running again.
type SettlementService struct {
	gameRepo        game.Repository
	participantRepo game.ParticipantRepository
	bidRepo         auction.BidRepository
	periodRepo      auction.PeriodRepository
	rosterRepo      roster.Repository
	ids             idgen.Generator
	userLocks       *lock.Keyed
	logger          *logging.Logger
	now             func() time.Time
	maxWorkers      int
}

func NewSettlementService(
	gameRepo game.Repository,
	participantRepo game.ParticipantRepository,
	bidRepo auction.BidRepository,
	periodRepo auction.PeriodRepository,
	rosterRepo roster.Repository,
	ids idgen.Generator,
	logger *logging.Logger,
) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SettlementService{
		gameRepo:        gameRepo,
		participantRepo: participantRepo,
		bidRepo:         bidRepo,
		periodRepo:      periodRepo,
		rosterRepo:      rosterRepo,
		ids:             ids,
		userLocks:       lock.NewKeyed(),
		logger:          logger,
		now:             time.Now,
		maxWorkers:      defaultSettlementWorkers,
	}
}

// WithMaxWorkers overrides the settlement worker pool size. Values
// below one keep the default.
func (s *SettlementService) WithMaxWorkers(n int) *SettlementService {
	if n > 0 {
		s.maxWorkers = n
	}
	return s
}

type FinalizeResult struct {
	GameID       string               `json:"game_id"`
	PeriodName   string               `json:"period_name"`
	PeriodStatus auction.PeriodStatus `json:"period_status"`
	UsersTotal   int                  `json:"users_total"`
	UsersSettled int                  `json:"users_settled"`
	UsersFailed  int                  `json:"users_failed"`
	Users        []UserSettleResult   `json:"users"`
}

type UserSettleResult struct {
	UserID      string `json:"user_id"`
	Status      string `json:"status"`
	WonBids     int    `json:"won_bids"`
	LostBids    int    `json:"lost_bids"`
	EvictedBids int    `json:"evicted_bids"`
	RosterSize  int    `json:"roster_size"`
	SpentBudget int64  `json:"spent_budget"`
	Message     string `json:"message,omitempty"`
}

// ClosePeriod moves an open period to closed so settlement may consume
// it. Closing an already-closed period is a no-op; a finalized period
// cannot be reopened or re-closed.
func (s *SettlementService) ClosePeriod(ctx context.Context, gameID, periodName string) (auction.Period, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.ClosePeriod")
	defer span.End()

	period, found, err := s.periodRepo.GetByGameAndName(ctx, gameID, periodName)
	if err != nil {
		return auction.Period{}, fmt.Errorf("get period: %w", err)
	}
	if !found {
		return auction.Period{}, fmt.Errorf("%w: period %s", ErrNotFound, periodName)
	}

	switch period.Status {
	case auction.PeriodStatusClosed:
		return period, nil
	case auction.PeriodStatusFinalized:
		return auction.Period{}, fmt.Errorf("%w: period %s is already finalized", ErrInvalidInput, periodName)
	}

	if err := s.periodRepo.UpdateStatus(ctx, gameID, periodName, auction.PeriodStatusClosed); err != nil {
		return auction.Period{}, fmt.Errorf("close period: %w", err)
	}
	period.Status = auction.PeriodStatusClosed

	s.logger.InfoContext(ctx, "auction period closed", "game_id", gameID, "period", periodName)
	return period, nil
}

// Finalize settles every user with unresolved bids in the period. Users
// settle independently over a bounded worker pool; one user's failure is
// reported in their row and never blocks the rest.
func (s *SettlementService) Finalize(ctx context.Context, gameID, periodName string) (FinalizeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.Finalize")
	defer span.End()

	g, period, err := s.loadClosedPeriod(ctx, gameID, periodName)
	if err != nil {
		return FinalizeResult{}, err
	}

	userIDs, err := s.periodUserIDs(ctx, gameID, period)
	if err != nil {
		return FinalizeResult{}, err
	}

	result := FinalizeResult{
		GameID:       gameID,
		PeriodName:   periodName,
		PeriodStatus: period.Status,
		UsersTotal:   len(userIDs),
		Users:        make([]UserSettleResult, 0, len(userIDs)),
	}

	rows := make(chan UserSettleResult, len(userIDs))

	pool, err := ants.NewPool(s.maxWorkers)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("create settlement worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, userID := range userIDs {
		userID := userID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row, settleErr := s.settleUser(ctx, g, period, userID)
			if settleErr != nil {
				s.logger.ErrorContext(ctx, "user settlement failed",
					"game_id", gameID, "period", periodName, "user_id", userID, "error", settleErr)
				row = UserSettleResult{UserID: userID, Status: settleStatusFailed, Message: settleErr.Error()}
			}
			rows <- row
		}); err != nil {
			workers.Done()
			return FinalizeResult{}, fmt.Errorf("submit settlement task: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		if row.Status == settleStatusSettled {
			result.UsersSettled++
		} else {
			result.UsersFailed++
		}
		result.Users = append(result.Users, row)
	}
	sort.SliceStable(result.Users, func(i, j int) bool {
		return result.Users[i].UserID < result.Users[j].UserID
	})

	if result.UsersFailed == 0 && period.Status != auction.PeriodStatusFinalized {
		if err := s.periodRepo.UpdateStatus(ctx, gameID, periodName, auction.PeriodStatusFinalized); err != nil {
			return FinalizeResult{}, fmt.Errorf("mark period finalized: %w", err)
		}
		result.PeriodStatus = auction.PeriodStatusFinalized
	}

	return result, nil
}

// settleUser runs the per-user settlement sequence: resolve bids, evict
// over-cap winners most-recent-first, create missing roster entries and
// recompute the participant aggregate from source records.
func (s *SettlementService) settleUser(ctx context.Context, g game.Game, period auction.Period, userID string) (UserSettleResult, error) {
	unlock := s.userLocks.Lock(g.ID + "::" + userID)
	defer unlock()

	bids, err := s.bidRepo.ListByGameAndWindow(ctx, g.ID, userID, period.StartDate, period.EndDate)
	if err != nil {
		return UserSettleResult{}, fmt.Errorf("list period bids: %w", err)
	}

	row := UserSettleResult{UserID: userID, Status: settleStatusSettled}

	won := make([]auction.Bid, 0, len(bids))
	for _, b := range bids {
		switch b.Status {
		case auction.BidStatusActive, auction.BidStatusWon:
			won = append(won, b)
		case auction.BidStatusOutbid:
			if err := s.bidRepo.UpdateStatus(ctx, b.ID, auction.BidStatusLost); err != nil {
				return UserSettleResult{}, fmt.Errorf("mark bid lost: %w", err)
			}
			row.LostBids++
		case auction.BidStatusLost:
			row.LostBids++
		}
	}

	surviving, evicted, err := s.evictOverCap(ctx, g, userID, won)
	if err != nil {
		return UserSettleResult{}, err
	}
	row.WonBids = len(surviving)
	row.EvictedBids = len(evicted)

	for _, b := range surviving {
		if b.Status != auction.BidStatusWon {
			if err := s.bidRepo.UpdateStatus(ctx, b.ID, auction.BidStatusWon); err != nil {
				return UserSettleResult{}, fmt.Errorf("mark bid won: %w", err)
			}
		}

		// Idempotence check: re-running settlement for an already-settled
		// user must not create a second entry for the same rider.
		if _, exists, err := s.rosterRepo.GetByOwnership(ctx, g.ID, userID, b.RiderID); err != nil {
			return UserSettleResult{}, fmt.Errorf("check roster ownership: %w", err)
		} else if exists {
			continue
		}

		entryID, err := s.ids.NewID()
		if err != nil {
			return UserSettleResult{}, fmt.Errorf("generate entry id: %w", err)
		}
		entry := roster.Entry{
			ID:              entryID,
			GameID:          g.ID,
			UserID:          userID,
			RiderID:         b.RiderID,
			PricePaid:       b.Amount,
			AcquiredAt:      b.PlacedAt,
			AcquisitionType: roster.AcquisitionAuction,
			Active:          true,
		}
		if err := s.rosterRepo.Insert(ctx, entry); err != nil {
			return UserSettleResult{}, fmt.Errorf("insert roster entry: %w", err)
		}
	}

	participant, err := s.RecomputeParticipant(ctx, g, userID)
	if err != nil {
		return UserSettleResult{}, err
	}
	row.RosterSize = participant.RosterSize
	row.SpentBudget = participant.SpentBudget

	return row, nil
}

// evictOverCap drops won bids that cannot fit the roster or budget caps.
// Pre-existing entries from earlier periods count toward both caps;
// eviction removes the most-recently-placed surviving winner first, so
// the policy is deterministic across re-runs.
func (s *SettlementService) evictOverCap(ctx context.Context, g game.Game, userID string, won []auction.Bid) ([]auction.Bid, []auction.Bid, error) {
	entries, err := s.rosterRepo.ListByUser(ctx, g.ID, userID, true)
	if err != nil {
		return nil, nil, fmt.Errorf("list roster entries: %w", err)
	}

	wonRiders := make(map[string]struct{}, len(won))
	for _, b := range won {
		wonRiders[b.RiderID] = struct{}{}
	}

	baseCount := 0
	var baseSpent int64
	for _, entry := range entries {
		if _, ok := wonRiders[entry.RiderID]; ok {
			continue
		}
		baseCount++
		baseSpent += entry.PricePaid
	}

	surviving := append([]auction.Bid(nil), won...)
	sort.SliceStable(surviving, func(i, j int) bool {
		if !surviving[i].PlacedAt.Equal(surviving[j].PlacedAt) {
			return surviving[i].PlacedAt.Before(surviving[j].PlacedAt)
		}
		return surviving[i].ID < surviving[j].ID
	})

	var evicted []auction.Bid
	evict := func(status auction.BidStatus) error {
		last := surviving[len(surviving)-1]
		surviving = surviving[:len(surviving)-1]
		evicted = append(evicted, last)
		if err := s.bidRepo.UpdateStatus(ctx, last.ID, status); err != nil {
			return fmt.Errorf("evict bid %s: %w", last.ID, err)
		}
		// A prior partial run may have created the entry already; the
		// evicted rider must not stay on the roster.
		if entry, exists, err := s.rosterRepo.GetByOwnership(ctx, g.ID, userID, last.RiderID); err != nil {
			return fmt.Errorf("check evicted ownership: %w", err)
		} else if exists && entry.Active {
			if err := s.rosterRepo.Deactivate(ctx, entry.ID); err != nil {
				return fmt.Errorf("deactivate evicted entry: %w", err)
			}
		}
		return nil
	}

	for len(surviving) > 0 && baseCount+len(surviving) > g.MaxRosterSize {
		if err := evict(auction.BidStatusOverflow); err != nil {
			return nil, nil, err
		}
	}

	spent := func() int64 {
		total := baseSpent
		for _, b := range surviving {
			total += b.Amount
		}
		return total
	}
	for len(surviving) > 0 && spent() > g.BudgetCap {
		if err := evict(auction.BidStatusOverbudget); err != nil {
			return nil, nil, err
		}
	}

	return surviving, evicted, nil
}

// RecomputeParticipant rebuilds the derived aggregate from the user's
// active roster entries. Totals are always recomputed from source
// records, never adjusted by deltas.
func (s *SettlementService) RecomputeParticipant(ctx context.Context, g game.Game, userID string) (game.Participant, error) {
	entries, err := s.rosterRepo.ListByUser(ctx, g.ID, userID, true)
	if err != nil {
		return game.Participant{}, fmt.Errorf("list roster entries for recompute: %w", err)
	}

	participant := game.Participant{GameID: g.ID, UserID: userID}
	for _, entry := range entries {
		participant.SpentBudget += entry.PricePaid
		participant.RosterSize++
		participant.TotalPoints += entry.PointsScored
	}
	participant.RosterComplete = participant.RosterSize >= g.MinRosterSize

	if stored, found, err := s.participantRepo.Get(ctx, g.ID, userID); err != nil {
		return game.Participant{}, fmt.Errorf("get participant: %w", err)
	} else if found {
		participant.Ranking = stored.Ranking
	}

	if err := s.participantRepo.Upsert(ctx, participant); err != nil {
		return game.Participant{}, fmt.Errorf("upsert participant: %w", err)
	}
	return participant, nil
}

type RetireEntryResult struct {
	EntryID     string `json:"entry_id"`
	RiderID     string `json:"rider_id"`
	UserID      string `json:"user_id"`
	Refund      int64  `json:"refund"`
	RosterSize  int    `json:"roster_size"`
	SpentBudget int64  `json:"spent_budget"`
}

// RetireEntry soft-deactivates a roster entry when a rider leaves the
// game and refunds its price through a full aggregate recompute. The
// entry and its points history stay on record; retiring an already
// inactive entry is a no-op.
func (s *SettlementService) RetireEntry(ctx context.Context, gameID, entryID string) (RetireEntryResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.RetireEntry")
	defer span.End()

	if gameID == "" || entryID == "" {
		return RetireEntryResult{}, fmt.Errorf("%w: game id and entry id are required", ErrInvalidInput)
	}

	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return RetireEntryResult{}, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return RetireEntryResult{}, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	entry, found, err := s.rosterRepo.GetByID(ctx, entryID)
	if err != nil {
		return RetireEntryResult{}, fmt.Errorf("get roster entry: %w", err)
	}
	if !found || entry.GameID != gameID {
		return RetireEntryResult{}, fmt.Errorf("%w: roster entry %s", ErrNotFound, entryID)
	}

	unlock := s.userLocks.Lock(gameID + "::" + entry.UserID)
	defer unlock()

	if entry.Active {
		if err := s.rosterRepo.Deactivate(ctx, entryID); err != nil {
			return RetireEntryResult{}, fmt.Errorf("deactivate roster entry: %w", err)
		}
	}

	participant, err := s.RecomputeParticipant(ctx, g, entry.UserID)
	if err != nil {
		return RetireEntryResult{}, err
	}

	s.logger.InfoContext(ctx, "roster entry retired",
		"game_id", gameID, "user_id", entry.UserID, "rider_id", entry.RiderID, "refund", entry.PricePaid)

	return RetireEntryResult{
		EntryID:     entryID,
		RiderID:     entry.RiderID,
		UserID:      entry.UserID,
		Refund:      entry.PricePaid,
		RosterSize:  participant.RosterSize,
		SpentBudget: participant.SpentBudget,
	}, nil
}

type FinalizeStatus struct {
	GameID         string             `json:"game_id"`
	PeriodName     string             `json:"period_name"`
	UsersProcessed int                `json:"users_processed"`
	UsersRemaining int                `json:"users_remaining"`
	NextUserID     string             `json:"next_user_id,omitempty"`
	Users          []UserSettleStatus `json:"users"`
}

type UserSettleStatus struct {
	UserID         string `json:"user_id"`
	Settled        bool   `json:"settled"`
	WonBids        int    `json:"won_bids"`
	UnresolvedBids int    `json:"unresolved_bids"`
	RosterEntries  int    `json:"roster_entries"`
}

// Status reports, per user, whether the won-bid set already matches the
// roster entry set, so a retry can target only unprocessed users.
func (s *SettlementService) Status(ctx context.Context, gameID, periodName string) (FinalizeStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.Status")
	defer span.End()

	_, period, err := s.loadClosedPeriod(ctx, gameID, periodName)
	if err != nil {
		return FinalizeStatus{}, err
	}

	userIDs, err := s.periodUserIDs(ctx, gameID, period)
	if err != nil {
		return FinalizeStatus{}, err
	}

	status := FinalizeStatus{
		GameID:     gameID,
		PeriodName: periodName,
		Users:      make([]UserSettleStatus, 0, len(userIDs)),
	}

	for _, userID := range userIDs {
		bids, err := s.bidRepo.ListByGameAndWindow(ctx, gameID, userID, period.StartDate, period.EndDate)
		if err != nil {
			return FinalizeStatus{}, fmt.Errorf("list period bids: %w", err)
		}

		row := UserSettleStatus{UserID: userID, Settled: true}
		for _, b := range bids {
			switch b.Status {
			case auction.BidStatusActive, auction.BidStatusOutbid:
				row.UnresolvedBids++
				row.Settled = false
			case auction.BidStatusWon:
				row.WonBids++
			}
		}

		entries, err := s.rosterRepo.ListByUser(ctx, gameID, userID, true)
		if err != nil {
			return FinalizeStatus{}, fmt.Errorf("list roster entries: %w", err)
		}
		entryRiders := make(map[string]struct{}, len(entries))
		for _, entry := range entries {
			entryRiders[entry.RiderID] = struct{}{}
		}
		row.RosterEntries = len(entries)

		for _, b := range bids {
			if b.Status != auction.BidStatusWon {
				continue
			}
			if _, ok := entryRiders[b.RiderID]; !ok {
				row.Settled = false
			}
		}

		if row.Settled {
			status.UsersProcessed++
		} else {
			status.UsersRemaining++
			if status.NextUserID == "" {
				status.NextUserID = userID
			}
		}
		status.Users = append(status.Users, row)
	}

	return status, nil
}

func (s *SettlementService) loadClosedPeriod(ctx context.Context, gameID, periodName string) (game.Game, auction.Period, error) {
	g, found, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return game.Game{}, auction.Period{}, fmt.Errorf("get game: %w", err)
	}
	if !found {
		return game.Game{}, auction.Period{}, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	period, found, err := s.periodRepo.GetByGameAndName(ctx, gameID, periodName)
	if err != nil {
		return game.Game{}, auction.Period{}, fmt.Errorf("get period: %w", err)
	}
	if !found {
		return game.Game{}, auction.Period{}, fmt.Errorf("%w: period %s", ErrNotFound, periodName)
	}
	if period.Status == auction.PeriodStatusOpen {
		return game.Game{}, auction.Period{}, fmt.Errorf("%w: period %s", auction.ErrPeriodNotClosed, periodName)
	}

	return g, period, nil
}

func (s *SettlementService) periodUserIDs(ctx context.Context, gameID string, period auction.Period) ([]string, error) {
	bids, err := s.bidRepo.ListByGameAndWindow(ctx, gameID, "", period.StartDate, period.EndDate)
	if err != nil {
		return nil, fmt.Errorf("list period bids: %w", err)
	}

	seen := make(map[string]struct{}, len(bids))
	userIDs := make([]string, 0, len(bids))
	for _, b := range bids {
		if _, ok := seen[b.UserID]; ok {
			continue
		}
		seen[b.UserID] = struct{}{}
		userIDs = append(userIDs, b.UserID)
	}
	sort.Strings(userIDs)
	return userIDs, nil
}
