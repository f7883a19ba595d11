package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/veloleague/veloleague/internal/domain/auction"
)

type BidRepository struct {
	mu    sync.RWMutex
	items map[string]auction.Bid
}

func NewBidRepository() *BidRepository {
	return &BidRepository{items: make(map[string]auction.Bid)}
}

func (r *BidRepository) GetByID(_ context.Context, bidID string) (auction.Bid, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bid, ok := r.items[bidID]
	if !ok {
		return auction.Bid{}, false, nil
	}

	return bid, true, nil
}

func (r *BidRepository) ListByGameAndRider(_ context.Context, gameID, riderID string) ([]auction.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]auction.Bid, 0)
	for _, bid := range r.items {
		if bid.GameID == gameID && bid.RiderID == riderID {
			out = append(out, bid)
		}
	}

	return out, nil
}

func (r *BidRepository) ListByGameAndWindow(_ context.Context, gameID, userID string, from, to time.Time) ([]auction.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]auction.Bid, 0)
	for _, bid := range r.items {
		if bid.GameID != gameID {
			continue
		}
		if userID != "" && bid.UserID != userID {
			continue
		}
		if bid.PlacedAt.Before(from) || bid.PlacedAt.After(to) {
			continue
		}
		out = append(out, bid)
	}

	return out, nil
}

func (r *BidRepository) ListActiveByUser(_ context.Context, gameID, userID string) ([]auction.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]auction.Bid, 0)
	for _, bid := range r.items {
		if bid.GameID == gameID && bid.UserID == userID && bid.Status == auction.BidStatusActive {
			out = append(out, bid)
		}
	}

	return out, nil
}

func (r *BidRepository) Insert(_ context.Context, bid auction.Bid) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[bid.ID]; exists {
		return fmt.Errorf("bid %s already exists", bid.ID)
	}
	r.items[bid.ID] = bid

	return nil
}

func (r *BidRepository) UpdateStatus(_ context.Context, bidID string, status auction.BidStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bid, ok := r.items[bidID]
	if !ok {
		return fmt.Errorf("bid %s not found", bidID)
	}
	bid.Status = status
	r.items[bidID] = bid

	return nil
}

func (r *BidRepository) UpdateAmount(_ context.Context, bidID string, amount int64, placedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bid, ok := r.items[bidID]
	if !ok {
		return fmt.Errorf("bid %s not found", bidID)
	}
	bid.Amount = amount
	bid.PlacedAt = placedAt
	r.items[bidID] = bid

	return nil
}
