package httpapi

import (
	"time"

	"github.com/veloleague/veloleague/internal/domain/auction"
	"github.com/veloleague/veloleague/internal/domain/game"
	"github.com/veloleague/veloleague/internal/usecase"
)

type placeBidRequest struct {
	UserID  string `json:"user_id" validate:"required"`
	RiderID string `json:"rider_id" validate:"required"`
	Amount  int64  `json:"amount" validate:"required,gt=0"`
}

type cancelBidRequest struct {
	UserID string `validate:"required"`
}

type finalizeJobRequest struct {
	GameID     string `json:"game_id" validate:"required"`
	PeriodName string `json:"period_name" validate:"required"`
}

type calculatePointsRequest struct {
	RaceSlug string `json:"race_slug" validate:"required"`
	Stage    int    `json:"stage" validate:"required,gt=0"`
	Year     int    `json:"year" validate:"required,gte=2000"`
}

type marginalGainsRequest struct {
	GameID string `json:"game_id" validate:"required"`
}

type retireEntryRequest struct {
	GameID  string `json:"game_id" validate:"required"`
	EntryID string `json:"entry_id" validate:"required"`
}

type reconcileJobRequest struct {
	GameID string `json:"game_id" validate:"required"`
	Repair bool   `json:"repair"`
}

type placeBidDTO struct {
	BidID  string `json:"bid_id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

type cancelBidDTO struct {
	BidID    string `json:"bid_id"`
	Status   string `json:"status"`
	Promoted string `json:"promoted_bid_id,omitempty"`
}

type bidDTO struct {
	ID          string `json:"id"`
	GameID      string `json:"game_id"`
	UserID      string `json:"user_id"`
	RiderID     string `json:"rider_id"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	PlacedAtUTC string `json:"placed_at_utc"`
}

type periodDTO struct {
	GameID       string `json:"game_id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	StartDateUTC string `json:"start_date_utc"`
	EndDateUTC   string `json:"end_date_utc"`
}

type leaderboardRowDTO struct {
	UserID         string `json:"user_id"`
	Ranking        int    `json:"ranking"`
	TotalPoints    int    `json:"total_points"`
	SpentBudget    int64  `json:"spent_budget"`
	RosterSize     int    `json:"roster_size"`
	RosterComplete bool   `json:"roster_complete"`
}

func placeBidToDTO(result usecase.PlaceBidResult) placeBidDTO {
	return placeBidDTO{
		BidID:  result.BidID,
		Status: string(result.Status),
		Amount: result.Amount,
	}
}

func cancelBidToDTO(result usecase.CancelBidResult) cancelBidDTO {
	return cancelBidDTO{
		BidID:    result.BidID,
		Status:   string(result.Status),
		Promoted: result.Promoted,
	}
}

func bidToDTO(b auction.Bid) bidDTO {
	return bidDTO{
		ID:          b.ID,
		GameID:      b.GameID,
		UserID:      b.UserID,
		RiderID:     b.RiderID,
		Amount:      b.Amount,
		Status:      string(b.Status),
		PlacedAtUTC: b.PlacedAt.UTC().Format(time.RFC3339),
	}
}

func periodToDTO(p auction.Period) periodDTO {
	return periodDTO{
		GameID:       p.GameID,
		Name:         p.Name,
		Status:       string(p.Status),
		StartDateUTC: p.StartDate.UTC().Format(time.RFC3339),
		EndDateUTC:   p.EndDate.UTC().Format(time.RFC3339),
	}
}

func participantToLeaderboardDTO(p game.Participant) leaderboardRowDTO {
	return leaderboardRowDTO{
		UserID:         p.UserID,
		Ranking:        p.Ranking,
		TotalPoints:    p.TotalPoints,
		SpentBudget:    p.SpentBudget,
		RosterSize:     p.RosterSize,
		RosterComplete: p.RosterComplete,
	}
}
