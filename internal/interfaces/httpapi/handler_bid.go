package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/veloleague/veloleague/internal/usecase"
)

func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PlaceBid")
	defer span.End()

	gameID := r.PathValue("gameID")

	var req placeBidRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.bidService.PlaceBid(ctx, usecase.PlaceBidInput{
		GameID:  gameID,
		UserID:  req.UserID,
		RiderID: req.RiderID,
		Amount:  req.Amount,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "place bid failed", "game_id", gameID, "user_id", req.UserID, "rider_id", req.RiderID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, placeBidToDTO(result))
}

func (h *Handler) CancelBid(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CancelBid")
	defer span.End()

	gameID := r.PathValue("gameID")
	bidID := r.PathValue("bidID")
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if err := h.validateRequest(ctx, cancelBidRequest{UserID: userID}); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.bidService.CancelBid(ctx, gameID, userID, bidID)
	if err != nil {
		h.logger.WarnContext(ctx, "cancel bid failed", "game_id", gameID, "user_id", userID, "bid_id", bidID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, cancelBidToDTO(result))
}

func (h *Handler) GetRiderLedger(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRiderLedger")
	defer span.End()

	gameID := r.PathValue("gameID")
	riderID := r.PathValue("riderID")

	bids, err := h.bidService.LedgerView(ctx, gameID, riderID)
	if err != nil {
		h.logger.WarnContext(ctx, "get rider ledger failed", "game_id", gameID, "rider_id", riderID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]bidDTO, 0, len(bids))
	for _, b := range bids {
		items = append(items, bidToDTO(b))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
