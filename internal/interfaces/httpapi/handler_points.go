package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/veloleague/veloleague/internal/usecase"
)

func (h *Handler) RunCalculatePointsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCalculatePointsJob")
	defer span.End()

	var req calculatePointsRequest
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

	result, err := h.pointsService.CalculatePoints(ctx, req.RaceSlug, req.Stage, req.Year)
	if err != nil {
		h.logger.WarnContext(ctx, "run calculate points job failed", "race_slug", req.RaceSlug, "stage", req.Stage, "year", req.Year, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunRecalculateMarginalGainsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecalculateMarginalGainsJob")
	defer span.End()

	var req marginalGainsRequest
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

	result, err := h.pointsService.RecalculateMarginalGains(ctx, req.GameID)
	if err != nil {
		h.logger.WarnContext(ctx, "run recalculate marginal gains job failed", "game_id", req.GameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	gameID := r.PathValue("gameID")

	participants, err := h.pointsService.Leaderboard(ctx, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardRowDTO, 0, len(participants))
	for _, p := range participants {
		items = append(items, participantToLeaderboardDTO(p))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}
