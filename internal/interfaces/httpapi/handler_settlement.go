package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/veloleague/veloleague/internal/usecase"
)

func (h *Handler) ClosePeriod(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClosePeriod")
	defer span.End()

	gameID := r.PathValue("gameID")
	periodName := r.PathValue("periodName")

	period, err := h.settlementService.ClosePeriod(ctx, gameID, periodName)
	if err != nil {
		h.logger.WarnContext(ctx, "close period failed", "game_id", gameID, "period", periodName, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, periodToDTO(period))
}

func (h *Handler) RunFinalizeJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunFinalizeJob")
	defer span.End()

	req, err := decodeFinalizeJobRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.settlementService.Finalize(ctx, req.GameID, req.PeriodName)
	if err != nil {
		h.logger.WarnContext(ctx, "run finalize job failed", "game_id", req.GameID, "period", req.PeriodName, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) GetFinalizeStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFinalizeStatus")
	defer span.End()

	gameID := r.PathValue("gameID")
	periodName := r.PathValue("periodName")

	status, err := h.settlementService.Status(ctx, gameID, periodName)
	if err != nil {
		h.logger.WarnContext(ctx, "get finalize status failed", "game_id", gameID, "period", periodName, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, status)
}

func (h *Handler) RunRetireRosterEntryJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRetireRosterEntryJob")
	defer span.End()

	var req retireEntryRequest
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

	result, err := h.settlementService.RetireEntry(ctx, req.GameID, req.EntryID)
	if err != nil {
		h.logger.WarnContext(ctx, "run retire roster entry job failed", "game_id", req.GameID, "entry_id", req.EntryID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func decodeFinalizeJobRequest(r *http.Request) (finalizeJobRequest, error) {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req finalizeJobRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return finalizeJobRequest{}, nil
		}
		return finalizeJobRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
