package httpapi

import (
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/veloleague/veloleague/internal/usecase"
)

// GetReconciliation is the read-only drift check. Repair runs only
// through the internal job route.
func (h *Handler) GetReconciliation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetReconciliation")
	defer span.End()

	gameID := r.PathValue("gameID")

	report, err := h.reconciliationService.Reconcile(ctx, gameID, false)
	if err != nil {
		h.logger.WarnContext(ctx, "reconciliation check failed", "game_id", gameID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) RunReconcileJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunReconcileJob")
	defer span.End()

	var req reconcileJobRequest
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

	report, err := h.reconciliationService.Reconcile(ctx, req.GameID, req.Repair)
	if err != nil {
		h.logger.WarnContext(ctx, "run reconcile job failed", "game_id", req.GameID, "repair", req.Repair, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}
