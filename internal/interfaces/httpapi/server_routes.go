package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerGameRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/games/{gameID}/bids", handler.PlaceBid)
	mux.HandleFunc("DELETE /v1/games/{gameID}/bids/{bidID}", handler.CancelBid)
	mux.HandleFunc("GET /v1/games/{gameID}/bids/riders/{riderID}", handler.GetRiderLedger)
	mux.HandleFunc("POST /v1/games/{gameID}/periods/{periodName}/close", handler.ClosePeriod)
	mux.HandleFunc("GET /v1/games/{gameID}/periods/{periodName}/finalize-status", handler.GetFinalizeStatus)
	mux.HandleFunc("GET /v1/games/{gameID}/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/games/{gameID}/reconciliation", handler.GetReconciliation)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/finalize", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunFinalizeJob)))
	mux.Handle("POST /v1/internal/jobs/calculate-points", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunCalculatePointsJob)))
	mux.Handle("POST /v1/internal/jobs/recalculate-marginal-gains", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecalculateMarginalGainsJob)))
	mux.Handle("POST /v1/internal/jobs/reconcile", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunReconcileJob)))
	mux.Handle("POST /v1/internal/jobs/retire-roster-entry", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRetireRosterEntryJob)))
}
