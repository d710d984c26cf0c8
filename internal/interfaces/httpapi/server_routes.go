package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerTrackingRoutes(mux *http.ServeMux, handler *Handler, internalAPIToken string) {
	mux.Handle("POST /v1/tracking/matches", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.EnrollMatch)))
	mux.Handle("DELETE /v1/tracking/matches/{matchID}", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.UnenrollMatch)))
	mux.Handle("GET /v1/tracking/jobs", RequireInternalToken(internalAPIToken, http.HandlerFunc(handler.ListTrackingJobs)))
}
