package transport

import (
	"net/http"

	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/auth"
	"github.com/Anaya3104-pk/smart-bus-pass-system/internal/shared/logger"
)

// Routes registers all tracking endpoints. The live snapshot, the route
// listing and the websocket upgrade are public; ingest and history need a
// bearer token.
func Routes(mux *http.ServeMux, h *Handler, serveWS http.HandlerFunc, jwtService *auth.JWTService, log *logger.Logger) {
	authRequired := AuthMiddleware(jwtService, log)

	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /bus/live", h.LiveBuses)
	mux.HandleFunc("GET /routes", h.Routes)
	mux.HandleFunc("GET /ws/track", serveWS)

	mux.Handle("POST /bus/update-location", authRequired(http.HandlerFunc(h.UpdateLocation)))
	mux.Handle("GET /bus/{busId}/history", authRequired(http.HandlerFunc(h.BusHistory)))
	mux.Handle("GET /me/active-route", authRequired(http.HandlerFunc(h.ActiveRoute)))

	log.Info("tracking routes registered")
}
