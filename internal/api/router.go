package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter registers every endpoint behind request id, panic recovery,
// access logging and identity resolution.
func NewRouter(h *HandlerProvider, verifier SignatureVerifier) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(Identity(verifier))

	r.Route("/predictions", func(r chi.Router) {
		r.Post("/", h.SubmitPredictionHandler)
		r.Get("/", h.ListPredictionsHandler)
		r.Get("/{predictionId}", h.GetPredictionHandler)
		r.Post("/{predictionId}/cancel", h.CancelPredictionHandler)
		r.Post("/{predictionId}/match", h.FindMatchHandler)
	})

	r.Route("/battles", func(r chi.Router) {
		r.Get("/", h.ListBattlesHandler)
		r.Get("/pending", h.ListPendingBattlesHandler)
		r.Get("/{battleId}", h.GetBattleHandler)
		r.Get("/{battleId}/status", h.BattleStatusHandler)
		r.Post("/{battleId}/accept", h.AcceptBattleHandler)
		r.Post("/{battleId}/decline", h.DeclineBattleHandler)
	})

	return r
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
