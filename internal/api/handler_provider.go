package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fastprodman/battlearena/internal/models"
	"github.com/fastprodman/battlearena/internal/services/arena"
)

// Engine is the matchmaking and battle lifecycle surface the handlers drive.
type Engine interface {
	Submit(ctx context.Context, in arena.SubmitInput) (models.Prediction, error)
	Cancel(ctx context.Context, predictionID uuid.UUID, userID string) (models.Prediction, error)
	GetPrediction(ctx context.Context, predictionID uuid.UUID, userID string) (models.Prediction, error)
	ListSearching(ctx context.Context, userID string) ([]models.Prediction, error)
	FindOrCreateMatch(ctx context.Context, predictionID uuid.UUID) (arena.MatchResult, error)

	GetBattle(ctx context.Context, battleID uuid.UUID, userID string) (arena.BattleView, error)
	BattleStatus(ctx context.Context, battleID uuid.UUID, userID string) (arena.BattleStatusView, error)
	Accept(ctx context.Context, battleID uuid.UUID, userID string) (arena.AcceptResult, error)
	Decline(ctx context.Context, battleID uuid.UUID, userID string) (arena.DeclineResult, error)
	ListPendingForUser(ctx context.Context, userID string) ([]models.Battle, error)
	ListBattles(ctx context.Context, userID string) ([]models.Battle, error)
}

// PriceSource supplies the reference price when a submission omits one.
type PriceSource interface {
	CurrentPrice(ctx context.Context) (decimal.Decimal, error)
}

var _ Engine = (*arena.Service)(nil)

// HandlerProvider exposes the engine over HTTP.
type HandlerProvider struct {
	engine    Engine
	prices    PriceSource
	autoMatch bool
}

func NewHandler(engine Engine, prices PriceSource, autoMatch bool) *HandlerProvider {
	return &HandlerProvider{engine: engine, prices: prices, autoMatch: autoMatch}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing %s", name)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}

	return id, nil
}

// decodeBody limits the body to 1 MiB and rejects unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}

		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// --- Predictions ---

type submitRequest struct {
	PredictedPrice decimal.Decimal  `json:"predicted_price"`
	Direction      models.Direction `json:"direction"`
	Stake          decimal.Decimal  `json:"stake"`
	ReferencePrice *decimal.Decimal `json:"reference_price,omitempty"`
}

type submitResponse struct {
	Prediction models.Prediction  `json:"prediction"`
	Match      *arena.MatchResult `json:"match,omitempty"`
	MatchError string             `json:"match_error,omitempty"`
}

// SubmitPredictionHandler handles POST /predictions
func (h *HandlerProvider) SubmitPredictionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req submitRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var ref decimal.Decimal
	if req.ReferencePrice != nil {
		ref = *req.ReferencePrice
	} else {
		ref, err = h.prices.CurrentPrice(r.Context())
		if err != nil {
			writeEngineError(w, r, err)
			return
		}
	}

	p, err := h.engine.Submit(r.Context(), arena.SubmitInput{
		UserID:         userID,
		PredictedPrice: req.PredictedPrice,
		Direction:      req.Direction,
		Stake:          req.Stake,
		ReferencePrice: ref,
	})
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	resp := submitResponse{Prediction: p}

	if h.autoMatch {
		// the prediction is stored either way; a failed match is reported, not fatal
		res, merr := h.engine.FindOrCreateMatch(r.Context(), p.ID)
		if merr != nil {
			slog.WarnContext(r.Context(), "auto match failed", "prediction_id", p.ID, "error", merr)
			resp.MatchError = merr.Error()
		} else {
			resp.Match = &res
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

// ListPredictionsHandler handles GET /predictions
func (h *HandlerProvider) ListPredictionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	out, err := h.engine.ListSearching(r.Context(), userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"predictions": out})
}

// GetPredictionHandler handles GET /predictions/{predictionId}
func (h *HandlerProvider) GetPredictionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "predictionId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.engine.GetPrediction(r.Context(), id, userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// CancelPredictionHandler handles POST /predictions/{predictionId}/cancel
func (h *HandlerProvider) CancelPredictionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "predictionId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.engine.Cancel(r.Context(), id, userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// FindMatchHandler handles POST /predictions/{predictionId}/match
func (h *HandlerProvider) FindMatchHandler(w http.ResponseWriter, r *http.Request) {
	_, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "predictionId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.engine.FindOrCreateMatch(r.Context(), id)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// --- Battles ---

// ListBattlesHandler handles GET /battles
func (h *HandlerProvider) ListBattlesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	out, err := h.engine.ListBattles(r.Context(), userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"battles": out})
}

// ListPendingBattlesHandler handles GET /battles/pending
func (h *HandlerProvider) ListPendingBattlesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	out, err := h.engine.ListPendingForUser(r.Context(), userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"battles": out})
}

// GetBattleHandler handles GET /battles/{battleId}
func (h *HandlerProvider) GetBattleHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "battleId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.engine.GetBattle(r.Context(), id, userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// BattleStatusHandler handles GET /battles/{battleId}/status
func (h *HandlerProvider) BattleStatusHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "battleId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.engine.BattleStatus(r.Context(), id, userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, v)
}

// AcceptBattleHandler handles POST /battles/{battleId}/accept
func (h *HandlerProvider) AcceptBattleHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "battleId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.engine.Accept(r.Context(), id, userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// DeclineBattleHandler handles POST /battles/{battleId}/decline
func (h *HandlerProvider) DeclineBattleHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r, "battleId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.engine.Decline(r.Context(), id, userID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}
