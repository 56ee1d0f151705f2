package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"botFleet/internal/domain"
	"botFleet/internal/ports"
	"botFleet/internal/schema"
)

// BotService abstracts the application operations required by the HTTP
// layer.
type BotService interface {
	CreateBot(ctx context.Context, raw map[string]any) (*domain.BotEntity, error)
	GetBot(ctx context.Context, id string) (*domain.BotEntity, error)
	ListBots(ctx context.Context, query ports.ListQuery) ([]*domain.BotEntity, int, error)
	UpdateBot(ctx context.Context, id string, expectedVersion int64, patch map[string]any) (*domain.BotEntity, error)
	ChangeStatus(ctx context.Context, id string, target domain.BotStatus) (*domain.BotEntity, error)
	DeleteBot(ctx context.Context, id string) error
	RecordTrade(ctx context.Context, raw map[string]any) (*domain.TradeEvent, error)
	ListTrades(ctx context.Context, botID string, offset, limit int) ([]*domain.TradeEvent, int, error)
	GetMetrics(ctx context.Context, botID string) (domain.PerformanceMetrics, error)
}

// NewRouter wires the bot-fleet HTTP handlers.
func NewRouter(logger ports.Logger, svc BotService) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondData(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /api/v1/bots", func(w http.ResponseWriter, r *http.Request) {
		raw, ok := decodeDocument(w, r.Body)
		if !ok {
			return
		}
		ent, err := svc.CreateBot(r.Context(), raw)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		respondData(w, http.StatusCreated, ent)
	})

	mux.HandleFunc("GET /api/v1/bots", func(w http.ResponseWriter, r *http.Request) {
		query, verr := ParseListQuery(r.URL.Query())
		if verr != nil {
			respondError(w, http.StatusBadRequest, CodeValidationFailed, "invalid list parameters", verr.Violations)
			return
		}
		entities, total, err := svc.ListBots(r.Context(), query)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		respondData(w, http.StatusOK, BotPage{
			Items: entities,
			Meta:  pageMeta(query.Offset, len(entities), total),
		})
	})

	mux.HandleFunc("GET /api/v1/bots/{id}", func(w http.ResponseWriter, r *http.Request) {
		ent, err := svc.GetBot(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		respondData(w, http.StatusOK, ent)
	})

	mux.HandleFunc("PATCH /api/v1/bots/{id}", func(w http.ResponseWriter, r *http.Request) {
		var payload UpdateBotRequest
		if err := decodeJSON(r.Body, &payload); err != nil {
			respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body", nil)
			return
		}
		if payload.Version < 1 || len(payload.Patch) == 0 {
			respondError(w, http.StatusBadRequest, CodeBadRequest, "version and a non-empty patch are required", nil)
			return
		}
		ent, err := svc.UpdateBot(r.Context(), r.PathValue("id"), payload.Version, payload.Patch)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		respondData(w, http.StatusOK, ent)
	})

	mux.HandleFunc("POST /api/v1/bots/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		var payload StatusRequest
		if err := decodeJSON(r.Body, &payload); err != nil {
			respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body", nil)
			return
		}
		ent, err := svc.ChangeStatus(r.Context(), r.PathValue("id"), domain.BotStatus(payload.Status))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		respondData(w, http.StatusOK, ent)
	})

	mux.HandleFunc("DELETE /api/v1/bots/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteBot(r.Context(), r.PathValue("id")); err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("POST /api/v1/trades", func(w http.ResponseWriter, r *http.Request) {
		raw, ok := decodeDocument(w, r.Body)
		if !ok {
			return
		}
		event, err := svc.RecordTrade(r.Context(), raw)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		respondData(w, http.StatusCreated, event)
	})

	mux.HandleFunc("GET /api/v1/bots/{id}/trades", func(w http.ResponseWriter, r *http.Request) {
		query, verr := ParseListQuery(r.URL.Query())
		if verr != nil {
			respondError(w, http.StatusBadRequest, CodeValidationFailed, "invalid list parameters", verr.Violations)
			return
		}
		events, total, err := svc.ListTrades(r.Context(), r.PathValue("id"), query.Offset, query.Limit)
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		respondData(w, http.StatusOK, TradePage{
			Items: events,
			Meta:  pageMeta(query.Offset, len(events), total),
		})
	})

	mux.HandleFunc("GET /api/v1/bots/{id}/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics, err := svc.GetMetrics(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, r, logger, err)
			return
		}
		respondData(w, http.StatusOK, metrics)
	})

	return mux
}

// decodeDocument reads an untrusted JSON object, keeping numbers as
// json.Number so decimal values never pass through a binary float.
func decodeDocument(w http.ResponseWriter, body io.Reader) (map[string]any, bool) {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "invalid request body", nil)
		return nil, false
	}
	return raw, true
}

func decodeJSON(body io.Reader, dst any) error {
	dec := json.NewDecoder(body)
	dec.UseNumber()
	return dec.Decode(dst)
}

// writeServiceError translates service failures into stable error codes.
// Raw internal error text is logged, never returned to the caller.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger ports.Logger, err error) {
	var verr *schema.ValidationError
	var invalid *domain.InvalidTransitionError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusUnprocessableEntity, CodeValidationFailed, "validation failed", verr.Violations)
	case errors.As(err, &invalid):
		respondError(w, http.StatusConflict, CodeInvalidTransition, invalid.Error(), nil)
	case errors.Is(err, ports.ErrNotFound):
		respondError(w, http.StatusNotFound, CodeNotFound, "resource not found", nil)
	case errors.Is(err, ports.ErrConflict):
		respondError(w, http.StatusConflict, CodeConflict, "stale version, re-read and retry", nil)
	case errors.Is(err, ports.ErrDuplicateEntry):
		respondError(w, http.StatusConflict, CodeAlreadyExists, "resource already exists", nil)
	default:
		logger.Error(r.Context(), err, "Unhandled service error", map[string]interface{}{"path": r.URL.Path})
		respondError(w, http.StatusInternalServerError, CodeInternal, "internal error", nil)
	}
}
