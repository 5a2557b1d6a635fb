package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/eugenenazirov/offer-desk/internal/auth"
	"github.com/eugenenazirov/offer-desk/internal/backend"
	"github.com/eugenenazirov/offer-desk/internal/calculator"
	"github.com/eugenenazirov/offer-desk/internal/convert"
	"github.com/eugenenazirov/offer-desk/internal/form"
	"github.com/eugenenazirov/offer-desk/internal/offer"
	"github.com/eugenenazirov/offer-desk/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// OfferBackend is the part of the offers backend the handlers depend on.
type OfferBackend interface {
	Dimensions(ctx context.Context) ([]calculator.PackageDimension, error)
	Vocabulary(ctx context.Context) (offer.Vocabulary, error)
	Offers(ctx context.Context) ([]offer.Record, error)
	SubmitOffer(ctx context.Context, sub offer.Submission) (offer.Record, error)
}

// Handler wires calculator, storage, backend and auth dependencies into HTTP handlers.
type Handler struct {
	calculator calculator.Calculator
	storage    storage.Storage
	backend    OfferBackend
	auth       *auth.Service

	logger *zap.Logger
	locale language.Tag
	clock  func() time.Time

	mu                  sync.RWMutex
	dimensionsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithLogger sets the logger used for backend and submission events.
func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithLocale sets the language used to sort offer listings.
func WithLocale(tag language.Tag) HandlerOption {
	return func(h *Handler) {
		h.locale = tag
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(calc calculator.Calculator, store storage.Storage, offers OfferBackend, authSvc *auth.Service, opts ...HandlerOption) *Handler {
	h := &Handler{
		calculator: calc,
		storage:    store,
		backend:    offers,
		auth:       authSvc,
		logger:     zap.NewNop(),
		locale:     language.English,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.dimensionsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetDimensions(w http.ResponseWriter, r *http.Request) {
	_ = r
	dims, err := h.storage.GetDimensions()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := dimensionsResponse{
		Dimensions: dims,
		UpdatedAt:  h.currentDimensionsUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutDimensions(w http.ResponseWriter, r *http.Request) {
	var req dimensionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Dimensions) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid dimensions", "dimensions must contain at least one package type")
		return
	}

	if err := h.storage.SetDimensions(req.Dimensions); err != nil {
		if errors.Is(err, storage.ErrInvalidDimensions) {
			writeError(w, http.StatusBadRequest, "Invalid dimensions", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.writeDimensions(w, "Dimensions updated successfully")
}

func (h *Handler) handleRefreshDimensions(w http.ResponseWriter, r *http.Request) {
	dims, err := h.backend.Dimensions(r.Context())
	if err != nil {
		h.writeBackendError(w, "fetch dimensions", err)
		return
	}

	if err := h.storage.SetDimensions(dims); err != nil {
		h.logger.Warn("backend returned invalid dimensions", zap.Int("count", len(dims)), zap.Error(err))
		writeError(w, http.StatusBadGateway, "Backend unavailable", err.Error())
		return
	}

	h.writeDimensions(w, "Dimensions refreshed from backend")
}

func (h *Handler) writeDimensions(w http.ResponseWriter, message string) {
	h.markDimensionsUpdated()

	dims, err := h.storage.GetDimensions()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := dimensionsResponse{
		Dimensions: dims,
		UpdatedAt:  h.currentDimensionsUpdatedAt(),
		Message:    message,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleInchToCentimetre(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("inch")
	cm, err := convert.InchesToCentimetres(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid length", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, conversionResponse{Inch: raw, Centimetre: cm.String()})
}

func (h *Handler) currentDimensionsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dimensionsUpdatedAt
}

func (h *Handler) markDimensionsUpdated() {
	h.mu.Lock()
	h.dimensionsUpdatedAt = h.clock()
	h.mu.Unlock()
}

// writeBackendError maps backend failures to 502 and logs them.
func (h *Handler) writeBackendError(w http.ResponseWriter, op string, err error) {
	h.logger.Warn("backend request failed", zap.String("operation", op), zap.Error(err))

	var statusErr *backend.StatusError
	switch {
	case errors.As(err, &statusErr):
		writeError(w, http.StatusBadGateway, "Backend unavailable", fmt.Sprintf("%s: backend responded %d", op, statusErr.StatusCode))
	case errors.Is(err, backend.ErrUnavailable):
		writeError(w, http.StatusBadGateway, "Backend unavailable", op+": "+backend.ErrUnavailable.Error(), "Retry once the offers backend is reachable")
	case errors.Is(err, context.Canceled):
		writeError(w, http.StatusBadGateway, "Backend unavailable", op+": request cancelled")
	default:
		writeInternalError(w, err)
	}
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type dimensionsRequest struct {
	Dimensions []calculator.PackageDimension `json:"dimensions"`
}

type dimensionsResponse struct {
	Dimensions []calculator.PackageDimension `json:"dimensions"`
	UpdatedAt  time.Time                     `json:"updatedAt"`
	Message    string                        `json:"message,omitempty"`
}

type conversionResponse struct {
	Inch       string `json:"inch"`
	Centimetre string `json:"centimetre"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string          `json:"error"`
	Details    string          `json:"details,omitempty"`
	Suggestion string          `json:"suggestion,omitempty"`
	Fields     form.Violations `json:"fields,omitempty"`
	Redirect   string          `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeValidationError(w http.ResponseWriter, err error) {
	var vErr *form.ValidationError
	if !errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, "Validation failed", err.Error())
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Error:   "Validation failed",
		Details: err.Error(),
		Fields:  vErr.Violations,
	})
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
