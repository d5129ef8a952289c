package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/smartstock/smartstock/internal/alerts"
	"github.com/smartstock/smartstock/internal/database"
	apperrors "github.com/smartstock/smartstock/internal/errors"
	"github.com/smartstock/smartstock/internal/forecast"
	"github.com/smartstock/smartstock/internal/ingest"
	"github.com/smartstock/smartstock/internal/logger"
	"github.com/smartstock/smartstock/internal/models"
	"github.com/smartstock/smartstock/internal/reconciler"
	"github.com/smartstock/smartstock/internal/store"
	"github.com/smartstock/smartstock/pkg/utils"
)

// Handler handles HTTP requests for the API
type Handler struct {
	store     store.Store
	db        *database.DB
	engine    *reconciler.Reconciler
	adapter   *forecast.Adapter
	settings  *alerts.Settings
	loader    *ingest.Loader
	version   string
	buildTime string
	gitCommit string
	startTime time.Time
}

// NewHandler creates a new API handler
func NewHandler(st store.Store, db *database.DB, engine *reconciler.Reconciler, adapter *forecast.Adapter, settings *alerts.Settings, loader *ingest.Loader, version, buildTime, gitCommit string) *Handler {
	return &Handler{
		store:     st,
		db:        db,
		engine:    engine,
		adapter:   adapter,
		settings:  settings,
		loader:    loader,
		version:   version,
		buildTime: buildTime,
		gitCommit: gitCommit,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/v1", func(r chi.Router) {
		// Health check endpoints
		r.Get("/health", h.healthHandler)
		r.Get("/health/ready", h.readinessHandler)
		r.Get("/health/live", h.livenessHandler)

		// Forecasting and reconciliation
		r.Post("/predict", h.predictHandler)
		r.Post("/stock-status", h.stockStatusHandler)
		r.Get("/auto-stock-status", h.autoStockStatusHandler)
		r.Get("/range-forecast", h.rangeForecastHandler)

		// Inventory CRUD
		r.Get("/items", h.listItemsHandler)
		r.Post("/items", h.createItemHandler)
		r.Get("/items/{id}", h.getItemHandler)
		r.Put("/items/{id}", h.updateItemHandler)
		r.Delete("/items/{id}", h.deleteItemHandler)

		// Alerting
		r.Post("/alerts/check", h.checkAlertsHandler)
		r.Get("/alert-settings", h.getAlertSettingsHandler)
		r.Post("/alert-settings", h.updateAlertSettingsHandler)

		// Dataset management
		r.Post("/reload-data", h.reloadDataHandler)

		// System info
		r.Get("/version", h.versionHandler)
	})

	// Root health check
	r.Get("/health", h.healthHandler)
}

// healthHandler provides basic health check
func (h *Handler) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// readinessHandler checks if the application is ready to serve traffic
func (h *Handler) readinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	checks := map[string]string{
		"store": "ok",
		"model": "ok",
	}

	statusCode := http.StatusOK

	if err := h.store.Health(ctx); err != nil {
		checks["store"] = "error: " + err.Error()
		statusCode = http.StatusServiceUnavailable
	}

	// The database check only appears when Postgres is configured;
	// in-memory deployments have nothing to probe beyond the store.
	if h.db != nil && h.db.IsConfigured() {
		checks["database"] = "ok"
		if err := h.db.Health(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			statusCode = http.StatusServiceUnavailable
		}
	}

	// Model readiness is reported but does not fail readiness; the
	// service can serve inventory queries while the model trains.
	if err := h.adapter.Ready(ctx); err != nil {
		checks["model"] = "unavailable"
	}

	response := map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	}

	h.writeJSONResponse(w, statusCode, response)
}

// livenessHandler checks if the application is alive
func (h *Handler) livenessHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "alive",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(h.startTime).String(),
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// versionHandler returns version information
func (h *Handler) versionHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"version":    h.version,
		"build_time": h.buildTime,
		"git_commit": h.gitCommit,
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

type predictRequest struct {
	Rows []models.FeatureRow `json:"rows"`
}

// predictHandler handles POST /predict with caller-assembled feature rows
func (h *Handler) predictHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Rows) == 0 {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "rows is required")
		return
	}

	preds, err := h.adapter.Predict(ctx, req.Rows)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"predictions": preds,
	})
}

type stockStatusRequest struct {
	StoreNbr     int      `json:"store_nbr"`
	Family       string   `json:"family"`
	Date         string   `json:"date"`
	OnPromotion  int      `json:"onpromotion"`
	CurrentStock *float64 `json:"current_stock"`
}

// stockStatusHandler handles POST /stock-status for a single item. When
// current_stock is omitted the item's stock is resolved from the store,
// with the sales-history fallback for items without inventory records.
func (h *Handler) stockStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req stockStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StoreNbr <= 0 {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "store_nbr is required")
		return
	}
	if req.Family == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "family is required")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	key := models.ItemKey{StoreNbr: req.StoreNbr, Family: req.Family}
	result, err := h.engine.CheckItem(ctx, key, date, req.OnPromotion, req.CurrentStock)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, result)
}

// autoStockStatusHandler handles GET /auto-stock-status across the
// whole resolved inventory snapshot
func (h *Handler) autoStockStatusHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, err := parseDate(r.URL.Query().Get("target_date"))
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "target_date must be YYYY-MM-DD")
		return
	}

	results, source, err := h.engine.CheckAll(ctx, date)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"source":  source,
		"count":   len(results),
		"results": results,
	})
}

// rangeForecastHandler handles GET /range-forecast for one item
func (h *Handler) rangeForecastHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	storeNbr, err := strconv.Atoi(q.Get("store_nbr"))
	if err != nil || storeNbr <= 0 {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "store_nbr is required")
		return
	}

	family := q.Get("family")
	if family == "" {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "family is required")
		return
	}

	days := 7
	if raw := q.Get("days"); raw != "" {
		days, err = strconv.Atoi(raw)
		if err != nil {
			h.writeErrorResponse(w, r, http.StatusBadRequest, "days must be an integer")
			return
		}
	}

	key := models.ItemKey{StoreNbr: storeNbr, Family: family}
	points, err := h.engine.RangeForecast(ctx, key, days)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"store_nbr": storeNbr,
		"family":    family,
		"days":      days,
		"forecast":  points,
	})
}

// listItemsHandler handles GET /items
func (h *Handler) listItemsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query, err := parseItemQuery(r)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.store.ListInventory(ctx, query)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to list inventory", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"count": len(items),
	})
}

// createItemHandler handles POST /items
func (h *Handler) createItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var item models.InventoryItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validateItem(item); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	item.ID = 0
	if err := h.store.CreateInventoryItem(ctx, &item); err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusCreated, item)
}

// getItemHandler handles GET /items/{id}
func (h *Handler) getItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "item ID must be an integer")
		return
	}

	item, err := h.store.GetInventoryItem(ctx, id)
	if err != nil {
		logger.WithContext(ctx).Error("Failed to get inventory item", "id", id, "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}
	if item == nil {
		h.writeErrorResponse(w, r, http.StatusNotFound, "Item not found")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, item)
}

// updateItemHandler handles PUT /items/{id}
func (h *Handler) updateItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "item ID must be an integer")
		return
	}

	var item models.InventoryItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validateItem(item); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	item.ID = id
	if err := h.store.UpdateInventoryItem(ctx, &item); err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, item)
}

// deleteItemHandler handles DELETE /items/{id}
func (h *Handler) deleteItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "item ID must be an integer")
		return
	}

	if err := h.store.DeleteInventoryItem(ctx, id); err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// checkAlertsHandler handles POST /alerts/check, a manual sweep
func (h *Handler) checkAlertsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	events, err := h.engine.Sweep(ctx)
	if err != nil {
		h.writeEngineError(w, r, err)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

type alertSettingsPayload struct {
	EmailEnabled bool `json:"email_enabled"`
	SMSEnabled   bool `json:"sms_enabled"`
}

// getAlertSettingsHandler handles GET /alert-settings
func (h *Handler) getAlertSettingsHandler(w http.ResponseWriter, r *http.Request) {
	email, sms := h.settings.Snapshot()
	h.writeJSONResponse(w, http.StatusOK, alertSettingsPayload{
		EmailEnabled: email,
		SMSEnabled:   sms,
	})
}

// updateAlertSettingsHandler handles POST /alert-settings
func (h *Handler) updateAlertSettingsHandler(w http.ResponseWriter, r *http.Request) {
	var payload alertSettingsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	h.settings.Update(payload.EmailEnabled, payload.SMSEnabled)

	logger.WithContext(r.Context()).Info("Alert settings updated",
		"email_enabled", payload.EmailEnabled,
		"sms_enabled", payload.SMSEnabled,
	)

	h.writeJSONResponse(w, http.StatusOK, payload)
}

// reloadDataHandler handles POST /reload-data
func (h *Handler) reloadDataHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.loader == nil {
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, "no dataset source configured")
		return
	}

	summary, err := h.loader.Load(ctx)
	if err != nil {
		logger.WithContext(ctx).Error("Dataset reload failed", "error", err)
		h.writeErrorResponse(w, r, http.StatusBadGateway, "dataset reload failed: "+err.Error())
		return
	}

	h.writeJSONResponse(w, http.StatusOK, summary)
}

// parseDate parses an optional YYYY-MM-DD value, defaulting to today
func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(utils.DateOnly, raw)
}

// parseItemQuery parses list filters from the request
func parseItemQuery(r *http.Request) (models.ItemQuery, error) {
	q := r.URL.Query()
	query := models.ItemQuery{Search: q.Get("search")}

	if raw := q.Get("store_nbr"); raw != "" {
		storeNbr, err := strconv.Atoi(raw)
		if err != nil || storeNbr <= 0 {
			return query, apperrors.ValidationError{Field: "store_nbr", Message: "must be a positive integer"}
		}
		query.StoreNbr = storeNbr
	}

	return query, nil
}

func validateItem(item models.InventoryItem) error {
	if item.StoreNbr <= 0 {
		return apperrors.ValidationError{Field: "store_nbr", Message: "must be a positive integer"}
	}
	if item.Family == "" {
		return apperrors.ValidationError{Field: "family", Message: "is required"}
	}
	if item.CurrentStock < 0 {
		return apperrors.ValidationError{Field: "current_stock", Message: "must not be negative"}
	}
	return nil
}

// writeEngineError maps engine errors onto HTTP status codes
func (h *Handler) writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation apperrors.ValidationError
		upstream   apperrors.ForecastError
	)

	switch {
	case errors.Is(err, apperrors.ErrModelUnavailable):
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, apperrors.ErrNoData),
		errors.Is(err, apperrors.ErrUnknownItem),
		errors.Is(err, apperrors.ErrNotFound):
		h.writeErrorResponse(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, apperrors.ErrInvalidRange),
		errors.Is(err, apperrors.ErrInvalidInput),
		errors.As(err, &validation):
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		h.writeErrorResponse(w, r, http.StatusConflict, err.Error())
	case errors.As(err, &upstream):
		h.writeErrorResponse(w, r, http.StatusBadGateway, err.Error())
	default:
		logger.WithContext(r.Context()).Error("Request failed", "error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

// writeJSONResponse writes a JSON response
func (h *Handler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeErrorResponse writes a standardized error response
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	response := ErrorResponse{
		Error:     http.StatusText(statusCode),
		Message:   message,
		Timestamp: time.Now().UTC(),
		RequestID: r.Header.Get("X-Request-ID"),
	}

	h.writeJSONResponse(w, statusCode, response)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}
