package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"txnproc/internal/errors"
	"txnproc/internal/models"
	"txnproc/internal/service"
	u "txnproc/internal/utils"
)

type BatchHandler struct {
	batchService service.BatchService
	logger       *slog.Logger
}

func NewBatchHandler(batchService service.BatchService, logger *slog.Logger) *BatchHandler {
	return &BatchHandler{
		batchService: batchService,
		logger:       logger,
	}
}

func (h *BatchHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/batches", h.ProcessBatch).Methods(http.MethodPost)
	router.HandleFunc("/batches/{id}/decisions", h.GetDecisions).Methods(http.MethodGet)
}

func (h *BatchHandler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req models.ProcessBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid process batch request", "error", err.Error())
		u.WriteError(w, http.StatusBadRequest, "invalid request payload", err.Error())
		return
	}

	result, err := h.batchService.Process(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "process batch")
		return
	}

	u.WriteJSON(w, http.StatusOK, result)
}

func (h *BatchHandler) GetDecisions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	batchID := vars["id"]

	if batchID == "" {
		u.WriteError(w, http.StatusBadRequest, "id is required", "")
		return
	}

	decisions, err := h.batchService.GetDecisions(r.Context(), batchID)
	if err != nil {
		h.handleServiceError(w, err, "get decisions")
		return
	}

	u.WriteJSON(w, http.StatusOK, decisions)
}

func (h *BatchHandler) handleServiceError(w http.ResponseWriter, err error, action string) {
	switch {
	case errors.IsNotFound(err):
		u.WriteError(w, http.StatusNotFound, "batch not found", "")
	case errors.IsArchiveDisabled(err):
		u.WriteError(w, http.StatusNotFound, "decision archive is disabled", "archived decisions are unavailable on this instance")
	case errors.IsValidationError(err):
		u.WriteError(w, http.StatusBadRequest, "validation error", err.Error())
	case err == errors.ErrEmptyBatch:
		u.WriteError(w, http.StatusBadRequest, "empty batch", err.Error())
	default:
		h.logger.Error("internal server error during "+action, "error", err.Error())
		u.WriteError(w, http.StatusInternalServerError, "internal server error", "")
	}
}
