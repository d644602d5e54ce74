package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"

	"custclean/internal/cleaning/service"
	apperrors "custclean/pkg/errors"
	httputil "custclean/pkg/http"
	"custclean/pkg/logger"
	"custclean/pkg/model"
	"custclean/pkg/table"
)

type CleanHandler struct {
	service service.RunService
	log     *logger.Logger
}

func NewCleanHandler(service service.RunService, log *logger.Logger) *CleanHandler {
	return &CleanHandler{
		service: service,
		log:     log,
	}
}

func (h *CleanHandler) Clean(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CleanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Clean", decodeError(err))
		return
	}

	resp, err := h.service.Process(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Clean", err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Clean", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CleanHandler) GetRun(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	resp, err := h.service.GetRun(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetRun", err)
		return
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "GetRun", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CleanHandler) ListRuns(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			h.writeError(w, "ListRuns", apperrors.InvalidInput(fmt.Sprintf("invalid limit parameter: %s", limitStr)))
			return
		}
	}

	reports, err := h.service.ListRuns(r.Context(), limit)
	if err != nil {
		h.writeError(w, "ListRuns", err)
		return
	}

	if err := httputil.WriteSuccess(w, reports); err != nil {
		h.log.Error("failed to write success response", "handler", "ListRuns", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CleanHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func decodeError(err error) error {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return apperrors.New(apperrors.CodeInvalidInput,
			fmt.Sprintf("Request body exceeds %d bytes", maxBytesErr.Limit),
			http.StatusRequestEntityTooLarge)
	case errors.Is(err, table.ErrMisaligned):
		return apperrors.InvalidTable(err)
	default:
		return apperrors.Wrap(err, apperrors.CodeInvalidInput, "Invalid request body", http.StatusBadRequest)
	}
}

func (h *CleanHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/clean", h.Clean)
	router.GET("/api/v1/runs", h.ListRuns)
	router.GET("/api/v1/runs/:id", h.GetRun)
}
