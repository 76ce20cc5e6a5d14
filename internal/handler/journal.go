package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type JournalHandler struct {
	repo   repo.GenerationRepository
	logger *zap.Logger
}

func NewJournalHandler(r repo.GenerationRepository, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{
		repo:   r,
		logger: logger,
	}
}

func (h *JournalHandler) Routes(r chi.Router) {
	r.Get("/generations", h.List)
	r.Get("/generations/{id}", h.Get)
	r.Get("/stats", h.Stats)
}

func (h *JournalHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter model.GenerationFilter
	switch outcome := model.Outcome(r.URL.Query().Get("outcome")); outcome {
	case "":
	case model.OutcomeSuccess, model.OutcomeError:
		filter.Outcome = &outcome
	default:
		respond.Error(w, r, http.StatusBadRequest, "outcome must be success or error")
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	records, err := h.repo.List(r.Context(), filter, limit)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, records)
}

func (h *JournalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid id")
		return
	}

	rec, err := h.repo.Get(r.Context(), id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, rec)
}

func (h *JournalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.GetStats(r.Context())
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}
