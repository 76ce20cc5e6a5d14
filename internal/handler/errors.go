package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/board"
	"github.com/BuzzLyutic/task-tracker/internal/generation"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

func handleErrors(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, respond.ErrBadBody):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, board.ErrUnknownTask),
		errors.Is(err, board.ErrUnknownColumn),
		errors.Is(err, board.ErrUnknownStep),
		errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrBusy),
		errors.Is(err, service.ErrDuplicateSubmission):
		respond.Error(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, generation.ErrTransport):
		respond.Error(w, r, http.StatusBadGateway, err.Error())
	case errors.Is(err, generation.ErrService),
		errors.Is(err, generation.ErrMalformedResponse),
		errors.Is(err, generation.ErrEmptyBatch):
		respond.Error(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
