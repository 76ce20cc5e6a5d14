package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/generation"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

type Answerer interface {
	Answer(ctx context.Context, modelID, query string) generation.RawResponse
}

// DecomposeHandler exposes the generation service over HTTP. Failures are
// part of the envelope, so every decoded request gets 200.
type DecomposeHandler struct {
	answerer     Answerer
	defaultModel string
	logger       *zap.Logger
}

func NewDecomposeHandler(a Answerer, defaultModel string, logger *zap.Logger) *DecomposeHandler {
	return &DecomposeHandler{
		answerer:     a,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

func (h *DecomposeHandler) Decompose(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := respond.Decode(w, r, &req); err != nil {
		h.logger.Warn("failed to decode decompose request", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Model == "" {
		req.Model = h.defaultModel
	}

	respond.JSON(w, r, http.StatusOK, h.answerer.Answer(r.Context(), req.Model, req.Query))
}
