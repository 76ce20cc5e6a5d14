package handler

import (
	"net/http"

	"github.com/BuzzLyutic/task-tracker/internal/board"
	"github.com/BuzzLyutic/task-tracker/internal/dnd"
	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

type dragRequest struct {
	ActiveID string         `json:"activeId"`
	OverID   string         `json:"overId"`
	ColumnID model.ColumnID `json:"columnId"`
}

type dragEndResponse struct {
	Outcome dnd.Outcome `json:"outcome"`
	Board   board.Board `json:"board"`
}

type overlayResponse struct {
	Dragging bool        `json:"dragging"`
	Task     *model.Task `json:"task,omitempty"`
}

func (h *BoardHandler) DragStart(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := respond.Decode(w, r, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	if err := h.service.DragStart(req.ActiveID); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	h.DragOverlay(w, r)
}

// DragMove only records the hover target; the board is never touched.
func (h *BoardHandler) DragMove(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := respond.Decode(w, r, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	h.service.DragMove(req.OverID)
	respond.NoContent(w, r)
}

func (h *BoardHandler) DragEnd(w http.ResponseWriter, r *http.Request) {
	var req dragRequest
	if err := respond.Decode(w, r, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	outcome, b := h.service.DragEnd(dnd.Drop{
		ActiveID:   req.ActiveID,
		OverID:     req.OverID,
		ColumnHint: req.ColumnID,
	})
	respond.JSON(w, r, http.StatusOK, dragEndResponse{Outcome: outcome, Board: b})
}

func (h *BoardHandler) DragCancel(w http.ResponseWriter, r *http.Request) {
	h.service.DragCancel()
	respond.NoContent(w, r)
}

func (h *BoardHandler) DragOverlay(w http.ResponseWriter, r *http.Request) {
	task, ok := h.service.DragOverlay()
	if !ok {
		respond.JSON(w, r, http.StatusOK, overlayResponse{})
		return
	}
	respond.JSON(w, r, http.StatusOK, overlayResponse{Dragging: true, Task: &task})
}
