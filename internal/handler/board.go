package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

type BoardHandler struct {
	service      *service.BoardService
	models       []string
	defaultModel string
	logger       *zap.Logger
}

// NewBoardHandler serves the board. models is the catalog shown to the user;
// defaultModel is used when a goal arrives without one.
func NewBoardHandler(srv *service.BoardService, models []string, defaultModel string, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		service:      srv,
		models:       models,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

func (h *BoardHandler) Routes(r chi.Router) {
	r.Get("/board", h.Board)
	r.Get("/models", h.Models)
	r.Post("/goals", h.SubmitGoal)

	r.Route("/columns/{columnID}", func(r chi.Router) {
		r.Patch("/", h.RenameColumn)
		r.Post("/tasks", h.AddTask)
	})

	r.Route("/tasks/{taskID}", func(r chi.Router) {
		r.Patch("/", h.EditTask)
		r.Delete("/", h.RemoveTask)
		r.Post("/steps", h.AddStep)
		r.Patch("/steps/{stepID}", h.EditStep)
	})

	r.Route("/drag", func(r chi.Router) {
		r.Get("/", h.DragOverlay)
		r.Post("/start", h.DragStart)
		r.Post("/move", h.DragMove)
		r.Post("/end", h.DragEnd)
		r.Post("/cancel", h.DragCancel)
	})
}

func (h *BoardHandler) Board(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.service.Snapshot())
}

type modelsResponse struct {
	Models  []string `json:"models"`
	Default string   `json:"default"`
}

func (h *BoardHandler) Models(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, modelsResponse{Models: h.models, Default: h.defaultModel})
}

type goalRequest struct {
	Model string `json:"model"`
	Query string `json:"query"`
}

type goalResponse struct {
	Tasks   []model.Task `json:"tasks"`
	Skipped int          `json:"skipped"`
}

func (h *BoardHandler) SubmitGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := respond.Decode(w, r, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	if req.Model == "" {
		req.Model = h.defaultModel
	}

	idempKey := r.Header.Get("Idempotency-Key")
	batch, err := h.service.SubmitGoal(r.Context(), req.Model, req.Query, idempKey)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	respond.JSON(w, r, http.StatusCreated, goalResponse{Tasks: batch.Tasks, Skipped: len(batch.Skipped)})
}

type addTaskRequest struct {
	Title    string   `json:"title"`
	Subtasks []string `json:"subtasks"`
}

func (h *BoardHandler) AddTask(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest
	if err := respond.Decode(w, r, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	columnID := model.ColumnID(chi.URLParam(r, "columnID"))
	task, err := h.service.AddManualTask(columnID, req.Title, req.Subtasks)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%s", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

type titleRequest struct {
	Title string `json:"title"`
}

func (h *BoardHandler) RenameColumn(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := respond.Decode(w, r, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	col, err := h.service.RenameColumn(model.ColumnID(chi.URLParam(r, "columnID")), req.Title)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, col)
}

type contentRequest struct {
	Content string `json:"content"`
}

func (h *BoardHandler) EditTask(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := respond.Decode(w, r, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	task, err := h.service.EditTaskTitle(chi.URLParam(r, "taskID"), req.Content)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *BoardHandler) RemoveTask(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveTask(chi.URLParam(r, "taskID")); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.NoContent(w, r)
}

func (h *BoardHandler) AddStep(w http.ResponseWriter, r *http.Request) {
	step, err := h.service.AddEmptyStep(chi.URLParam(r, "taskID"))
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusCreated, step)
}

func (h *BoardHandler) EditStep(w http.ResponseWriter, r *http.Request) {
	var req contentRequest
	if err := respond.Decode(w, r, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	task, err := h.service.EditStepContent(chi.URLParam(r, "taskID"), chi.URLParam(r, "stepID"), req.Content)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}
