package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/board"
	"github.com/BuzzLyutic/task-tracker/internal/dnd"
	"github.com/BuzzLyutic/task-tracker/internal/generation"
	"github.com/BuzzLyutic/task-tracker/internal/ids"
	"github.com/BuzzLyutic/task-tracker/internal/model"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrBusy                = errors.New("a generation request is already in progress")
	ErrDuplicateSubmission = errors.New("goal already submitted")
)

const MinGoalLength = 5

// Deduper remembers Idempotency-Keys of submitted goals.
type Deduper interface {
	Add(ctx context.Context, key string) (bool, error)
	Remove(ctx context.Context, key string) error
}

// Journal receives one record per generation attempt.
type Journal interface {
	Submit(rec model.GenerationRecord) bool
}

type Option func(*BoardService)

func WithDeduper(d Deduper) Option {
	return func(s *BoardService) {
		s.dedupe = d
	}
}

func WithJournal(j Journal) Option {
	return func(s *BoardService) {
		s.journal = j
	}
}

// BoardService is the boundary the presentation layer talks to. Every event
// is applied to the current snapshot under one lock, so transitions never
// overlap. The generation call runs outside the lock and its batch is
// committed against whatever the board looks like when it returns.
type BoardService struct {
	mu       sync.Mutex
	board    board.Board
	drag     *dnd.Reconciler
	pipeline *generation.Pipeline
	gen      generation.Generator
	ids      ids.Generator
	dedupe   Deduper
	journal  Journal
	logger   *zap.Logger

	generating atomic.Bool
}

func NewBoardService(gen generation.Generator, idgen ids.Generator, logger *zap.Logger, opts ...Option) *BoardService {
	s := &BoardService{
		board:    board.New(),
		drag:     dnd.NewReconciler(),
		pipeline: generation.NewPipeline(idgen, logger),
		gen:      gen,
		ids:      idgen,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BoardService) Snapshot() board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board
}

// SubmitGoal turns a goal into tasks appended to the todo column. Short goals
// are rejected before any network activity. Once started, the generation call
// is not cancelled with ctx; only the generator's own timeout bounds it.
func (s *BoardService) SubmitGoal(ctx context.Context, modelID, query, idempKey string) (generation.Batch, error) {
	if utf8.RuneCountInString(strings.TrimSpace(query)) < MinGoalLength {
		return generation.Batch{}, fmt.Errorf("%w: please enter at least %d characters for your goal", ErrValidation, MinGoalLength)
	}

	if !s.generating.CompareAndSwap(false, true) {
		return generation.Batch{}, ErrBusy
	}
	defer s.generating.Store(false)

	if err := s.claimKey(ctx, idempKey); err != nil {
		return generation.Batch{}, err
	}

	batch, err := s.pipeline.Run(context.WithoutCancel(ctx), s.gen, modelID, query)
	if err == nil {
		err = s.commit(batch.Tasks)
	}
	s.record(modelID, query, batch, err)
	if err != nil {
		s.releaseKey(idempKey)
		s.logger.Warn("goal submission failed", zap.String("model", modelID), zap.Error(err))
		return batch, err
	}

	s.logger.Info("created tasks",
		zap.Int("count", len(batch.Tasks)),
		zap.Int("skipped", len(batch.Skipped)),
		zap.String("model", modelID),
	)
	return batch, nil
}

func (s *BoardService) commit(tasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := board.AddTasks(s.board, model.ColumnTodo, tasks)
	if err != nil {
		return err
	}
	s.board = next
	return nil
}

func (s *BoardService) record(modelID, query string, batch generation.Batch, err error) {
	if s.journal == nil {
		return
	}
	rec := model.GenerationRecord{
		Model:   generation.NormalizeModel(modelID),
		Query:   query,
		Outcome: model.OutcomeSuccess,
		Detail:  fmt.Sprintf("created %d tasks, skipped %d", len(batch.Tasks), len(batch.Skipped)),
	}
	if err != nil {
		rec.Outcome = model.OutcomeError
		rec.Detail = err.Error()
	}
	if !s.journal.Submit(rec) {
		s.logger.Warn("journal full, dropping record", zap.String("model", rec.Model))
	}
}

func (s *BoardService) claimKey(ctx context.Context, key string) error {
	if key == "" || s.dedupe == nil {
		return nil
	}
	added, err := s.dedupe.Add(ctx, key)
	if err != nil {
		// Без Redis просто работаем без дедупликации
		s.logger.Warn("idempotency check failed", zap.String("key", key), zap.Error(err))
		return nil
	}
	if !added {
		return ErrDuplicateSubmission
	}
	return nil
}

func (s *BoardService) releaseKey(key string) {
	if key == "" || s.dedupe == nil {
		return
	}
	if err := s.dedupe.Remove(context.Background(), key); err != nil {
		s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

// AddManualTask builds a task from a title and subtask titles, dropping blank
// subtasks, and appends it to the column.
func (s *BoardService) AddManualTask(columnID model.ColumnID, title string, subtasks []string) (model.Task, error) {
	if strings.TrimSpace(title) == "" {
		return model.Task{}, fmt.Errorf("%w: task title is required", ErrValidation)
	}

	task := model.Task{ID: s.ids.TaskID(), Content: title, Steps: []model.Step{}}
	for _, st := range subtasks {
		if strings.TrimSpace(st) == "" {
			continue
		}
		task.Steps = append(task.Steps, model.Step{ID: s.ids.StepID(), Content: st})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := board.AddTask(s.board, columnID, task)
	if err != nil {
		return model.Task{}, err
	}
	s.board = next
	return task, nil
}

func (s *BoardService) EditTaskTitle(taskID, title string) (model.Task, error) {
	return s.updateTask(taskID, func(t *model.Task) error {
		t.Content = title
		return nil
	})
}

func (s *BoardService) EditStepContent(taskID, stepID, content string) (model.Task, error) {
	return s.updateTask(taskID, func(t *model.Task) error {
		for i := range t.Steps {
			if t.Steps[i].ID == stepID {
				t.Steps[i].Content = content
				return nil
			}
		}
		return fmt.Errorf("%w: %q in task %q", board.ErrUnknownStep, stepID, taskID)
	})
}

// AddEmptyStep appends a blank step for the user to fill in.
func (s *BoardService) AddEmptyStep(taskID string) (model.Step, error) {
	step := model.Step{ID: s.ids.StepID()}
	_, err := s.updateTask(taskID, func(t *model.Task) error {
		t.Steps = append(t.Steps, step)
		return nil
	})
	if err != nil {
		return model.Step{}, err
	}
	return step, nil
}

func (s *BoardService) RemoveTask(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, ok := s.board.Task(taskID); !ok {
		return fmt.Errorf("%w: %q", board.ErrUnknownTask, taskID)
	}
	s.board = board.RemoveTask(s.board, taskID)
	return nil
}

func (s *BoardService) RenameColumn(columnID model.ColumnID, title string) (model.Column, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := board.RenameColumn(s.board, columnID, title)
	if err != nil {
		return model.Column{}, err
	}
	s.board = next
	col, _ := next.Column(columnID)
	return col, nil
}

// updateTask resolves the task, lets edit change a copy, then commits it with
// board.UpdateTask.
func (s *BoardService) updateTask(taskID string, edit func(*model.Task) error) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, _, ok := s.board.Task(taskID)
	if !ok {
		return model.Task{}, fmt.Errorf("%w: %q", board.ErrUnknownTask, taskID)
	}
	if err := edit(&task); err != nil {
		return model.Task{}, err
	}
	s.board = board.UpdateTask(s.board, task)
	return task, nil
}

func (s *BoardService) DragStart(taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drag.Start(s.board, taskID)
}

func (s *BoardService) DragMove(overID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.Move(overID)
}

func (s *BoardService) DragEnd(d dnd.Drop) (dnd.Outcome, board.Board) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, outcome := s.drag.End(s.board, d)
	s.board = next
	s.logger.Debug("drag ended",
		zap.String("active", d.ActiveID),
		zap.String("over", d.OverID),
		zap.String("outcome", string(outcome)),
	)
	return outcome, next
}

func (s *BoardService) DragCancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drag.Cancel()
}

// DragOverlay returns the task under the pointer while a drag is in progress.
func (s *BoardService) DragOverlay() (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.drag.Active()
	if !ok {
		return model.Task{}, false
	}
	task, _, ok := s.board.Task(id)
	return task, ok
}
