package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/board"
	"github.com/BuzzLyutic/task-tracker/internal/dnd"
	"github.com/BuzzLyutic/task-tracker/internal/generation"
	"github.com/BuzzLyutic/task-tracker/internal/ids"
	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// MockGenerator - мок генератора задач
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, modelID, query string) (generation.RawResponse, error) {
	args := m.Called(ctx, modelID, query)
	return args.Get(0).(generation.RawResponse), args.Error(1)
}

type MockDeduper struct {
	mock.Mock
}

func (m *MockDeduper) Add(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeduper) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) Submit(rec model.GenerationRecord) bool {
	args := m.Called(rec)
	return args.Bool(0)
}

const tripData = `{"a":{"title":"Book flights","steps":{"s1":"Search","s2":"Buy"}},"b":{"title":"Pack","steps":{"s1":"List items"}}}`

func okResponse(data string) generation.RawResponse {
	return generation.RawResponse{Status: generation.StatusOK, Data: json.RawMessage(data)}
}

func newService(gen generation.Generator, opts ...Option) *BoardService {
	return NewBoardService(gen, ids.NewSequence(), zap.NewNop(), opts...)
}

func columnItems(t *testing.T, b board.Board, id model.ColumnID) []model.Task {
	t.Helper()
	col, ok := b.Column(id)
	require.True(t, ok)
	return col.Items
}

// seed puts a few manual tasks on the board so failure paths can be checked
// against a non-empty snapshot.
func seed(t *testing.T, s *BoardService) {
	t.Helper()
	_, err := s.AddManualTask(model.ColumnTodo, "Existing todo", []string{"a", "b"})
	require.NoError(t, err)
	_, err = s.AddManualTask(model.ColumnDone, "Existing done", nil)
	require.NoError(t, err)
}

func itemIDs(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.ID)
	}
	return out
}

func TestBoardService_SubmitGoal_AppendsTasks(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, "X", "Plan a 3-day trip").Return(okResponse(tripData), nil)
	s := newService(gen)

	batch, err := s.SubmitGoal(context.Background(), "X", "Plan a 3-day trip", "")

	require.NoError(t, err)
	require.Len(t, batch.Tasks, 2)

	todo := columnItems(t, s.Snapshot(), model.ColumnTodo)
	require.Len(t, todo, 2)
	assert.Equal(t, "1. Book flights", todo[0].Content)
	assert.Equal(t, "2. Pack", todo[1].Content)
	require.Len(t, todo[0].Steps, 2)
	assert.Equal(t, "Search", todo[0].Steps[0].Content)
	assert.Equal(t, "Buy", todo[0].Steps[1].Content)
	require.Len(t, todo[1].Steps, 1)
	assert.Equal(t, "List items", todo[1].Steps[0].Content)
	gen.AssertExpectations(t)
}

func TestBoardService_SubmitGoal_ServiceError(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, "X", "Plan a 3-day trip").
		Return(generation.RawResponse{Status: generation.StatusError, Message: "rate limited"}, nil)
	s := newService(gen)
	before := s.Snapshot()

	_, err := s.SubmitGoal(context.Background(), "X", "Plan a 3-day trip", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrService)
	assert.Equal(t, "rate limited", err.Error())
	assert.Equal(t, before.Columns(), s.Snapshot().Columns())
}

func TestBoardService_SubmitGoal_ShortGoal(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"two chars", "ab"},
		{"padded", "   abcd   "},
		{"empty", ""},
		{"multibyte", "日本語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockGenerator)
			s := newService(gen)

			_, err := s.SubmitGoal(context.Background(), "X", tt.query, "")

			assert.ErrorIs(t, err, ErrValidation)
			gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
			assert.Zero(t, s.Snapshot().TaskCount())
		})
	}
}

func TestBoardService_SubmitGoal_TransportError(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, "X", "Learn Go well").
		Return(generation.RawResponse{}, errors.New("connection refused"))
	s := newService(gen)
	seed(t, s)
	before := s.Snapshot()

	_, err := s.SubmitGoal(context.Background(), "X", "Learn Go well", "")

	assert.ErrorIs(t, err, generation.ErrTransport)
	assert.Equal(t, before.Columns(), s.Snapshot().Columns())
}

func TestBoardService_SubmitGoal_EmptyBatch(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, "X", "Learn Go well").
		Return(okResponse(`{"a":"not a task","b":{"steps":{}}}`), nil)
	s := newService(gen)
	seed(t, s)
	before := s.Snapshot()

	batch, err := s.SubmitGoal(context.Background(), "X", "Learn Go well", "")

	assert.ErrorIs(t, err, generation.ErrEmptyBatch)
	assert.Len(t, batch.Skipped, 2)
	assert.Equal(t, before.Columns(), s.Snapshot().Columns())
}

func TestBoardService_SubmitGoal_SurvivesCallerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var callCtxErr error
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, "X", "Plan a 3-day trip").
		Run(func(args mock.Arguments) {
			// Клиент отключился, пока генератор еще работает
			cancel()
			callCtx := args.Get(0).(context.Context)
			select {
			case <-callCtx.Done():
			case <-time.After(50 * time.Millisecond):
			}
			callCtxErr = callCtx.Err()
		}).
		Return(okResponse(tripData), nil)
	s := newService(gen)

	batch, err := s.SubmitGoal(ctx, "X", "Plan a 3-day trip", "")

	require.NoError(t, err)
	assert.NoError(t, callCtxErr)
	assert.Error(t, ctx.Err())
	require.Len(t, batch.Tasks, 2)
	assert.Equal(t, itemIDs(batch.Tasks), itemIDs(columnItems(t, s.Snapshot(), model.ColumnTodo)))
}

func TestBoardService_SubmitGoal_Journal(t *testing.T) {
	tests := []struct {
		name        string
		response    generation.RawResponse
		genErr      error
		wantOutcome model.Outcome
		wantDetail  string
	}{
		{
			name:        "accepted batch",
			response:    okResponse(`{"a":{"title":"Go","steps":{}},"b":"junk"}`),
			wantOutcome: model.OutcomeSuccess,
			wantDetail:  "created 1 tasks, skipped 1",
		},
		{
			name:        "empty batch",
			response:    okResponse(`{"a":"junk"}`),
			wantOutcome: model.OutcomeError,
			wantDetail:  generation.ErrEmptyBatch.Error(),
		},
		{
			name:        "service error",
			response:    generation.RawResponse{Status: generation.StatusError, Message: "rate limited"},
			wantOutcome: model.OutcomeError,
			wantDetail:  "rate limited",
		},
		{
			name:        "transport error",
			genErr:      errors.New("connection refused"),
			wantOutcome: model.OutcomeError,
			wantDetail:  "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(MockGenerator)
			gen.On("Generate", mock.Anything, "deepseek-v3", "Plan a 3-day trip").Return(tt.response, tt.genErr)
			journal := new(MockJournal)
			journal.On("Submit", model.GenerationRecord{
				Model:   "deepseek-v3",
				Query:   "Plan a 3-day trip",
				Outcome: tt.wantOutcome,
				Detail:  tt.wantDetail,
			}).Return(true).Once()
			s := newService(gen, WithJournal(journal))

			_, _ = s.SubmitGoal(context.Background(), "deepseek-v3⚡", "Plan a 3-day trip", "")

			journal.AssertExpectations(t)
		})
	}

	t.Run("rejected goals are not journaled", func(t *testing.T) {
		journal := new(MockJournal)
		s := newService(new(MockGenerator), WithJournal(journal))

		_, err := s.SubmitGoal(context.Background(), "deepseek-v3", "ab", "")

		assert.ErrorIs(t, err, ErrValidation)
		journal.AssertNotCalled(t, "Submit", mock.Anything)
	})
}

func TestBoardService_SubmitGoal_Busy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, "X", "first goal").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(okResponse(tripData), nil).Once()
	s := newService(gen)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := s.SubmitGoal(context.Background(), "X", "first goal", "")
		assert.NoError(t, err)
	}()

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("generation did not start")
	}

	_, err := s.SubmitGoal(context.Background(), "X", "second goal", "")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	wg.Wait()

	assert.Equal(t, 2, s.Snapshot().TaskCount())
	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestBoardService_SubmitGoal_CommitsAgainstCurrentBoard(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, "X", "Plan a 3-day trip").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(okResponse(tripData), nil)
	s := newService(gen)

	manual, err := s.AddManualTask(model.ColumnTodo, "Existing", nil)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.SubmitGoal(context.Background(), "X", "Plan a 3-day trip", "")
		done <- err
	}()
	<-started

	// Пока идет генерация, доска продолжает меняться
	require.NoError(t, s.DragStart(manual.ID))
	outcome, _ := s.DragEnd(dnd.Drop{ActiveID: manual.ID, OverID: string(model.ColumnDone)})
	require.Equal(t, dnd.Moved, outcome)

	close(release)
	require.NoError(t, <-done)

	b := s.Snapshot()
	assert.Len(t, columnItems(t, b, model.ColumnTodo), 2)
	assert.Equal(t, []string{manual.ID}, itemIDs(columnItems(t, b, model.ColumnDone)))
}

func TestBoardService_SubmitGoal_Idempotency(t *testing.T) {
	t.Run("duplicate key is rejected", func(t *testing.T) {
		gen := new(MockGenerator)
		dd := new(MockDeduper)
		dd.On("Add", mock.Anything, "k1").Return(false, nil)
		s := newService(gen, WithDeduper(dd))

		_, err := s.SubmitGoal(context.Background(), "X", "Plan a 3-day trip", "k1")

		assert.ErrorIs(t, err, ErrDuplicateSubmission)
		gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("key is released on failure", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("Generate", mock.Anything, "X", "Plan a 3-day trip").
			Return(generation.RawResponse{Status: generation.StatusError, Message: "boom"}, nil)
		dd := new(MockDeduper)
		dd.On("Add", mock.Anything, "k2").Return(true, nil)
		dd.On("Remove", mock.Anything, "k2").Return(nil)
		s := newService(gen, WithDeduper(dd))

		_, err := s.SubmitGoal(context.Background(), "X", "Plan a 3-day trip", "k2")

		assert.Error(t, err)
		dd.AssertExpectations(t)
	})

	t.Run("key is kept on success", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("Generate", mock.Anything, "X", "Plan a 3-day trip").Return(okResponse(tripData), nil)
		dd := new(MockDeduper)
		dd.On("Add", mock.Anything, "k3").Return(true, nil)
		s := newService(gen, WithDeduper(dd))

		_, err := s.SubmitGoal(context.Background(), "X", "Plan a 3-day trip", "k3")

		require.NoError(t, err)
		dd.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
	})

	t.Run("deduper failure does not block", func(t *testing.T) {
		gen := new(MockGenerator)
		gen.On("Generate", mock.Anything, "X", "Plan a 3-day trip").Return(okResponse(tripData), nil)
		dd := new(MockDeduper)
		dd.On("Add", mock.Anything, "k4").Return(false, errors.New("redis down"))
		s := newService(gen, WithDeduper(dd))

		_, err := s.SubmitGoal(context.Background(), "X", "Plan a 3-day trip", "k4")

		require.NoError(t, err)
		assert.Equal(t, 2, s.Snapshot().TaskCount())
	})
}

func TestBoardService_Drag(t *testing.T) {
	t.Run("cross column drop moves the task", func(t *testing.T) {
		s := newService(new(MockGenerator))
		t1, err := s.AddManualTask(model.ColumnTodo, "T1", nil)
		require.NoError(t, err)
		_, err = s.AddManualTask(model.ColumnDone, "Other", nil)
		require.NoError(t, err)

		require.NoError(t, s.DragStart(t1.ID))
		s.DragMove(string(model.ColumnDone))
		outcome, b := s.DragEnd(dnd.Drop{ActiveID: t1.ID, OverID: string(model.ColumnDone)})

		assert.Equal(t, dnd.Moved, outcome)
		done := columnItems(t, b, model.ColumnDone)
		assert.Equal(t, t1.ID, done[len(done)-1].ID)
		assert.Empty(t, columnItems(t, b, model.ColumnTodo))
		_, dragging := s.DragOverlay()
		assert.False(t, dragging)
	})

	t.Run("same column drop changes nothing", func(t *testing.T) {
		s := newService(new(MockGenerator))
		t1, _ := s.AddManualTask(model.ColumnTodo, "T1", nil)
		t2, _ := s.AddManualTask(model.ColumnTodo, "T2", nil)
		before := s.Snapshot()

		require.NoError(t, s.DragStart(t1.ID))
		outcome, b := s.DragEnd(dnd.Drop{ActiveID: t1.ID, OverID: t2.ID})

		assert.Equal(t, dnd.DiscardedSameColumn, outcome)
		assert.Equal(t, before.Columns(), b.Columns())
	})

	t.Run("overlay follows the gesture", func(t *testing.T) {
		s := newService(new(MockGenerator))
		t1, _ := s.AddManualTask(model.ColumnTodo, "T1", []string{"a"})

		require.NoError(t, s.DragStart(t1.ID))
		task, ok := s.DragOverlay()
		require.True(t, ok)
		assert.Equal(t, t1, task)

		s.DragCancel()
		_, ok = s.DragOverlay()
		assert.False(t, ok)
		assert.Equal(t, []string{t1.ID}, itemIDs(columnItems(t, s.Snapshot(), model.ColumnTodo)))
	})

	t.Run("unknown task cannot be dragged", func(t *testing.T) {
		s := newService(new(MockGenerator))
		assert.ErrorIs(t, s.DragStart("missing"), board.ErrUnknownTask)
	})
}

func TestBoardService_AddManualTask(t *testing.T) {
	s := newService(new(MockGenerator))

	task, err := s.AddManualTask(model.ColumnInProgress, "Write docs", []string{"outline", "  ", "", "draft"})
	require.NoError(t, err)
	require.Len(t, task.Steps, 2)
	assert.Equal(t, "outline", task.Steps[0].Content)
	assert.Equal(t, "draft", task.Steps[1].Content)

	got, col, ok := s.Snapshot().Task(task.ID)
	require.True(t, ok)
	assert.Equal(t, model.ColumnInProgress, col)
	assert.Equal(t, task, got)

	_, err = s.AddManualTask(model.ColumnTodo, "   ", nil)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = s.AddManualTask("backlog", "Title", nil)
	assert.ErrorIs(t, err, board.ErrUnknownColumn)
}

func TestBoardService_Edits(t *testing.T) {
	s := newService(new(MockGenerator))
	task, err := s.AddManualTask(model.ColumnTodo, "Old", []string{"step"})
	require.NoError(t, err)

	updated, err := s.EditTaskTitle(task.ID, "New")
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Content)

	updated, err = s.EditStepContent(task.ID, task.Steps[0].ID, "changed")
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Steps[0].Content)

	step, err := s.AddEmptyStep(task.ID)
	require.NoError(t, err)
	assert.Empty(t, step.Content)
	assert.NotEmpty(t, step.ID)

	got, _, _ := s.Snapshot().Task(task.ID)
	assert.Equal(t, "New", got.Content)
	require.Len(t, got.Steps, 2)
	assert.Equal(t, step.ID, got.Steps[1].ID)

	_, err = s.EditTaskTitle("missing", "x")
	assert.ErrorIs(t, err, board.ErrUnknownTask)
	_, err = s.EditStepContent(task.ID, "missing", "x")
	assert.ErrorIs(t, err, board.ErrUnknownStep)
	_, err = s.AddEmptyStep("missing")
	assert.ErrorIs(t, err, board.ErrUnknownTask)
}

func TestBoardService_RemoveAndRename(t *testing.T) {
	s := newService(new(MockGenerator))
	task, _ := s.AddManualTask(model.ColumnTodo, "Temp", nil)

	require.NoError(t, s.RemoveTask(task.ID))
	assert.Zero(t, s.Snapshot().TaskCount())
	assert.ErrorIs(t, s.RemoveTask(task.ID), board.ErrUnknownTask)

	col, err := s.RenameColumn(model.ColumnDone, "Shipped")
	require.NoError(t, err)
	assert.Equal(t, "Shipped", col.Title)

	_, err = s.RenameColumn("backlog", "x")
	assert.ErrorIs(t, err, board.ErrUnknownColumn)
}
