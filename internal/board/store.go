package board

import (
	"errors"
	"fmt"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrUnknownTask   = errors.New("unknown task")
	ErrUnknownStep   = errors.New("unknown step")
	ErrDuplicateTask = errors.New("duplicate task")
	ErrInvalidTask   = errors.New("invalid task")
)

// AddTask appends task to the tail of the column.
func AddTask(b Board, columnID model.ColumnID, task model.Task) (Board, error) {
	return AddTasks(b, columnID, []model.Task{task})
}

// AddTasks appends tasks in order to the tail of the column. Either every task
// is appended or, on error, b is returned untouched.
func AddTasks(b Board, columnID model.ColumnID, tasks []model.Task) (Board, error) {
	col, ok := b.columns[columnID]
	if !ok {
		return b, fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}

	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if err := validateTask(t); err != nil {
			return b, err
		}
		if b.HasColumn(model.ColumnID(t.ID)) {
			return b, fmt.Errorf("%w: task id %q names a column", ErrInvalidTask, t.ID)
		}
		if _, dup := seen[t.ID]; dup {
			return b, fmt.Errorf("%w: %q appears twice in batch", ErrDuplicateTask, t.ID)
		}
		if owner, _, exists := b.locate(t.ID); exists {
			return b, fmt.Errorf("%w: %q already in %q", ErrDuplicateTask, t.ID, owner)
		}
		seen[t.ID] = struct{}{}
	}

	items := make([]model.Task, 0, len(col.Items)+len(tasks))
	items = append(items, col.Items...)
	for _, t := range tasks {
		items = append(items, t.Clone())
	}
	col.Items = items
	return b.with(col), nil
}

// UpdateTask replaces the task with updated.ID at its current position.
// Unknown IDs are ignored so stale updates are harmless. Updates that would
// break step ID uniqueness are ignored the same way.
func UpdateTask(b Board, updated model.Task) Board {
	colID, idx, ok := b.locate(updated.ID)
	if !ok || validateTask(updated) != nil {
		return b
	}

	col := b.columns[colID]
	items := make([]model.Task, len(col.Items))
	copy(items, col.Items)
	items[idx] = updated.Clone()
	col.Items = items
	return b.with(col)
}

// MoveTask transfers the task from one column to the tail of another. Same
// column moves, unknown columns and tasks absent from the source column leave
// b unchanged.
func MoveTask(b Board, taskID string, from, to model.ColumnID) Board {
	if from == to {
		return b
	}
	src, ok := b.columns[from]
	if !ok {
		return b
	}
	dst, ok := b.columns[to]
	if !ok {
		return b
	}

	idx := -1
	for i, t := range src.Items {
		if t.ID == taskID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return b
	}
	moved := src.Items[idx]

	srcItems := make([]model.Task, 0, len(src.Items)-1)
	srcItems = append(srcItems, src.Items[:idx]...)
	srcItems = append(srcItems, src.Items[idx+1:]...)
	src.Items = srcItems

	dstItems := make([]model.Task, 0, len(dst.Items)+1)
	dstItems = append(dstItems, dst.Items...)
	dstItems = append(dstItems, moved)
	dst.Items = dstItems

	return b.with(src, dst)
}

// RemoveTask drops the task from whichever column owns it.
func RemoveTask(b Board, taskID string) Board {
	colID, idx, ok := b.locate(taskID)
	if !ok {
		return b
	}

	col := b.columns[colID]
	items := make([]model.Task, 0, len(col.Items)-1)
	items = append(items, col.Items[:idx]...)
	items = append(items, col.Items[idx+1:]...)
	col.Items = items
	return b.with(col)
}

func RenameColumn(b Board, columnID model.ColumnID, title string) (Board, error) {
	col, ok := b.columns[columnID]
	if !ok {
		return b, fmt.Errorf("%w: %q", ErrUnknownColumn, columnID)
	}
	col.Title = title
	return b.with(col), nil
}

// FindContainer resolves a task ID to its owning column, or returns the ID
// itself when it already names a column.
func FindContainer(b Board, id string) (model.ColumnID, bool) {
	if b.HasColumn(model.ColumnID(id)) {
		return model.ColumnID(id), true
	}
	colID, _, ok := b.locate(id)
	return colID, ok
}

func validateTask(t model.Task) error {
	if t.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidTask)
	}
	steps := make(map[string]struct{}, len(t.Steps))
	for _, s := range t.Steps {
		if s.ID == "" {
			return fmt.Errorf("%w: task %q has a step without id", ErrInvalidTask, t.ID)
		}
		if _, dup := steps[s.ID]; dup {
			return fmt.Errorf("%w: task %q repeats step %q", ErrInvalidTask, t.ID, s.ID)
		}
		steps[s.ID] = struct{}{}
	}
	return nil
}
