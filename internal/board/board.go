// Package board holds the column -> task -> step ordering of a task board.
//
// A Board is an immutable snapshot: every transition takes a Board and returns
// a new one, and no transition writes into storage reachable from its input.
// Readers always receive copies.
package board

import (
	"encoding/json"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

type Board struct {
	order   []model.ColumnID
	columns map[model.ColumnID]model.Column
}

// New returns the default three column board.
func New() Board {
	return WithColumns(
		model.Column{ID: model.ColumnTodo, Title: "To Do"},
		model.Column{ID: model.ColumnInProgress, Title: "In Progress"},
		model.Column{ID: model.ColumnDone, Title: "Done"},
	)
}

// WithColumns builds a board whose display order is the argument order.
// Later columns with a repeated ID are ignored.
func WithColumns(cols ...model.Column) Board {
	b := Board{
		order:   make([]model.ColumnID, 0, len(cols)),
		columns: make(map[model.ColumnID]model.Column, len(cols)),
	}
	for _, c := range cols {
		if _, dup := b.columns[c.ID]; dup {
			continue
		}
		b.order = append(b.order, c.ID)
		b.columns[c.ID] = cloneColumn(c)
	}
	return b
}

func (b Board) ColumnIDs() []model.ColumnID {
	out := make([]model.ColumnID, len(b.order))
	copy(out, b.order)
	return out
}

func (b Board) HasColumn(id model.ColumnID) bool {
	_, ok := b.columns[id]
	return ok
}

func (b Board) Column(id model.ColumnID) (model.Column, bool) {
	c, ok := b.columns[id]
	if !ok {
		return model.Column{}, false
	}
	return cloneColumn(c), true
}

func (b Board) Columns() []model.Column {
	out := make([]model.Column, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, cloneColumn(b.columns[id]))
	}
	return out
}

// Task returns the task with the given ID and the column that owns it.
func (b Board) Task(id string) (model.Task, model.ColumnID, bool) {
	colID, idx, ok := b.locate(id)
	if !ok {
		return model.Task{}, "", false
	}
	return b.columns[colID].Items[idx].Clone(), colID, true
}

func (b Board) TaskCount() int {
	n := 0
	for _, c := range b.columns {
		n += len(c.Items)
	}
	return n
}

func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Columns []model.Column `json:"columns"`
	}{Columns: b.Columns()})
}

func (b Board) locate(taskID string) (model.ColumnID, int, bool) {
	for _, colID := range b.order {
		for i, t := range b.columns[colID].Items {
			if t.ID == taskID {
				return colID, i, true
			}
		}
	}
	return "", 0, false
}

// with returns a copy of b with the given columns replaced.
func (b Board) with(cols ...model.Column) Board {
	next := Board{
		order:   b.order,
		columns: make(map[model.ColumnID]model.Column, len(b.columns)),
	}
	for id, c := range b.columns {
		next.columns[id] = c
	}
	for _, c := range cols {
		next.columns[c.ID] = c
	}
	return next
}

func cloneColumn(c model.Column) model.Column {
	items := make([]model.Task, len(c.Items))
	for i, t := range c.Items {
		items[i] = t.Clone()
	}
	c.Items = items
	return c
}
