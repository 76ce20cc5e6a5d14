// Package dnd resolves drag gestures against board snapshots.
package dnd

import (
	"fmt"

	"github.com/BuzzLyutic/task-tracker/internal/board"
	"github.com/BuzzLyutic/task-tracker/internal/model"
)

type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Outcome tells what a drop did to the board.
type Outcome string

const (
	Moved               Outcome = "moved"
	DiscardedNoTarget   Outcome = "no-target"
	DiscardedUnresolved Outcome = "unresolved"
	DiscardedSameColumn Outcome = "same-column"
)

// Drop is the release event of a gesture. OverID is whatever drop zone the
// presentation reported under the pointer; ColumnHint is the column a drop
// zone declares for itself, used when OverID does not resolve.
type Drop struct {
	ActiveID   string
	OverID     string
	ColumnHint model.ColumnID
}

// Reconciler tracks a single drag gesture. It is not safe for concurrent use;
// callers serialize events.
type Reconciler struct {
	state    State
	activeID string
	overID   string
}

func NewReconciler() *Reconciler {
	return &Reconciler{}
}

func (r *Reconciler) State() State {
	return r.state
}

// Active returns the task being dragged, for overlay rendering.
func (r *Reconciler) Active() (string, bool) {
	if r.state != Dragging {
		return "", false
	}
	return r.activeID, true
}

// Over returns the last hover target reported by Move.
func (r *Reconciler) Over() string {
	return r.overID
}

// Start begins a gesture for a task that must exist on b.
func (r *Reconciler) Start(b board.Board, taskID string) error {
	if _, _, ok := b.Task(taskID); !ok {
		return fmt.Errorf("%w: %q", board.ErrUnknownTask, taskID)
	}
	r.state = Dragging
	r.activeID = taskID
	r.overID = ""
	return nil
}

// Move records the hover target. It never touches the board.
func (r *Reconciler) Move(overID string) {
	if r.state != Dragging {
		return
	}
	r.overID = overID
}

// End commits a cross-column drop and always leaves the reconciler idle.
func (r *Reconciler) End(b board.Board, d Drop) (board.Board, Outcome) {
	r.reset()

	if d.OverID == "" && d.ColumnHint == "" {
		return b, DiscardedNoTarget
	}

	// Перетаскивать можно только задачи, не колонки
	_, from, ok := b.Task(d.ActiveID)
	if !ok {
		return b, DiscardedUnresolved
	}
	to, ok := board.FindContainer(b, d.OverID)
	if !ok {
		if d.ColumnHint == "" || !b.HasColumn(d.ColumnHint) {
			return b, DiscardedUnresolved
		}
		to = d.ColumnHint
	}
	if from == to {
		return b, DiscardedSameColumn
	}

	return board.MoveTask(b, d.ActiveID, from, to), Moved
}

// Cancel abandons the gesture without touching the board.
func (r *Reconciler) Cancel() {
	r.reset()
}

func (r *Reconciler) reset() {
	r.state = Idle
	r.activeID = ""
	r.overID = ""
}
