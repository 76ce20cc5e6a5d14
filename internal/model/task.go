package model

import "time"

type ColumnID string

const (
	ColumnTodo       ColumnID = "todo"
	ColumnInProgress ColumnID = "in-progress"
	ColumnDone       ColumnID = "done"
)

type Step struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

type Task struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Steps   []Step `json:"steps"`
}

// Clone returns a copy of t that shares no step storage with it.
func (t Task) Clone() Task {
	steps := make([]Step, len(t.Steps))
	copy(steps, t.Steps)
	t.Steps = steps
	return t
}

type Column struct {
	ID    ColumnID `json:"id"`
	Title string   `json:"title"`
	Items []Task   `json:"items"`
}

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// GenerationRecord is one journaled generation attempt.
type GenerationRecord struct {
	ID        int64     `json:"id"`
	Model     string    `json:"model"`
	Query     string    `json:"query"`
	Outcome   Outcome   `json:"outcome"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

type GenerationFilter struct {
	Outcome *Outcome
}
