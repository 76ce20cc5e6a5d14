package ids

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	taskPrefix = "task"
	stepPrefix = "step"
)

// Generator hands out TaskIds and StepIds that are never reused within a process.
type Generator interface {
	TaskID() string
	StepID() string
}

type UUID struct{}

func NewUUID() UUID {
	return UUID{}
}

func (UUID) TaskID() string {
	return taskPrefix + "-" + uuid.NewString()
}

func (UUID) StepID() string {
	return stepPrefix + "-" + uuid.NewString()
}

// Sequence is a monotonically increasing counter shared by tasks and steps.
type Sequence struct {
	next atomic.Uint64
}

func NewSequence() *Sequence {
	return &Sequence{}
}

func (s *Sequence) TaskID() string {
	return fmt.Sprintf("%s-%d", taskPrefix, s.next.Add(1))
}

func (s *Sequence) StepID() string {
	return fmt.Sprintf("%s-%d", stepPrefix, s.next.Add(1))
}
