package generation

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/ids"
	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// Batch is the outcome of a successful generation: tasks ready for a single
// AddTasks call plus the entries that were skipped on the way.
type Batch struct {
	Tasks   []model.Task
	Skipped []Entry
}

type Pipeline struct {
	ids    ids.Generator
	logger *zap.Logger
}

func NewPipeline(gen ids.Generator, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		ids:    gen,
		logger: logger,
	}
}

// Run asks the generator for a breakdown of query and builds the batch.
func (p *Pipeline) Run(ctx context.Context, gen Generator, modelID, query string) (Batch, error) {
	resp, err := gen.Generate(ctx, NormalizeModel(modelID), query)
	if err != nil {
		if classified(err) {
			return Batch{}, err
		}
		return Batch{}, &TransportError{Err: err}
	}
	return p.Build(resp)
}

// Build validates a raw response and converts its subtasks into tasks in the
// service's iteration order. Malformed entries are skipped; a batch with no
// accepted entries fails with ErrEmptyBatch.
func (p *Pipeline) Build(resp RawResponse) (Batch, error) {
	if resp.Status == StatusError {
		return Batch{}, &ServiceError{Message: resp.Message}
	}

	members, ok := decodeObject(resp.Data)
	if !ok {
		return Batch{}, ErrMalformedResponse
	}

	var batch Batch
	for _, m := range members {
		entry := ParseEntry(m.Key, m.Value)
		if entry.Kind == Skipped {
			p.logger.Warn("skipping invalid subtask",
				zap.String("key", entry.Key),
				zap.String("reason", string(entry.Reason)),
			)
			batch.Skipped = append(batch.Skipped, entry)
			continue
		}
		batch.Tasks = append(batch.Tasks, p.newTask(entry, len(batch.Tasks)+1))
	}

	if len(batch.Tasks) == 0 {
		return batch, ErrEmptyBatch
	}
	return batch, nil
}

func (p *Pipeline) newTask(entry Entry, n int) model.Task {
	t := model.Task{
		ID:      p.ids.TaskID(),
		Content: Number(entry.Title, n),
		Steps:   make([]model.Step, 0, len(entry.Steps)),
	}
	for _, s := range entry.Steps {
		t.Steps = append(t.Steps, model.Step{ID: p.ids.StepID(), Content: s})
	}
	return t
}

func classified(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrService) || errors.Is(err, ErrMalformedResponse)
}

// Number prefixes title with "{n}. " unless it already carries that prefix.
func Number(title string, n int) string {
	prefix := strconv.Itoa(n) + ". "
	if strings.HasPrefix(title, prefix) {
		return title
	}
	return prefix + title
}
