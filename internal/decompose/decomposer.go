// Package decompose is the generation service: it asks a language model to
// break a goal into subtasks and answers with the status envelope the board
// pipeline consumes.
package decompose

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/generation"
	"github.com/BuzzLyutic/task-tracker/internal/model"
)

type Completer interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}

// Journal receives one record per answered request.
type Journal interface {
	Submit(rec model.GenerationRecord) bool
}

type Decomposer struct {
	llm     Completer
	models  map[string]string
	journal Journal
	logger  *zap.Logger
}

// NewDecomposer accepts requests for the given catalog keys. Keys are matched
// case-insensitively after decorative glyphs are stripped. journal may be nil.
func NewDecomposer(llm Completer, catalog []string, journal Journal, logger *zap.Logger) *Decomposer {
	models := make(map[string]string, len(catalog))
	for _, key := range catalog {
		name := generation.NormalizeModel(key)
		if name == "" {
			continue
		}
		models[strings.ToLower(name)] = name
	}
	return &Decomposer{
		llm:     llm,
		models:  models,
		journal: journal,
		logger:  logger,
	}
}

// Answer never fails: problems are reported through the error envelope. Every
// answer is journaled.
func (d *Decomposer) Answer(ctx context.Context, modelID, query string) generation.RawResponse {
	resp, rec := d.answer(ctx, modelID, query)
	d.record(rec)
	return resp
}

// Generate lets the decomposer serve as an in-process generation.Generator.
// The caller journals the attempt once it knows whether the batch was
// accepted, so nothing is recorded here.
func (d *Decomposer) Generate(ctx context.Context, modelID, query string) (generation.RawResponse, error) {
	resp, _ := d.answer(ctx, modelID, query)
	return resp, nil
}

func (d *Decomposer) answer(ctx context.Context, modelID, query string) (generation.RawResponse, model.GenerationRecord) {
	name, ok := d.models[strings.ToLower(generation.NormalizeModel(modelID))]
	if !ok {
		return d.fail(modelID, query, fmt.Sprintf("Unsupported model: %s", modelID), "")
	}
	if strings.TrimSpace(query) == "" {
		return d.fail(name, query, "query is required", "")
	}

	text, err := d.llm.Complete(ctx, name, MasterPrompt, query)
	if err != nil {
		return d.fail(name, query, err.Error(), "")
	}

	data, err := ParseObject(text)
	if err != nil {
		return d.fail(name, query, fmt.Sprintf("JSON parsing failed: %v", err), text)
	}

	d.logger.Info("decomposed goal", zap.String("model", name), zap.Int("bytes", len(data)))
	return generation.RawResponse{Status: generation.StatusSuccess, Data: data},
		model.GenerationRecord{Model: name, Query: query, Outcome: model.OutcomeSuccess, Detail: string(data)}
}

func (d *Decomposer) fail(modelID, query, message, rawOutput string) (generation.RawResponse, model.GenerationRecord) {
	d.logger.Warn("decompose failed", zap.String("model", modelID), zap.String("error", message))
	return generation.RawResponse{Status: generation.StatusError, Message: message, RawOutput: rawOutput},
		model.GenerationRecord{Model: modelID, Query: query, Outcome: model.OutcomeError, Detail: message}
}

func (d *Decomposer) record(rec model.GenerationRecord) {
	if d.journal == nil {
		return
	}
	if !d.journal.Submit(rec) {
		d.logger.Warn("journal full, dropping record", zap.String("model", rec.Model))
	}
}
