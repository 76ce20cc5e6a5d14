package repo

import (
	"context"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

// GenerationRepository хранит журнал запросов к генератору задач
type GenerationRepository interface {
	Create(ctx context.Context, rec model.GenerationRecord) (model.GenerationRecord, error)
	Get(ctx context.Context, id int64) (model.GenerationRecord, error)
	List(ctx context.Context, filter model.GenerationFilter, limit int) ([]model.GenerationRecord, error)
	GetStats(ctx context.Context) (Stats, error)
}

type Stats struct {
	ByOutcome        map[string]int `json:"by_outcome"`
	ByModel          map[string]int `json:"by_model"`
	TotalGenerations int            `json:"total_generations"`
}
