package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
)

const (
	generationRecovererName = "generation-recoverer"

	recoverInterval = 5 * time.Minute
)

// GenerationRecoverer джоба подхвата генераций, оставшихся в processing
// после рестарта: их поллеры умерли вместе с процессом
type GenerationRecoverer struct {
	generation usecase.IGenerationUseCase
	log        *slog.Logger
}

func NewGenerationRecoverer(generation usecase.IGenerationUseCase, log *slog.Logger) *GenerationRecoverer {
	return &GenerationRecoverer{
		generation: generation,
		log:        log,
	}
}

func (j *GenerationRecoverer) Name() string {
	return generationRecovererName
}

// NextRun каждые 5 минут. Первый прогон сразу после старта делает app.Run
func (j *GenerationRecoverer) NextRun(now time.Time) time.Time {
	return now.Add(recoverInterval)
}

func (j *GenerationRecoverer) RetrySchedule() []time.Duration {
	return nil
}

func (j *GenerationRecoverer) Run(ctx context.Context) error {
	return j.generation.RecoverStuck(ctx)
}
