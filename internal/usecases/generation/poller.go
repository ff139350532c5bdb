package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

// Poll опрашивает провайдера до терминального статуса и закрывает задачу.
// Исчерпание бюджета попыток закрывает её как failed с возвратом,
// запоздавший success после этого гасится терминальным guard-ом в БД
func (u *UseCase) Poll(ctx context.Context, gen *domain.Generation) {
	if gen.VeoTaskID == nil || *gen.VeoTaskID == "" {
		u.log.Error("poll called without provider task id", "task_id", gen.TaskID)
		return
	}

	if !u.acquirePoll(gen.TaskID) {
		return
	}
	defer u.releasePoll(gen.TaskID)

	ticker := time.NewTicker(u.pollInterval)
	defer ticker.Stop()

	for attempt := 1; attempt <= u.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			u.log.Info("poll canceled, task stays processing for recovery",
				"task_id", gen.TaskID,
				"attempt", attempt,
			)
			return
		case <-ticker.C:
		}

		status, err := u.videoAPI.GetStatus(ctx, *gen.VeoTaskID)
		if err != nil {
			// Сетевые сбои не тратят бюджет досрочно: просто следующая попытка
			u.log.Warn("poll attempt failed",
				"error", err,
				"task_id", gen.TaskID,
				"attempt", attempt,
			)
			continue
		}

		switch status.Outcome {
		case domain.OutcomeSuccess:
			u.complete(ctx, gen, status.VideoURL)
			return
		case domain.OutcomeFailure:
			u.failAndRefund(ctx, gen, status.ErrorMessage)
			return
		case domain.OutcomeProcessing:
			// ждём дальше
		}
	}

	u.log.Warn("generation poll budget exhausted",
		"task_id", gen.TaskID,
		"attempts", u.pollAttempts,
	)
	u.failAndRefund(ctx, gen, fmt.Sprintf("generation timed out after %d poll attempts", u.pollAttempts))
}

// complete закрывает задачу успехом. Терминальный guard гарантирует, что
// поздний poll не перепишет уже закрытую задачу
func (u *UseCase) complete(ctx context.Context, gen *domain.Generation, videoURL string) {
	transitioned, err := u.generations.MarkCompleted(ctx, gen.TaskID, videoURL, time.Now())
	if err != nil {
		u.log.Error("failed to mark generation completed",
			"error", err,
			"task_id", gen.TaskID,
		)
		return
	}
	if !transitioned {
		return
	}

	u.log.Info("generation completed",
		"task_id", gen.TaskID,
		"user_id", gen.UserID,
	)
	u.notifySuccess(ctx, gen, videoURL)
}

// acquirePoll регистрирует поллер задачи. false, если поллер уже запущен
func (u *UseCase) acquirePoll(taskID string) bool {
	u.pollersMu.Lock()
	defer u.pollersMu.Unlock()
	if _, ok := u.pollers[taskID]; ok {
		return false
	}
	u.pollers[taskID] = struct{}{}
	return true
}

func (u *UseCase) releasePoll(taskID string) {
	u.pollersMu.Lock()
	delete(u.pollers, taskID)
	u.pollersMu.Unlock()
}

// RecoverStuck подхватывает задачи, зависшие в processing.
// Задачи с живым поллером отсеивает acquirePoll, задачи без
// veo_task_id закрывает failAndRefund в Start
func (u *UseCase) RecoverStuck(ctx context.Context) error {
	stuck, err := u.generations.ListStuckProcessing(ctx, time.Now().Add(-u.pollInterval))
	if err != nil {
		return fmt.Errorf("failed to list stuck generations: %w", err)
	}

	if len(stuck) == 0 {
		return nil
	}

	u.log.Info("recovering stuck generations", "count", len(stuck))

	for i := range stuck {
		gen := stuck[i]
		go u.Poll(ctx, &gen)
	}

	return nil
}
