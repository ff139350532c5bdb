package jobs

import (
	"context"
	"time"
)

// Job представляет периодическую задачу, которую можно запланировать
type Job interface {
	Name() string
	NextRun(now time.Time) time.Time
	// RetrySchedule задержки повторных попыток после неудачного Run.
	// Пустой слайс значит без ретраев (для частых джоб следующий тик сам и есть retry)
	RetrySchedule() []time.Duration
	Run(ctx context.Context) error
}
