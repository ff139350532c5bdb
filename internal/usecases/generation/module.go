package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/repository"
	"github.com/admin/tg-bots/veo-bot/internal/ports/service"
	"github.com/admin/tg-bots/veo-bot/internal/ports/storage"
	telegramPorts "github.com/admin/tg-bots/veo-bot/internal/ports/telegram"
	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
	"github.com/google/uuid"
)

const (
	// CreditsPerGeneration стоимость одной генерации
	CreditsPerGeneration = 10

	defaultModel       = "veo3_fast"
	defaultAspectRatio = "16:9"
)

// UseCase жизненный цикл генерации видео: списание, отправка провайдеру,
// опрос статуса, доставка результата и компенсация при неудаче
type UseCase struct {
	ledger      repository.ILedgerRepo
	generations repository.IGenerationRepo
	videoAPI    service.IVideoAPI
	tg          telegramPorts.IClient
	files       storage.IFileStorage // nil, если S3 не настроен: image-to-video недоступен
	notifier    service.INotifier
	log         *slog.Logger

	pollInterval time.Duration
	pollAttempts int

	// активные поллеры по task_id, повторный подхват той же задачи no-op
	pollersMu sync.Mutex
	pollers   map[string]struct{}
}

// New создаёт use case генерации
func New(
	ledger repository.ILedgerRepo,
	generations repository.IGenerationRepo,
	videoAPI service.IVideoAPI,
	tg telegramPorts.IClient,
	files storage.IFileStorage,
	notifier service.INotifier,
	log *slog.Logger,
) *UseCase {
	return &UseCase{
		ledger:       ledger,
		generations:  generations,
		videoAPI:     videoAPI,
		tg:           tg,
		files:        files,
		notifier:     notifier,
		log:          log,
		pollInterval: 5 * time.Second,
		pollAttempts: 60,
		pollers:      make(map[string]struct{}),
	}
}

// newTaskID генерирует внутренний id задачи
func newTaskID() string {
	return "veo_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

// Start списывает кредиты, создаёт задачу и отправляет её провайдеру.
// Любой сбой после списания компенсируется возвратом
func (u *UseCase) Start(ctx context.Context, req usecase.StartGenerationRequest) (*domain.Generation, error) {
	spend := &domain.Transaction{
		UserID:      req.User.TelegramID,
		Type:        domain.TransactionTypeSpend,
		Amount:      -CreditsPerGeneration,
		Description: "Генерация видео",
	}

	if _, err := u.ledger.ApplyDelta(ctx, spend); err != nil {
		if errors.Is(err, domain.ErrInsufficientCredits) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to debit credits: %w", err)
	}

	gen := &domain.Generation{
		UserID:         req.User.TelegramID,
		TaskID:         newTaskID(),
		Prompt:         req.Prompt,
		GenerationType: req.GenerationType,
		Model:          defaultModel,
		AspectRatio:    defaultAspectRatio,
		Status:         domain.GenerationStatusPending,
		CreditsSpent:   CreditsPerGeneration,
	}

	if err := u.generations.Create(ctx, gen); err != nil {
		// Задача не записалась, возвращаем списание сразу
		u.refund(ctx, gen)
		return nil, fmt.Errorf("failed to create generation: %w", err)
	}

	// Для image-to-video фото из Telegram выкладывается по публичному URL:
	// провайдер скачивает его сам
	imageURL := ""
	if req.GenerationType == domain.GenerationTypeImageToVideo {
		url, err := u.uploadPhoto(ctx, gen.TaskID, req.PhotoFileID)
		if err != nil {
			u.failAndRefund(ctx, gen, fmt.Sprintf("image upload failed: %v", err))
			return nil, fmt.Errorf("failed to prepare image: %w", err)
		}
		imageURL = url
		gen.ImageURL = &url
	}

	veoTaskID, err := u.videoAPI.Generate(ctx, service.GenerateRequest{
		Prompt:      gen.Prompt,
		Model:       gen.Model,
		AspectRatio: gen.AspectRatio,
		ImageURL:    imageURL,
	})
	if err != nil {
		u.failAndRefund(ctx, gen, fmt.Sprintf("submission failed: %v", err))
		return nil, fmt.Errorf("failed to submit generation: %w", err)
	}

	if err := u.generations.SetProcessing(ctx, gen.TaskID, veoTaskID); err != nil {
		u.log.Error("failed to mark generation processing",
			"error", err,
			"task_id", gen.TaskID,
			"veo_task_id", veoTaskID,
		)
	}
	gen.VeoTaskID = &veoTaskID
	gen.Status = domain.GenerationStatusProcessing

	u.log.Info("generation started",
		"task_id", gen.TaskID,
		"veo_task_id", veoTaskID,
		"user_id", gen.UserID,
		"type", gen.GenerationType,
	)
	return gen, nil
}

// uploadPhoto скачивает фото из Telegram и кладёт его в S3
func (u *UseCase) uploadPhoto(ctx context.Context, taskID, fileID string) (string, error) {
	if u.files == nil {
		return "", fmt.Errorf("file storage is not configured")
	}
	if fileID == "" {
		return "", fmt.Errorf("photo file id is empty")
	}

	data, err := u.tg.DownloadFile(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("failed to download photo: %w", err)
	}

	path := fmt.Sprintf("generations/%s.jpg", taskID)
	url, err := u.files.Upload(ctx, path, data, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	return url, nil
}

// failAndRefund переводит задачу в failed и возвращает кредиты.
// Возврат происходит только если терминальный переход состоялся именно сейчас
func (u *UseCase) failAndRefund(ctx context.Context, gen *domain.Generation, errorMessage string) {
	transitioned, err := u.generations.MarkFailed(ctx, gen.TaskID, errorMessage, time.Now())
	if err != nil {
		u.log.Error("failed to mark generation failed",
			"error", err,
			"task_id", gen.TaskID,
		)
		return
	}
	if !transitioned {
		// Кто-то уже закрыл задачу, возврат не наш
		return
	}

	u.refund(ctx, gen)
	u.notifyFailure(ctx, gen, errorMessage)
}

// refund возвращает кредиты за задачу. Ключ идемпотентности refund_<task_id>
// страхует от двойного возврата даже поверх статусного guard-а
func (u *UseCase) refund(ctx context.Context, gen *domain.Generation) {
	refundKey := "refund_" + gen.TaskID
	entry := &domain.Transaction{
		UserID:      gen.UserID,
		Type:        domain.TransactionTypeRefund,
		Amount:      gen.CreditsSpent,
		Description: fmt.Sprintf("Возврат за неудавшуюся генерацию %s", gen.TaskID),
		PaymentID:   &refundKey,
	}
	if entry.Amount == 0 {
		entry.Amount = CreditsPerGeneration
	}

	if _, err := u.ledger.ApplyDelta(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) {
			return
		}
		// Возврат не прошёл: деньги пользователя зависли
		u.log.Error("CRITICAL: refund failed",
			"error", err,
			"task_id", gen.TaskID,
			"user_id", gen.UserID,
			"amount", entry.Amount,
		)
		return
	}

	u.log.Info("credits refunded",
		"task_id", gen.TaskID,
		"user_id", gen.UserID,
		"amount", entry.Amount,
	)
}

// notifyFailure публикует уведомление о неудаче с человекочитаемой причиной
func (u *UseCase) notifyFailure(ctx context.Context, gen *domain.Generation, errorMessage string) {
	event := domain.NotificationEvent{
		Kind:      domain.NotificationGenerationFailed,
		UserID:    gen.UserID,
		CreatedAt: time.Now(),
		TaskID:    gen.TaskID,
		Reason:    ClassifyError(errorMessage),
	}

	if err := u.notifier.Notify(ctx, event); err != nil {
		u.log.Warn("failed to publish failure notification",
			"error", err,
			"task_id", gen.TaskID,
		)
	}
}

// notifySuccess публикует уведомление об успешной генерации
func (u *UseCase) notifySuccess(ctx context.Context, gen *domain.Generation, videoURL string) {
	event := domain.NotificationEvent{
		Kind:      domain.NotificationGenerationComplete,
		UserID:    gen.UserID,
		CreatedAt: time.Now(),
		TaskID:    gen.TaskID,
		VideoURL:  videoURL,
	}

	if err := u.notifier.Notify(ctx, event); err != nil {
		u.log.Warn("failed to publish success notification",
			"error", err,
			"task_id", gen.TaskID,
		)
	}
}

var _ usecase.IGenerationUseCase = (*UseCase)(nil)
