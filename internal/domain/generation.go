package domain

import "time"

// GenerationType тип генерации видео
type GenerationType string

const (
	GenerationTypeTextToVideo  GenerationType = "text_to_video"
	GenerationTypeImageToVideo GenerationType = "image_to_video"
)

// GenerationStatus статус задачи генерации
type GenerationStatus string

const (
	GenerationStatusPending    GenerationStatus = "pending"    // создана, ещё не принята провайдером
	GenerationStatusProcessing GenerationStatus = "processing" // провайдер принял, известен veo_task_id
	GenerationStatusCompleted  GenerationStatus = "completed"  // терминальный: успех
	GenerationStatusFailed     GenerationStatus = "failed"     // терминальный: ошибка или таймаут (кредиты возвращены)
)

// IsTerminal терминальные статусы не откатываются назад
func (s GenerationStatus) IsTerminal() bool {
	return s == GenerationStatusCompleted || s == GenerationStatusFailed
}

// Generation задача генерации видео. Списание кредитов ровно один раз при
// создании, возврат не более одного раза и только при терминальном failed
type Generation struct {
	ID             int64            `json:"id" db:"id"`
	UserID         int64            `json:"user_id" db:"user_id"`
	TaskID         string           `json:"task_id" db:"task_id"`                       // наш внутренний id (veo_XXXX)
	VeoTaskID      *string          `json:"veo_task_id,omitempty" db:"veo_task_id"`     // id задачи у провайдера
	Prompt         string           `json:"prompt" db:"prompt"`
	GenerationType GenerationType   `json:"generation_type" db:"generation_type"`
	ImageURL       *string          `json:"image_url,omitempty" db:"image_url"`
	Model          string           `json:"model" db:"model"`
	AspectRatio    string           `json:"aspect_ratio" db:"aspect_ratio"`
	Status         GenerationStatus `json:"status" db:"status"`
	VideoURL       *string          `json:"video_url,omitempty" db:"video_url"`
	ErrorMessage   *string          `json:"error_message,omitempty" db:"error_message"`
	CreditsSpent   int64            `json:"credits_spent" db:"credits_spent"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty" db:"completed_at"`
}

// GenerationOutcome нормализованный статус задачи у провайдера.
// Разные варианты endpoint-ов возвращают разные схемы, клиент приводит их к этому виду
type GenerationOutcome string

const (
	OutcomeProcessing GenerationOutcome = "processing"
	OutcomeSuccess    GenerationOutcome = "success"
	OutcomeFailure    GenerationOutcome = "failure"
)

// GenerationStatusResult результат опроса статуса у провайдера
type GenerationStatusResult struct {
	Outcome      GenerationOutcome
	VideoURL     string // заполнен при Outcome == OutcomeSuccess
	ErrorMessage string // заполнен при Outcome == OutcomeFailure
}
