package veo

import (
	"encoding/json"
	"strings"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
)

// generateRequest запрос POST /api/v1/veo/generate
type generateRequest struct {
	Prompt         string   `json:"prompt"`
	Model          string   `json:"model"`
	AspectRatio    string   `json:"aspectRatio"`
	EnableFallback bool     `json:"enableFallback"`
	ImageURLs      []string `json:"imageUrls,omitempty"` // для image-to-video
}

// generateResponse ответ на создание задачи
type generateResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		TaskID string `json:"taskId"`
	} `json:"data"`
}

// recordInfoResponse ответ GET /api/v1/veo/record-info.
// successFlag: 0 в работе, 1 успех, 2/3 ошибка
type recordInfoResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		SuccessFlag  *int   `json:"successFlag"`
		ErrorMessage string `json:"errorMessage"`
		Response     struct {
			ResultURLs []string `json:"resultUrls"`
		} `json:"response"`
	} `json:"data"`
}

// statusResponse ответ запасного GET /api/v1/veo/status/{id}.
// Другая схема: строковый статус вместо числового флага
type statusResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Status   string `json:"status"`
		VideoURL string `json:"videoUrl"`
		Error    string `json:"error"`
	} `json:"data"`
}

// normalizeRecordInfo приводит основной формат к доменному статусу.
// Незнакомая форма трактуется как «ещё обрабатывается»
func normalizeRecordInfo(body []byte) *domain.GenerationStatusResult {
	var resp recordInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Code != 200 || resp.Data.SuccessFlag == nil {
		return &domain.GenerationStatusResult{Outcome: domain.OutcomeProcessing}
	}

	switch *resp.Data.SuccessFlag {
	case 1:
		if len(resp.Data.Response.ResultURLs) == 0 {
			// успех без ссылки на видео считаем незавершённым
			return &domain.GenerationStatusResult{Outcome: domain.OutcomeProcessing}
		}
		return &domain.GenerationStatusResult{
			Outcome:  domain.OutcomeSuccess,
			VideoURL: resp.Data.Response.ResultURLs[0],
		}
	case 2, 3:
		return &domain.GenerationStatusResult{
			Outcome:      domain.OutcomeFailure,
			ErrorMessage: resp.Data.ErrorMessage,
		}
	default:
		return &domain.GenerationStatusResult{Outcome: domain.OutcomeProcessing}
	}
}

// normalizeStatus приводит запасной формат к доменному статусу
func normalizeStatus(body []byte) *domain.GenerationStatusResult {
	var resp statusResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Code != 200 {
		return &domain.GenerationStatusResult{Outcome: domain.OutcomeProcessing}
	}

	switch strings.ToLower(resp.Data.Status) {
	case "completed", "success":
		if resp.Data.VideoURL == "" {
			return &domain.GenerationStatusResult{Outcome: domain.OutcomeProcessing}
		}
		return &domain.GenerationStatusResult{
			Outcome:  domain.OutcomeSuccess,
			VideoURL: resp.Data.VideoURL,
		}
	case "failed", "error":
		return &domain.GenerationStatusResult{
			Outcome:      domain.OutcomeFailure,
			ErrorMessage: resp.Data.Error,
		}
	default:
		return &domain.GenerationStatusResult{Outcome: domain.OutcomeProcessing}
	}
}
