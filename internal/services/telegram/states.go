package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/admin/tg-bots/veo-bot/internal/ports/cache"
)

// DialogState шаг диалога пользователя (ожидание промпта/картинки)
type DialogState string

const (
	StateNone               DialogState = ""
	StateWaitingTextPrompt  DialogState = "waiting_text_prompt"
	StateWaitingImage       DialogState = "waiting_image"
	StateWaitingImagePrompt DialogState = "waiting_image_prompt"
)

// stateTTL брошенный диалог забывается сам
const stateTTL = 15 * time.Minute

// StateStore хранит шаг диалога и промежуточные данные (file_id фото) в кэше.
// Переживает рестарт процесса, в отличие от состояния в памяти
type StateStore struct {
	cache cache.Cache
}

func NewStateStore(cache cache.Cache) *StateStore {
	return &StateStore{cache: cache}
}

func stateKey(userID int64) string {
	return fmt.Sprintf("dialog:state:%d", userID)
}

func photoKey(userID int64) string {
	return fmt.Sprintf("dialog:photo:%d", userID)
}

func (s *StateStore) Get(ctx context.Context, userID int64) DialogState {
	value, err := s.cache.Get(ctx, stateKey(userID))
	if err != nil {
		return StateNone
	}
	return DialogState(value)
}

func (s *StateStore) Set(ctx context.Context, userID int64, state DialogState) error {
	return s.cache.Set(ctx, stateKey(userID), string(state), stateTTL)
}

// SetPhoto запоминает file_id загруженного фото до получения промпта
func (s *StateStore) SetPhoto(ctx context.Context, userID int64, fileID string) error {
	return s.cache.Set(ctx, photoKey(userID), fileID, stateTTL)
}

func (s *StateStore) GetPhoto(ctx context.Context, userID int64) string {
	value, err := s.cache.Get(ctx, photoKey(userID))
	if err != nil {
		return ""
	}
	return value
}

// Clear сбрасывает диалог пользователя
func (s *StateStore) Clear(ctx context.Context, userID int64) {
	_ = s.cache.Delete(ctx, stateKey(userID))
	_ = s.cache.Delete(ctx, photoKey(userID))
}
