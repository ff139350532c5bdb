package veoController

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/usecase"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type handledCallback struct {
	taskID string
	result domain.GenerationStatusResult
}

type stubGeneration struct {
	handled   []handledCallback
	handleErr error
}

func (s *stubGeneration) Start(_ context.Context, _ usecase.StartGenerationRequest) (*domain.Generation, error) {
	return nil, nil
}

func (s *stubGeneration) Poll(_ context.Context, _ *domain.Generation) {}

func (s *stubGeneration) HandleCallback(_ context.Context, taskID string, result domain.GenerationStatusResult) error {
	if s.handleErr != nil {
		return s.handleErr
	}
	s.handled = append(s.handled, handledCallback{taskID: taskID, result: result})
	return nil
}

func (s *stubGeneration) RecoverStuck(_ context.Context) error { return nil }

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func newTestRouter(t *testing.T, generation *stubGeneration) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	New(generation, log).RegisterRoutes(router)
	return router
}

func postCallback(router *gin.Engine, taskID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/veo-complete/"+taskID, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestCallback_Completed(t *testing.T) {
	generation := &stubGeneration{}
	router := newTestRouter(t, generation)

	w := postCallback(router, "veo_abc123", `{"status": "completed", "video_url": "https://cdn.example.com/v.mp4"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, generation.handled, 1)
	h := generation.handled[0]
	assert.Equal(t, "veo_abc123", h.taskID)
	assert.Equal(t, domain.OutcomeSuccess, h.result.Outcome)
	assert.Equal(t, "https://cdn.example.com/v.mp4", h.result.VideoURL)
}

func TestCallback_AlternativeURLFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "camelCase", body: `{"status": "success", "videoUrl": "https://cdn.example.com/v.mp4"}`},
		{name: "plain url", body: `{"status": "success", "url": "https://cdn.example.com/v.mp4"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generation := &stubGeneration{}
			router := newTestRouter(t, generation)

			w := postCallback(router, "veo_abc123", tt.body)
			assert.Equal(t, http.StatusOK, w.Code)
			require.Len(t, generation.handled, 1)
			assert.Equal(t, "https://cdn.example.com/v.mp4", generation.handled[0].result.VideoURL)
		})
	}
}

func TestCallback_Failed(t *testing.T) {
	generation := &stubGeneration{}
	router := newTestRouter(t, generation)

	w := postCallback(router, "veo_abc123", `{"status": "failed", "error": "flagged by content policies"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, generation.handled, 1)
	h := generation.handled[0]
	assert.Equal(t, domain.OutcomeFailure, h.result.Outcome)
	assert.Equal(t, "flagged by content policies", h.result.ErrorMessage)
}

func TestCallback_UnknownStatusIsProcessing(t *testing.T) {
	generation := &stubGeneration{}
	router := newTestRouter(t, generation)

	w := postCallback(router, "veo_abc123", `{"status": "rendering"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, generation.handled, 1)
	assert.Equal(t, domain.OutcomeProcessing, generation.handled[0].result.Outcome)
}

func TestCallback_UnknownTask(t *testing.T) {
	generation := &stubGeneration{handleErr: domain.ErrGenerationNotFound}
	router := newTestRouter(t, generation)

	w := postCallback(router, "veo_nope", `{"status": "completed", "video_url": "https://cdn.example.com/v.mp4"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCallback_InvalidJSON(t *testing.T) {
	generation := &stubGeneration{}
	router := newTestRouter(t, generation)

	w := postCallback(router, "veo_abc123", `{"status": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, generation.handled)
}
