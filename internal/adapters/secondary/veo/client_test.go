package veo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/veo-bot/internal/domain"
	"github.com/admin/tg-bots/veo-bot/internal/ports/service"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &Config{BaseURL: server.URL, ApiKey: "test-key", Model: "veo3_fast"}
	return NewClient(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGenerate(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/veo/generate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"code": 200, "msg": "ok", "data": {"taskId": "veo-task-7"}}`))
	}))

	taskID, err := client.Generate(context.Background(), service.GenerateRequest{
		Prompt:      "кот играет на пианино",
		AspectRatio: "16:9",
	})
	require.NoError(t, err)
	assert.Equal(t, "veo-task-7", taskID)
}

func TestGenerate_APIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"code": 402, "msg": "insufficient credits"}`))
	}))

	_, err := client.Generate(context.Background(), service.GenerateRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient credits")
}

func TestGetStatus_RecordInfo(t *testing.T) {
	tests := []struct {
		name string
		body string
		want domain.GenerationStatusResult
	}{
		{
			name: "success with url",
			body: `{"code": 200, "data": {"successFlag": 1, "response": {"resultUrls": ["https://cdn.example.com/v.mp4"]}}}`,
			want: domain.GenerationStatusResult{Outcome: domain.OutcomeSuccess, VideoURL: "https://cdn.example.com/v.mp4"},
		},
		{
			// успех без ссылки считаем незавершённым
			name: "success without url",
			body: `{"code": 200, "data": {"successFlag": 1, "response": {}}}`,
			want: domain.GenerationStatusResult{Outcome: domain.OutcomeProcessing},
		},
		{
			name: "failure flag 2",
			body: `{"code": 200, "data": {"successFlag": 2, "errorMessage": "flagged by content policies"}}`,
			want: domain.GenerationStatusResult{Outcome: domain.OutcomeFailure, ErrorMessage: "flagged by content policies"},
		},
		{
			name: "failure flag 3",
			body: `{"code": 200, "data": {"successFlag": 3, "errorMessage": "internal"}}`,
			want: domain.GenerationStatusResult{Outcome: domain.OutcomeFailure, ErrorMessage: "internal"},
		},
		{
			name: "in progress",
			body: `{"code": 200, "data": {"successFlag": 0}}`,
			want: domain.GenerationStatusResult{Outcome: domain.OutcomeProcessing},
		},
		{
			// отсутствующий флаг не трактуется как терминальный статус
			name: "missing flag",
			body: `{"code": 200, "data": {}}`,
			want: domain.GenerationStatusResult{Outcome: domain.OutcomeProcessing},
		},
		{
			name: "unknown schema",
			body: `{"everything": "else"}`,
			want: domain.GenerationStatusResult{Outcome: domain.OutcomeProcessing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/veo/record-info", r.URL.Path)
				assert.Equal(t, "task-1", r.URL.Query().Get("taskId"))
				w.Write([]byte(tt.body))
			}))

			result, err := client.GetStatus(context.Background(), "task-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, *result)
		})
	}
}

func TestGetStatus_FallsBackToStatusEndpoint(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/veo/record-info":
			w.WriteHeader(http.StatusNotFound)
		case "/api/v1/veo/status/task-1":
			w.Write([]byte(`{"code": 200, "data": {"status": "completed", "videoUrl": "https://cdn.example.com/v.mp4"}}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	result, err := client.GetStatus(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeSuccess, result.Outcome)
	assert.Equal(t, "https://cdn.example.com/v.mp4", result.VideoURL)
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		name string
		body string
		want domain.GenerationOutcome
	}{
		{name: "completed", body: `{"code": 200, "data": {"status": "Completed", "videoUrl": "https://x/v.mp4"}}`, want: domain.OutcomeSuccess},
		{name: "failed", body: `{"code": 200, "data": {"status": "failed", "error": "boom"}}`, want: domain.OutcomeFailure},
		{name: "pending", body: `{"code": 200, "data": {"status": "pending"}}`, want: domain.OutcomeProcessing},
		{name: "completed without url", body: `{"code": 200, "data": {"status": "completed"}}`, want: domain.OutcomeProcessing},
		{name: "non-200 code", body: `{"code": 500, "data": {"status": "completed", "videoUrl": "https://x/v.mp4"}}`, want: domain.OutcomeProcessing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := normalizeStatus([]byte(tt.body))
			assert.Equal(t, tt.want, result.Outcome)
		})
	}
}
