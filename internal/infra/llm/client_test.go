//go:build unit

package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"resource-finder/internal/infra/llm"
	"resource-finder/internal/pkg/config"
	"resource-finder/internal/usecase"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "sk-test-secret"

func newClient(t *testing.T, url string, timeout time.Duration) *llm.Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return llm.NewClient(config.UpstreamConfig{
		URL:     url,
		APIKey:  testAPIKey,
		Model:   "test-model",
		Timeout: timeout,
	}, logger)
}

func envelope(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestClientComplete(t *testing.T) {
	prompt := usecase.Prompt{System: "system text", User: "user text"}

	t.Run("success: sends model, messages and bearer token", func(t *testing.T) {
		var got openai.ChatCompletionRequest
		var auth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, envelope(`{"beginner": {}}`))
		}))
		defer srv.Close()

		content, err := newClient(t, srv.URL, time.Second).Complete(context.Background(), prompt)
		require.NoError(t, err)

		assert.Equal(t, `{"beginner": {}}`, content)
		assert.Equal(t, "Bearer "+testAPIKey, auth)
		assert.Equal(t, "test-model", got.Model)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
		assert.Equal(t, "system text", got.Messages[0].Content)
		assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
		assert.Equal(t, "user text", got.Messages[1].Content)
	})

	t.Run("success: plain text body is returned as content", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = io.WriteString(w, "```json\n{\"advanced\": {}}\n```")
		}))
		defer srv.Close()

		content, err := newClient(t, srv.URL, time.Second).Complete(context.Background(), prompt)
		require.NoError(t, err)
		assert.Equal(t, "```json\n{\"advanced\": {}}\n```", content)
	})

	t.Run("error: non-success status carries status and redacted body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, `{"error": "rate limited for key sk-test-secret"}`)
		}))
		defer srv.Close()

		_, err := newClient(t, srv.URL, time.Second).Complete(context.Background(), prompt)
		require.Error(t, err)

		var upstreamErr *usecase.UpstreamError
		require.True(t, errors.As(err, &upstreamErr))
		assert.Equal(t, http.StatusTooManyRequests, upstreamErr.StatusCode)
		assert.Contains(t, upstreamErr.Body, "rate limited")
		assert.NotContains(t, upstreamErr.Body, testAPIKey)
	})

	t.Run("error: timeout is reported without retry", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			time.Sleep(200 * time.Millisecond)
			_, _ = io.WriteString(w, envelope("late"))
		}))
		defer srv.Close()

		_, err := newClient(t, srv.URL, 50*time.Millisecond).Complete(context.Background(), prompt)
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("error: envelope without choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"id": "x", "choices": []}`)
		}))
		defer srv.Close()

		_, err := newClient(t, srv.URL, time.Second).Complete(context.Background(), prompt)
		assert.ErrorIs(t, err, llm.ErrUnexpectedReply)
	})
}

func TestExtractContent(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "chat completion envelope", body: envelope("hello"), want: "hello"},
		{name: "json string literal", body: `"{\"beginner\": {}}"`, want: `{"beginner": {}}`},
		{name: "raw text", body: "```json\n{}\n```", want: "```json\n{}\n```"},
		{name: "multi part content", body: `{"choices":[{"message":{"role":"assistant","content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}}]}`, want: "ab"},
		{name: "object without choices", body: `{"beginner": {}}`, wantErr: true},
		{name: "json null", body: `null`, wantErr: true},
		{name: "json array", body: `[1, 2]`, wantErr: true},
		{name: "empty body", body: "  ", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := llm.ExtractContent([]byte(tc.body))
			if tc.wantErr {
				assert.ErrorIs(t, err, llm.ErrUnexpectedReply)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
