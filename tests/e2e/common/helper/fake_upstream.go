//go:build e2e

package helper

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	openai "github.com/sashabaranov/go-openai"
)

// FakeUpstream is a chat completions endpoint whose reply is set per test.
type FakeUpstream struct {
	Server *httptest.Server

	mu       sync.Mutex
	status   int
	content  string
	raw      string
	calls    atomic.Int32
	prompts  []string
}

func NewFakeUpstream() *FakeUpstream {
	f := &FakeUpstream{status: http.StatusOK}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

// Reply makes the endpoint answer with a chat completion envelope carrying content.
func (f *FakeUpstream) Reply(content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.content, f.raw = http.StatusOK, content, ""
}

// Fail makes the endpoint answer with status and a raw body.
func (f *FakeUpstream) Fail(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.content, f.raw = status, "", body
}

func (f *FakeUpstream) Reset() {
	f.mu.Lock()
	f.status, f.content, f.raw = http.StatusOK, "", ""
	f.prompts = nil
	f.mu.Unlock()
	f.calls.Store(0)
}

func (f *FakeUpstream) Calls() int {
	return int(f.calls.Load())
}

// LastPrompt is the user message of the most recent request.
func (f *FakeUpstream) LastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *FakeUpstream) URL() string {
	return f.Server.URL + "/v1/chat/completions"
}

func (f *FakeUpstream) Close() {
	f.Server.Close()
}

func (f *FakeUpstream) serve(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)

	var req openai.ChatCompletionRequest
	body, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(body, &req)

	f.mu.Lock()
	status, content, raw := f.status, f.content, f.raw
	if n := len(req.Messages); n > 0 {
		f.prompts = append(f.prompts, req.Messages[n-1].Content)
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != http.StatusOK {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, raw)
		return
	}
	_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
		ID:     "chatcmpl-e2e",
		Object: "chat.completion",
		Model:  req.Model,
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		}},
	})
}
