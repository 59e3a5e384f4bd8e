package provider

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-de-bug/zoidclaw/pkg/models"
)

func newTestTransport(t *testing.T, handler http.HandlerFunc) *OpenAICompatible {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := New(Config{Name: "openai", APIKey: "test-key", BaseURL: server.URL, DefaultModel: "gpt-test"}, nil, nil)
	require.NoError(t, err)
	return p
}

func TestComplete_ParsesFirstChoiceAndUsage(t *testing.T) {
	p := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/chat/completions")
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		fmt.Fprint(w, `{
			"choices": [{"message": {"role": "assistant", "content": "hi there"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`)
	})

	resp, err := p.Complete(t.Context(), CompletionRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Content)
	assert.Equal(t, models.FinishStop, resp.FinishReason)
	assert.Equal(t, 15, resp.Usage.TotalTokens)
}

func TestComplete_DropsUnparseableToolCallArguments(t *testing.T) {
	p := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"choices": [{"message": {"role": "assistant", "tool_calls": [
				{"id": "call_1", "type": "function", "function": {"name": "good", "arguments": "{\"x\":1}"}},
				{"id": "call_2", "type": "function", "function": {"name": "bad", "arguments": "not json"}}
			]}, "finish_reason": "tool_calls"}]
		}`)
	})

	resp, err := p.Complete(t.Context(), CompletionRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hello"}},
	})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "good", resp.ToolCalls[0].Name)
}

func TestComplete_RetriesOnTransientStatusThenSucceeds(t *testing.T) {
	var calls int32
	p := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error": {"message": "rate limited", "type": "rate_limit"}}`)
			return
		}
		fmt.Fprint(w, `{"choices": [{"message": {"role": "assistant", "content": "ok"}, "finish_reason": "stop"}]}`)
	})

	resp, err := p.Complete(t.Context(), CompletionRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestComplete_NonRetryableStatusFailsImmediately(t *testing.T) {
	var calls int32
	p := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": {"message": "invalid api key", "type": "invalid_request_error"}}`)
	})

	_, err := p.Complete(t.Context(), CompletionRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestComplete_ExhaustsRetriesAndPropagatesLastError(t *testing.T) {
	var calls int32
	p := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error": {"message": "overloaded", "type": "server_error"}}`)
	})

	_, err := p.Complete(t.Context(), CompletionRequest{
		Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.Equal(t, int32(maxAttempts), atomic.LoadInt32(&calls))
}

func TestNew_UnknownProviderWithoutOverrideErrors(t *testing.T) {
	_, err := New(Config{Name: "not-a-real-provider"}, nil, nil)
	require.Error(t, err)
}

func TestNew_BaseURLTableResolvesKnownProviders(t *testing.T) {
	for name := range baseURLs {
		p, err := New(Config{Name: name, APIKey: "k"}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name())
	}
}

