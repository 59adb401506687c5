package claude_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartinvoice/internal/config"
	"smartinvoice/internal/domain"
	"smartinvoice/internal/port"
	"smartinvoice/internal/smartfill"
	"smartinvoice/internal/smartfill/claude"
)

func newTestFiller(serverURL, apiKey string) *claude.Filler {
	return claude.NewFillerWithEndpoint(&config.SmartFillProviderConfig{
		Provider:     "claude",
		APIKey:       apiKey,
		DefaultModel: "claude-test",
		TimeoutSecs:  5,
	}, serverURL)
}

func TestFiller_Fill_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-test", reqBody["model"])

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]interface{}{
				{"type": "text", "text": "```json\n{\"actions\":{\"markAsPaid\":true}}\n```"},
			},
			"stop_reason": "end_turn",
		})
	}))
	defer server.Close()

	out, err := newTestFiller(server.URL, "test-key").Fill(context.Background(), port.SmartFillInput{Text: "paid"})

	require.NoError(t, err)
	assert.Equal(t, "claude-test", out.ModelUsed)
	assert.Contains(t, out.PromptUsed, "Return ONLY a valid JSON object")
	require.NotNil(t, out.Patch.Actions)
	assert.True(t, out.Patch.Actions.MarkAsPaid)
}

func TestFiller_Fill_MissingKey(t *testing.T) {
	_, err := newTestFiller("http://127.0.0.1:0", "").Fill(context.Background(), port.SmartFillInput{Text: "x"})
	assert.ErrorIs(t, err, domain.ErrSmartFillNotConfigured)
}

func TestFiller_Fill_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"{\"items\":["}],"stop_reason":"max_tokens"}`))
	}))
	defer server.Close()

	_, err := newTestFiller(server.URL, "k").Fill(context.Background(), port.SmartFillInput{Text: "x"})
	assert.ErrorContains(t, err, "max_tokens")
}

func TestFiller_Fill_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestFiller(server.URL, "k").Fill(context.Background(), port.SmartFillInput{Text: "x"})

	var rl *smartfill.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, "claude", rl.Provider)
	assert.Equal(t, 60.0, rl.RetryAfter.Seconds())
}
