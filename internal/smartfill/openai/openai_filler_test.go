package openai_test

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
	"smartinvoice/internal/smartfill/openai"
)

func newTestFiller(serverURL, apiKey string) *openai.Filler {
	return openai.NewFillerWithEndpoint(&config.SmartFillProviderConfig{
		Provider:     "openai",
		APIKey:       apiKey,
		DefaultModel: "gpt-test",
		TimeoutSecs:  5,
	}, serverURL)
}

func chatBody(content, finish string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{
				"message":       map[string]interface{}{"role": "assistant", "content": content},
				"finish_reason": finish,
			},
		},
	}
}

func TestFiller_Fill_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		format := reqBody["response_format"].(map[string]interface{})
		assert.Equal(t, "json_object", format["type"])

		_ = json.NewEncoder(w).Encode(chatBody(`{"actions":{"clearItems":true},"items":[{"description":"Desk","quantity":1,"price":5900}]}`, "stop"))
	}))
	defer server.Close()

	out, err := newTestFiller(server.URL, "test-key").Fill(context.Background(), port.SmartFillInput{Text: "replace with a desk"})

	require.NoError(t, err)
	assert.Equal(t, "gpt-test", out.ModelUsed)
	require.NotNil(t, out.Patch.Actions)
	assert.True(t, out.Patch.Actions.ClearItems)
	require.Len(t, out.Patch.Items, 1)
	assert.Equal(t, "Desk", out.Patch.Items[0].Description)
}

func TestFiller_Fill_MissingKey(t *testing.T) {
	_, err := newTestFiller("http://127.0.0.1:0", "  ").Fill(context.Background(), port.SmartFillInput{Text: "x"})
	assert.ErrorIs(t, err, domain.ErrSmartFillNotConfigured)
}

func TestFiller_Fill_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatBody(`{"items":[`, "length"))
	}))
	defer server.Close()

	_, err := newTestFiller(server.URL, "k").Fill(context.Background(), port.SmartFillInput{Text: "x"})
	assert.ErrorContains(t, err, "finish_reason: length")
}

func TestFiller_Fill_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestFiller(server.URL, "k").Fill(context.Background(), port.SmartFillInput{Text: "x"})
	assert.ErrorContains(t, err, "no choices")
}

func TestFiller_Fill_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestFiller(server.URL, "k").Fill(context.Background(), port.SmartFillInput{Text: "x"})

	var rl *smartfill.RateLimitError
	require.True(t, errors.As(err, &rl))
	assert.Equal(t, "openai", rl.Provider)
}
