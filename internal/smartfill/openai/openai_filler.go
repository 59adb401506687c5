package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"smartinvoice/internal/config"
	"smartinvoice/internal/domain"
	"smartinvoice/internal/port"
	"smartinvoice/internal/smartfill"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

func init() {
	smartfill.RegisterProvider("openai", func(cfg *config.SmartFillProviderConfig) (port.SmartFiller, error) {
		return NewFiller(cfg), nil
	})
}

// Filler implements port.SmartFiller using the OpenAI Chat Completions API
// in JSON mode.
type Filler struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewFiller creates an OpenAI-based smart filler from a provider config.
func NewFiller(cfg *config.SmartFillProviderConfig) *Filler {
	return newFiller(cfg, apiURL)
}

// NewFillerWithEndpoint creates a filler pointing at a custom API endpoint (for testing).
func NewFillerWithEndpoint(cfg *config.SmartFillProviderConfig, endpoint string) *Filler {
	return newFiller(cfg, endpoint)
}

func newFiller(cfg *config.SmartFillProviderConfig, endpoint string) *Filler {
	model := cfg.DefaultModel
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Filler{
		apiKey:   smartfill.CleanAPIKey(cfg.APIKey),
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (f *Filler) Fill(ctx context.Context, input port.SmartFillInput) (*port.SmartFillOutput, error) {
	if f.apiKey == "" {
		return nil, domain.ErrSmartFillNotConfigured
	}

	prompt := smartfill.BuildPromptWithShape(input.Text)

	reqBody := map[string]interface{}{
		"model":                 f.model,
		"max_completion_tokens": 2048,
		"messages": []map[string]interface{}{
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if err := smartfill.CheckStatus("openai", resp, respBody); err != nil {
		return nil, err
	}

	return parseResponse(respBody, f.model, prompt)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, model, prompt string) (*port.SmartFillOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length)")
	}

	text := resp.Choices[0].Message.Content
	patch, err := smartfill.DecodePatch(text)
	if err != nil {
		return nil, err
	}

	return &port.SmartFillOutput{
		Patch:      patch,
		RawText:    text,
		ModelUsed:  model,
		PromptUsed: prompt,
	}, nil
}
