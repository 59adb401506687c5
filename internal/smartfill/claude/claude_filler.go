package claude

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

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

func init() {
	smartfill.RegisterProvider("claude", func(cfg *config.SmartFillProviderConfig) (port.SmartFiller, error) {
		return NewFiller(cfg), nil
	})
}

// Filler implements port.SmartFiller using the Anthropic Messages API.
type Filler struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewFiller creates a Claude-based smart filler from a provider config.
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
		model = "claude-sonnet-4-20250514"
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
		"model":      f.model,
		"max_tokens": 2048,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]interface{}{
					{"type": "text", "text": prompt},
				},
			},
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
	req.Header.Set("x-api-key", f.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if err := smartfill.CheckStatus("claude", resp, respBody); err != nil {
		return nil, err
	}

	return parseResponse(respBody, f.model, prompt)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model, prompt string) (*port.SmartFillOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("empty response from API")
	}
	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens)")
	}

	text := resp.Content[0].Text
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
