package gemini

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
	apiBaseURL   = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel = "gemini-2.0-flash"
)

func init() {
	smartfill.RegisterProvider("gemini", func(cfg *config.SmartFillProviderConfig) (port.SmartFiller, error) {
		return NewFiller(cfg), nil
	})
}

// Filler implements port.SmartFiller using Google's Gemini API with a
// structured response schema.
type Filler struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewFiller creates a Gemini-based smart filler.
func NewFiller(cfg *config.SmartFillProviderConfig) *Filler {
	return newFiller(cfg, "")
}

// NewFillerWithEndpoint creates a filler pointing at a custom API endpoint (for testing).
func NewFillerWithEndpoint(cfg *config.SmartFillProviderConfig, endpoint string) *Filler {
	return newFiller(cfg, endpoint)
}

func newFiller(cfg *config.SmartFillProviderConfig, endpoint string) *Filler {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
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

	prompt := smartfill.BuildPrompt(input.Text)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"responseSchema":   responseSchema,
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
	req.Header.Set("x-goog-api-key", f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if err := smartfill.CheckStatus("gemini", resp, respBody); err != nil {
		return nil, err
	}

	return parseResponse(respBody, f.model, prompt)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model, prompt string) (*port.SmartFillOutput, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from API: no parts")
	}

	text := resp.Candidates[0].Content.Parts[0].Text
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
