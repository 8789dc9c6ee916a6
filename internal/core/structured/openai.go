package structured

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/perhapsishould/contract-processor/internal/core/record"
	"github.com/rs/zerolog/log"
)

const systemPrompt = `You extract structured data from contract documents.
Respond with a single JSON object matching the provided schema. Use only
information present in the contract text. Dates are YYYY-MM-DD. Omit fields
you cannot determine. No prose, no markdown.`

// OpenAIConfig configures the remote extraction client.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string // default https://api.openai.com/v1
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// OpenAIExtractor calls a chat-completions style API in JSON mode and
// validates the response against the contract record schema.
type OpenAIExtractor struct {
	cfg  OpenAIConfig
	http *http.Client
}

func NewOpenAIExtractor(cfg OpenAIConfig) *OpenAIExtractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	return &OpenAIExtractor{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Temperature    float32       `json:"temperature"`
	ResponseFormat any           `json:"response_format"`
	Messages       []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (e *OpenAIExtractor) Extract(ctx context.Context, text string) (record.ContractRecord, error) {
	schemaJSON, _ := json.Marshal(record.JSONSchema())

	reqBody := chatRequest{
		Model:          e.cfg.Model,
		Temperature:    e.cfg.Temperature,
		ResponseFormat: map[string]string{"type": "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt + "\n\nSchema:\n" + string(schemaJSON)},
			{Role: "user", Content: text},
		},
	}

	raw, err := e.send(ctx, reqBody)
	if err != nil {
		return record.ContractRecord{}, err
	}

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return record.ContractRecord{}, &ExtractionError{Message: "malformed model response", Err: err}
	}
	if resp.Error != nil {
		return record.ContractRecord{}, &ExtractionError{Message: resp.Error.Message}
	}
	if len(resp.Choices) == 0 {
		return record.ContractRecord{}, &ExtractionError{Message: "model returned no choices"}
	}

	content := []byte(stripFences(resp.Choices[0].Message.Content))
	if err := record.ValidateJSON(content); err != nil {
		return record.ContractRecord{}, &ExtractionError{Message: fmt.Sprintf("model output failed schema validation: %v", err), Err: err}
	}

	var rec record.ContractRecord
	if err := json.Unmarshal(content, &rec); err != nil {
		return record.ContractRecord{}, &ExtractionError{Message: "decode model output", Err: err}
	}
	return rec, nil
}

func (e *OpenAIExtractor) send(ctx context.Context, body any) ([]byte, error) {
	start := time.Now()

	bs, err := json.Marshal(body)
	if err != nil {
		return nil, &ExtractionError{Message: "encode extraction request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+"/chat/completions", bytes.NewReader(bs))
	if err != nil {
		return nil, &ExtractionError{Message: "build extraction request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, &ExtractionError{Message: fmt.Sprintf("extraction service unreachable: %v", err), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, _ := io.ReadAll(resp.Body)

	log.Debug().
		Str("model", e.cfg.Model).
		Int("status", resp.StatusCode).
		Int("bytes", len(raw)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("structured extraction response")

	if resp.StatusCode/100 != 2 {
		return nil, &ExtractionError{Message: fmt.Sprintf("extraction service returned status %d", resp.StatusCode)}
	}
	return raw, nil
}
