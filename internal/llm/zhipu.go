package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"family-meal-planner/internal/config"
	"family-meal-planner/internal/shared"
)

const (
	zhipuModel    = "glm-4"
	zhipuTokenTTL = time.Hour
)

// zhipuClient is a client for the Zhipu GLM chat completions API.
type zhipuClient struct {
	apiKey     string
	apiURL     string
	httpClient *http.Client
}

// NewZhipuClient creates a new Zhipu API client.
func NewZhipuClient(cfg *config.Config) TextGenerator {
	return &zhipuClient{
		apiKey: cfg.ZhipuAPIKey,
		apiURL: cfg.ZhipuAPIURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GenerateContent sends a system+user message pair to GLM-4 and returns the
// assistant's reply. A fresh bearer token is minted per request; the token
// window is generous relative to single-request latency so no renewal or
// caching is needed.
func (c *zhipuClient) GenerateContent(ctx context.Context, chatReq ChatRequest) (ContentResponse, error) {
	token, err := mintToken(c.apiKey, zhipuTokenTTL, time.Now())
	if err != nil {
		return ContentResponse{}, err
	}

	reqBody := map[string]interface{}{
		"model": zhipuModel,
		"messages": []map[string]string{
			{"role": "system", "content": chatReq.System},
			{"role": "user", "content": chatReq.User},
		},
		"temperature": chatReq.Temperature,
		"top_p":       chatReq.TopP,
		"max_tokens":  chatReq.MaxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewBuffer(jsonBody))
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return ContentResponse{}, fmt.Errorf("zhipu api error: status=%d body=%s", resp.StatusCode, string(bodyBytes))
	}

	var zhipuResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&zhipuResp); err != nil {
		return ContentResponse{}, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(zhipuResp.Choices) == 0 {
		return ContentResponse{}, fmt.Errorf("no content generated")
	}

	return ContentResponse{
		Content: zhipuResp.Choices[0].Message.Content,
		Usage: shared.TokenUsage{
			PromptTokens:     zhipuResp.Usage.PromptTokens,
			CompletionTokens: zhipuResp.Usage.CompletionTokens,
			TotalTokens:      zhipuResp.Usage.TotalTokens,
			Model:            zhipuModel,
		},
	}, nil
}
