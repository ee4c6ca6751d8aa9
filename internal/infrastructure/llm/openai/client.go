// Package openai is an OpenAI-compatible chat-completions LLM provider.
// It serves any endpoint speaking the /v1/chat/completions and
// /v1/embeddings wire format.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/llm/prompts"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/resilience"
)

const extractionSystemPrompt = "You are a Legal Knowledge Graph builder. Output valid JSON only."

type Client struct {
	baseURL    string
	apiKey     string
	genModel   string
	embedModel string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

func New(baseURL, apiKey, genModel, embedModel string, requestsPerSecond float64, executor *resilience.Executor) *Client {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		limiter:    limiter,
		executor:   executor,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) ExtractGraph(ctx context.Context, chunkText string) (string, error) {
	request := chatRequest{
		Model: c.genModel,
		Messages: []chatMessage{
			{Role: "system", Content: extractionSystemPrompt},
			{Role: "user", Content: prompts.GraphExtraction(chunkText)},
		},
		Temperature:    0.1,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	return c.complete(ctx, "openai.extract", request)
}

func (c *Client) GenerateAnswer(ctx context.Context, question string, chunks []domain.RetrievedChunk) (string, error) {
	request := chatRequest{
		Model: c.genModel,
		Messages: []chatMessage{
			{Role: "user", Content: prompts.Answer(question, chunks)},
		},
		Temperature: 0.2,
	}
	return c.complete(ctx, "openai.answer", request)
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	request := map[string]any{
		"model": c.embedModel,
		"input": text,
	}
	var response struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := c.call(ctx, "openai.embed", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/embeddings", request, &response, "embed")
	}); err != nil {
		return nil, err
	}
	if len(response.Data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "embed query", fmt.Errorf("empty embedding result"))
	}
	return response.Data[0].Embedding, nil
}

func (c *Client) complete(ctx context.Context, operation string, request chatRequest) (string, error) {
	var response chatResponse
	if err := c.call(ctx, operation, func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/chat/completions", request, &response, "generate")
	}); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, operation, fmt.Errorf("empty choices"))
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func (c *Client) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, fn, classifyError)
	} else {
		err = fn(ctx)
	}
	if err != nil {
		return wrapTemporary(operation, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any, operation string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s request: %w", operation, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("openai %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		const maxBody = 2048
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		return &HTTPStatusError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
