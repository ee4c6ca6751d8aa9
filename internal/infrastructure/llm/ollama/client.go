// Package ollama is the Ollama-backed LLM provider: graph extraction,
// query embedding, and answer generation.
package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/llm/prompts"
	"github.com/knowlex-labs/rag-engine-sub001/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	embedModel string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

// New builds a client. requestsPerSecond caps outbound calls to respect the
// provider rate budget; zero disables the limiter. A nil executor disables
// retries and circuit breaking.
func New(baseURL, genModel, embedModel string, requestsPerSecond float64, executor *resilience.Executor) *Client {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		limiter:    limiter,
		executor:   executor,
	}
}

// ExtractGraph asks for a legal knowledge-graph fragment in JSON mode.
// The returned text is best-effort; callers clean and parse it themselves.
func (c *Client) ExtractGraph(ctx context.Context, chunkText string) (string, error) {
	return c.generate(ctx, map[string]any{
		"model":  c.genModel,
		"prompt": prompts.GraphExtraction(chunkText),
		"stream": false,
		"format": "json",
	})
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	request := map[string]any{
		"model": c.embedModel,
		"input": []string{text},
	}
	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := c.call(ctx, "ollama.embed", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/embed", request, &response, "embed")
	}); err != nil {
		return nil, err
	}
	if len(response.Embeddings) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "embed query", errEmptyEmbedding)
	}
	return response.Embeddings[0], nil
}

func (c *Client) GenerateAnswer(ctx context.Context, question string, chunks []domain.RetrievedChunk) (string, error) {
	return c.generate(ctx, map[string]any{
		"model":  c.genModel,
		"prompt": prompts.Answer(question, chunks),
		"stream": false,
	})
}

func (c *Client) generate(ctx context.Context, reqBody map[string]any) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.call(ctx, "ollama.generate", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/api/generate", reqBody, &response, "generate")
	}); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func (c *Client) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, operation, fn, ClassifyError)
	} else {
		err = fn(ctx)
	}
	return WrapTemporary(operation, err)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}
