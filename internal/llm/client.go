package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Options configures an OpenAI-compatible API client. The same client
// type serves OpenAI, Groq and Gemini's compatibility endpoint; only
// base URL, key and model differ.
type Options struct {
	APIKey      string
	APIBase     string
	ProjectID   string
	ChatModel   string
	STTModel    string
	EmbedModel  string
	EmbedDim    int
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	RatePerSec  float64
	Burst       int
}

// Client handles OpenAI-compatible API interactions
type Client struct {
	opts       Options
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client. A client with an empty API key is valid
// but disabled: every call returns an error the callers treat as a
// degrade-to-fallback signal.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *Client) IsEnabled() bool {
	return c.opts.APIKey != ""
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse represents the API response
type ChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ChatCompletion performs a chat completion request
func (c *Client) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("llm: API is not enabled (missing API key)")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if req.Model == "" {
		req.Model = c.opts.ChatModel
	}
	if req.Temperature == 0 && c.opts.Temperature > 0 {
		req.Temperature = c.opts.Temperature
	}
	if req.MaxTokens == 0 && c.opts.MaxTokens > 0 {
		req.MaxTokens = c.opts.MaxTokens
	}

	var result ChatResponse
	if err := c.postJSON(ctx, "/chat/completions", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Complete is a convenience wrapper: one system prompt, one user
// message, first choice content back.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.ChatCompletion(ctx, ChatRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: no response choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteJSON is Complete with a json_object response format and
// tolerant decoding of the model output into target.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, target interface{}) error {
	resp, err := c.ChatCompletion(ctx, ChatRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("llm: no response choices")
	}
	content := resp.Choices[0].Message.Content
	if err := DecodeModelJSON(content, target); err != nil {
		return fmt.Errorf("llm: decode response: %w", err)
	}
	return nil
}

// EmbeddingRequest represents an embedding request
type EmbeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// EmbeddingResponse represents the embedding API response
type EmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

// CreateEmbeddings generates embeddings for the given texts, in order
func (c *Client) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("llm: API is not enabled (missing API key)")
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req := EmbeddingRequest{
		Model:      c.opts.EmbedModel,
		Input:      texts,
		Dimensions: c.opts.EmbedDim,
	}
	var result EmbeddingResponse
	if err := c.postJSON(ctx, "/embeddings", req, &result); err != nil {
		return nil, err
	}

	embeddings := make([][]float32, len(texts))
	for _, item := range result.Data {
		if item.Index < len(embeddings) {
			embeddings[item.Index] = item.Embedding
		}
	}
	return embeddings, nil
}

// Transcribe uploads audio bytes and returns the transcript
func (c *Client) Transcribe(ctx context.Context, audio []byte, mimeType, lang string) (string, error) {
	if !c.IsEnabled() {
		return "", fmt.Errorf("llm: API is not enabled (missing API key)")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "audio.webm")
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(audio); err != nil {
		return "", err
	}
	_ = mw.WriteField("model", c.opts.STTModel)
	if lang != "" {
		_ = mw.WriteField("language", lang)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.APIBase+"/audio/transcriptions", &buf)
	if err != nil {
		return "", fmt.Errorf("llm: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	c.setAuthHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("llm: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("llm: transcription failed with status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("llm: unmarshal transcript: %w", err)
	}
	return result.Text, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload, target interface{}) error {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.APIBase+path, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("llm: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.setAuthHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("llm: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("llm: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("llm: request failed with status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("llm: unmarshal response: %w", err)
	}
	return nil
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	if c.opts.ProjectID != "" {
		req.Header.Set("OpenAI-Project", c.opts.ProjectID)
	}
}
