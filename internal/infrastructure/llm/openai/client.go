package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tdis/disaster-chatbot/internal/infrastructure/resilience"
)

// Client is a chat-completions client for the OpenAI API (or any
// API-compatible server). Each Complete call is one stateless single-turn
// exchange.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, apiKey, model string, executor *resilience.Executor) *Client {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 120 * time.Second},
		executor:   executor,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model:    c.model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	}

	var response chatResponse
	call := func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/v1/chat/completions", reqBody, &response, "chat completion")
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "openai.chat", call, classifyOpenAIError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return "", wrapTemporaryIfNeeded("chat completion", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
