package generator

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// LLMClient is the interface both generator implementations satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Generator drafts question batches for admin review. Drafts always go
// through the regular bulk-upload validation before they can reach the
// bank.
type Generator struct {
	llm   LLMClient
	model string
}

func NewGenerator() *Generator {
	var llm LLMClient
	model := "mock"

	if os.Getenv("MOCK_GENERATOR") == "true" {
		llm = NewMockClient()
		log.Println("Generator using mock data")
	} else {
		model = os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-sonnet-4-20250514"
		}
		llm = NewAPIClient(model)
		log.Println("Generator using Anthropic API:", model)
	}

	return &Generator{llm: llm, model: model}
}

func (g *Generator) ModelName() string {
	return g.model
}

// DraftBatch asks the model for a batch of questions and parses the
// response into an upload document.
func (g *Generator) DraftBatch(ctx context.Context, req DraftRequest) (*Draft, *LLMResponse, error) {
	systemPrompt := DraftSystemPrompt()
	userPrompt := BuildDraftUserPrompt(req)

	resp, err := g.llm.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, nil, fmt.Errorf("draft batch: %w", err)
	}

	draft, err := ParseResponse(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse draft response: %w", err)
	}

	return draft, resp, nil
}

// ── APIClient — Anthropic SDK (Production) ─────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   8192,
		Temperature: param.NewOpt(0.7),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── MockClient — Local Development ─────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	return &LLMResponse{
		Content:      mockDraftJSON,
		PromptTokens: 900,
		OutputTokens: 1800,
	}, nil
}

const mockDraftJSON = `{
  "exam_name": "GATE",
  "subject": "Engineering Mathematics",
  "questions": [
    {
      "question": "The rank of a 3x3 identity matrix is",
      "options": {"A": "0", "B": "1", "C": "2", "D": "3"},
      "correct_answer": "D",
      "explanation": "The identity matrix has three linearly independent rows.",
      "type": "Numerical"
    },
    {
      "question": "The value of the limit of (1 + 1/n)^n as n tends to infinity is",
      "correct_answer": 2.718,
      "explanation": "This is the definition of Euler's number e.",
      "type": "Numerical"
    },
    {
      "question": "Which of the following statements about symmetric matrices is true?",
      "options": {"A": "All eigenvalues are real", "B": "All eigenvalues are imaginary", "C": "The determinant is always zero", "D": "They are never invertible"},
      "correct_answer": "A",
      "explanation": "Real symmetric matrices have real eigenvalues by the spectral theorem.",
      "type": "Theoretical"
    },
    {
      "question": "A fair coin is tossed three times. The probability of getting exactly two heads is",
      "options": {"A": "1/8", "B": "2/8", "C": "3/8", "D": "4/8"},
      "correct_answer": "C",
      "explanation": "There are 3 favorable outcomes out of 8 equally likely ones.",
      "type": "Numerical"
    },
    {
      "question": "The Laplace transform of f(t) = 1 is",
      "options": {"A": "1/s", "B": "s", "C": "1", "D": "1/s^2"},
      "correct_answer": "A",
      "explanation": "Integrating e^(-st) from 0 to infinity gives 1/s for s > 0.",
      "type": "Numerical"
    }
  ]
}`
