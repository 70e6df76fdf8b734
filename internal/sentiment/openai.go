package sentiment

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIChatClient interface {
	CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// OpenAIScorer asks an LLM for a polarity score. Any failure falls back
// to the deterministic lexicon scorer, so Score stays total.
type OpenAIScorer struct {
	client   openAIChatClient
	model    string
	timeout  time.Duration
	fallback Scorer
}

// NewOpenAIScorer returns nil when apiKey is empty; callers should use
// the lexicon scorer instead.
func NewOpenAIScorer(apiKey, model string) *OpenAIScorer {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = "gpt-4o-mini"
	}
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIScorer{
		client:   &openAIClient{client: client},
		model:    model,
		timeout:  10 * time.Second,
		fallback: NewLexiconScorer(),
	}
}

const scorerPrompt = "You score the sentiment of a news headline. " +
	"Reply with ONLY a decimal number between -1 (very negative) and 1 (very positive). " +
	"Reply 0 for neutral. No words, no markdown."

func (s *OpenAIScorer) Score(text string) float64 {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	completion, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionNewParams{
		Model: s.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(scorerPrompt),
			openai.UserMessage(text),
		},
	})
	if err != nil || len(completion.Choices) == 0 {
		return s.fallback.Score(text)
	}

	raw := strings.TrimSpace(completion.Choices[0].Message.Content)
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return s.fallback.Score(text)
	}
	return clamp(value, -1, 1)
}

type openAIClient struct {
	client openai.Client
}

func (c *openAIClient) CreateChatCompletion(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return c.client.Chat.Completions.New(ctx, params)
}

// NewScorerFromConfig picks the LLM scorer when an API key is present
// and the lexicon scorer otherwise.
func NewScorerFromConfig(openAIKey, model string) Scorer {
	if llm := NewOpenAIScorer(openAIKey, model); llm != nil {
		return llm
	}
	return NewLexiconScorer()
}
