// ABOUTME: Groq provider over the OpenAI-compatible chat completions API.
// ABOUTME: Streams planner replies and requests JSON-mode nutrition estimates.
package assistant

import (
	"context"
	"errors"
	"io"

	"github.com/harperreed/big3/internal/models"
	"github.com/sashabaranov/go-openai"
)

// Groq defaults.
const (
	GroqBaseURL               = "https://api.groq.com/openai/v1"
	DefaultGroqChatModel      = "llama-3.3-70b-versatile"
	DefaultGroqNutritionModel = "llama-3.1-8b-instant"
)

// GroqClient talks to Groq with the go-openai client.
type GroqClient struct {
	client         *openai.Client
	chatModel      string
	nutritionModel string
}

// NewGroq builds a client from cfg, filling in Groq defaults.
func NewGroq(cfg Config) *GroqClient {
	oc := openai.DefaultConfig(cfg.APIKey)
	oc.BaseURL = GroqBaseURL
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	g := &GroqClient{
		client:         openai.NewClientWithConfig(oc),
		chatModel:      DefaultGroqChatModel,
		nutritionModel: DefaultGroqNutritionModel,
	}
	if cfg.ChatModel != "" {
		g.chatModel = cfg.ChatModel
	}
	if cfg.NutritionModel != "" {
		g.nutritionModel = cfg.NutritionModel
	}
	return g
}

// Estimate asks the nutrition model for one serving of req.FoodName.
func (g *GroqClient) Estimate(ctx context.Context, req NutritionRequest) (Nutrition, error) {
	name, err := validateFood(req)
	if err != nil {
		return Nutrition{}, err
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     g.nutritionModel,
		MaxTokens: NutritionMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: nutritionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: nutritionPrompt(name)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Nutrition{}, collaborator(ProviderGroq, "estimate", err)
	}
	if len(resp.Choices) == 0 {
		return Nutrition{}, collaborator(ProviderGroq, "estimate", errors.New("empty response"))
	}

	n, err := ParseNutrition(resp.Choices[0].Message.Content)
	if err != nil {
		return Nutrition{}, collaborator(ProviderGroq, "estimate", err)
	}
	return n, nil
}

// Stream starts a planner reply. Usage arrives in the final chunk.
func (g *GroqClient) Stream(ctx context.Context, req ChatRequest) (*Stream, error) {
	if _, err := lastUserTurn(req.Turns); err != nil {
		return nil, err
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Turns)+1)
	if req.SystemContext != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.SystemContext})
	}
	for _, t := range req.Turns {
		role := openai.ChatMessageRoleUser
		if t.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Content})
	}

	stream, err := g.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:         g.chatModel,
		MaxTokens:     ChatMaxTokens,
		Messages:      messages,
		Stream:        true,
		StreamOptions: &openai.StreamOptions{IncludeUsage: true},
	})
	if err != nil {
		return nil, collaborator(ProviderGroq, "stream", err)
	}

	return NewStream(ctx, func(ctx context.Context, emit func(string) bool) (Usage, error) {
		defer stream.Close()
		var usage Usage
		for {
			chunk, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return usage, nil
			}
			if err != nil {
				return usage, collaborator(ProviderGroq, "stream", err)
			}
			if chunk.Usage != nil {
				usage = Usage{Input: chunk.Usage.PromptTokens, Output: chunk.Usage.CompletionTokens}
			}
			for _, choice := range chunk.Choices {
				if !emit(choice.Delta.Content) {
					return usage, ctx.Err()
				}
			}
		}
	}), nil
}

// Close is a no-op; the HTTP client holds no resources.
func (g *GroqClient) Close() error {
	return nil
}
