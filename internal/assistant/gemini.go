// ABOUTME: Gemini provider using the generative-ai-go SDK.
// ABOUTME: Maps planner turns onto a chat session and streams the reply.
package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/harperreed/big3/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// DefaultGeminiModel serves both chat and nutrition requests.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiClient talks to the Gemini API.
type GeminiClient struct {
	client         *genai.Client
	chatModel      string
	nutritionModel string
}

// NewGemini opens a Gemini client for cfg.APIKey.
func NewGemini(ctx context.Context, cfg Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, collaborator(ProviderGemini, "connect", err)
	}
	g := &GeminiClient{client: client, chatModel: DefaultGeminiModel, nutritionModel: DefaultGeminiModel}
	if cfg.ChatModel != "" {
		g.chatModel = cfg.ChatModel
	}
	if cfg.NutritionModel != "" {
		g.nutritionModel = cfg.NutritionModel
	}
	return g, nil
}

// Estimate asks Gemini for one serving of req.FoodName in JSON mode.
func (g *GeminiClient) Estimate(ctx context.Context, req NutritionRequest) (Nutrition, error) {
	name, err := validateFood(req)
	if err != nil {
		return Nutrition{}, err
	}

	model := g.client.GenerativeModel(g.nutritionModel)
	model.SystemInstruction = genai.NewUserContent(genai.Text(nutritionSystemPrompt))
	model.SetMaxOutputTokens(NutritionMaxTokens)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(nutritionPrompt(name)))
	if err != nil {
		return Nutrition{}, collaborator(ProviderGemini, "estimate", err)
	}

	n, err := ParseNutrition(responseText(resp))
	if err != nil {
		return Nutrition{}, collaborator(ProviderGemini, "estimate", err)
	}
	return n, nil
}

// Stream replays earlier turns as chat history and streams the reply to the
// last user turn.
func (g *GeminiClient) Stream(ctx context.Context, req ChatRequest) (*Stream, error) {
	last, err := lastUserTurn(req.Turns)
	if err != nil {
		return nil, err
	}

	model := g.client.GenerativeModel(g.chatModel)
	model.SetMaxOutputTokens(ChatMaxTokens)
	if req.SystemContext != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.SystemContext))
	}

	cs := model.StartChat()
	cs.History = geminiHistory(req.Turns[:len(req.Turns)-1])
	iter := cs.SendMessageStream(ctx, genai.Text(last.Content))

	return NewStream(ctx, func(ctx context.Context, emit func(string) bool) (Usage, error) {
		var usage Usage
		for {
			resp, err := iter.Next()
			if errors.Is(err, iterator.Done) {
				return usage, nil
			}
			if err != nil {
				return usage, collaborator(ProviderGemini, "stream", err)
			}
			if resp.UsageMetadata != nil {
				usage = Usage{
					Input:  int(resp.UsageMetadata.PromptTokenCount),
					Output: int(resp.UsageMetadata.CandidatesTokenCount),
				}
			}
			if !emit(responseText(resp)) {
				return usage, ctx.Err()
			}
		}
	}), nil
}

// Close releases the underlying gRPC connection.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func geminiHistory(turns []models.ChatMessage) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		if t.Content == "" {
			continue
		}
		role := "user"
		if t.Role == models.RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(t.Content)}})
	}
	return history
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	return sb.String()
}
