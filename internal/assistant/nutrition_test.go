// ABOUTME: Tests for nutrition reply parsing and the Groq provider over HTTP.
// ABOUTME: Uses an httptest server in place of the Groq endpoint.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/harperreed/big3/internal/models"
	"github.com/sashabaranov/go-openai"
)

func TestParseNutrition(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Nutrition
	}{
		{"plain", `{"kcal": 252.6, "protein": 4.26, "fat": 0.44, "carbs": 55.56}`, Nutrition{253, 4.3, 0.4, 55.6}},
		{"fenced", "```json\n{\"kcal\": 100, \"protein\": 1, \"fat\": 2, \"carbs\": 3}\n```", Nutrition{100, 1, 2, 3}},
		{"prose around", `Here you go: {"kcal": 80} enjoy`, Nutrition{Kcal: 80}},
		{"numeric strings", `{"kcal": "120", "protein": " 7.04 "}`, Nutrition{Kcal: 120, Protein: 7}},
		{"junk fields", `{"kcal": "lots", "protein": null, "fat": true}`, Nutrition{}},
		{"negative clamped", `{"kcal": -50, "carbs": -1.2}`, Nutrition{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseNutrition(tt.text)
			if err != nil {
				t.Fatalf("ParseNutrition failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseNutritionErrors(t *testing.T) {
	for _, text := range []string{"", "no json here", "} backwards {", `{"kcal": }`} {
		if _, err := ParseNutrition(text); err == nil {
			t.Errorf("ParseNutrition(%q) should fail", text)
		}
	}
}

func TestNutritionPromptNamesFood(t *testing.T) {
	p := nutritionPrompt("親子丼")
	if !strings.Contains(p, "食品「親子丼」") || !strings.Contains(p, `"kcal": 数値`) {
		t.Errorf("prompt = %q", p)
	}
}

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   DefaultGroqNutritionModel,
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	})
	return string(b)
}

func TestGroqEstimate(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatResponse(`{"kcal": 252.6, "protein": 4.26, "fat": 0.44, "carbs": 55.56}`))
	}))
	defer srv.Close()

	g := NewGroq(Config{APIKey: "test", BaseURL: srv.URL})
	n, err := g.Estimate(context.Background(), NutritionRequest{FoodName: "  白ごはん "})
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if n != (Nutrition{253, 4.3, 0.4, 55.6}) {
		t.Errorf("nutrition = %+v", n)
	}

	if got.Model != DefaultGroqNutritionModel || got.MaxTokens != NutritionMaxTokens {
		t.Errorf("model = %s, max tokens = %d", got.Model, got.MaxTokens)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Errorf("response format = %+v", got.ResponseFormat)
	}
	if len(got.Messages) != 2 || !strings.Contains(got.Messages[1].Content, "食品「白ごはん」") {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestGroqEstimateRejectsEmptyName(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv.Close()

	_, err := NewGroq(Config{APIKey: "test", BaseURL: srv.URL}).Estimate(context.Background(), NutritionRequest{FoodName: " \t"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if verr.Message != "食品名が必要です" || calls != 0 {
		t.Errorf("message = %q, calls = %d", verr.Message, calls)
	}
}

func TestGroqEstimateRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error": {"message": "upstream down", "type": "server_error"}}`)
	}))
	defer srv.Close()

	_, err := NewGroq(Config{APIKey: "test", BaseURL: srv.URL}).Estimate(context.Background(), NutritionRequest{FoodName: "natto"})
	var cerr *CollaboratorError
	if !errors.As(err, &cerr) || cerr.Provider != ProviderGroq {
		t.Fatalf("err = %v, want groq CollaboratorError", err)
	}
}

func TestGroqEstimateUnparseableReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatResponse("sorry, no idea"))
	}))
	defer srv.Close()

	_, err := NewGroq(Config{APIKey: "test", BaseURL: srv.URL}).Estimate(context.Background(), NutritionRequest{FoodName: "natto"})
	var cerr *CollaboratorError
	if !errors.As(err, &cerr) {
		t.Fatalf("err = %v, want CollaboratorError", err)
	}
}

func TestGroqStream(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, frame := range []string{
			`{"id":"1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"role":"assistant","content":"ベンチ"}}]}`,
			`{"id":"1","object":"chat.completion.chunk","created":1,"model":"m","choices":[{"index":0,"delta":{"content":" 5x5"},"finish_reason":"stop"}]}`,
			`{"id":"1","object":"chat.completion.chunk","created":1,"model":"m","choices":[],"usage":{"prompt_tokens":12,"completion_tokens":7,"total_tokens":19}}`,
		} {
			fmt.Fprintf(w, "data: %s\n\n", frame)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	g := NewGroq(Config{APIKey: "test", BaseURL: srv.URL})
	stream, err := g.Stream(context.Background(), ChatRequest{
		SystemContext: "coach",
		Turns: []models.ChatMessage{
			{Role: models.RoleUser, Content: "hi"},
			{Role: models.RoleAssistant, Content: "hello"},
			{Role: models.RoleUser, Content: "plan?"},
		},
	})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	text, usage, err := stream.Collect()
	if err != nil {
		t.Fatalf("Collect failed: %v", err)
	}
	if text != "ベンチ 5x5" {
		t.Errorf("text = %q", text)
	}
	if usage != (Usage{Input: 12, Output: 7}) {
		t.Errorf("usage = %+v", usage)
	}

	if got.Model != DefaultGroqChatModel || got.MaxTokens != ChatMaxTokens || !got.Stream {
		t.Errorf("request = model %s max %d stream %v", got.Model, got.MaxTokens, got.Stream)
	}
	if len(got.Messages) != 4 || got.Messages[0].Role != openai.ChatMessageRoleSystem || got.Messages[2].Role != openai.ChatMessageRoleAssistant {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestGroqStreamNeedsUserTurn(t *testing.T) {
	g := NewGroq(Config{APIKey: "test", BaseURL: "http://127.0.0.1:1"})
	_, err := g.Stream(context.Background(), ChatRequest{Turns: []models.ChatMessage{{Role: models.RoleAssistant, Content: "hi"}}})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()
	if _, err := New(ctx, Config{Provider: ProviderGroq}); err == nil {
		t.Error("missing key should fail")
	}
	if _, err := New(ctx, Config{Provider: "openrouter", APIKey: "k"}); err == nil {
		t.Error("unknown provider should fail")
	}
	c, err := New(ctx, Config{APIKey: "k"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, ok := c.(*GroqClient); !ok {
		t.Errorf("default provider = %T, want *GroqClient", c)
	}
}
