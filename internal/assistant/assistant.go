// ABOUTME: Contracts for the nutrition estimator and the streaming planner.
// ABOUTME: Stream splits payload chunks from the terminal usage frame.
package assistant

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/harperreed/big3/internal/models"
)

// Provider names.
const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

// Token limits for the two request kinds.
const (
	ChatMaxTokens      = 1024
	NutritionMaxTokens = 200
)

// Usage is the token count reported once a stream ends.
type Usage = models.TokenUsage

// Nutrition is one standard serving. Kcal is a whole number; macros are
// grams rounded to 0.1.
type Nutrition struct {
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
	Carbs   float64 `json:"carbs"`
}

// NutritionRequest names the food to estimate.
type NutritionRequest struct {
	FoodName string `json:"foodName"`
}

// NutritionEstimator returns nutrients for a named food.
type NutritionEstimator interface {
	Estimate(ctx context.Context, req NutritionRequest) (Nutrition, error)
}

// ChatRequest is a planner turn: the grounding system prompt plus the
// conversation so far, ending with the user's message.
type ChatRequest struct {
	SystemContext string
	Turns         []models.ChatMessage
}

// ChatStreamer starts a streamed planner reply.
type ChatStreamer interface {
	Stream(ctx context.Context, req ChatRequest) (*Stream, error)
}

// Client is a provider that serves both request kinds.
type Client interface {
	NutritionEstimator
	ChatStreamer
	io.Closer
}

// Config selects and tunes a provider.
type Config struct {
	Provider       string
	APIKey         string
	ChatModel      string
	NutritionModel string
	// BaseURL overrides the provider endpoint. Groq only.
	BaseURL string
}

// New builds the configured provider.
func New(ctx context.Context, cfg Config) (Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ValidationError{Field: "api key", Message: fmt.Sprintf("no key configured for %s", cfg.Provider)}
	}
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGroq:
		return NewGroq(cfg), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, &ValidationError{Field: "provider", Message: fmt.Sprintf("unknown provider %q (want groq or gemini)", cfg.Provider)}
	}
}

// Stream is an in-flight reply. Read Chunks until it closes, then call Wait
// for the usage frame and the terminal error. Text received before a failure
// stays valid.
type Stream struct {
	chunks chan string
	done   chan struct{}
	once   sync.Once
	usage  Usage
	err    error
}

// Producer emits chunks through emit and returns the final usage. emit
// reports false once the context is canceled.
type Producer func(ctx context.Context, emit func(string) bool) (Usage, error)

// NewStream runs produce in its own goroutine.
func NewStream(ctx context.Context, produce Producer) *Stream {
	s := &Stream{
		chunks: make(chan string, 16),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		emit := func(text string) bool {
			if text == "" {
				return ctx.Err() == nil
			}
			select {
			case s.chunks <- text:
				return true
			case <-ctx.Done():
				return false
			}
		}
		usage, err := produce(ctx, emit)
		if err == nil {
			err = ctx.Err()
		}
		s.usage, s.err = usage, err
		close(s.chunks)
	}()
	return s
}

// Chunks delivers text in arrival order and closes when the reply ends.
func (s *Stream) Chunks() <-chan string {
	return s.chunks
}

// Wait drains unread chunks and returns the usage frame.
func (s *Stream) Wait() (Usage, error) {
	s.once.Do(func() {
		for range s.chunks {
		}
	})
	<-s.done
	return s.usage, s.err
}

// Collect reads the whole stream into one string.
func (s *Stream) Collect() (string, Usage, error) {
	var sb strings.Builder
	for c := range s.chunks {
		sb.WriteString(c)
	}
	usage, err := s.Wait()
	return sb.String(), usage, err
}

func lastUserTurn(turns []models.ChatMessage) (models.ChatMessage, error) {
	if len(turns) == 0 || turns[len(turns)-1].Role != models.RoleUser {
		return models.ChatMessage{}, &ValidationError{Field: "turns", Message: "conversation must end with a user message"}
	}
	return turns[len(turns)-1], nil
}
