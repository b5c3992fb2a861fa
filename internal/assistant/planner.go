// ABOUTME: Planner drives one conversational turn against the record store.
// ABOUTME: Streams into the last chat message and books token usage on success.
package assistant

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harperreed/big3/internal/models"
)

// FallbackMessage replaces an assistant reply that failed before any text arrived.
const FallbackMessage = "エラーが発生しました。APIキーとネットワーク接続を確認してください。"

// ChatStore is the slice of the repository the planner writes to.
type ChatStore interface {
	ChatHistory() []models.ChatMessage
	AppendChat(msgs ...models.ChatMessage)
	ReplaceLastChat(msg models.ChatMessage)
	AddTokens(u models.TokenUsage) models.TokenUsage
}

// Planner sends user messages to a ChatStreamer and records the exchange.
type Planner struct {
	store    ChatStore
	streamer ChatStreamer
	system   func() string
	logger   *log.Logger
}

// NewPlanner wires a planner. system is evaluated on every Send so the
// prompt reflects the latest records. A nil logger discards output.
func NewPlanner(store ChatStore, streamer ChatStreamer, system func() string, logger *log.Logger) *Planner {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if system == nil {
		system = func() string { return "" }
	}
	return &Planner{store: store, streamer: streamer, system: system, logger: logger.WithPrefix("planner")}
}

// Send appends the user turn and an empty assistant turn, then streams the
// reply into that assistant turn, calling onChunk for each piece. On failure
// any partial reply is kept; an empty reply becomes FallbackMessage. The
// returned message is what was stored.
func (p *Planner) Send(ctx context.Context, text string, onChunk func(string)) (models.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, &ValidationError{Field: "message", Message: "empty message"}
	}

	turns := append(p.store.ChatHistory(), models.ChatMessage{Role: models.RoleUser, Content: text})
	p.store.AppendChat(
		models.ChatMessage{Role: models.RoleUser, Content: text},
		models.ChatMessage{Role: models.RoleAssistant},
	)

	stream, err := p.streamer.Stream(ctx, ChatRequest{SystemContext: p.system(), Turns: turns})
	if err != nil {
		return p.fail("", err), err
	}

	var sb strings.Builder
	for chunk := range stream.Chunks() {
		sb.WriteString(chunk)
		p.store.ReplaceLastChat(models.ChatMessage{Role: models.RoleAssistant, Content: sb.String()})
		if onChunk != nil {
			onChunk(chunk)
		}
	}

	usage, err := stream.Wait()
	if err != nil {
		return p.fail(sb.String(), err), err
	}

	msg := models.ChatMessage{Role: models.RoleAssistant, Content: strings.TrimRight(sb.String(), " \n"), Usage: &usage}
	p.store.ReplaceLastChat(msg)
	totals := p.store.AddTokens(usage)
	p.logger.Debug("reply complete", "input", usage.Input, "output", usage.Output, "total", totals.Total())
	return msg, nil
}

func (p *Planner) fail(partial string, err error) models.ChatMessage {
	p.logger.Warn("reply failed", "err", err, "partial", len(partial))
	content := partial
	if strings.TrimSpace(content) == "" {
		content = FallbackMessage
	}
	msg := models.ChatMessage{Role: models.RoleAssistant, Content: content}
	p.store.ReplaceLastChat(msg)
	return msg
}
