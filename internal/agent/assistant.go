// Package agent wraps the LLM tool-calling loop of the booking assistant.
// The chat module hands it a session, the recent history and the new user
// message; it returns the assistant's reply after running the tools.
package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/google/uuid"

	"dabachat_backend/internal/chat/repository"
	"dabachat_backend/internal/chat/service"
	"dabachat_backend/platform/ai/openaicompat"
	"dabachat_backend/platform/config"
	"dabachat_backend/platform/logger"
)

const appName = "dabablane_assistant"

// Assistant runs one agent turn per chat message. Each turn gets a fresh
// in-memory agent session seeded with the persisted history, so the
// database stays the single source of truth for the conversation.
type Assistant struct {
	agent          agent.Agent
	runner         *runner.Runner
	sessionService session.Service
	deps           *ToolDependencies
	logger         *logger.Logger
	now            func() time.Time

	// runMu serializes turns: the tools read their session context from
	// deps, which is rebound at the start of every run.
	runMu sync.Mutex
}

// New builds the assistant on an OpenAI-compatible model with the full
// booking tool set.
func New(cfg config.LLMConfig, deps *ToolDependencies, log *logger.Logger) (*Assistant, error) {
	model := openaicompat.New(openaicompat.Config{
		APIKey:  cfg.GetLLMAPIKey(),
		BaseURL: cfg.GetLLMBaseURL(),
		Model:   cfg.GetLLMModel(),
	})

	tools, err := buildTools(deps)
	if err != nil {
		return nil, fmt.Errorf("build tools: %w", err)
	}

	adkAgent, err := llmagent.New(llmagent.Config{
		Name:        "DabaBlaneAssistant",
		Model:       model,
		Description: "Booking assistant for the dabablane platform.",
		Instruction: systemInstruction,
		Tools:       tools,
	})
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        appName,
		Agent:          adkAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("create runner: %w", err)
	}

	return &Assistant{
		agent:          adkAgent,
		runner:         r,
		sessionService: sessionService,
		deps:           deps,
		logger:         log,
		now:            time.Now,
	}, nil
}

// Reply runs one agent turn for the chat session and returns the
// assistant's text.
func (a *Assistant) Reply(ctx context.Context, chatSession repository.Session, history []repository.Message, message string) (string, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	clientEmail := ""
	if chatSession.ClientEmail != nil {
		clientEmail = *chatSession.ClientEmail
	}
	a.deps.SetSessionContext(chatSession.ID, clientEmail)

	userID := "chat-" + chatSession.ID
	runID := uuid.NewString() // fresh agent session per turn
	if _, err := a.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: runID,
	}); err != nil {
		return "", fmt.Errorf("create agent session: %w", err)
	}
	defer func() {
		_ = a.sessionService.Delete(context.Background(), &session.DeleteRequest{
			AppName:   appName,
			UserID:    userID,
			SessionID: runID,
		})
	}()

	userMessage := &genai.Content{
		Role: "user",
		Parts: []*genai.Part{
			{Text: a.buildPrompt(chatSession.ID, clientEmail, history, message)},
		},
	}

	var output strings.Builder
	for event, err := range a.runner.Run(ctx, userID, runID, userMessage, agent.RunConfig{StreamingMode: agent.StreamingModeNone}) {
		if err != nil {
			return "", fmt.Errorf("agent run: %w", err)
		}
		if event.Content == nil {
			continue
		}
		for _, part := range event.Content.Parts {
			output.WriteString(part.Text)
		}
	}

	reply := strings.TrimSpace(output.String())
	if reply == "" {
		reply = "Sorry, I could not process that. Could you rephrase?"
	}
	return reply, nil
}

// buildPrompt embeds the per-turn context and the persisted history ahead of
// the new message. The agent session itself is throwaway, so this block is
// the model's only memory of the conversation.
func (a *Assistant) buildPrompt(sessionID, clientEmail string, history []repository.Message, message string) string {
	if clientEmail == "" {
		clientEmail = "unauthenticated"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Session context:\n- Date: %s\n- Session ID: %s\n- Client email: %s\n",
		a.now().Format("2006-01-02"), sessionID, clientEmail)

	if len(history) > 0 {
		sb.WriteString("\nPrevious messages:\n")
		for i, msg := range history {
			fmt.Fprintf(&sb, "%d. %s: %s\n", i+1, msg.Sender, msg.Content)
		}
	}

	sb.WriteString("\nUser message:\n")
	sb.WriteString(message)
	return sb.String()
}

var _ service.Assistant = (*Assistant)(nil)
