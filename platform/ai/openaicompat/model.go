// Package openaicompat adapts any OpenAI-compatible chat-completions API to
// the ADK model.LLM interface. The booking assistant runs on gpt-4o by
// default but the base URL and model are configurable.
package openaicompat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"time"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// Config holds the connection settings for the upstream API.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Model adapts an OpenAI-compatible endpoint to model.LLM.
type Model struct {
	config Config
	client *http.Client
}

// New creates the adapter with sane defaults.
func New(cfg Config) *Model {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	return &Model{
		config: cfg,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the configured model identifier.
func (m *Model) Name() string {
	return m.config.Model
}

// GenerateContent performs a single non-streaming completion. The ADK runner
// consumes the response as a one-element sequence.
func (m *Model) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		resp, err := m.complete(ctx, req)
		yield(resp, err)
	}
}

// Wire types for the chat-completions protocol.

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
	Name       string         `json:"name,omitempty"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
}

type wireToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function wireFunction `json:"function"`
}

type wireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type wireToolDef struct {
	Type     string          `json:"type"`
	Function wireToolDefFunc `json:"function"`
}

type wireToolDefFunc struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Parameters  interface{} `json:"parameters,omitempty"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Role      string         `json:"role"`
			Content   string         `json:"content"`
			ToolCalls []wireToolCall `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (m *Model) complete(ctx context.Context, req *model.LLMRequest) (*model.LLMResponse, error) {
	payload := map[string]interface{}{
		"model":    m.config.Model,
		"messages": m.buildMessages(req),
	}
	if req.Config != nil && req.Config.Temperature != nil {
		payload["temperature"] = float64(*req.Config.Temperature)
	}
	if tools := m.buildToolDefs(req); len(tools) > 0 {
		payload["tools"] = tools
		payload["tool_choice"] = "auto"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.config.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	var decoded wireResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode completion response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("llm api error: %s", decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return nil, fmt.Errorf("llm api error: empty choices")
	}

	return toLLMResponse(decoded.Choices[0].Message.Content, decoded.Choices[0].Message.ToolCalls), nil
}

func toLLMResponse(content string, calls []wireToolCall) *model.LLMResponse {
	parts := make([]*genai.Part, 0, 1+len(calls))
	if strings.TrimSpace(content) != "" {
		parts = append(parts, genai.NewPartFromText(content))
	}
	for _, call := range calls {
		args := map[string]any{}
		if call.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
				args = map[string]any{"_raw": call.Function.Arguments}
			}
		}
		parts = append(parts, &genai.Part{
			FunctionCall: &genai.FunctionCall{
				ID:   call.ID,
				Name: call.Function.Name,
				Args: args,
			},
		})
	}

	return &model.LLMResponse{
		Content: &genai.Content{
			Role:  genai.RoleModel,
			Parts: parts,
		},
	}
}

// buildMessages flattens genai contents into chat-completions messages.
// Tool responses become standalone "tool" role messages; tool calls ride on
// the assistant message that produced them.
func (m *Model) buildMessages(req *model.LLMRequest) []wireMessage {
	messages := make([]wireMessage, 0, len(req.Contents))
	for _, content := range req.Contents {
		if content == nil {
			continue
		}

		role := "user"
		if content.Role == genai.RoleModel {
			role = "assistant"
		}

		var text strings.Builder
		var toolCalls []wireToolCall
		for _, part := range content.Parts {
			switch {
			case part == nil:
				continue
			case part.FunctionResponse != nil:
				payload, _ := json.Marshal(part.FunctionResponse.Response)
				messages = append(messages, wireMessage{
					Role:       "tool",
					ToolCallID: part.FunctionResponse.ID,
					Name:       part.FunctionResponse.Name,
					Content:    string(payload),
				})
			case part.FunctionCall != nil:
				args, _ := json.Marshal(part.FunctionCall.Args)
				toolCalls = append(toolCalls, wireToolCall{
					ID:   part.FunctionCall.ID,
					Type: "function",
					Function: wireFunction{
						Name:      part.FunctionCall.Name,
						Arguments: string(args),
					},
				})
			case strings.TrimSpace(part.Text) != "":
				if text.Len() > 0 {
					text.WriteString("\n")
				}
				text.WriteString(part.Text)
			}
		}

		if text.Len() > 0 || len(toolCalls) > 0 {
			messages = append(messages, wireMessage{
				Role:      role,
				Content:   strings.TrimSpace(text.String()),
				ToolCalls: toolCalls,
			})
		}
	}
	return messages
}

func (m *Model) buildToolDefs(req *model.LLMRequest) []wireToolDef {
	if req == nil || req.Config == nil {
		return nil
	}

	var defs []wireToolDef
	for _, gt := range req.Config.Tools {
		if gt == nil {
			continue
		}
		for _, decl := range gt.FunctionDeclarations {
			if decl == nil || decl.Name == "" {
				continue
			}
			var params interface{}
			switch {
			case decl.ParametersJsonSchema != nil:
				params = decl.ParametersJsonSchema
			case decl.Parameters != nil:
				params = decl.Parameters
			}
			defs = append(defs, wireToolDef{
				Type: "function",
				Function: wireToolDefFunc{
					Name:        decl.Name,
					Description: decl.Description,
					Parameters:  params,
				},
			})
		}
	}
	return defs
}
