// Package transport defines the request and response DTOs of the chat API.
package transport

import "time"

// ── Requests ──────────────────────────────────────────────────────────────────

// ChatRequest is one inbound user turn.
type ChatRequest struct {
	SessionID string `json:"session_id" validate:"required,min=1,max=128"`
	Message   string `json:"message" validate:"required,min=1,max=4000"`
}

// CreateSessionRequest opens a new chat session. The ID is generated when
// omitted; the email may be bound later through the assistant.
type CreateSessionRequest struct {
	SessionID   string `json:"session_id" validate:"omitempty,min=1,max=128"`
	ClientEmail string `json:"client_email" validate:"omitempty,email"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// ChatResponse carries the assistant's reply.
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// SessionResponse is the API shape of a session.
type SessionResponse struct {
	ID             string    `json:"id"`
	ClientEmail    string    `json:"client_email,omitempty"`
	WhatsAppNumber string    `json:"whatsapp_number,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// MessageResponse is the API shape of one chat line.
type MessageResponse struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
