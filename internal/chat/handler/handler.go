// Package handler exposes the chat REST surface.
package handler

import (
	"dabachat_backend/internal/chat/repository"
	"dabachat_backend/internal/chat/service"
	"dabachat_backend/internal/chat/transport"
	"dabachat_backend/platform/apperr"
	"dabachat_backend/platform/httpkit"
	"dabachat_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "invalid request"

// Handler handles HTTP requests for the chat API.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new chat handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the chat routes. The turn endpoint drives the LLM,
// so it carries the per-IP rate limit.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, rateLimit gin.HandlerFunc) {
	rg.POST("/chat", rateLimit, h.Chat)
	rg.GET("/chat/history/:id", h.History)
	rg.POST("/session/create", h.CreateSession)
	rg.GET("/session/list", h.ListSessions)
	rg.DELETE("/session/:id", h.DeleteSession)
}

// Chat runs one conversational turn.
func (h *Handler) Chat(c *gin.Context) {
	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	reply, err := h.svc.Chat(c.Request.Context(), req.SessionID, req.Message)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ChatResponse{SessionID: req.SessionID, Reply: reply})
}

// History returns the full message log of a session.
func (h *Handler) History(c *gin.Context) {
	messages, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, toMessageResponse(m))
	}
	httpkit.OK(c, out)
}

// CreateSession opens a new session.
func (h *Handler) CreateSession(c *gin.Context) {
	var req transport.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation(err.Error()))
		return
	}

	session, err := h.svc.CreateSession(c.Request.Context(), req.SessionID, req.ClientEmail)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toSessionResponse(session))
}

// ListSessions returns all sessions.
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.svc.ListSessions(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, toSessionResponse(s))
	}
	httpkit.OK(c, out)
}

// DeleteSession removes a session and its messages.
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.svc.DeleteSession(c.Request.Context(), c.Param("id")); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"deleted": c.Param("id")})
}

func toSessionResponse(s repository.Session) transport.SessionResponse {
	out := transport.SessionResponse{ID: s.ID, CreatedAt: s.CreatedAt}
	if s.ClientEmail != nil {
		out.ClientEmail = *s.ClientEmail
	}
	if s.WhatsAppNumber != nil {
		out.WhatsAppNumber = *s.WhatsAppNumber
	}
	return out
}

func toMessageResponse(m repository.Message) transport.MessageResponse {
	return transport.MessageResponse{
		ID:        m.ID,
		Sender:    m.Sender,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
