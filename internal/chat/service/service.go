// Package service implements the chat session lifecycle and the relay of
// user turns through the booking assistant.
package service

import (
	"context"
	"strings"
	"time"

	"dabachat_backend/internal/chat/repository"
	"dabachat_backend/internal/events"
	"dabachat_backend/platform/apperr"
	"dabachat_backend/platform/logger"

	platformevents "dabachat_backend/platform/events"

	"github.com/google/uuid"
)

// historyWindow bounds how much chat history feeds back into the assistant
// per turn.
const historyWindow = 20

// Store is the repository surface the service needs.
type Store interface {
	CreateSession(ctx context.Context, session repository.Session) error
	EnsureSession(ctx context.Context, id string, whatsappNumber *string) error
	GetSession(ctx context.Context, id string) (repository.Session, error)
	ListSessions(ctx context.Context) ([]repository.Session, error)
	DeleteSession(ctx context.Context, id string) error
	SetClientEmail(ctx context.Context, id, email string) error
	AppendMessage(ctx context.Context, sessionID, sender, content string) error
	ListMessages(ctx context.Context, sessionID string) ([]repository.Message, error)
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]repository.Message, error)
}

// Assistant produces one reply per user turn, given the session and its
// recent history.
type Assistant interface {
	Reply(ctx context.Context, session repository.Session, history []repository.Message, message string) (string, error)
}

// Service provides the chat business logic.
type Service struct {
	store     Store
	assistant Assistant
	bus       platformevents.Bus
	logger    *logger.Logger
}

// New creates the chat service.
func New(store Store, assistant Assistant, bus platformevents.Bus, log *logger.Logger) *Service {
	return &Service{store: store, assistant: assistant, bus: bus, logger: log}
}

// Chat processes one user turn: persist the inbound line, run the
// assistant over the recent history, persist and return the reply. The
// session is created on first contact.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", apperr.Validation("message must not be empty")
	}

	if err := s.store.EnsureSession(ctx, sessionID, nil); err != nil {
		return "", err
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return "", err
	}

	history, err := s.store.RecentMessages(ctx, sessionID, historyWindow)
	if err != nil {
		return "", err
	}

	if err := s.store.AppendMessage(ctx, sessionID, repository.SenderUser, message); err != nil {
		return "", err
	}

	started := time.Now()
	reply, err := s.assistant.Reply(logger.WithSession(ctx, sessionID), session, history, message)
	if err != nil {
		return "", err
	}
	s.logger.AgentTurn(sessionID, len(message), len(reply), float64(time.Since(started).Milliseconds()))

	if err := s.store.AppendMessage(ctx, sessionID, repository.SenderAssistant, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// EnsureWhatsAppSession creates the session for a WhatsApp contact if it
// does not exist yet, recording the sender's number.
func (s *Service) EnsureWhatsAppSession(ctx context.Context, waID string) error {
	return s.store.EnsureSession(ctx, waID, &waID)
}

// CreateSession opens a session, generating an ID when none is given.
func (s *Service) CreateSession(ctx context.Context, sessionID, clientEmail string) (repository.Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}

	session := repository.Session{ID: sessionID}
	if strings.TrimSpace(clientEmail) != "" {
		session.ClientEmail = &clientEmail
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return repository.Session{}, err
	}
	return s.store.GetSession(ctx, sessionID)
}

// ListSessions returns all sessions, newest first.
func (s *Service) ListSessions(ctx context.Context) ([]repository.Session, error) {
	return s.store.ListSessions(ctx)
}

// DeleteSession removes a session and its messages.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	return s.store.DeleteSession(ctx, sessionID)
}

// History returns the full message log of a session.
func (s *Service) History(ctx context.Context, sessionID string) ([]repository.Message, error) {
	if _, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.store.ListMessages(ctx, sessionID)
}

// Authenticate binds a client email to the session. The assistant calls
// this when the user identifies themselves.
func (s *Service) Authenticate(ctx context.Context, sessionID, email string) error {
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return apperr.Validationf("invalid email address %q", email)
	}
	if err := s.store.SetClientEmail(ctx, sessionID, email); err != nil {
		return err
	}
	s.bus.Publish(ctx, events.NewSessionAuthenticated(sessionID, email))
	return nil
}
