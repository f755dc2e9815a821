// Package webhook receives WhatsApp messages from the Meta Cloud API and
// relays them through the chat service, sending the assistant's reply back
// to the user's number.
package webhook

import (
	"context"

	"dabachat_backend/internal/events"
	"dabachat_backend/internal/whatsapp"
	"dabachat_backend/platform/logger"

	platformevents "dabachat_backend/platform/events"
)

const fallbackReply = "Sorry, something went wrong. Please try again."

// Conversations is the slice of the chat service the relay needs. The
// WhatsApp number doubles as the chat session ID.
type Conversations interface {
	EnsureWhatsAppSession(ctx context.Context, waID string) error
	Chat(ctx context.Context, sessionID, message string) (string, error)
}

// Service relays inbound WhatsApp messages through the assistant.
type Service struct {
	conversations Conversations
	sender        whatsapp.Sender
	dedup         Dedup
	bus           platformevents.Bus
	logger        *logger.Logger
}

// NewService wires the relay.
func NewService(conversations Conversations, sender whatsapp.Sender, dedup Dedup, bus platformevents.Bus, log *logger.Logger) *Service {
	return &Service{
		conversations: conversations,
		sender:        sender,
		dedup:         dedup,
		bus:           bus,
		logger:        log,
	}
}

// Relay processes one webhook delivery. It never returns an error to the
// caller: Meta expects a 200 for every delivery, and retries are handled
// through dedup instead of status codes.
func (s *Service) Relay(ctx context.Context, notification Notification) {
	msg, ok := notification.firstMessage()
	if !ok {
		return
	}
	if msg.Type != "text" || msg.Text == nil {
		s.logger.WhatsAppEvent("inbound", msg.From, false, "non-text message ignored")
		return
	}
	if msg.ID != "" && !s.dedup.FirstSeen(ctx, msg.ID) {
		s.logger.WhatsAppEvent("inbound", msg.From, false, "duplicate delivery ignored")
		return
	}

	waID := msg.From
	s.logger.WhatsAppEvent("inbound", waID, true, "")

	if err := s.conversations.EnsureWhatsAppSession(ctx, waID); err != nil {
		s.logger.DatabaseError("ensure whatsapp session", err)
		s.reply(ctx, waID, fallbackReply)
		return
	}

	reply, err := s.conversations.Chat(ctx, waID, msg.Text.Body)
	if err != nil {
		s.logger.Error("whatsapp relay failed", "wa_id", waID, "error", err.Error())
		s.reply(ctx, waID, fallbackReply)
		return
	}

	s.reply(ctx, waID, reply)
	s.bus.Publish(ctx, events.NewMessageRelayed(waID, "whatsapp"))
}

func (s *Service) reply(ctx context.Context, waID, text string) {
	if err := s.sender.SendText(ctx, waID, text); err != nil {
		s.logger.Error("whatsapp send failed", "wa_id", waID, "error", err.Error())
	}
}
