// Package events defines the domain events exchanged between modules over
// the in-process bus.
package events

import (
	"dabachat_backend/platform/events"
)

// Event names.
const (
	BookingCreatedName       = "booking.created"
	SessionAuthenticatedName = "session.authenticated"
	MessageRelayedName       = "message.relayed"
)

// BookingCreated fires after a reservation or order was accepted by the
// booking platform. The notification module emails the confirmation.
type BookingCreated struct {
	events.BaseEvent
	Reference   string
	BlaneName   string
	ClientName  string
	ClientEmail string
	Date        string
	Time        string
	Quantity    int
	Total       float64
	DueNow      float64
	Route       string
	PaymentURL  string
}

// EventName returns the event type identifier.
func (BookingCreated) EventName() string { return BookingCreatedName }

// NewBookingCreated stamps the event with its occurrence time.
func NewBookingCreated(e BookingCreated) BookingCreated {
	e.BaseEvent = events.NewBaseEvent()
	return e
}

// SessionAuthenticated fires when a chat session gets bound to a client
// email.
type SessionAuthenticated struct {
	events.BaseEvent
	SessionID   string
	ClientEmail string
}

// EventName returns the event type identifier.
func (SessionAuthenticated) EventName() string { return SessionAuthenticatedName }

// NewSessionAuthenticated builds the event.
func NewSessionAuthenticated(sessionID, email string) SessionAuthenticated {
	return SessionAuthenticated{
		BaseEvent:   events.NewBaseEvent(),
		SessionID:   sessionID,
		ClientEmail: email,
	}
}

// MessageRelayed fires after an assistant reply was delivered on an outbound
// channel.
type MessageRelayed struct {
	events.BaseEvent
	SessionID string
	Channel   string
}

// EventName returns the event type identifier.
func (MessageRelayed) EventName() string { return MessageRelayedName }

// NewMessageRelayed builds the event.
func NewMessageRelayed(sessionID, channel string) MessageRelayed {
	return MessageRelayed{
		BaseEvent: events.NewBaseEvent(),
		SessionID: sessionID,
		Channel:   channel,
	}
}
