package agent

import (
	"strings"
	"testing"
	"time"

	"dabachat_backend/internal/chat/repository"
)

func TestBookingInputFallsBackToSessionEmail(t *testing.T) {
	in := bookingInput{BlaneID: 3, Name: "Amina", Phone: "0612345678"}

	req := in.toRequest("amina@example.com")
	if req.Email != "amina@example.com" {
		t.Fatalf("expected session email fallback, got %q", req.Email)
	}

	in.Email = "other@example.com"
	req = in.toRequest("amina@example.com")
	if req.Email != "other@example.com" {
		t.Fatalf("explicit email must win, got %q", req.Email)
	}
}

func TestSessionContextRoundTrip(t *testing.T) {
	deps := &ToolDependencies{}
	deps.SetSessionContext("sess-1", "amina@example.com")

	sessionID, email := deps.SessionContext()
	if sessionID != "sess-1" || email != "amina@example.com" {
		t.Fatalf("unexpected context %q %q", sessionID, email)
	}
}

func TestBuildPromptEmbedsContextAndHistory(t *testing.T) {
	a := &Assistant{now: func() time.Time {
		return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	}}

	history := []repository.Message{
		{Sender: repository.SenderUser, Content: "bonjour"},
		{Sender: repository.SenderAssistant, Content: "Bonjour! Je suis *DabaBlane AI*"},
	}
	prompt := a.buildPrompt("sess-1", "", history, "je veux un spa")

	for _, want := range []string{
		"Date: 2026-03-02",
		"Session ID: sess-1",
		"Client email: unauthenticated",
		"1. user: bonjour",
		"2. assistant: Bonjour! Je suis *DabaBlane AI*",
		"je veux un spa",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}

	prompt = a.buildPrompt("sess-1", "amina@example.com", nil, "salut")
	if !strings.Contains(prompt, "Client email: amina@example.com") {
		t.Fatalf("authenticated email missing:\n%s", prompt)
	}
	if strings.Contains(prompt, "Previous messages") {
		t.Fatalf("empty history should omit the transcript block:\n%s", prompt)
	}
}
