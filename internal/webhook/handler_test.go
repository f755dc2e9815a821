package webhook

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"dabachat_backend/platform/logger"
)

func newTestRouter(conv *fakeConversations) (*gin.Engine, *fakeSender) {
	gin.SetMode(gin.TestMode)
	sender := &fakeSender{}
	svc := NewService(conv, sender, newMemoryDedup(), &recordingBus{}, logger.New("development"))
	h := NewHandler(svc, "verify-me")

	engine := gin.New()
	h.RegisterRoutes(engine)
	return engine, sender
}

func TestVerifyEchoesChallenge(t *testing.T) {
	engine, _ := newTestRouter(&fakeConversations{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/meta-webhook?hub.mode=subscribe&hub.verify_token=verify-me&hub.challenge=12345", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "12345" {
		t.Fatalf("expected challenge echo, got %d %q", w.Code, w.Body.String())
	}
}

func TestVerifyRejectsWrongToken(t *testing.T) {
	engine, _ := newTestRouter(&fakeConversations{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/meta-webhook?hub.verify_token=wrong&hub.challenge=12345", nil)
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestReceiveAlwaysReturnsOK(t *testing.T) {
	conv := &fakeConversations{reply: "salut"}
	engine, sender := newTestRouter(conv)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/meta-webhook", strings.NewReader(textDelivery))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one outbound message, got %v", sender.sent)
	}

	// Malformed bodies are acknowledged too.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/meta-webhook", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("malformed delivery should still get 200, got %d", w.Code)
	}
}
