package service

import (
	"context"
	"testing"

	"dabachat_backend/internal/chat/repository"
	"dabachat_backend/internal/events"
	"dabachat_backend/platform/apperr"
	"dabachat_backend/platform/logger"

	platformevents "dabachat_backend/platform/events"
)

type fakeStore struct {
	sessions map[string]repository.Session
	messages []repository.Message
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]repository.Session{}}
}

func (f *fakeStore) CreateSession(_ context.Context, s repository.Session) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeStore) EnsureSession(_ context.Context, id string, wa *string) error {
	if _, ok := f.sessions[id]; !ok {
		f.sessions[id] = repository.Session{ID: id, WhatsAppNumber: wa}
	}
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, id string) (repository.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return repository.Session{}, apperr.NotFound("session not found")
	}
	return s, nil
}

func (f *fakeStore) ListSessions(context.Context) ([]repository.Session, error) {
	var out []repository.Session
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeStore) DeleteSession(_ context.Context, id string) error {
	if _, ok := f.sessions[id]; !ok {
		return apperr.NotFound("session not found")
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeStore) SetClientEmail(_ context.Context, id, email string) error {
	s, ok := f.sessions[id]
	if !ok {
		return apperr.NotFound("session not found")
	}
	s.ClientEmail = &email
	f.sessions[id] = s
	return nil
}

func (f *fakeStore) AppendMessage(_ context.Context, sessionID, sender, content string) error {
	f.nextID++
	f.messages = append(f.messages, repository.Message{
		ID: f.nextID, SessionID: sessionID, Sender: sender, Content: content,
	})
	return nil
}

func (f *fakeStore) ListMessages(_ context.Context, sessionID string) ([]repository.Message, error) {
	var out []repository.Message
	for _, m := range f.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) RecentMessages(ctx context.Context, sessionID string, limit int) ([]repository.Message, error) {
	all, _ := f.ListMessages(ctx, sessionID)
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

type fakeAssistant struct {
	history []repository.Message
	reply   string
	err     error
}

func (f *fakeAssistant) Reply(_ context.Context, _ repository.Session, history []repository.Message, _ string) (string, error) {
	f.history = history
	return f.reply, f.err
}

type recordingBus struct {
	published []platformevents.Event
}

func (b *recordingBus) Publish(_ context.Context, e platformevents.Event) {
	b.published = append(b.published, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e platformevents.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, platformevents.Handler) {}

func TestChatPersistsBothTurns(t *testing.T) {
	store := newFakeStore()
	svc := New(store, &fakeAssistant{reply: "Bonjour!"}, &recordingBus{}, logger.New("development"))

	reply, err := svc.Chat(context.Background(), "s1", "  hello  ")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "Bonjour!" {
		t.Fatalf("unexpected reply %q", reply)
	}

	if len(store.messages) != 2 {
		t.Fatalf("expected user and assistant lines, got %+v", store.messages)
	}
	if store.messages[0].Sender != repository.SenderUser || store.messages[0].Content != "hello" {
		t.Fatalf("unexpected user line: %+v", store.messages[0])
	}
	if store.messages[1].Sender != repository.SenderAssistant {
		t.Fatalf("unexpected assistant line: %+v", store.messages[1])
	}
	if _, ok := store.sessions["s1"]; !ok {
		t.Fatal("expected session auto-creation on first contact")
	}
}

func TestChatFeedsBoundedHistory(t *testing.T) {
	store := newFakeStore()
	store.EnsureSession(context.Background(), "s1", nil)
	for range 30 {
		store.AppendMessage(context.Background(), "s1", repository.SenderUser, "earlier")
	}

	assistant := &fakeAssistant{reply: "ok"}
	svc := New(store, assistant, &recordingBus{}, logger.New("development"))

	if _, err := svc.Chat(context.Background(), "s1", "latest"); err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(assistant.history) != historyWindow {
		t.Fatalf("expected %d history lines, got %d", historyWindow, len(assistant.history))
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	svc := New(newFakeStore(), &fakeAssistant{}, &recordingBus{}, logger.New("development"))

	if _, err := svc.Chat(context.Background(), "s1", "   "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthenticatePublishesEvent(t *testing.T) {
	store := newFakeStore()
	store.EnsureSession(context.Background(), "s1", nil)
	bus := &recordingBus{}
	svc := New(store, &fakeAssistant{}, bus, logger.New("development"))

	if err := svc.Authenticate(context.Background(), "s1", "amina@example.com"); err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got := *store.sessions["s1"].ClientEmail; got != "amina@example.com" {
		t.Fatalf("email not stored, got %q", got)
	}
	if len(bus.published) != 1 || bus.published[0].EventName() != events.SessionAuthenticatedName {
		t.Fatalf("expected session.authenticated event, got %+v", bus.published)
	}

	if err := svc.Authenticate(context.Background(), "s1", "nope"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected invalid email rejection, got %v", err)
	}
}

func TestCreateSessionGeneratesID(t *testing.T) {
	store := newFakeStore()
	svc := New(store, &fakeAssistant{}, &recordingBus{}, logger.New("development"))

	session, err := svc.CreateSession(context.Background(), "", "amina@example.com")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.ID == "" {
		t.Fatal("expected generated session ID")
	}
	if session.ClientEmail == nil || *session.ClientEmail != "amina@example.com" {
		t.Fatalf("expected bound email, got %+v", session)
	}
}
