// Package repository persists chat sessions and their message log.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dabachat_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sender roles stored on messages.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// Session is the database model for a chat session.
type Session struct {
	ID             string     `db:"id"`
	ClientEmail    *string    `db:"client_email"`
	WhatsAppNumber *string    `db:"whatsapp_number"`
	CreatedAt      time.Time  `db:"created_at"`
}

// Message is one line of the append-only chat log.
type Message struct {
	ID        int64     `db:"id"`
	SessionID string    `db:"session_id"`
	Sender    string    `db:"sender"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

const sessionNotFoundMsg = "session not found"

// Repository provides database operations for chat sessions and messages.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new chat repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateSession inserts a new session. Inserting an existing ID fails.
func (r *Repository) CreateSession(ctx context.Context, session Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, client_email, whatsapp_number)
		VALUES ($1, $2, $3)`,
		session.ID, session.ClientEmail, session.WhatsAppNumber)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// EnsureSession inserts the session if it does not exist yet. Used by the
// webhook path, where the WhatsApp ID doubles as the session ID.
func (r *Repository) EnsureSession(ctx context.Context, id string, whatsappNumber *string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (id, whatsapp_number)
		VALUES ($1, $2)
		ON CONFLICT (id) DO NOTHING`,
		id, whatsappNumber)
	if err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}
	return nil
}

// GetSession fetches one session by ID.
func (r *Repository) GetSession(ctx context.Context, id string) (Session, error) {
	var s Session
	err := r.pool.QueryRow(ctx, `
		SELECT id, client_email, whatsapp_number, created_at
		FROM sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.ClientEmail, &s.WhatsAppNumber, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Session{}, apperr.NotFound(sessionNotFoundMsg)
	}
	if err != nil {
		return Session{}, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

// ListSessions returns every session, newest first.
func (r *Repository) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, client_email, whatsapp_number, created_at
		FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.ID, &s.ClientEmail, &s.WhatsAppNumber, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session; its messages cascade.
func (r *Repository) DeleteSession(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(sessionNotFoundMsg)
	}
	return nil
}

// SetClientEmail binds a client email to the session.
func (r *Repository) SetClientEmail(ctx context.Context, id, email string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sessions SET client_email = $2 WHERE id = $1`, id, email)
	if err != nil {
		return fmt.Errorf("set client email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(sessionNotFoundMsg)
	}
	return nil
}

// AppendMessage writes one chat line.
func (r *Repository) AppendMessage(ctx context.Context, sessionID, sender, content string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO messages (session_id, sender, content)
		VALUES ($1, $2, $3)`,
		sessionID, sender, content)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// ListMessages returns the full message log of a session in chronological
// order.
func (r *Repository) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, sender, content, created_at
		FROM messages
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

// RecentMessages returns the last limit messages in chronological order.
func (r *Repository) RecentMessages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, sender, content, created_at FROM (
			SELECT id, session_id, sender, content, created_at
			FROM messages
			WHERE session_id = $1
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		) recent ORDER BY created_at ASC, id ASC`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows pgx.Rows) ([]Message, error) {
	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
