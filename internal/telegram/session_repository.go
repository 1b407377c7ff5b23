package telegram

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Session represents one user's in-progress wizard conversation.
type Session struct {
	ID          int64
	UserID      string
	State       string
	ContextData string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// Data unmarshals the wizard payload stored in the context_data field.
func (s *Session) Data() (*WizardData, error) {
	var data WizardData
	if err := json.Unmarshal([]byte(s.ContextData), &data); err != nil {
		return nil, fmt.Errorf("failed to decode session %d data: %w", s.ID, err)
	}
	return &data, nil
}

// SessionRepository provides access to session persistence operations.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SessionRepository instance.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create creates a new session and returns its ID.
func (sr *SessionRepository) Create(ctx context.Context, userID, state string, data *WizardData, ttl time.Duration) (int64, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	res, err := sr.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, state, context_data, expires_at, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, state, string(jsonData), now.Add(ttl), now)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	return res.LastInsertId()
}

// GetActive retrieves the most recent non-expired session for a user, or nil.
func (sr *SessionRepository) GetActive(ctx context.Context, userID string, now time.Time) (*Session, error) {
	row := sr.db.QueryRowContext(ctx,
		`SELECT id, user_id, state, context_data, expires_at, created_at FROM sessions
		 WHERE user_id = ? AND expires_at > ? ORDER BY created_at DESC, id DESC LIMIT 1`,
		userID, now.UTC())

	var s Session
	if err := row.Scan(&s.ID, &s.UserID, &s.State, &s.ContextData, &s.ExpiresAt, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session for user %s: %w", userID, err)
	}
	return &s, nil
}

// Update updates the state and wizard payload for a session.
func (sr *SessionRepository) Update(ctx context.Context, sessionID int64, state string, data *WizardData) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	_, err = sr.db.ExecContext(ctx,
		`UPDATE sessions SET state = ?, context_data = ? WHERE id = ?`,
		state, string(jsonData), sessionID)
	if err != nil {
		return fmt.Errorf("failed to update session %d: %w", sessionID, err)
	}
	return nil
}

// Delete removes a session.
func (sr *SessionRepository) Delete(ctx context.Context, sessionID int64) error {
	_, err := sr.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

// CleanupExpired removes all expired sessions.
func (sr *SessionRepository) CleanupExpired(ctx context.Context) error {
	_, err := sr.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, time.Now().UTC())
	return err
}
