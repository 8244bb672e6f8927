package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/masroufy/masroufy/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// OpenPostgres connects, pings and applies the embedded migrations.
func OpenPostgres(config DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return nil, fmt.Errorf("error reading migrations file: %w", err)
	}
	if _, err := db.Exec(string(migrationSQL)); err != nil {
		return nil, fmt.Errorf("error executing migrations: %w", err)
	}

	return db, nil
}

// PostgresConfirmationStore keeps pending actions in the pending_actions
// table. Expiry is enforced in every query via expires_at filters; the
// sweep only keeps the table small.
type PostgresConfirmationStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresConfirmationStore(db *sql.DB) *PostgresConfirmationStore {
	return &PostgresConfirmationStore{db: db, now: time.Now}
}

func (s *PostgresConfirmationStore) Create(ctx context.Context, userID int64, actionType models.ActionType, actionData map[string]interface{}, lang models.Language, ttl time.Duration) (string, error) {
	data, err := json.Marshal(actionData)
	if err != nil {
		return "", fmt.Errorf("error encoding action data: %w", err)
	}

	now := s.now()
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pending_actions (id, user_id, action_type, action_data, language, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, userID, string(actionType), data, string(lang), now, now.Add(ttl))
	if err != nil {
		return "", fmt.Errorf("error creating pending action: %w", err)
	}
	return id, nil
}

func (s *PostgresConfirmationStore) Get(ctx context.Context, id string) (*models.PendingAction, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, action_type, action_data, language, created_at, expires_at
		FROM pending_actions
		WHERE id = $1 AND expires_at > $2`,
		id, s.now())

	var action models.PendingAction
	var data []byte
	err := row.Scan(&action.ID, &action.UserID, &action.ActionType, &data, &action.Language, &action.CreatedAt, &action.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading pending action: %w", err)
	}
	if err := json.Unmarshal(data, &action.ActionData); err != nil {
		return nil, fmt.Errorf("error decoding action data: %w", err)
	}
	return &action, nil
}

func (s *PostgresConfirmationStore) Update(ctx context.Context, id string, partial map[string]interface{}) error {
	action, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if action == nil {
		return nil
	}

	data, err := json.Marshal(mergeData(action.ActionData, partial))
	if err != nil {
		return fmt.Errorf("error encoding action data: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE pending_actions SET action_data = $2 WHERE id = $1`,
		id, data)
	if err != nil {
		return fmt.Errorf("error updating pending action: %w", err)
	}
	return nil
}

func (s *PostgresConfirmationStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("error deleting pending action: %w", err)
	}
	return nil
}

func (s *PostgresConfirmationStore) DeleteExpired(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pending_actions WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("error sweeping pending actions: %w", err)
	}
	affected, _ := result.RowsAffected()
	return int(affected), nil
}

// PostgresConversationStore keeps the single-slot per-user flow state in the
// conversation_states table. INSERT ... ON CONFLICT gives last-writer-wins.
type PostgresConversationStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresConversationStore(db *sql.DB) *PostgresConversationStore {
	return &PostgresConversationStore{db: db, now: time.Now}
}

func (s *PostgresConversationStore) Set(ctx context.Context, userID int64, stateType models.StateType, stateData map[string]interface{}, lang models.Language, ttl time.Duration) error {
	data, err := json.Marshal(stateData)
	if err != nil {
		return fmt.Errorf("error encoding state data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_states (user_id, state_type, state_data, language, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET state_type = EXCLUDED.state_type,
		    state_data = EXCLUDED.state_data,
		    language = EXCLUDED.language,
		    expires_at = EXCLUDED.expires_at`,
		userID, string(stateType), data, string(lang), s.now().Add(ttl))
	if err != nil {
		return fmt.Errorf("error setting conversation state: %w", err)
	}
	return nil
}

func (s *PostgresConversationStore) Get(ctx context.Context, userID int64) (*models.ConversationState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, state_type, state_data, language, expires_at
		FROM conversation_states
		WHERE user_id = $1 AND expires_at > $2`,
		userID, s.now())

	var state models.ConversationState
	var data []byte
	err := row.Scan(&state.UserID, &state.StateType, &data, &state.Language, &state.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading conversation state: %w", err)
	}
	if err := json.Unmarshal(data, &state.StateData); err != nil {
		return nil, fmt.Errorf("error decoding state data: %w", err)
	}
	return &state, nil
}

func (s *PostgresConversationStore) Clear(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversation_states WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("error clearing conversation state: %w", err)
	}
	return nil
}

func (s *PostgresConversationStore) DeleteExpired(ctx context.Context) (int, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM conversation_states WHERE expires_at <= $1`, s.now())
	if err != nil {
		return 0, fmt.Errorf("error sweeping conversation states: %w", err)
	}
	affected, _ := result.RowsAffected()
	return int(affected), nil
}
