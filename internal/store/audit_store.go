package store

import (
	"context"
	"time"

	"finance/internal/models"

	"github.com/google/uuid"
)

type AuditStore struct {
	db  DB
	now func() time.Time
}

func NewAuditStore(db DB) *AuditStore {
	return &AuditStore{db: db, now: time.Now}
}

// Log writes through tx so the entry commits or rolls back with the change it
// describes. An empty actorID is stored as NULL.
func (s *AuditStore) Log(ctx context.Context, tx Execer, actorID, action, entityType, entityID, data string) error {
	var actor *string
	if actorID != "" {
		actor = &actorID
	}
	if data == "" {
		data = "{}"
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_user_id, action, entity_type, entity_id, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), actor, action, entityType, entityID, data, formatTime(s.now()))
	return err
}

func (s *AuditStore) List(ctx context.Context, limit, offset int) ([]models.AuditEntry, error) {
	var rows []models.AuditEntry
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, actor_user_id, action, entity_type, entity_id, data, created_at
		FROM audit_logs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
