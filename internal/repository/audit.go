package repository

import (
	"context"
	"fmt"

	"github.com/St1cky1/roster/internal/entity"
)

type AuditRepository struct{}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Create(ctx context.Context, q DBTX, audit *entity.Audit) error {
	query := `
	INSERT INTO entity_audit (message_id, action, entity_type, entity_id, old_values, new_values, changes, changed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (message_id) DO NOTHING
	RETURNING id
	`

	err := q.QueryRow(ctx, query,
		audit.MessageID,
		audit.Action,
		audit.EntityType,
		audit.EntityID,
		audit.OldValues,
		audit.NewValues,
		audit.Changes,
		audit.ChangedAt,
	).Scan(&audit.ID)
	if err != nil {
		// повторная доставка того же сообщения - не ошибка
		if isNoRows(err) {
			return nil
		}
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

func (r *AuditRepository) ListByEntity(ctx context.Context, q DBTX, entityType entity.EntityType, entityID int64) ([]entity.Audit, error) {
	query := `
	SELECT id, message_id, action, entity_type, entity_id, old_values, new_values, changes, changed_at
	FROM entity_audit
	WHERE entity_type = $1 AND entity_id = $2
	ORDER BY changed_at, id
	`

	rows, err := q.Query(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	defer rows.Close()

	var audits []entity.Audit
	for rows.Next() {
		var a entity.Audit
		err := rows.Scan(
			&a.ID,
			&a.MessageID,
			&a.Action,
			&a.EntityType,
			&a.EntityID,
			&a.OldValues,
			&a.NewValues,
			&a.Changes,
			&a.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		audits = append(audits, a)
	}

	return audits, rows.Err()
}
