package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v4/pgxpool"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/repository"
)

var _ repository.AuditRepository = (*auditRepo)(nil)

// auditRepo is append-only; nothing ever updates or deletes a row.
type auditRepo struct{ pool *pgxpool.Pool }

func NewAuditRepo(pool *pgxpool.Pool) *auditRepo {
	return &auditRepo{pool: pool}
}

func (r *auditRepo) Append(ctx context.Context, tx repository.Tx, rec *model.AuditRecord) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO audit_log (id, entity_type, entity_id, action, actor_id, data, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`

	if _, err := execSQL(ctx, r.pool, tx, q, rec.ID, rec.EntityType, rec.EntityID, rec.Action, rec.ActorID, data, rec.CreatedAt); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *auditRepo) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]*model.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, entity_type, entity_id, action, actor_id, data, created_at
  FROM audit_log
 WHERE entity_type=$1 AND entity_id=$2
 ORDER BY created_at DESC
 LIMIT $3;`

	rows, err := queryRows(ctx, r.pool, nil, q, entityType, entityID, limit)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.AuditRecord
	for rows.Next() {
		rec := &model.AuditRecord{}
		var data []byte
		if err := rows.Scan(&rec.ID, &rec.EntityType, &rec.EntityID, &rec.Action, &rec.ActorID, &data, &rec.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if len(data) > 0 {
			if err := json.Unmarshal(data, &rec.Data); err != nil {
				return nil, domain.ErrReadDatabaseRow
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
