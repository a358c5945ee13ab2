package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/process-raci/internal/domain"
)

// ActivityRepository stores the audit trail of processes and the org chart.
type ActivityRepository interface {
	Create(ctx context.Context, activity *domain.Activity) error
	// ListBySubject returns the newest entries first.
	ListBySubject(ctx context.Context, subjectID string, limit int) ([]domain.Activity, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository builds repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	const query = `
        INSERT INTO activity_log (subject_id, event_type, actor_id, payload)
        VALUES ($1, $2, NULLIF($3, ''), $4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		activity.SubjectID,
		activity.EventType,
		activity.ActorID,
		activity.Payload,
	).Scan(&activity.ID, &activity.CreatedAt)
}

func (r *activityRepository) ListBySubject(ctx context.Context, subjectID string, limit int) ([]domain.Activity, error) {
	const query = `
        SELECT id, subject_id, event_type, COALESCE(actor_id, ''), payload, created_at
        FROM activity_log WHERE subject_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, subjectID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Activity{}
	for rows.Next() {
		var activity domain.Activity
		if err := rows.Scan(
			&activity.ID,
			&activity.SubjectID,
			&activity.EventType,
			&activity.ActorID,
			&activity.Payload,
			&activity.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, activity)
	}
	return result, rows.Err()
}
