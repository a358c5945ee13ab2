package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/process-raci/internal/domain"
)

// RaciRepository persists manually declared RACI actions and their cells.
type RaciRepository interface {
	CreateAction(ctx context.Context, action *domain.ManualAction) error
	UpdateAction(ctx context.Context, action *domain.ManualAction) error
	DeleteAction(ctx context.Context, id string) error
	GetAction(ctx context.Context, id string) (*domain.ManualAction, error)
	// ListActions returns actions of one department, or of all when departmentID is empty.
	ListActions(ctx context.Context, departmentID string) ([]domain.ManualAction, error)
	SetCell(ctx context.Context, actionID, roleID string, letter domain.Responsibility) error
}

type raciRepository struct {
	pool *pgxpool.Pool
}

// NewRaciRepository builds the repository.
func NewRaciRepository(pool *pgxpool.Pool) RaciRepository {
	return &raciRepository{pool: pool}
}

func (r *raciRepository) CreateAction(ctx context.Context, action *domain.ManualAction) error {
	const query = `
        INSERT INTO raci_manual_actions (department_id, label, position)
        VALUES ($1, $2, (SELECT COALESCE(MAX(position), -1) + 1 FROM raci_manual_actions WHERE department_id = $1))
        RETURNING id, position, created_at, updated_at`
	if action.Cells == nil {
		action.Cells = map[string]domain.Responsibility{}
	}
	return r.pool.QueryRow(ctx, query, action.DepartmentID, action.Label).
		Scan(&action.ID, &action.Position, &action.CreatedAt, &action.UpdatedAt)
}

func (r *raciRepository) UpdateAction(ctx context.Context, action *domain.ManualAction) error {
	const query = `
        UPDATE raci_manual_actions SET label=$1, position=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, action.Label, action.Position, action.ID).Scan(&action.UpdatedAt)
}

func (r *raciRepository) DeleteAction(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM raci_manual_actions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *raciRepository) GetAction(ctx context.Context, id string) (*domain.ManualAction, error) {
	const query = `
        SELECT id, department_id, label, position, created_at, updated_at
        FROM raci_manual_actions WHERE id=$1`
	var action domain.ManualAction
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&action.ID, &action.DepartmentID, &action.Label, &action.Position, &action.CreatedAt, &action.UpdatedAt,
	); err != nil {
		return nil, err
	}
	actions := []domain.ManualAction{action}
	if err := r.loadCells(ctx, actions); err != nil {
		return nil, err
	}
	return &actions[0], nil
}

func (r *raciRepository) ListActions(ctx context.Context, departmentID string) ([]domain.ManualAction, error) {
	const query = `
        SELECT id, department_id, label, position, created_at, updated_at
        FROM raci_manual_actions
        WHERE $1 = '' OR department_id = $1
        ORDER BY department_id, position, created_at`
	rows, err := r.pool.Query(ctx, query, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	actions := []domain.ManualAction{}
	for rows.Next() {
		var action domain.ManualAction
		if err := rows.Scan(&action.ID, &action.DepartmentID, &action.Label, &action.Position, &action.CreatedAt, &action.UpdatedAt); err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadCells(ctx, actions); err != nil {
		return nil, err
	}
	return actions, nil
}

func (r *raciRepository) loadCells(ctx context.Context, actions []domain.ManualAction) error {
	if len(actions) == 0 {
		return nil
	}
	ids := make([]string, len(actions))
	index := make(map[string]int, len(actions))
	for i := range actions {
		ids[i] = actions[i].ID
		index[actions[i].ID] = i
		actions[i].Cells = map[string]domain.Responsibility{}
	}

	rows, err := r.pool.Query(ctx, `
        SELECT action_id, role_id, responsibility
        FROM raci_manual_cells WHERE action_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var actionID, roleID string
		var letter domain.Responsibility
		if err := rows.Scan(&actionID, &roleID, &letter); err != nil {
			return err
		}
		actions[index[actionID]].Cells[roleID] = letter
	}
	return rows.Err()
}

func (r *raciRepository) SetCell(ctx context.Context, actionID, roleID string, letter domain.Responsibility) error {
	if letter == domain.ResponsibilityNone {
		_, err := r.pool.Exec(ctx, `DELETE FROM raci_manual_cells WHERE action_id=$1 AND role_id=$2`, actionID, roleID)
		return err
	}
	const query = `
        INSERT INTO raci_manual_cells (action_id, role_id, responsibility)
        VALUES ($1, $2, $3)
        ON CONFLICT (action_id, role_id) DO UPDATE SET responsibility = EXCLUDED.responsibility`
	_, err := r.pool.Exec(ctx, query, actionID, roleID, letter)
	return err
}
