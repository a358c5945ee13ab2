package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/process-raci/internal/domain"
)

// DepartmentRepository manages departments and their roles.
type DepartmentRepository interface {
	Create(ctx context.Context, dept *domain.Department) error
	Update(ctx context.Context, dept *domain.Department) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	// List returns every department with its roles, in creation order.
	List(ctx context.Context) ([]domain.Department, error)

	CreateRole(ctx context.Context, role *domain.Role) error
	UpdateRole(ctx context.Context, role *domain.Role) error
	DeleteRole(ctx context.Context, id string) error
	GetRole(ctx context.Context, id string) (*domain.Role, error)

	// Materialize persists draft departments and draft roles in one
	// transaction and returns a mapping from draft id to persisted id.
	Materialize(ctx context.Context, departments []domain.Department, roles []domain.Role) (map[string]string, error)
}

type departmentRepository struct {
	pool *pgxpool.Pool
}

// NewDepartmentRepository builds the repository.
func NewDepartmentRepository(pool *pgxpool.Pool) DepartmentRepository {
	return &departmentRepository{pool: pool}
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const insertDepartment = `
        INSERT INTO departments (name, color, position)
        VALUES ($1, $2, (SELECT COALESCE(MAX(position), -1) + 1 FROM departments))
        RETURNING id, created_at, updated_at`

const insertRole = `
        INSERT INTO roles (department_id, name, color, position)
        VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), -1) + 1 FROM roles WHERE department_id = $1))
        RETURNING id, created_at, updated_at`

func createDepartment(ctx context.Context, q querier, dept *domain.Department) error {
	return q.QueryRow(ctx, insertDepartment, dept.Name, dept.Color).
		Scan(&dept.ID, &dept.CreatedAt, &dept.UpdatedAt)
}

func createRole(ctx context.Context, q querier, role *domain.Role) error {
	return q.QueryRow(ctx, insertRole, role.DepartmentID, role.Name, role.Color).
		Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
}

func (r *departmentRepository) Create(ctx context.Context, dept *domain.Department) error {
	return createDepartment(ctx, r.pool, dept)
}

func (r *departmentRepository) Update(ctx context.Context, dept *domain.Department) error {
	const query = `
        UPDATE departments SET name=$1, color=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, dept.Name, dept.Color, dept.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	const query = `
        SELECT id, name, color, created_at, updated_at
        FROM departments WHERE id=$1`
	var dept domain.Department
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&dept.ID,
		&dept.Name,
		&dept.Color,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}

	roles, err := r.listRoles(ctx, `WHERE department_id=$1`, id)
	if err != nil {
		return nil, err
	}
	dept.Roles = roles
	return &dept, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]domain.Department, error) {
	const query = `
        SELECT id, name, color, created_at, updated_at
        FROM departments ORDER BY position, created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Department{}
	index := make(map[string]int)
	for rows.Next() {
		var dept domain.Department
		if err := rows.Scan(&dept.ID, &dept.Name, &dept.Color, &dept.CreatedAt, &dept.UpdatedAt); err != nil {
			return nil, err
		}
		dept.Roles = []domain.Role{}
		index[dept.ID] = len(result)
		result = append(result, dept)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	roles, err := r.listRoles(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if i, ok := index[role.DepartmentID]; ok {
			result[i].Roles = append(result[i].Roles, role)
		}
	}
	return result, nil
}

func (r *departmentRepository) listRoles(ctx context.Context, where string, args ...any) ([]domain.Role, error) {
	query := `
        SELECT id, department_id, name, color, created_at, updated_at
        FROM roles ` + where + ` ORDER BY position, created_at`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.DepartmentID, &role.Name, &role.Color, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *departmentRepository) CreateRole(ctx context.Context, role *domain.Role) error {
	return createRole(ctx, r.pool, role)
}

func (r *departmentRepository) UpdateRole(ctx context.Context, role *domain.Role) error {
	const query = `
        UPDATE roles SET name=$1, color=$2, updated_at=NOW()
        WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, role.Name, role.Color, role.ID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) DeleteRole(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *departmentRepository) GetRole(ctx context.Context, id string) (*domain.Role, error) {
	const query = `
        SELECT id, department_id, name, color, created_at, updated_at
        FROM roles WHERE id=$1`
	var role domain.Role
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&role.ID, &role.DepartmentID, &role.Name, &role.Color, &role.CreatedAt, &role.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *departmentRepository) Materialize(ctx context.Context, departments []domain.Department, roles []domain.Role) (map[string]string, error) {
	mapping := make(map[string]string)
	if len(departments) == 0 && len(roles) == 0 {
		return mapping, nil
	}
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, draft := range departments {
			dept := domain.Department{Name: draft.Name, Color: draft.Color}
			if err := createDepartment(ctx, tx, &dept); err != nil {
				return err
			}
			mapping[draft.ID] = dept.ID
			for _, draftRole := range draft.Roles {
				role := domain.Role{DepartmentID: dept.ID, Name: draftRole.Name, Color: draftRole.Color}
				if err := createRole(ctx, tx, &role); err != nil {
					return err
				}
				mapping[draftRole.ID] = role.ID
			}
		}
		for _, draftRole := range roles {
			role := domain.Role{DepartmentID: draftRole.DepartmentID, Name: draftRole.Name, Color: draftRole.Color}
			if mapped, ok := mapping[role.DepartmentID]; ok {
				role.DepartmentID = mapped
			}
			if err := createRole(ctx, tx, &role); err != nil {
				return err
			}
			mapping[draftRole.ID] = role.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return mapping, nil
}
