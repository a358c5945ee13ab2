package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/process-raci/internal/domain"
)

// ProcessRepository persists processes with their steps as one JSONB document.
type ProcessRepository interface {
	Create(ctx context.Context, process *domain.Process, createdBy string) error
	// Update overwrites title and steps; the last write wins.
	Update(ctx context.Context, process *domain.Process) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Process, error)
	List(ctx context.Context) ([]domain.Process, error)
}

type processRepository struct {
	pool *pgxpool.Pool
}

// NewProcessRepository instantiates repository.
func NewProcessRepository(pool *pgxpool.Pool) ProcessRepository {
	return &processRepository{pool: pool}
}

func (r *processRepository) Create(ctx context.Context, process *domain.Process, createdBy string) error {
	steps, err := json.Marshal(process.Steps)
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}
	const query = `
        INSERT INTO processes (title, steps, created_by)
        VALUES ($1, $2, NULLIF($3, ''))
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, process.Title, steps, createdBy).
		Scan(&process.ID, &process.CreatedAt, &process.UpdatedAt)
}

func (r *processRepository) Update(ctx context.Context, process *domain.Process) error {
	steps, err := json.Marshal(process.Steps)
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}
	const query = `
        UPDATE processes SET title=$1, steps=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, process.Title, steps, process.ID).Scan(&process.UpdatedAt)
}

func (r *processRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM processes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *processRepository) GetByID(ctx context.Context, id string) (*domain.Process, error) {
	const query = `
        SELECT id, title, steps, created_at, updated_at
        FROM processes WHERE id=$1`
	return scanProcess(r.pool.QueryRow(ctx, query, id))
}

func (r *processRepository) List(ctx context.Context) ([]domain.Process, error) {
	const query = `
        SELECT id, title, steps, created_at, updated_at
        FROM processes ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Process{}
	for rows.Next() {
		process, err := scanProcess(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *process)
	}
	return result, rows.Err()
}

func scanProcess(row pgx.Row) (*domain.Process, error) {
	var (
		process domain.Process
		raw     []byte
	)
	if err := row.Scan(&process.ID, &process.Title, &raw, &process.CreatedAt, &process.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &process.Steps); err != nil {
		return nil, fmt.Errorf("decode steps of process %s: %w", process.ID, err)
	}
	return &process, nil
}
