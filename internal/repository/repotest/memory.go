// Package repotest provides in-memory repositories for service and handler
// tests. Missing rows report pgx.ErrNoRows like the Postgres implementations.
package repotest

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/repository"
)

var (
	_ repository.UserRepository       = (*Users)(nil)
	_ repository.DepartmentRepository = (*Departments)(nil)
	_ repository.ProcessRepository    = (*Processes)(nil)
	_ repository.RaciRepository       = (*Raci)(nil)
	_ repository.ActivityRepository   = (*Activities)(nil)
)

type sequence struct {
	mu sync.Mutex
	n  int
}

func (s *sequence) next(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return prefix + "-" + strconv.Itoa(s.n)
}

// Users is an in-memory UserRepository.
type Users struct {
	mu    sync.Mutex
	seq   sequence
	users []domain.User
}

func (r *Users) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.seq.next("user")
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users = append(r.users, *user)
	return nil
}

func (r *Users) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.users {
		if r.users[i].ID == user.ID {
			user.UpdatedAt = time.Now().UTC()
			r.users[i] = *user
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *Users) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *Users) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *Users) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

// Departments is an in-memory DepartmentRepository. Roles are stored inside
// their department, in insertion order.
type Departments struct {
	mu          sync.Mutex
	seq         sequence
	departments []domain.Department
}

// Seed stores departments as given, ids included.
func (r *Departments) Seed(departments ...domain.Department) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.departments = append(r.departments, domain.CloneDepartments(departments)...)
}

func (r *Departments) Create(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.create(dept)
	return nil
}

func (r *Departments) create(dept *domain.Department) {
	dept.ID = r.seq.next("dept")
	dept.CreatedAt = time.Now().UTC()
	dept.UpdatedAt = dept.CreatedAt
	if dept.Roles == nil {
		dept.Roles = []domain.Role{}
	}
	r.departments = append(r.departments, domain.CloneDepartments([]domain.Department{*dept})...)
}

func (r *Departments) Update(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.departments {
		if r.departments[i].ID == dept.ID {
			r.departments[i].Name = dept.Name
			r.departments[i].Color = dept.Color
			r.departments[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *Departments) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.departments {
		if r.departments[i].ID == id {
			r.departments = append(r.departments[:i], r.departments[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *Departments) GetByID(_ context.Context, id string) (*domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dept := range r.departments {
		if dept.ID == id {
			out := domain.CloneDepartments([]domain.Department{dept})[0]
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *Departments) List(context.Context) ([]domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.CloneDepartments(r.departments), nil
}

func (r *Departments) CreateRole(_ context.Context, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createRole(role)
}

func (r *Departments) createRole(role *domain.Role) error {
	for i := range r.departments {
		if r.departments[i].ID == role.DepartmentID {
			role.ID = r.seq.next("role")
			role.CreatedAt = time.Now().UTC()
			role.UpdatedAt = role.CreatedAt
			r.departments[i].Roles = append(r.departments[i].Roles, *role)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *Departments) UpdateRole(_ context.Context, role *domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.departments {
		for j := range r.departments[i].Roles {
			if r.departments[i].Roles[j].ID == role.ID {
				r.departments[i].Roles[j].Name = role.Name
				r.departments[i].Roles[j].Color = role.Color
				return nil
			}
		}
	}
	return pgx.ErrNoRows
}

func (r *Departments) DeleteRole(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.departments {
		roles := r.departments[i].Roles
		for j := range roles {
			if roles[j].ID == id {
				r.departments[i].Roles = append(roles[:j:j], roles[j+1:]...)
				return nil
			}
		}
	}
	return pgx.ErrNoRows
}

func (r *Departments) GetRole(_ context.Context, id string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dept := range r.departments {
		if role, ok := dept.RoleByID(id); ok {
			return &role, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *Departments) Materialize(_ context.Context, departments []domain.Department, roles []domain.Role) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mapping := make(map[string]string)
	for _, draft := range departments {
		dept := domain.Department{Name: draft.Name, Color: draft.Color}
		r.create(&dept)
		mapping[draft.ID] = dept.ID
		for _, draftRole := range draft.Roles {
			role := domain.Role{DepartmentID: dept.ID, Name: draftRole.Name, Color: draftRole.Color}
			if err := r.createRole(&role); err != nil {
				return nil, err
			}
			mapping[draftRole.ID] = role.ID
		}
	}
	for _, draftRole := range roles {
		role := domain.Role{DepartmentID: draftRole.DepartmentID, Name: draftRole.Name, Color: draftRole.Color}
		if mapped, ok := mapping[role.DepartmentID]; ok {
			role.DepartmentID = mapped
		}
		if err := r.createRole(&role); err != nil {
			return nil, err
		}
		mapping[draftRole.ID] = role.ID
	}
	return mapping, nil
}

// Processes is an in-memory ProcessRepository. Steps are stored as JSON so
// callers never share memory with the store.
type Processes struct {
	mu    sync.Mutex
	seq   sequence
	rows  []processRow
	clock time.Time
}

type processRow struct {
	process domain.Process
	steps   []byte
}

// tick returns strictly increasing timestamps so revisions always differ.
func (r *Processes) tick() time.Time {
	now := time.Now().UTC()
	if !now.After(r.clock) {
		now = r.clock.Add(time.Microsecond)
	}
	r.clock = now
	return now
}

func (r *Processes) Create(_ context.Context, process *domain.Process, _ string) error {
	steps, err := json.Marshal(process.Steps)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	process.ID = r.seq.next("process")
	process.CreatedAt = r.tick()
	process.UpdatedAt = process.CreatedAt
	r.rows = append(r.rows, processRow{process: domain.Process{ID: process.ID, Title: process.Title, CreatedAt: process.CreatedAt, UpdatedAt: process.UpdatedAt}, steps: steps})
	return nil
}

func (r *Processes) Update(_ context.Context, process *domain.Process) error {
	steps, err := json.Marshal(process.Steps)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].process.ID == process.ID {
			process.UpdatedAt = r.tick()
			r.rows[i].process.Title = process.Title
			r.rows[i].process.UpdatedAt = process.UpdatedAt
			r.rows[i].steps = steps
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *Processes) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].process.ID == id {
			r.rows = append(r.rows[:i], r.rows[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *Processes) GetByID(_ context.Context, id string) (*domain.Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.process.ID == id {
			p, err := row.decode()
			if err != nil {
				return nil, err
			}
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *Processes) List(context.Context) ([]domain.Process, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Process, 0, len(r.rows))
	for _, row := range r.rows {
		p, err := row.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (row processRow) decode() (domain.Process, error) {
	p := row.process
	if err := json.Unmarshal(row.steps, &p.Steps); err != nil {
		return domain.Process{}, err
	}
	return p, nil
}

// Raci is an in-memory RaciRepository.
type Raci struct {
	mu      sync.Mutex
	seq     sequence
	actions []domain.ManualAction
}

func (r *Raci) CreateAction(_ context.Context, action *domain.ManualAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	action.ID = r.seq.next("action")
	action.Position = 0
	for _, a := range r.actions {
		if a.DepartmentID == action.DepartmentID && a.Position >= action.Position {
			action.Position = a.Position + 1
		}
	}
	action.CreatedAt = time.Now().UTC()
	action.UpdatedAt = action.CreatedAt
	if action.Cells == nil {
		action.Cells = map[string]domain.Responsibility{}
	}
	r.actions = append(r.actions, copyAction(*action))
	return nil
}

func (r *Raci) UpdateAction(_ context.Context, action *domain.ManualAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.actions {
		if r.actions[i].ID == action.ID {
			r.actions[i].Label = action.Label
			r.actions[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *Raci) DeleteAction(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.actions {
		if r.actions[i].ID == id {
			r.actions = append(r.actions[:i], r.actions[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *Raci) GetAction(_ context.Context, id string) (*domain.ManualAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.actions {
		if a.ID == id {
			out := copyAction(a)
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *Raci) ListActions(_ context.Context, departmentID string) ([]domain.ManualAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ManualAction{}
	for _, a := range r.actions {
		if departmentID == "" || a.DepartmentID == departmentID {
			out = append(out, copyAction(a))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *Raci) SetCell(_ context.Context, actionID, roleID string, letter domain.Responsibility) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.actions {
		if r.actions[i].ID == actionID {
			if letter == domain.ResponsibilityNone {
				delete(r.actions[i].Cells, roleID)
			} else {
				r.actions[i].Cells[roleID] = letter
			}
			return nil
		}
	}
	return pgx.ErrNoRows
}

func copyAction(a domain.ManualAction) domain.ManualAction {
	cells := make(map[string]domain.Responsibility, len(a.Cells))
	for k, v := range a.Cells {
		cells[k] = v
	}
	a.Cells = cells
	return a
}

// Activities is an in-memory ActivityRepository.
type Activities struct {
	mu      sync.Mutex
	seq     sequence
	entries []domain.Activity
}

func (r *Activities) Create(_ context.Context, activity *domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	activity.ID = r.seq.next("activity")
	activity.CreatedAt = time.Now().UTC()
	r.entries = append(r.entries, *activity)
	return nil
}

func (r *Activities) ListBySubject(_ context.Context, subjectID string, limit int) ([]domain.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Activity{}
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].SubjectID == subjectID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}
