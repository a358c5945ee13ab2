package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/events"
	"github.com/spec-kit/process-raci/internal/graph"
	"github.com/spec-kit/process-raci/internal/palette"
	"github.com/spec-kit/process-raci/internal/registry"
	"github.com/spec-kit/process-raci/internal/repository"
	apperrors "github.com/spec-kit/process-raci/pkg/util/errorutil"
)

// OrgService manages departments and roles.
type OrgService struct {
	departments repository.DepartmentRepository
	processes   repository.ProcessRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// OrgDependencies bundles repositories for the org service.
type OrgDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	ProcessRepo    repository.ProcessRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewOrgService constructs the service.
func NewOrgService(deps OrgDependencies) *OrgService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrgService{
		departments: deps.DepartmentRepo,
		processes:   deps.ProcessRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// EntityInput carries a name and an optional color.
type EntityInput struct {
	Name  string
	Color string
}

// EntityPatch carries optional changes.
type EntityPatch struct {
	Name  *string
	Color *string
}

// ListDepartments returns the organization chart.
func (s *OrgService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, mapError(err, "department")
	}
	return departments, nil
}

// GetDepartment returns one department with its roles.
func (s *OrgService) GetDepartment(ctx context.Context, id string) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "department")
	}
	return dept, nil
}

// CreateDepartment adds a department. An empty color is taken from the palette.
func (s *OrgService) CreateDepartment(ctx context.Context, actorID string, input EntityInput) (*domain.Department, error) {
	name, err := entityName(input.Name)
	if err != nil {
		return nil, err
	}
	existing, err := s.departments.List(ctx)
	if err != nil {
		return nil, mapError(err, "department")
	}
	color, err := entityColor(input.Color, func() string { return palette.New(nil, colorOffset(existing)).Next() })
	if err != nil {
		return nil, err
	}

	dept := &domain.Department{Name: name, Color: color, Roles: []domain.Role{}}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, mapError(err, "department")
	}
	s.publish(ctx, actorID, dept.ID, "department", "created")
	return dept, nil
}

// UpdateDepartment renames or recolors a department.
func (s *OrgService) UpdateDepartment(ctx context.Context, actorID, id string, patch EntityPatch) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "department")
	}
	if patch.Name != nil {
		if dept.Name, err = entityName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Color != nil {
		if dept.Color, err = entityColor(*patch.Color, nil); err != nil {
			return nil, err
		}
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, mapError(err, "department")
	}
	s.publish(ctx, actorID, dept.ID, "department", "updated")
	return dept, nil
}

// DeleteDepartment removes a department with its roles and clears every step
// reference to them.
func (s *OrgService) DeleteDepartment(ctx context.Context, actorID, id string) error {
	if err := s.departments.Delete(ctx, id); err != nil {
		return mapError(err, "department")
	}
	if err := s.reconcile(ctx); err != nil {
		return err
	}
	s.publish(ctx, actorID, id, "department", "deleted")
	return nil
}

// CreateRole adds a role to a department. An empty color is taken from the palette.
func (s *OrgService) CreateRole(ctx context.Context, actorID, departmentID string, input EntityInput) (*domain.Role, error) {
	name, err := entityName(input.Name)
	if err != nil {
		return nil, err
	}
	existing, err := s.departments.List(ctx)
	if err != nil {
		return nil, mapError(err, "department")
	}
	if _, ok := registry.New(existing).Department(departmentID); !ok {
		return nil, apperrors.NewNotFound("department", map[string]any{"id": departmentID})
	}
	color, err := entityColor(input.Color, func() string { return palette.New(nil, colorOffset(existing)).Next() })
	if err != nil {
		return nil, err
	}

	role := &domain.Role{DepartmentID: departmentID, Name: name, Color: color}
	if err := s.departments.CreateRole(ctx, role); err != nil {
		return nil, mapError(err, "role")
	}
	s.publish(ctx, actorID, role.ID, "role", "created")
	return role, nil
}

// UpdateRole renames or recolors a role.
func (s *OrgService) UpdateRole(ctx context.Context, actorID, id string, patch EntityPatch) (*domain.Role, error) {
	role, err := s.departments.GetRole(ctx, id)
	if err != nil {
		return nil, mapError(err, "role")
	}
	if patch.Name != nil {
		if role.Name, err = entityName(*patch.Name); err != nil {
			return nil, err
		}
	}
	if patch.Color != nil {
		if role.Color, err = entityColor(*patch.Color, nil); err != nil {
			return nil, err
		}
	}
	if err := s.departments.UpdateRole(ctx, role); err != nil {
		return nil, mapError(err, "role")
	}
	s.publish(ctx, actorID, role.ID, "role", "updated")
	return role, nil
}

// DeleteRole removes a role and clears every step reference to it.
func (s *OrgService) DeleteRole(ctx context.Context, actorID, id string) error {
	if err := s.departments.DeleteRole(ctx, id); err != nil {
		return mapError(err, "role")
	}
	if err := s.reconcile(ctx); err != nil {
		return err
	}
	s.publish(ctx, actorID, id, "role", "deleted")
	return nil
}

// reconcile normalizes every process against the current organization chart
// and persists the ones whose references changed.
func (s *OrgService) reconcile(ctx context.Context) error {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return mapError(err, "department")
	}
	processes, err := s.processes.List(ctx)
	if err != nil {
		return mapError(err, "process")
	}
	reg := registry.New(departments)
	for i := range processes {
		p := &processes[i]
		normalized, err := graph.Normalize(p.Steps, reg)
		if err != nil {
			s.logger.Warn("skipping malformed process", zap.String("process_id", p.ID), zap.Error(err))
			continue
		}
		if stepsEqual(p.Steps, normalized) {
			continue
		}
		p.Steps = normalized
		if err := s.processes.Update(ctx, p); err != nil {
			return mapError(err, "process")
		}
		s.logger.Info("process references cleared", zap.String("process_id", p.ID))
		publish(ctx, s.dispatcher, s.logger, events.New(events.EventProcessSaved, p.ID, "", events.ProcessSavedPayload{
			Title: p.Title,
			Steps: len(p.Steps),
		}))
	}
	return nil
}

func (s *OrgService) publish(ctx context.Context, actorID, subjectID, entity, action string) {
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventOrgChanged, subjectID, actorID, events.OrgChangedPayload{
		Entity: entity,
		Action: action,
	}))
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func entityName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", apperrors.NewValidationError("name is required", nil)
	}
	return name, nil
}

// entityColor normalizes color; an empty value is replaced by auto when given.
func entityColor(color string, auto func() string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		if auto == nil {
			return "", apperrors.NewValidationError("color is required", nil)
		}
		return auto(), nil
	}
	if !palette.Valid(color) {
		return "", apperrors.NewValidationError("color must be a 3 or 6 digit hex value", map[string]any{"color": color})
	}
	return palette.NormalizeHex(color, palette.Neutral), nil
}

// colorOffset starts the palette after the colors already handed out.
func colorOffset(departments []domain.Department) int {
	n := len(departments)
	for _, dept := range departments {
		n += len(dept.Roles)
	}
	return n
}

func stepsEqual(a, b []domain.Step) bool {
	ja, errA := json.Marshal(domain.Steps(a))
	jb, errB := json.Marshal(domain.Steps(b))
	return errA == nil && errB == nil && bytes.Equal(ja, jb)
}
