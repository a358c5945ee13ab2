package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/process-raci/internal/cache"
	"github.com/spec-kit/process-raci/internal/config"
	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/events"
	"github.com/spec-kit/process-raci/internal/observability"
	"github.com/spec-kit/process-raci/internal/raci"
	"github.com/spec-kit/process-raci/internal/repository"
	apperrors "github.com/spec-kit/process-raci/pkg/util/errorutil"
)

const overviewView = "overview"

// RaciService builds responsibility matrices and manages manual actions.
type RaciService struct {
	processes   repository.ProcessRepository
	departments repository.DepartmentRepository
	actions     repository.RaciRepository
	cache       cache.Store
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	cfg         config.RaciConfig
}

// RaciDependencies bundles collaborators of the RACI service.
type RaciDependencies struct {
	ProcessRepo    repository.ProcessRepository
	DepartmentRepo repository.DepartmentRepository
	RaciRepo       repository.RaciRepository
	Cache          cache.Store
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// NewRaciService constructs the service.
func NewRaciService(cfg config.RaciConfig, deps RaciDependencies) *RaciService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := deps.Cache
	if store == nil {
		store = cache.NewRedisStore(nil, "")
	}
	return &RaciService{
		processes:   deps.ProcessRepo,
		departments: deps.DepartmentRepo,
		actions:     deps.RaciRepo,
		cache:       store,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		cfg:         cfg,
	}
}

// Overview is the organization-wide RACI view.
type Overview struct {
	Summary     []raci.DepartmentIssues `json:"summary"`
	Departments []raci.DepartmentMatrix `json:"departments"`
}

// ExportFile is a rendered matrix ready to download.
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// Overview returns every department matrix with its issue summary.
func (s *RaciService) Overview(ctx context.Context) (*Overview, error) {
	key := cache.RaciKey(overviewView)
	var cached Overview
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("raci cache read failed", zap.Error(err))
	}

	in, err := s.input(ctx, "")
	if err != nil {
		return nil, err
	}
	matrices := raci.Build(in)
	overview := &Overview{Summary: raci.Summarize(matrices), Departments: matrices}

	issues := make(map[string]int, len(overview.Summary))
	for _, d := range overview.Summary {
		issues[d.DepartmentName] = d.Issues
	}
	s.metrics.RecordRaciBuild(issues)

	if err := s.cache.Set(ctx, key, overview, config.TTL(s.cfg.CacheTTLSeconds)); err != nil {
		s.logger.Warn("raci cache write failed", zap.Error(err))
	}
	return overview, nil
}

// Department returns the matrix of one department.
func (s *RaciService) Department(ctx context.Context, departmentID string) (*raci.DepartmentMatrix, error) {
	in, err := s.input(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	m, ok := raci.BuildDepartment(in, departmentID)
	if !ok {
		return nil, apperrors.NewNotFound("department", map[string]any{"id": departmentID})
	}
	return &m, nil
}

// Export renders the matrix of one department in the given format.
func (s *RaciService) Export(ctx context.Context, departmentID, format string) (*ExportFile, error) {
	f, ok := raci.ParseFormat(format)
	if !ok {
		return nil, apperrors.NewValidationError("unsupported export format", map[string]any{
			"format":  format,
			"allowed": []string{"csv", "md", "html", "xlsx"},
		})
	}
	m, err := s.Department(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	body, err := raci.Export(*m, f)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &ExportFile{
		Name:        fileName(m.DepartmentName) + "-raci" + f.Extension(),
		ContentType: f.ContentType(),
		Body:        body,
	}, nil
}

// CreateAction appends a manual action to a department.
func (s *RaciService) CreateAction(ctx context.Context, actorID, departmentID, label string) (*domain.ManualAction, error) {
	label, err := actionLabel(label)
	if err != nil {
		return nil, err
	}
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		return nil, mapError(err, "department")
	}
	action := &domain.ManualAction{DepartmentID: departmentID, Label: label, Cells: map[string]domain.Responsibility{}}
	if err := s.actions.CreateAction(ctx, action); err != nil {
		return nil, mapError(err, "action")
	}
	s.publish(ctx, actorID, action)
	return action, nil
}

// RenameAction changes the label of a manual action.
func (s *RaciService) RenameAction(ctx context.Context, actorID, id, label string) (*domain.ManualAction, error) {
	label, err := actionLabel(label)
	if err != nil {
		return nil, err
	}
	action, err := s.actions.GetAction(ctx, id)
	if err != nil {
		return nil, mapError(err, "action")
	}
	action.Label = label
	if err := s.actions.UpdateAction(ctx, action); err != nil {
		return nil, mapError(err, "action")
	}
	s.publish(ctx, actorID, action)
	return action, nil
}

// DeleteAction removes a manual action with its cells.
func (s *RaciService) DeleteAction(ctx context.Context, actorID, id string) error {
	action, err := s.actions.GetAction(ctx, id)
	if err != nil {
		return mapError(err, "action")
	}
	if err := s.actions.DeleteAction(ctx, id); err != nil {
		return mapError(err, "action")
	}
	s.publish(ctx, actorID, action)
	return nil
}

// SetCell sets or clears the letter of one role on a manual action.
func (s *RaciService) SetCell(ctx context.Context, actorID, actionID, roleID string, letter domain.Responsibility) (*domain.ManualAction, error) {
	letter = domain.Responsibility(strings.ToUpper(strings.TrimSpace(string(letter))))
	action, err := s.actions.GetAction(ctx, actionID)
	if err != nil {
		return nil, mapError(err, "action")
	}
	dept, err := s.departments.GetByID(ctx, action.DepartmentID)
	if err != nil {
		return nil, mapError(err, "department")
	}
	updated, err := raci.SetCell(*action, *dept, roleID, letter)
	if err != nil {
		return nil, mapError(err, "action")
	}
	if err := s.actions.SetCell(ctx, actionID, roleID, letter); err != nil {
		return nil, mapError(err, "action")
	}
	s.publish(ctx, actorID, &updated)
	return &updated, nil
}

func (s *RaciService) input(ctx context.Context, departmentID string) (raci.Input, error) {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return raci.Input{}, mapError(err, "department")
	}
	processes, err := s.processes.List(ctx)
	if err != nil {
		return raci.Input{}, mapError(err, "process")
	}
	manual, err := s.actions.ListActions(ctx, departmentID)
	if err != nil {
		return raci.Input{}, mapError(err, "action")
	}
	return raci.Input{
		Departments: departments,
		Sources:     [][]domain.RoleActions{raci.DeriveRoleActions(processes, departments)},
		Manual:      manual,
		Locale:      s.cfg.Locale,
	}, nil
}

func (s *RaciService) publish(ctx context.Context, actorID string, action *domain.ManualAction) {
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventRaciChanged, action.ID, actorID, events.RaciChangedPayload{
		DepartmentID: action.DepartmentID,
		ActionID:     action.ID,
	}))
}

func actionLabel(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", apperrors.NewValidationError("label is required", nil)
	}
	return label, nil
}

// fileName keeps letters, digits and dashes of name.
func fileName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "department"
	}
	return out
}
