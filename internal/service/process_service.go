package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/process-raci/internal/cache"
	"github.com/spec-kit/process-raci/internal/config"
	"github.com/spec-kit/process-raci/internal/diagram"
	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/events"
	"github.com/spec-kit/process-raci/internal/graph"
	"github.com/spec-kit/process-raci/internal/observability"
	"github.com/spec-kit/process-raci/internal/palette"
	"github.com/spec-kit/process-raci/internal/proposal"
	"github.com/spec-kit/process-raci/internal/registry"
	"github.com/spec-kit/process-raci/internal/repository"
	apperrors "github.com/spec-kit/process-raci/pkg/util/errorutil"
)

// ProcessService coordinates process editing, saving, diagrams and proposals.
type ProcessService struct {
	processes   repository.ProcessRepository
	departments repository.DepartmentRepository
	proposer    proposal.Proposer
	cache       cache.Store
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	diagramCfg  config.DiagramConfig
}

// ProcessDependencies bundles collaborators of the process service.
type ProcessDependencies struct {
	ProcessRepo    repository.ProcessRepository
	DepartmentRepo repository.DepartmentRepository
	Proposer       proposal.Proposer
	Cache          cache.Store
	Dispatcher     events.Dispatcher
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	Diagram        config.DiagramConfig
}

// NewProcessService constructs the service.
func NewProcessService(deps ProcessDependencies) *ProcessService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := deps.Cache
	if store == nil {
		store = cache.NewRedisStore(nil, "")
	}
	return &ProcessService{
		processes:   deps.ProcessRepo,
		departments: deps.DepartmentRepo,
		proposer:    deps.Proposer,
		cache:       store,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		diagramCfg:  deps.Diagram,
	}
}

// StepInput describes a step to insert or the fields to change on one.
type StepInput struct {
	Type                domain.StepType
	Label               *string
	DepartmentID        *string
	RoleID              *string
	DraftDepartmentName *string
	DraftRoleName       *string
	// ClearAssignment removes department and role references.
	ClearAssignment bool
}

// DiagramRequest selects compilation options; zero values use the defaults.
type DiagramRequest struct {
	Direction string
	ShowLanes *bool
}

// ProposalPreview is a normalized candidate that has not been saved.
type ProposalPreview struct {
	Title            string              `json:"title"`
	Steps            domain.Steps        `json:"steps"`
	DraftDepartments []domain.Department `json:"draftDepartments"`
	DraftRoles       []domain.Role       `json:"draftRoles"`
	Diagram          diagram.Diagram     `json:"diagram"`
}

// List returns every process.
func (s *ProcessService) List(ctx context.Context) ([]domain.Process, error) {
	processes, err := s.processes.List(ctx)
	if err != nil {
		return nil, mapError(err, "process")
	}
	return processes, nil
}

// Get returns one process.
func (s *ProcessService) Get(ctx context.Context, id string) (*domain.Process, error) {
	p, err := s.processes.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "process")
	}
	return p, nil
}

// Create stores a new process. Without steps it starts as [start, finish].
func (s *ProcessService) Create(ctx context.Context, actorID, title string, steps []domain.Step) (*domain.Process, error) {
	title, err := processTitle(title)
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		steps = graph.NewSteps("", "")
	}
	p := &domain.Process{Title: title, Steps: steps}
	if err := s.save(ctx, actorID, p, true); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces title and, when given, steps.
func (s *ProcessService) Update(ctx context.Context, actorID, id string, title *string, steps []domain.Step) (*domain.Process, error) {
	p, err := s.processes.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "process")
	}
	if title != nil {
		if p.Title, err = processTitle(*title); err != nil {
			return nil, err
		}
	}
	if steps != nil {
		p.Steps = steps
	}
	if err := s.save(ctx, actorID, p, false); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a process.
func (s *ProcessService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.processes.Delete(ctx, id); err != nil {
		return mapError(err, "process")
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventProcessDeleted, id, actorID, nil))
	return nil
}

// InsertStep adds a new action or decision at index (clamped between the anchors).
func (s *ProcessService) InsertStep(ctx context.Context, actorID, id string, index int, input StepInput) (*domain.Process, domain.Step, error) {
	var step domain.Step
	switch input.Type {
	case domain.StepTypeAction, "":
		step = graph.NewAction(domain.StringValue(input.Label))
	case domain.StepTypeDecision:
		step = graph.NewDecision(domain.StringValue(input.Label))
	default:
		return nil, nil, apperrors.NewValidationError("only action and decision steps can be inserted", map[string]any{"type": input.Type})
	}
	step = domain.WithAssignment(step, assignmentFrom(input))

	p, err := s.mutate(ctx, actorID, id, func(steps []domain.Step) ([]domain.Step, error) {
		return graph.InsertStep(steps, index, step)
	})
	if err != nil {
		return nil, nil, err
	}
	saved := step
	if i, ok := graph.IndexByID(p.Steps)[step.StepID()]; ok {
		saved = p.Steps[i]
	}
	return p, saved, nil
}

// UpdateStep changes the label, type or assignment of one step.
func (s *ProcessService) UpdateStep(ctx context.Context, actorID, id, stepID string, input StepInput) (*domain.Process, error) {
	return s.mutate(ctx, actorID, id, func(steps []domain.Step) ([]domain.Step, error) {
		var err error
		if input.Type != "" {
			if steps, err = graph.ConvertType(steps, stepID, input.Type); err != nil {
				return nil, err
			}
		}
		if input.Label != nil {
			if steps, err = graph.RenameStep(steps, stepID, strings.TrimSpace(*input.Label)); err != nil {
				return nil, err
			}
		}
		if input.ClearAssignment || input.DepartmentID != nil || input.RoleID != nil ||
			input.DraftDepartmentName != nil || input.DraftRoleName != nil {
			i, ok := graph.IndexByID(steps)[stepID]
			if !ok {
				return nil, fmt.Errorf("%w: %q", graph.ErrUnknownStep, stepID)
			}
			if domain.IsAnchor(steps[i]) {
				return nil, graph.ErrAnchorImmutable
			}
			steps = append([]domain.Step(nil), steps...)
			steps[i] = domain.WithAssignment(steps[i], assignmentFrom(input))
		}
		return steps, nil
	})
}

// RemoveStep deletes a step; branches that targeted it fall through again.
func (s *ProcessService) RemoveStep(ctx context.Context, actorID, id, stepID string) (*domain.Process, error) {
	return s.mutate(ctx, actorID, id, func(steps []domain.Step) ([]domain.Step, error) {
		return graph.RemoveStep(steps, stepID)
	})
}

// MoveStep reorders a step between the anchors.
func (s *ProcessService) MoveStep(ctx context.Context, actorID, id string, from, to int) (*domain.Process, error) {
	return s.mutate(ctx, actorID, id, func(steps []domain.Step) ([]domain.Step, error) {
		moved, ok := graph.MoveStep(steps, from, to)
		if !ok {
			return nil, apperrors.NewValidationError("positions must lie between the start and finish steps",
				map[string]any{"from": from, "to": to, "min": 1, "max": len(steps) - 2})
		}
		return moved, nil
	})
}

// SetBranch points a decision branch at target, or back to the next step when target is nil.
func (s *ProcessService) SetBranch(ctx context.Context, actorID, id, decisionID string, branch graph.Branch, target *string) (*domain.Process, error) {
	return s.mutate(ctx, actorID, id, func(steps []domain.Step) ([]domain.Step, error) {
		return graph.SetBranchTarget(steps, decisionID, branch, target)
	})
}

func (s *ProcessService) mutate(ctx context.Context, actorID, id string, fn func([]domain.Step) ([]domain.Step, error)) (*domain.Process, error) {
	p, err := s.processes.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "process")
	}
	steps, err := fn(graph.Clone(p.Steps))
	if err != nil {
		return nil, mapError(err, "process")
	}
	p.Steps = steps
	if err := s.save(ctx, actorID, p, false); err != nil {
		return nil, err
	}
	return p, nil
}

// save runs the save flow: merge draft entities referenced by name, resolve
// names to draft ids, materialize drafts, remap ids, normalize, persist.
func (s *ProcessService) save(ctx context.Context, actorID string, p *domain.Process, create bool) error {
	departments, err := s.departments.List(ctx)
	if err != nil {
		return mapError(err, "department")
	}

	steps := graph.EnsureIDs(p.Steps)
	if err := graph.Validate(steps); err != nil {
		return mapError(err, "process")
	}
	merged := graph.MergeDraftEntitiesFromSteps(steps, departments, palette.New(nil, colorOffset(departments)))
	steps, err = graph.Normalize(steps, registry.New(merged))
	if err != nil {
		return mapError(err, "process")
	}

	draftDepartments, draftRoles := graph.DraftEntities(merged)
	if len(draftDepartments) > 0 || len(draftRoles) > 0 {
		mapping, err := s.departments.Materialize(ctx, draftDepartments, draftRoles)
		if err != nil {
			return mapError(err, "department")
		}
		steps = graph.RemapEntities(steps, mapping)
		if departments, err = s.departments.List(ctx); err != nil {
			return mapError(err, "department")
		}
		roleCount := len(draftRoles)
		for _, d := range draftDepartments {
			roleCount += len(d.Roles)
		}
		s.metrics.RecordDrafts(len(draftDepartments), roleCount)
		s.logger.Info("draft entities materialized",
			zap.Int("departments", len(draftDepartments)),
			zap.Int("roles", roleCount))
		publish(ctx, s.dispatcher, s.logger, events.New(events.EventOrgChanged, "", actorID, events.OrgChangedPayload{
			Entity: "draft",
			Action: "materialized",
		}))
	}

	final, err := graph.Normalize(steps, registry.New(departments))
	if err != nil {
		return mapError(err, "process")
	}
	repaired := countRepairs(p.Steps, final)
	if repaired > 0 {
		s.logger.Warn("process references repaired", zap.String("process_id", p.ID), zap.Int("count", repaired))
	}
	p.Steps = final

	if create {
		err = s.processes.Create(ctx, p, actorID)
	} else {
		err = s.processes.Update(ctx, p)
	}
	if err != nil {
		return mapError(err, "process")
	}

	s.logger.Info("process saved", zap.String("process_id", p.ID), zap.Int("steps", len(p.Steps)))
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventProcessSaved, p.ID, actorID, events.ProcessSavedPayload{
		Title:              p.Title,
		Steps:              len(p.Steps),
		DraftDepartments:   len(draftDepartments),
		DraftRoles:         len(draftRoles),
		RepairedReferences: repaired,
	}))
	return nil
}

// Diagram compiles the flowchart of a process, served from cache when possible.
func (s *ProcessService) Diagram(ctx context.Context, id string, req DiagramRequest) (diagram.Diagram, error) {
	p, err := s.processes.GetByID(ctx, id)
	if err != nil {
		return diagram.Diagram{}, mapError(err, "process")
	}
	opts := s.diagramOptions(req)

	key := cache.DiagramKey(p.ID, p.UpdatedAt, string(opts.Direction), opts.ShowLanes, opts.LabelWidth)
	var cached diagram.Diagram
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		s.metrics.RecordDiagram(true)
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("diagram cache read failed", zap.Error(err))
	}

	departments, err := s.departments.List(ctx)
	if err != nil {
		return diagram.Diagram{}, mapError(err, "department")
	}
	d, err := diagram.Compile(p.Steps, registry.New(departments), opts)
	if err != nil {
		return diagram.Diagram{}, mapError(err, "process")
	}
	s.metrics.RecordDiagram(false)
	if err := s.cache.Set(ctx, key, d, config.TTL(s.diagramCfg.CacheTTLSeconds)); err != nil {
		s.logger.Warn("diagram cache write failed", zap.Error(err))
	}
	return d, nil
}

func (s *ProcessService) diagramOptions(req DiagramRequest) diagram.Options {
	direction := req.Direction
	if direction == "" {
		direction = s.diagramCfg.Direction
	}
	lanes := s.diagramCfg.ShowLanes
	if req.ShowLanes != nil {
		lanes = *req.ShowLanes
	}
	width := s.diagramCfg.LabelWidth
	if width <= 0 {
		width = diagram.DefaultLabelWidth
	}
	return diagram.Options{Direction: diagram.ParseDirection(direction), ShowLanes: lanes, LabelWidth: width}
}

// Propose asks the proposal endpoint for a rewrite and returns it normalized
// against the organization chart plus the draft entities it introduces.
// Nothing is persisted.
func (s *ProcessService) Propose(ctx context.Context, id, instruction string) (*ProposalPreview, error) {
	if s.proposer == nil {
		return nil, mapError(proposal.ErrDisabled, "process")
	}
	p, err := s.processes.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err, "process")
	}
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, mapError(err, "department")
	}

	started := time.Now()
	candidate, err := s.proposer.Propose(ctx, proposal.Request{
		Instruction: strings.TrimSpace(instruction),
		Process:     *p,
		Departments: departments,
	})
	if err != nil {
		if !errors.Is(err, proposal.ErrDisabled) && !errors.Is(err, proposal.ErrBadResponse) {
			err = fmt.Errorf("%w: %v", proposal.ErrBadResponse, err)
		}
		s.logger.Warn("proposal failed", zap.String("process_id", id), zap.Error(err))
		return nil, mapError(err, "process")
	}
	s.logger.Info("proposal received", zap.String("process_id", id), zap.Duration("latency", time.Since(started)))

	steps := graph.EnsureIDs(candidate.Steps)
	if err := graph.Validate(steps); err != nil {
		return nil, mapError(fmt.Errorf("%w: %v", proposal.ErrBadResponse, err), "process")
	}
	merged := graph.MergeDraftEntitiesFromSteps(steps, departments, palette.New(nil, colorOffset(departments)))
	reg := registry.New(merged)
	steps, err = graph.Normalize(steps, reg)
	if err != nil {
		return nil, mapError(err, "process")
	}
	drafts, draftRoles := graph.DraftEntities(merged)

	title := strings.TrimSpace(candidate.Title)
	if title == "" {
		title = p.Title
	}
	d, err := diagram.Compile(steps, reg, s.diagramOptions(DiagramRequest{}))
	if err != nil {
		return nil, mapError(err, "process")
	}
	if drafts == nil {
		drafts = []domain.Department{}
	}
	if draftRoles == nil {
		draftRoles = []domain.Role{}
	}
	// Draft ids only live in this preview; the returned steps name the
	// drafts so that applying them materializes the same entities.
	return &ProposalPreview{
		Title:            title,
		Steps:            graph.DraftNames(steps, merged),
		DraftDepartments: drafts,
		DraftRoles:       draftRoles,
		Diagram:          d,
	}, nil
}

// ApplyProposal saves a previewed candidate over the process.
func (s *ProcessService) ApplyProposal(ctx context.Context, actorID, id string, candidate domain.ProcessCandidate) (*domain.Process, error) {
	var title *string
	if t := strings.TrimSpace(candidate.Title); t != "" {
		title = &t
	}
	if len(candidate.Steps) == 0 {
		return nil, apperrors.NewValidationError("candidate has no steps", nil)
	}
	p, err := s.Update(ctx, actorID, id, title, candidate.Steps)
	if err != nil {
		return nil, err
	}
	s.logger.Info("proposal applied", zap.String("process_id", id), zap.String("actor_id", actorID))
	return p, nil
}

func processTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.NewValidationError("title is required", nil)
	}
	return title, nil
}

func assignmentFrom(input StepInput) domain.Assignment {
	if input.ClearAssignment {
		return domain.Assignment{}
	}
	return domain.Assignment{
		DepartmentID:        input.DepartmentID,
		RoleID:              input.RoleID,
		DraftDepartmentName: input.DraftDepartmentName,
		DraftRoleName:       input.DraftRoleName,
	}
}

// countRepairs counts branch targets and entity references present in before
// but cleared in after, matched by step id.
func countRepairs(before, after []domain.Step) int {
	index := graph.IndexByID(after)
	n := 0
	for _, step := range before {
		i, ok := index[step.StepID()]
		if !ok {
			continue
		}
		if d, isDecision := step.(domain.DecisionStep); isDecision {
			if nd, ok := after[i].(domain.DecisionStep); ok {
				if d.YesTargetID != nil && *d.YesTargetID != "" && nd.YesTargetID == nil {
					n++
				}
				if d.NoTargetID != nil && *d.NoTargetID != "" && nd.NoTargetID == nil {
					n++
				}
			}
		}
		a, ok := domain.AssignmentOf(step)
		if !ok {
			continue
		}
		na, _ := domain.AssignmentOf(after[i])
		if a.DepartmentID != nil && na.DepartmentID == nil {
			n++
		}
		if a.RoleID != nil && na.RoleID == nil {
			n++
		}
	}
	return n
}
