package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/process-raci/internal/api/dto"
	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/graph"
	"github.com/spec-kit/process-raci/internal/service"
	apperrors "github.com/spec-kit/process-raci/pkg/util/errorutil"
)

// ProcessesHandler exposes process editing, diagrams and proposals.
type ProcessesHandler struct {
	service  *service.ProcessService
	activity *service.ActivityService
}

// NewProcessesHandler constructs handler.
func NewProcessesHandler(processService *service.ProcessService, activityService *service.ActivityService) *ProcessesHandler {
	return &ProcessesHandler{service: processService, activity: activityService}
}

// List GET /api/processes.
func (h *ProcessesHandler) List(c *fiber.Ctx) error {
	processes, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	if processes == nil {
		processes = []domain.Process{}
	}
	return c.JSON(fiber.Map{"data": processes})
}

// Get GET /api/processes/:id.
func (h *ProcessesHandler) Get(c *fiber.Ctx) error {
	p, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": p})
}

// Create POST /api/processes.
func (h *ProcessesHandler) Create(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.CreateProcessRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	p, err := h.service.Create(c.UserContext(), actor, req.Title, req.Steps)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": p})
}

// Update PUT /api/processes/:id.
func (h *ProcessesHandler) Update(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProcessRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	p, err := h.service.Update(c.UserContext(), actor, c.Params("id"), req.Title, req.Steps)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": p})
}

// Delete DELETE /api/processes/:id.
func (h *ProcessesHandler) Delete(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// InsertStep POST /api/processes/:id/steps.
func (h *ProcessesHandler) InsertStep(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.InsertStepRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	p, step, err := h.service.InsertStep(c.UserContext(), actor, c.Params("id"), req.Index, service.StepInput{
		Type:                req.Type,
		Label:               req.Label,
		DepartmentID:        req.DepartmentID,
		RoleID:              req.RoleID,
		DraftDepartmentName: req.DraftDepartmentName,
		DraftRoleName:       req.DraftRoleName,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": p, "meta": fiber.Map{"stepId": step.StepID()}})
}

// UpdateStep PUT /api/processes/:id/steps/:stepId.
func (h *ProcessesHandler) UpdateStep(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStepRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	p, err := h.service.UpdateStep(c.UserContext(), actor, c.Params("id"), c.Params("stepId"), service.StepInput{
		Type:                req.Type,
		Label:               req.Label,
		DepartmentID:        req.DepartmentID,
		RoleID:              req.RoleID,
		DraftDepartmentName: req.DraftDepartmentName,
		DraftRoleName:       req.DraftRoleName,
		ClearAssignment:     req.ClearAssignment,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": p})
}

// RemoveStep DELETE /api/processes/:id/steps/:stepId.
func (h *ProcessesHandler) RemoveStep(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	p, err := h.service.RemoveStep(c.UserContext(), actor, c.Params("id"), c.Params("stepId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": p})
}

// MoveStep POST /api/processes/:id/steps/move.
func (h *ProcessesHandler) MoveStep(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.MoveStepRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	p, err := h.service.MoveStep(c.UserContext(), actor, c.Params("id"), req.From, req.To)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": p})
}

// SetBranch PUT /api/processes/:id/steps/:stepId/branches.
func (h *ProcessesHandler) SetBranch(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.BranchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	p, err := h.service.SetBranch(c.UserContext(), actor, c.Params("id"), c.Params("stepId"), graph.Branch(req.Branch), req.TargetID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": p})
}

// Diagram GET /api/processes/:id/diagram?direction=TD|LR&lanes=true.
func (h *ProcessesHandler) Diagram(c *fiber.Ctx) error {
	req := service.DiagramRequest{Direction: c.Query("direction")}
	if raw := c.Query("lanes"); raw != "" {
		lanes, err := strconv.ParseBool(raw)
		if err != nil {
			return apperrors.NewValidationError("lanes must be a boolean", map[string]any{"lanes": raw})
		}
		req.ShowLanes = &lanes
	}
	d, err := h.service.Diagram(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": d})
}

// Propose POST /api/processes/:id/proposal.
func (h *ProcessesHandler) Propose(c *fiber.Ctx) error {
	var req dto.ProposalRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	preview, err := h.service.Propose(c.UserContext(), c.Params("id"), req.Instruction)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": preview})
}

// ApplyProposal POST /api/processes/:id/proposal/apply.
func (h *ProcessesHandler) ApplyProposal(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.ApplyProposalRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	p, err := h.service.ApplyProposal(c.UserContext(), actor, c.Params("id"), domain.ProcessCandidate{
		Title: req.Title,
		Steps: req.Steps,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": p})
}

// History GET /api/processes/:id/history?limit=50.
func (h *ProcessesHandler) History(c *fiber.Ctx) error {
	if _, err := h.service.Get(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	entries, err := h.activity.History(c.UserContext(), c.Params("id"), c.QueryInt("limit", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}
