package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/process-raci/internal/api/dto"
	"github.com/spec-kit/process-raci/internal/domain"
	"github.com/spec-kit/process-raci/internal/service"
)

// OrgHandler manages departments and roles.
type OrgHandler struct {
	service *service.OrgService
}

// NewOrgHandler constructs handler.
func NewOrgHandler(orgService *service.OrgService) *OrgHandler {
	return &OrgHandler{service: orgService}
}

// ListDepartments GET /api/departments.
func (h *OrgHandler) ListDepartments(c *fiber.Ctx) error {
	departments, err := h.service.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	if departments == nil {
		departments = []domain.Department{}
	}
	return c.JSON(fiber.Map{"data": departments})
}

// CreateDepartment POST /api/departments.
func (h *OrgHandler) CreateDepartment(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.EntityRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	dept, err := h.service.CreateDepartment(c.UserContext(), actor, service.EntityInput{Name: req.Name, Color: req.Color})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dept})
}

// UpdateDepartment PUT /api/departments/:id.
func (h *OrgHandler) UpdateDepartment(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.EntityPatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	dept, err := h.service.UpdateDepartment(c.UserContext(), actor, c.Params("id"), service.EntityPatch{Name: req.Name, Color: req.Color})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dept})
}

// DeleteDepartment DELETE /api/departments/:id.
func (h *OrgHandler) DeleteDepartment(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteDepartment(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateRole POST /api/departments/:id/roles.
func (h *OrgHandler) CreateRole(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.EntityRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	role, err := h.service.CreateRole(c.UserContext(), actor, c.Params("id"), service.EntityInput{Name: req.Name, Color: req.Color})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": role})
}

// UpdateRole PUT /api/roles/:id.
func (h *OrgHandler) UpdateRole(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.EntityPatchRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	role, err := h.service.UpdateRole(c.UserContext(), actor, c.Params("id"), service.EntityPatch{Name: req.Name, Color: req.Color})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": role})
}

// DeleteRole DELETE /api/roles/:id.
func (h *OrgHandler) DeleteRole(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteRole(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
