package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/process-raci/internal/api/dto"
	"github.com/spec-kit/process-raci/internal/service"
)

// RaciHandler serves responsibility matrices and manual actions.
type RaciHandler struct {
	service *service.RaciService
}

// NewRaciHandler constructs handler.
func NewRaciHandler(raciService *service.RaciService) *RaciHandler {
	return &RaciHandler{service: raciService}
}

// Overview GET /api/raci.
func (h *RaciHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.service.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": overview})
}

// Department GET /api/raci/departments/:id.
func (h *RaciHandler) Department(c *fiber.Ctx) error {
	m, err := h.service.Department(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": m})
}

// Export GET /api/raci/departments/:id/export?format=csv|md|html|xlsx.
func (h *RaciHandler) Export(c *fiber.Ctx) error {
	file, err := h.service.Export(c.UserContext(), c.Params("id"), c.Query("format", "csv"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Send(file.Body)
}

// CreateAction POST /api/raci/departments/:id/actions.
func (h *RaciHandler) CreateAction(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.ActionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	action, err := h.service.CreateAction(c.UserContext(), actor, c.Params("id"), req.Label)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": action})
}

// RenameAction PUT /api/raci/actions/:id.
func (h *RaciHandler) RenameAction(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.ActionRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	action, err := h.service.RenameAction(c.UserContext(), actor, c.Params("id"), req.Label)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": action})
}

// DeleteAction DELETE /api/raci/actions/:id.
func (h *RaciHandler) DeleteAction(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteAction(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// SetCell PUT /api/raci/actions/:id/cells/:roleId.
func (h *RaciHandler) SetCell(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.CellRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	action, err := h.service.SetCell(c.UserContext(), actor, c.Params("id"), c.Params("roleId"), req.Value)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": action})
}
