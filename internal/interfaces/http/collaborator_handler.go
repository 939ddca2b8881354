package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dailyprofit-api/internal/application/collab"
	"github.com/jhoicas/dailyprofit-api/internal/application/dto"
	"github.com/jhoicas/dailyprofit-api/internal/domain"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
)

// CollaboratorHandler maneja invitaciones y el roster de colaboradores.
type CollaboratorHandler struct {
	uc       *collab.CollabUseCase
	userRepo repository.UserRepository
}

// NewCollaboratorHandler construye el handler de colaboración.
func NewCollaboratorHandler(uc *collab.CollabUseCase, userRepo repository.UserRepository) *CollaboratorHandler {
	return &CollaboratorHandler{uc: uc, userRepo: userRepo}
}

// GenerateInvite emite un código de 6 dígitos de un solo uso (invalida el anterior).
func (h *CollaboratorHandler) GenerateInvite(c *fiber.Ctx) error {
	out, err := h.uc.GenerateInvite(c.Context(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return collabError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Join une al usuario autenticado a un negocio usando un código vigente.
func (h *CollaboratorHandler) Join(c *fiber.Ctx) error {
	var in dto.JoinRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Code) != 6 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el código debe tener 6 dígitos"})
	}
	user, err := h.userRepo.FindByID(GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario no encontrado"})
	}
	b, err := h.uc.Join(c.Context(), user, in.Code)
	if err != nil {
		return collabError(c, err)
	}
	return c.JSON(dto.JoinResponse{Business: *b})
}

// UpdateCollaborator cambia rol, estado u override de permisos de un colaborador.
func (h *CollaboratorHandler) UpdateCollaborator(c *fiber.Ctx) error {
	var in dto.UpdateCollaboratorRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	b, err := h.uc.UpdateCollaborator(c.Context(), GetIdentity(c), c.Params("id"), c.Params("userId"), in)
	if err != nil {
		return collabError(c, err)
	}
	return c.JSON(b)
}

// RemoveCollaborator saca a un colaborador del roster (nunca al dueño).
func (h *CollaboratorHandler) RemoveCollaborator(c *fiber.Ctx) error {
	b, err := h.uc.RemoveCollaborator(c.Context(), GetIdentity(c), c.Params("id"), c.Params("userId"))
	if err != nil {
		return collabError(c, err)
	}
	return c.JSON(b)
}

// Leave permite al usuario autenticado abandonar un negocio ajeno.
func (h *CollaboratorHandler) Leave(c *fiber.Ctx) error {
	if err := h.uc.Leave(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return collabError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// collabError mapea errores de colaboración a status HTTP.
func collabError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInviteExpired):
		return c.Status(fiber.StatusGone).JSON(dto.ErrorResponse{Code: "INVITE_EXPIRED", Message: "código inválido o vencido"})
	case errors.Is(err, domain.ErrAlreadyCollaborator):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_COLLABORATOR", Message: "ya eres colaborador de este negocio"})
	case errors.Is(err, domain.ErrManagerLimit):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "MANAGER_LIMIT", Message: "el plan del negocio no admite más colaboradores"})
	case errors.Is(err, domain.ErrVersionMismatch):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "VERSION_CONFLICT", Message: "el roster cambió, reintenta"})
	case errors.Is(err, domain.ErrBusinessNotFound), errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "negocio no encontrado"})
	case errors.Is(err, domain.ErrForbidden):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: "sin permiso para esta operación"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
