package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dailyprofit-api/internal/application/business"
	"github.com/jhoicas/dailyprofit-api/internal/application/dto"
	"github.com/jhoicas/dailyprofit-api/internal/domain"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
)

// BusinessHandler maneja el CRUD del perfil de negocio, el PIN y la
// lectura de colecciones anidadas.
type BusinessHandler struct {
	uc       *business.BusinessUseCase
	userRepo repository.UserRepository
}

// NewBusinessHandler construye el handler de negocios.
func NewBusinessHandler(uc *business.BusinessUseCase, userRepo repository.UserRepository) *BusinessHandler {
	return &BusinessHandler{uc: uc, userRepo: userRepo}
}

// List devuelve los negocios donde el usuario es dueño o colaborador.
func (h *BusinessHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListMine(GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(out)
}

// Create da de alta un negocio reclamado por el usuario autenticado.
func (h *BusinessHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBusinessRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if in.Name == "" || in.Currency == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "name y currency son requeridos"})
	}
	owner, err := h.userRepo.FindByID(GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if owner == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario no encontrado"})
	}
	b, err := h.uc.Create(c.Context(), owner, in)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "el negocio ya existe"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(b)
}

// Update edita el perfil del negocio (requiere canEditCompanyProfile).
func (h *BusinessHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateBusinessRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	b, err := h.uc.Update(c.Context(), GetIdentity(c), c.Params("id"), in)
	if err != nil {
		return businessError(c, err)
	}
	return c.JSON(b)
}

// Delete borra el negocio y sus colecciones anidadas (solo el dueño).
func (h *BusinessHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return businessError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SetPin fija o cambia el PIN de bloqueo de transacciones.
func (h *BusinessHandler) SetPin(c *fiber.Ctx) error {
	var in dto.SetPinRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Pin) != 4 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "el PIN debe tener 4 dígitos"})
	}
	if err := h.uc.SetPin(c.Context(), GetIdentity(c), c.Params("id"), in.Pin); err != nil {
		return businessError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// VerifyPin comprueba el PIN sin exponer el hash.
func (h *BusinessHandler) VerifyPin(c *fiber.Ctx) error {
	var in dto.VerifyPinRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	ok, err := h.uc.VerifyPin(c.Context(), c.Params("id"), in.Pin)
	if err != nil {
		return businessError(c, err)
	}
	return c.JSON(fiber.Map{"valid": ok})
}

// Data devuelve productos, ventas y gastos de un negocio (post-merge).
func (h *BusinessHandler) Data(c *fiber.Ctx) error {
	out, err := h.uc.Data(c.Context(), GetIdentity(c), c.Params("id"))
	if err != nil {
		return businessError(c, err)
	}
	return c.JSON(out)
}

// businessError mapea errores de dominio a status HTTP.
func businessError(c *fiber.Ctx, err error) error {
	switch {
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
