package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/dailyprofit-api/internal/application/dto"
	"github.com/jhoicas/dailyprofit-api/internal/application/sync"
	"github.com/jhoicas/dailyprofit-api/internal/domain"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
)

// SyncHandler expone el reconciliador remoto: recibe la cosecha del
// dispositivo y responde 200 (aceptado) o 409 (conflicto recuperable).
type SyncHandler struct {
	uc       *sync.ReconcileUseCase
	userRepo repository.UserRepository
}

// NewSyncHandler construye el handler de sync.
func NewSyncHandler(uc *sync.ReconcileUseCase, userRepo repository.UserRepository) *SyncHandler {
	return &SyncHandler{uc: uc, userRepo: userRepo}
}

// Sync evalúa el payload contra el estado en nube del usuario autenticado.
// El plan se relee de la BD (no del token) para que un upgrade reciente cuente.
func (h *SyncHandler) Sync(c *fiber.Ctx) error {
	var payload dto.SyncPayload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	owner, err := h.userRepo.FindByID(GetUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if owner == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "usuario no encontrado"})
	}
	result, err := h.uc.Reconcile(c.Context(), owner, payload)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_RESOLUTION", Message: "resolución de conflicto desconocida"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if result.Conflict != nil {
		return c.Status(fiber.StatusConflict).JSON(result.Conflict)
	}
	return c.JSON(result.Accepted)
}
