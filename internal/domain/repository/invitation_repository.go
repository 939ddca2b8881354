package repository

import "github.com/jhoicas/dailyprofit-api/internal/domain/entity"

// InvitationRepository define el puerto de persistencia para Invitation (DIP).
// Un negocio tiene a lo sumo un código vigente: Replace descarta el anterior.
type InvitationRepository interface {
	// Replace guarda el código del negocio invalidando cualquier código previo.
	Replace(inv *entity.Invitation) error
	GetByCode(code string) (*entity.Invitation, error)
	// Delete consume el código (un solo uso). No es error si ya no existe.
	Delete(code string) error
	DeleteByBusiness(businessID string) error
}
