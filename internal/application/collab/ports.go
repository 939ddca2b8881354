package collab

import (
	"context"

	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de negocio e invitación atados a esa tx. El join es una unidad
// atómica: validar código, insertar membresía y consumir la invitación.
type TxRunner interface {
	RunCollab(ctx context.Context, fn func(
		bizRepo repository.BusinessRepository,
		inviteRepo repository.InvitationRepository,
	) error) error
}
