// Package collab gestiona invitaciones y el roster de colaboradores de un
// negocio: emisión de códigos de un solo uso, join atómico y mutaciones del
// roster con compare-and-swap (dos admins pueden editar a la vez).
package collab

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"
	"time"

	"github.com/jhoicas/dailyprofit-api/internal/application/dto"
	"github.com/jhoicas/dailyprofit-api/internal/domain"
	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
	"github.com/jhoicas/dailyprofit-api/internal/domain/permission"
	"github.com/jhoicas/dailyprofit-api/internal/domain/plan"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
	"github.com/jhoicas/dailyprofit-api/pkg/logger"
)

// casRetries intentos ante ErrVersionMismatch en mutaciones del roster.
const casRetries = 3

// CollabUseCase casos de uso de colaboración.
type CollabUseCase struct {
	bizRepo    repository.BusinessRepository
	inviteRepo repository.InvitationRepository
	tx         TxRunner
	expiry     time.Duration
	log        *logger.Logger
	now        func() time.Time
}

// NewCollabUseCase construye el caso de uso. expiry es la ventana fija de
// validez del código de invitación (15 minutos en producción).
func NewCollabUseCase(
	bizRepo repository.BusinessRepository,
	inviteRepo repository.InvitationRepository,
	tx TxRunner,
	expiry time.Duration,
	log *logger.Logger,
) *CollabUseCase {
	return &CollabUseCase{
		bizRepo:    bizRepo,
		inviteRepo: inviteRepo,
		tx:         tx,
		expiry:     expiry,
		log:        log,
		now:        time.Now,
	}
}

// GenerateInvite emite un código de 6 dígitos para un negocio. Regenerar antes
// del vencimiento invalida el código anterior. Exige canManageCollaborators y
// respeta la cuota de managers del plan.
func (uc *CollabUseCase) GenerateInvite(ctx context.Context, actor *permission.Identity, businessID string) (*dto.InviteResponse, error) {
	_ = ctx
	business, err := uc.bizRepo.GetByID(businessID)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, domain.ErrBusinessNotFound
	}
	access := permission.Resolve(actor, business, false)
	if !access.Can(permission.ManageCollaborators) {
		return nil, domain.ErrForbidden
	}
	if business.ManagerCount() >= plan.ManagerQuota(business.Plan) {
		return nil, domain.ErrManagerLimit
	}

	code, err := sixDigitCode()
	if err != nil {
		return nil, err
	}
	expiresAt := uc.now().Add(uc.expiry)
	inv := &entity.Invitation{
		Code:       code,
		BusinessID: business.ID,
		IssuerID:   actor.ID,
		ExpiresAt:  expiresAt,
		CreatedAt:  uc.now(),
	}
	if err := uc.inviteRepo.Replace(inv); err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("business_id", business.ID).
		Str("issuer_id", actor.ID).
		Time("expires_at", expiresAt).
		Msg("código de invitación emitido")
	return &dto.InviteResponse{Code: code, ExpiresAt: expiresAt.UnixMilli()}, nil
}

// Join une al usuario al negocio del código: chequeo-e-inserción atómicos.
// El código se consume en la misma transacción (un solo uso); el nuevo
// colaborador entra con rol MANAGER.
func (uc *CollabUseCase) Join(ctx context.Context, user *entity.User, code string) (*entity.BusinessProfile, error) {
	var joined *entity.BusinessProfile

	err := uc.tx.RunCollab(ctx, func(bizRepo repository.BusinessRepository, inviteRepo repository.InvitationRepository) error {
		inv, err := inviteRepo.GetByCode(code)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrInviteExpired
		}
		if inv.Expired(uc.now()) {
			// El registro vencido se limpia aunque el join falle: se borra por
			// fuera de la tx para que el rollback del rechazo no lo resucite.
			_ = uc.inviteRepo.Delete(code)
			return domain.ErrInviteExpired
		}
		business, err := bizRepo.GetByID(inv.BusinessID)
		if err != nil {
			return err
		}
		if business == nil {
			return domain.ErrInviteExpired
		}
		if business.FindCollaborator(user.ID) != nil {
			return domain.ErrAlreadyCollaborator
		}
		if business.ManagerCount() >= plan.ManagerQuota(business.Plan) {
			return domain.ErrManagerLimit
		}

		name := user.DisplayName
		if name == "" {
			name = "Contributor"
		}
		roster := append(append([]entity.Collaborator{}, business.Collaborators...), entity.Collaborator{
			UserID: user.ID,
			Name:   name,
			Email:  user.Email,
			Role:   entity.RoleManager,
			Status: entity.CollaboratorActive,
		})
		if err := bizRepo.UpdateCollaborators(business.ID, business.Version, roster); err != nil {
			return err
		}
		if err := inviteRepo.Delete(code); err != nil {
			return err
		}
		business.Collaborators = roster
		joined = business
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("business_id", joined.ID).
		Str("user_id", user.ID).
		Msg("colaborador unido por invitación")
	return joined, nil
}

// UpdateCollaborator edita rol/estado/override de un colaborador. Nunca contra
// un OWNER ni contra el propio registro del actor; LOCKED no es asignable.
func (uc *CollabUseCase) UpdateCollaborator(ctx context.Context, actor *permission.Identity, businessID, targetID string, in dto.UpdateCollaboratorRequest) (*entity.BusinessProfile, error) {
	_ = ctx
	if in.Role != nil && !assignableRole(*in.Role) {
		return nil, domain.ErrInvalidInput
	}
	return uc.mutateRoster(actor, businessID, targetID, func(roster []entity.Collaborator, idx int) ([]entity.Collaborator, error) {
		c := roster[idx]
		if in.Role != nil {
			c.Role = *in.Role
			// Cambiar de rol descarta el override: vuelven los defaults del rol nuevo.
			c.Permissions = nil
		}
		if in.Status != nil {
			c.Status = *in.Status
		}
		if in.Permissions != nil {
			c.Permissions = in.Permissions
		}
		roster[idx] = c
		return roster, nil
	})
}

// RemoveCollaborator quita a un colaborador del roster (acción de admin).
func (uc *CollabUseCase) RemoveCollaborator(ctx context.Context, actor *permission.Identity, businessID, targetID string) (*entity.BusinessProfile, error) {
	_ = ctx
	return uc.mutateRoster(actor, businessID, targetID, func(roster []entity.Collaborator, idx int) ([]entity.Collaborator, error) {
		return append(roster[:idx], roster[idx+1:]...), nil
	})
}

// Leave remueve la propia membresía de un no-dueño. No borra el negocio.
func (uc *CollabUseCase) Leave(ctx context.Context, userID, businessID string) error {
	_ = ctx
	for attempt := 0; attempt < casRetries; attempt++ {
		business, err := uc.bizRepo.GetByID(businessID)
		if err != nil {
			return err
		}
		if business == nil {
			return domain.ErrBusinessNotFound
		}
		if business.OwnerID == userID {
			// El dueño no abandona: elimina el negocio (cascada) por la otra ruta.
			return domain.ErrForbidden
		}
		idx := rosterIndex(business.Collaborators, userID)
		if idx < 0 {
			return domain.ErrNotFound
		}
		roster := append([]entity.Collaborator{}, business.Collaborators...)
		roster = append(roster[:idx], roster[idx+1:]...)
		err = uc.bizRepo.UpdateCollaborators(business.ID, business.Version, roster)
		if err == nil {
			return nil
		}
		if err != domain.ErrVersionMismatch {
			return err
		}
	}
	return domain.ErrVersionMismatch
}

// mutateRoster aplica una mutación con lectura fresca + compare-and-swap,
// reintentando ante concurrencia. La autoridad del actor se reevalúa contra el
// roster recién leído en cada intento (nunca contra una copia cacheada).
func (uc *CollabUseCase) mutateRoster(
	actor *permission.Identity,
	businessID, targetID string,
	apply func(roster []entity.Collaborator, idx int) ([]entity.Collaborator, error),
) (*entity.BusinessProfile, error) {
	for attempt := 0; attempt < casRetries; attempt++ {
		business, err := uc.bizRepo.GetByID(businessID)
		if err != nil {
			return nil, err
		}
		if business == nil {
			return nil, domain.ErrBusinessNotFound
		}
		access := permission.Resolve(actor, business, false)
		if !access.Can(permission.ManageCollaborators) {
			return nil, domain.ErrForbidden
		}
		if targetID == actor.ID {
			return nil, domain.ErrForbidden
		}
		idx := rosterIndex(business.Collaborators, targetID)
		if idx < 0 {
			return nil, domain.ErrNotFound
		}
		if business.Collaborators[idx].Role == entity.RoleOwner {
			return nil, domain.ErrForbidden
		}

		roster := append([]entity.Collaborator{}, business.Collaborators...)
		roster, err = apply(roster, idx)
		if err != nil {
			return nil, err
		}
		err = uc.bizRepo.UpdateCollaborators(business.ID, business.Version, roster)
		if err == nil {
			business.Collaborators = roster
			business.Version++
			return business, nil
		}
		if err != domain.ErrVersionMismatch {
			return nil, err
		}
		uc.log.Warn().
			Str("business_id", businessID).
			Int("attempt", attempt+1).
			Msg("roster modificado concurrentemente, reintentando")
	}
	return nil, domain.ErrVersionMismatch
}

func rosterIndex(roster []entity.Collaborator, userID string) int {
	for i := range roster {
		if roster[i].UserID == userID {
			return i
		}
	}
	return -1
}

// assignableRole valida los roles que un admin puede escribir en el roster.
// OWNER solo lo asigna el sistema al reclamar el negocio; LOCKED es de UI.
func assignableRole(role string) bool {
	switch role {
	case entity.RoleManager, entity.RoleSupervisor, entity.RoleSales, entity.RoleAuditor:
		return true
	default:
		return false
	}
}

// sixDigitCode genera un código numérico de 6 dígitos con crypto/rand.
func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}
