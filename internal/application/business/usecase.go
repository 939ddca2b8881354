// Package business cubre el ciclo de vida del perfil de negocio ya
// autenticado: altas directas, edición, borrado en cascada (solo dueño),
// PIN de bloqueo de transacciones y lectura de colecciones anidadas.
package business

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/dailyprofit-api/internal/application/dto"
	"github.com/jhoicas/dailyprofit-api/internal/domain"
	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
	"github.com/jhoicas/dailyprofit-api/internal/domain/permission"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
	"github.com/jhoicas/dailyprofit-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// BusinessUseCase casos de uso del perfil de negocio.
type BusinessUseCase struct {
	bizRepo     repository.BusinessRepository
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	expenseRepo repository.ExpenseRepository
	log         *logger.Logger
}

// NewBusinessUseCase construye el caso de uso.
func NewBusinessUseCase(
	bizRepo repository.BusinessRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	expenseRepo repository.ExpenseRepository,
	log *logger.Logger,
) *BusinessUseCase {
	return &BusinessUseCase{
		bizRepo:     bizRepo,
		productRepo: productRepo,
		saleRepo:    saleRepo,
		expenseRepo: expenseRepo,
		log:         log,
	}
}

// ListMine devuelve los negocios donde el usuario es dueño o colaborador.
func (uc *BusinessUseCase) ListMine(userID string) ([]*entity.BusinessProfile, error) {
	return uc.bizRepo.ListByMember(userID)
}

// Create da de alta un negocio reclamado por el usuario autenticado y siembra
// su membresía OWNER. Respeta el ID generado en el dispositivo si viene.
func (uc *BusinessUseCase) Create(ctx context.Context, owner *entity.User, in dto.CreateBusinessRequest) (*entity.BusinessProfile, error) {
	_ = ctx
	id := in.ID
	if id == "" {
		id = uuid.New().String()
	}
	name := owner.DisplayName
	if name == "" {
		name = "Owner"
	}
	now := time.Now()
	b := &entity.BusinessProfile{
		ID:                  id,
		Name:                in.Name,
		Type:                in.Type,
		Currency:            in.Currency,
		Plan:                entity.PlanFree,
		OwnerID:             owner.ID,
		PhoneNumber:         in.PhoneNumber,
		OnboardingCompleted: in.OnboardingCompleted,
		ExpenseCategories:   in.ExpenseCategories,
		Collaborators: []entity.Collaborator{{
			UserID: owner.ID,
			Name:   name,
			Email:  owner.Email,
			Role:   entity.RoleOwner,
			Status: entity.CollaboratorActive,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.bizRepo.Create(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Update edita el perfil; exige canEditCompanyProfile resuelto contra el roster fresco.
func (uc *BusinessUseCase) Update(ctx context.Context, actor *permission.Identity, businessID string, in dto.UpdateBusinessRequest) (*entity.BusinessProfile, error) {
	_ = ctx
	b, err := uc.bizRepo.GetByID(businessID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrBusinessNotFound
	}
	access := permission.Resolve(actor, b, false)
	if !access.Can(permission.EditCompanyProfile) {
		return nil, domain.ErrForbidden
	}
	if in.Name != nil {
		b.Name = *in.Name
	}
	if in.Type != nil {
		b.Type = *in.Type
	}
	if in.Currency != nil {
		b.Currency = *in.Currency
	}
	if in.PhoneNumber != nil {
		b.PhoneNumber = *in.PhoneNumber
	}
	if in.OnboardingCompleted != nil {
		b.OnboardingCompleted = *in.OnboardingCompleted
	}
	if in.ExpenseCategories != nil {
		b.ExpenseCategories = in.ExpenseCategories
	}
	b.UpdatedAt = time.Now()
	if err := uc.bizRepo.Update(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Delete elimina el negocio y su data anidada. Solo el dueño.
func (uc *BusinessUseCase) Delete(ctx context.Context, actorID, businessID string) error {
	_ = ctx
	b, err := uc.bizRepo.GetByID(businessID)
	if err != nil {
		return err
	}
	if b == nil {
		return domain.ErrBusinessNotFound
	}
	if b.OwnerID != actorID {
		return domain.ErrForbidden
	}
	if err := uc.productRepo.DeleteByBusiness(b.ID); err != nil {
		return err
	}
	if err := uc.saleRepo.DeleteByBusiness(b.ID); err != nil {
		return err
	}
	if err := uc.expenseRepo.DeleteByBusiness(b.ID); err != nil {
		return err
	}
	if err := uc.bizRepo.Delete(b.ID); err != nil {
		return err
	}
	uc.log.Info().Str("business_id", b.ID).Str("owner_id", actorID).Msg("negocio eliminado en cascada")
	return nil
}

// SetPin fija el PIN de bloqueo de transacciones (hash bcrypt, nunca en claro).
func (uc *BusinessUseCase) SetPin(ctx context.Context, actor *permission.Identity, businessID, pin string) error {
	_ = ctx
	b, err := uc.bizRepo.GetByID(businessID)
	if err != nil {
		return err
	}
	if b == nil {
		return domain.ErrBusinessNotFound
	}
	access := permission.Resolve(actor, b, false)
	if !access.Can(permission.ManageSettings) {
		return domain.ErrForbidden
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	b.Pin = string(hash)
	b.UpdatedAt = time.Now()
	return uc.bizRepo.Update(b)
}

// VerifyPin comprueba el PIN contra el hash guardado.
func (uc *BusinessUseCase) VerifyPin(ctx context.Context, businessID, pin string) (bool, error) {
	_ = ctx
	b, err := uc.bizRepo.GetByID(businessID)
	if err != nil {
		return false, err
	}
	if b == nil {
		return false, domain.ErrBusinessNotFound
	}
	if b.Pin == "" {
		return true, nil
	}
	return bcrypt.CompareHashAndPassword([]byte(b.Pin), []byte(pin)) == nil, nil
}

// Data devuelve las colecciones anidadas del negocio para lecturas post-merge.
// Exige membresía; el historial de ventas además exige canViewSales.
func (uc *BusinessUseCase) Data(ctx context.Context, actor *permission.Identity, businessID string) (*dto.BusinessDataResponse, error) {
	_ = ctx
	b, err := uc.bizRepo.GetByID(businessID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrBusinessNotFound
	}
	access := permission.Resolve(actor, b, false)
	if access.Role != entity.RoleOwner && b.FindCollaborator(actor.ID) == nil {
		return nil, domain.ErrForbidden
	}

	products, err := uc.productRepo.ListByBusiness(b.ID)
	if err != nil {
		return nil, err
	}
	expenses, err := uc.expenseRepo.ListByBusiness(b.ID)
	if err != nil {
		return nil, err
	}
	out := &dto.BusinessDataResponse{Products: products, Expenses: expenses}
	if access.Can(permission.ViewSales) {
		sales, err := uc.saleRepo.ListByBusiness(b.ID)
		if err != nil {
			return nil, err
		}
		out.Sales = sales
	}
	return out, nil
}
