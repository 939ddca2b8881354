// Package sync implementa el reconciliador remoto: decide de forma atómica si
// la cosecha local de un dispositivo puede fusionarse con el estado en nube de
// la cuenta, o devuelve un conflicto estructurado para que el dispositivo lo
// arbitre con el usuario.
package sync

import (
	"context"
	"errors"
	"strings"

	"github.com/jhoicas/dailyprofit-api/internal/application/dto"
	"github.com/jhoicas/dailyprofit-api/internal/domain"
	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
	"github.com/jhoicas/dailyprofit-api/internal/domain/plan"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
	"github.com/jhoicas/dailyprofit-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// errRejected aborta la transacción cuando se detecta un conflicto: el rechazo
// no deja efectos parciales (ni siquiera la poda por allowedIds se conserva).
var errRejected = errors.New("sync rechazado")

// Result es el veredicto del reconciliador: exactamente uno de los dos campos
// es no-nil. El conflicto NO es un error: es una rama recuperable que el
// coordinador del dispositivo presenta al usuario.
type Result struct {
	Accepted *dto.SyncAccepted
	Conflict *dto.SyncConflictResponse
}

// ReconcileUseCase aplica el contrato del reconciliador sobre una transacción.
type ReconcileUseCase struct {
	tx  TxRunner
	log *logger.Logger
}

// NewReconcileUseCase construye el caso de uso.
func NewReconcileUseCase(tx TxRunner, log *logger.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{tx: tx, log: log}
}

// Reconcile evalúa el payload contra el estado en nube del dueño.
// Orden de decisión (determinista para payload y estado idénticos):
//  1. poda por AllowedIDs (si viene),
//  2. cuota de negocios del plan — tiene precedencia sobre colisiones,
//  3. colisiones de nombre sin resolución,
//  4. ejecución del merge (MERGE / REPLACE / KEEP_SEPARATE / alta nueva).
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, owner *entity.User, payload dto.SyncPayload) (*Result, error) {
	// Un valor de resolución fuera del vocabulario no se trata como "resuelto":
	// se rechaza antes de abrir la transacción.
	for id, r := range payload.Resolutions {
		switch r {
		case dto.ResolutionMerge, dto.ResolutionReplace, dto.ResolutionKeepSeparate:
		default:
			uc.log.Warn().
				Str("business_id", id).
				Str("resolution", r).
				Msg("sync rechazado: resolución desconocida")
			return nil, domain.ErrInvalidInput
		}
	}

	var result Result

	err := uc.tx.Run(ctx, func(
		bizRepo repository.BusinessRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
		expenseRepo repository.ExpenseRepository,
	) error {
		// 1. Poda explícita: el retry del conflicto de cuota trae la lista de
		// conservación; todo negocio en nube fuera de ella se elimina en cascada.
		if payload.AllowedIDs != nil {
			if err := pruneDisallowed(bizRepo, productRepo, saleRepo, expenseRepo, owner.ID, payload.AllowedIDs); err != nil {
				return err
			}
		}

		existing, err := bizRepo.ListByOwner(owner.ID)
		if err != nil {
			return err
		}

		// 2. Cuota primero: aceptar resoluciones de colisión que luego serían
		// rechazadas por cuota confundiría al usuario.
		projected := projectedCount(existing, payload)
		limit := plan.BusinessQuota(owner.Plan)
		if projected > limit {
			uc.log.Info().
				Str("user_id", owner.ID).
				Str("plan", owner.Plan).
				Int("limit", limit).
				Int("projected", projected).
				Msg("sync rechazado: cuota de negocios del plan excedida")
			result.Conflict = &dto.SyncConflictResponse{
				Error:              dto.ConflictPlanLimit,
				Limit:              limit,
				CurrentCount:       len(existing),
				ProjectedCount:     projected,
				ExistingBusinesses: deref(existing),
			}
			return errRejected
		}

		// 3. Colisiones de nombre sin resolución del cliente.
		pairs := unresolvedCollisions(existing, payload)
		if len(pairs) > 0 {
			uc.log.Info().
				Str("user_id", owner.ID).
				Int("conflicts", len(pairs)).
				Msg("sync rechazado: colisión de nombres sin resolución")
			result.Conflict = &dto.SyncConflictResponse{
				Error:     dto.ConflictNameCollision,
				Conflicts: pairs,
			}
			return errRejected
		}

		// 4. Ejecución del merge.
		accepted, err := uc.execute(bizRepo, productRepo, saleRepo, expenseRepo, owner, existing, payload)
		if err != nil {
			return err
		}
		result.Accepted = accepted
		return nil
	})

	if err != nil && !errors.Is(err, errRejected) {
		return nil, err
	}
	return &result, nil
}

// pruneDisallowed elimina los negocios en nube del dueño que no están en la
// lista de conservación, con cascada de productos/ventas/gastos.
func pruneDisallowed(
	bizRepo repository.BusinessRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	expenseRepo repository.ExpenseRepository,
	ownerID string,
	allowedIDs []string,
) error {
	allowed := make(map[string]bool, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = true
	}
	existing, err := bizRepo.ListByOwner(ownerID)
	if err != nil {
		return err
	}
	var doomed []string
	for _, b := range existing {
		if !allowed[b.ID] {
			doomed = append(doomed, b.ID)
		}
	}
	if len(doomed) == 0 {
		return nil
	}
	if err := productRepo.DeleteByBusiness(doomed...); err != nil {
		return err
	}
	if err := saleRepo.DeleteByBusiness(doomed...); err != nil {
		return err
	}
	if err := expenseRepo.DeleteByBusiness(doomed...); err != nil {
		return err
	}
	for _, id := range doomed {
		if err := bizRepo.Delete(id); err != nil {
			return err
		}
	}
	return nil
}

// projectedCount calcula el total de negocios tras aplicar el payload:
// los existentes, más cada local nuevo, más cada colisión resuelta como
// KEEP_SEPARATE (MERGE y REPLACE caen sobre un negocio ya contado).
func projectedCount(existing []*entity.BusinessProfile, payload dto.SyncPayload) int {
	n := len(existing)
	for i := range payload.Businesses {
		local := &payload.Businesses[i]
		if containsID(existing, local.ID) {
			// Ya reclamado por esta cuenta: cuenta dentro de existing.
			continue
		}
		match := matchByName(existing, local.ID, local.Name)
		if match == nil {
			n++
			continue
		}
		if payload.Resolutions[local.ID] == dto.ResolutionKeepSeparate {
			n++
		}
	}
	return n
}

func containsID(existing []*entity.BusinessProfile, id string) bool {
	for _, b := range existing {
		if b.ID == id {
			return true
		}
	}
	return false
}

// unresolvedCollisions empareja cada local cuyo nombre choca con un negocio en
// nube y para el que el cliente no envió resolución.
func unresolvedCollisions(existing []*entity.BusinessProfile, payload dto.SyncPayload) []dto.NameCollisionPair {
	var pairs []dto.NameCollisionPair
	for i := range payload.Businesses {
		local := &payload.Businesses[i]
		match := matchByName(existing, local.ID, local.Name)
		if match == nil {
			continue
		}
		if _, ok := payload.Resolutions[local.ID]; !ok {
			pairs = append(pairs, dto.NameCollisionPair{Local: *local, Cloud: *match})
		}
	}
	return pairs
}

// matchByName busca por nombre exacto sin distinguir mayúsculas. El mismo ID
// no colisiona consigo mismo: un negocio ya reclamado puede reenviarse.
func matchByName(existing []*entity.BusinessProfile, localID, name string) *entity.BusinessProfile {
	for _, b := range existing {
		if b.ID != localID && strings.EqualFold(b.Name, name) {
			return b
		}
	}
	return nil
}

// execute aplica el merge ya validado: cada negocio local termina apuntando a
// un negocio destino en nube y sus registros anidados se upsertan por UUID.
func (uc *ReconcileUseCase) execute(
	bizRepo repository.BusinessRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	expenseRepo repository.ExpenseRepository,
	owner *entity.User,
	existing []*entity.BusinessProfile,
	payload dto.SyncPayload,
) (*dto.SyncAccepted, error) {
	accepted := &dto.SyncAccepted{Success: true}

	for i := range payload.Businesses {
		local := payload.Businesses[i]
		match := matchByName(existing, local.ID, local.Name)
		resolution := payload.Resolutions[local.ID]

		var targetID string
		switch {
		case match != nil && resolution == dto.ResolutionMerge:
			// Los registros locales caen bajo el negocio en nube; el perfil no se toca.
			targetID = match.ID
			accepted.Businesses = append(accepted.Businesses, *match)

		case match != nil && resolution == dto.ResolutionReplace:
			if err := productRepo.DeleteByBusiness(match.ID); err != nil {
				return nil, err
			}
			if err := saleRepo.DeleteByBusiness(match.ID); err != nil {
				return nil, err
			}
			if err := expenseRepo.DeleteByBusiness(match.ID); err != nil {
				return nil, err
			}
			// El perfil local sobreescribe al de nube conservando ID, plan y roster.
			match.Name = local.Name
			match.Type = local.Type
			match.Currency = local.Currency
			match.PhoneNumber = local.PhoneNumber
			match.OnboardingCompleted = local.OnboardingCompleted
			match.ExpenseCategories = local.ExpenseCategories
			match.Pin = hashPin(local.Pin, match.Pin)
			if err := bizRepo.Update(match); err != nil {
				return nil, err
			}
			targetID = match.ID
			accepted.Businesses = append(accepted.Businesses, *match)

		case match != nil && resolution == dto.ResolutionKeepSeparate:
			// Se conservan ambos: la copia local entra renombrada, nada se borra.
			clone := claimForOwner(local, owner)
			clone.Name = local.Name + " (Local)"
			if err := bizRepo.Create(clone); err != nil {
				return nil, err
			}
			targetID = clone.ID
			accepted.Businesses = append(accepted.Businesses, *clone)

		default:
			// Sin colisión: alta nueva, salvo que el ID ya esté reclamado por esta cuenta.
			if prev, err := bizRepo.GetByID(local.ID); err != nil {
				return nil, err
			} else if prev != nil && prev.OwnerID == owner.ID {
				targetID = prev.ID
				accepted.Businesses = append(accepted.Businesses, *prev)
				break
			}
			created := claimForOwner(local, owner)
			if err := bizRepo.Create(created); err != nil {
				return nil, err
			}
			targetID = created.ID
			accepted.Businesses = append(accepted.Businesses, *created)
		}

		products := filterProducts(payload.Products, local.ID)
		sales := filterSales(payload.Sales, local.ID)
		expenses := filterExpenses(payload.Expenses, local.ID)
		if err := productRepo.UpsertMany(targetID, products); err != nil {
			return nil, err
		}
		if err := saleRepo.UpsertMany(targetID, sales); err != nil {
			return nil, err
		}
		if err := expenseRepo.UpsertMany(targetID, expenses); err != nil {
			return nil, err
		}
		accepted.Stats.Products += len(products)
		accepted.Stats.Sales += len(sales)
		accepted.Stats.Expenses += len(expenses)
	}

	uc.log.Info().
		Str("user_id", owner.ID).
		Int("businesses", len(accepted.Businesses)).
		Int("products", accepted.Stats.Products).
		Int("sales", accepted.Stats.Sales).
		Int("expenses", accepted.Stats.Expenses).
		Msg("sync aceptado")
	return accepted, nil
}

// claimForOwner prepara un negocio local para entrar a la nube: se asigna el
// dueño y se siembra su membresía OWNER en el roster.
func claimForOwner(local entity.BusinessProfile, owner *entity.User) *entity.BusinessProfile {
	b := local
	b.OwnerID = owner.ID
	b.Pin = hashPin(local.Pin, "")
	name := owner.DisplayName
	if name == "" {
		name = "Owner"
	}
	b.Collaborators = []entity.Collaborator{{
		UserID: owner.ID,
		Name:   name,
		Email:  owner.Email,
		Role:   entity.RoleOwner,
		Status: entity.CollaboratorActive,
	}}
	return &b
}

// hashPin asegura que el PIN nunca se persista en claro en la nube.
// Si el local no trae PIN se conserva el de nube; un PIN ya hasheado pasa tal cual.
func hashPin(localPin, cloudPin string) string {
	if localPin == "" {
		return cloudPin
	}
	if strings.HasPrefix(localPin, "$2") {
		return localPin
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(localPin), bcrypt.DefaultCost)
	if err != nil {
		return cloudPin
	}
	return string(hash)
}

func filterProducts(all []entity.Product, businessID string) []entity.Product {
	var out []entity.Product
	for _, p := range all {
		if p.BusinessID == businessID {
			out = append(out, p)
		}
	}
	return out
}

func filterSales(all []entity.Sale, businessID string) []entity.Sale {
	var out []entity.Sale
	for _, s := range all {
		if s.BusinessID == businessID {
			out = append(out, s)
		}
	}
	return out
}

func filterExpenses(all []entity.Expense, businessID string) []entity.Expense {
	var out []entity.Expense
	for _, e := range all {
		if e.BusinessID == businessID {
			out = append(out, e)
		}
	}
	return out
}

func deref(list []*entity.BusinessProfile) []entity.BusinessProfile {
	out := make([]entity.BusinessProfile, 0, len(list))
	for _, b := range list {
		out = append(out, *b)
	}
	return out
}
