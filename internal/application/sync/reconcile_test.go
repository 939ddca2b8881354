package sync_test

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/dailyprofit-api/internal/application/dto"
	appsync "github.com/jhoicas/dailyprofit-api/internal/application/sync"
	"github.com/jhoicas/dailyprofit-api/internal/domain"
	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
	"github.com/jhoicas/dailyprofit-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type fakeBizRepo struct {
	items map[string]*entity.BusinessProfile
}

func newFakeBizRepo() *fakeBizRepo {
	return &fakeBizRepo{items: make(map[string]*entity.BusinessProfile)}
}

func (r *fakeBizRepo) Create(b *entity.BusinessProfile) error {
	if _, ok := r.items[b.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *b
	r.items[b.ID] = &cp
	return nil
}

func (r *fakeBizRepo) GetByID(id string) (*entity.BusinessProfile, error) {
	b, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBizRepo) ListByOwner(ownerID string) ([]*entity.BusinessProfile, error) {
	var out []*entity.BusinessProfile
	for _, b := range r.items {
		if b.OwnerID == ownerID {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBizRepo) ListByMember(userID string) ([]*entity.BusinessProfile, error) {
	var out []*entity.BusinessProfile
	for _, b := range r.items {
		if b.OwnerID == userID || b.FindCollaborator(userID) != nil {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBizRepo) Update(b *entity.BusinessProfile) error {
	if _, ok := r.items[b.ID]; !ok {
		return domain.ErrBusinessNotFound
	}
	cp := *b
	cp.Version++
	r.items[b.ID] = &cp
	return nil
}

func (r *fakeBizRepo) UpdateCollaborators(businessID string, expectedVersion int, collaborators []entity.Collaborator) error {
	b, ok := r.items[businessID]
	if !ok {
		return domain.ErrBusinessNotFound
	}
	if b.Version != expectedVersion {
		return domain.ErrVersionMismatch
	}
	b.Collaborators = append([]entity.Collaborator(nil), collaborators...)
	b.Version++
	return nil
}

func (r *fakeBizRepo) Delete(id string) error {
	delete(r.items, id)
	return nil
}

type fakeProductRepo struct{ items map[string]entity.Product }

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{items: make(map[string]entity.Product)}
}

func (r *fakeProductRepo) UpsertMany(businessID string, products []entity.Product) error {
	for _, p := range products {
		p.BusinessID = businessID
		r.items[p.ID] = p
	}
	return nil
}

func (r *fakeProductRepo) ListByBusiness(businessID string) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range r.items {
		if p.BusinessID == businessID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProductRepo) DeleteByBusiness(businessIDs ...string) error {
	for id, p := range r.items {
		for _, bid := range businessIDs {
			if p.BusinessID == bid {
				delete(r.items, id)
			}
		}
	}
	return nil
}

type fakeSaleRepo struct{ items map[string]entity.Sale }

func newFakeSaleRepo() *fakeSaleRepo { return &fakeSaleRepo{items: make(map[string]entity.Sale)} }

func (r *fakeSaleRepo) UpsertMany(businessID string, sales []entity.Sale) error {
	for _, s := range sales {
		s.BusinessID = businessID
		r.items[s.ID] = s
	}
	return nil
}

func (r *fakeSaleRepo) ListByBusiness(businessID string) ([]entity.Sale, error) {
	var out []entity.Sale
	for _, s := range r.items {
		if s.BusinessID == businessID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeSaleRepo) DeleteByBusiness(businessIDs ...string) error {
	for id, s := range r.items {
		for _, bid := range businessIDs {
			if s.BusinessID == bid {
				delete(r.items, id)
			}
		}
	}
	return nil
}

type fakeExpenseRepo struct{ items map[string]entity.Expense }

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{items: make(map[string]entity.Expense)}
}

func (r *fakeExpenseRepo) UpsertMany(businessID string, expenses []entity.Expense) error {
	for _, e := range expenses {
		e.BusinessID = businessID
		r.items[e.ID] = e
	}
	return nil
}

func (r *fakeExpenseRepo) ListByBusiness(businessID string) ([]entity.Expense, error) {
	var out []entity.Expense
	for _, e := range r.items {
		if e.BusinessID == businessID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeExpenseRepo) DeleteByBusiness(businessIDs ...string) error {
	for id, e := range r.items {
		for _, bid := range businessIDs {
			if e.BusinessID == bid {
				delete(r.items, id)
			}
		}
	}
	return nil
}

// fakeTxRunner imita la semántica transaccional real: si el callback falla,
// el estado vuelve al snapshot previo (rollback).
type fakeTxRunner struct {
	biz      *fakeBizRepo
	products *fakeProductRepo
	sales    *fakeSaleRepo
	expenses *fakeExpenseRepo
}

func newFakeTxRunner() *fakeTxRunner {
	return &fakeTxRunner{
		biz:      newFakeBizRepo(),
		products: newFakeProductRepo(),
		sales:    newFakeSaleRepo(),
		expenses: newFakeExpenseRepo(),
	}
}

func (t *fakeTxRunner) Run(_ context.Context, fn func(
	bizRepo repository.BusinessRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
	expenseRepo repository.ExpenseRepository,
) error) error {
	bizSnap := make(map[string]*entity.BusinessProfile, len(t.biz.items))
	for k, v := range t.biz.items {
		cp := *v
		bizSnap[k] = &cp
	}
	prodSnap := make(map[string]entity.Product, len(t.products.items))
	for k, v := range t.products.items {
		prodSnap[k] = v
	}
	saleSnap := make(map[string]entity.Sale, len(t.sales.items))
	for k, v := range t.sales.items {
		saleSnap[k] = v
	}
	expSnap := make(map[string]entity.Expense, len(t.expenses.items))
	for k, v := range t.expenses.items {
		expSnap[k] = v
	}

	err := fn(t.biz, t.products, t.sales, t.expenses)
	if err != nil {
		t.biz.items = bizSnap
		t.products.items = prodSnap
		t.sales.items = saleSnap
		t.expenses.items = expSnap
	}
	return err
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func testOwner(plan string) *entity.User {
	return &entity.User{
		ID:          "user-1",
		Email:       "ana@example.com",
		DisplayName: "Ana",
		Plan:        plan,
	}
}

func cloudBusiness(id, name, ownerID string) *entity.BusinessProfile {
	return &entity.BusinessProfile{
		ID:       id,
		Name:     name,
		Currency: "COP",
		Plan:     entity.PlanFree,
		OwnerID:  ownerID,
		Collaborators: []entity.Collaborator{{
			UserID: ownerID,
			Name:   "Ana",
			Role:   entity.RoleOwner,
			Status: entity.CollaboratorActive,
		}},
	}
}

func localBusiness(id, name string) entity.BusinessProfile {
	return entity.BusinessProfile{ID: id, Name: name, Currency: "COP", Plan: entity.PlanFree}
}

func localProduct(id, businessID string) entity.Product {
	return entity.Product{
		ID:           id,
		BusinessID:   businessID,
		Name:         "Café",
		CostPrice:    decimal.NewFromInt(5000),
		SellingPrice: decimal.NewFromInt(8000),
		IsActive:     true,
	}
}

func newReconciler(tx *fakeTxRunner) *appsync.ReconcileUseCase {
	return appsync.NewReconcileUseCase(tx, logger.Nop())
}

// ──────────────────────────────────────────────────────────────────────────────
// Cuota del plan
// ──────────────────────────────────────────────────────────────────────────────

// Plan FREE (cuota 0): cualquier negocio local dispara PLAN_LIMIT_EXCEEDED.
func TestReconcile_PlanFree_RechazaPorCuota(t *testing.T) {
	tx := newFakeTxRunner()
	uc := newReconciler(tx)

	payload := dto.SyncPayload{Businesses: []entity.BusinessProfile{localBusiness("b1", "Tienda Ana")}}
	result, err := uc.Reconcile(context.Background(), testOwner(entity.PlanFree), payload)
	require.NoError(t, err)

	require.NotNil(t, result.Conflict, "la cuota excedida es un conflicto, no un error")
	assert.Nil(t, result.Accepted)
	assert.Equal(t, dto.ConflictPlanLimit, result.Conflict.Error)
	assert.Equal(t, 0, result.Conflict.Limit)
	assert.Equal(t, 1, result.Conflict.ProjectedCount)
}

// La cuota se evalúa antes que las colisiones: si ambas aplican, gana PLAN_LIMIT.
func TestReconcile_CuotaTienePrecedenciaSobreColision(t *testing.T) {
	tx := newFakeTxRunner()
	owner := testOwner(entity.PlanLite) // cuota 1
	require.NoError(t, tx.biz.Create(cloudBusiness("cloud-1", "Joe's Shop", owner.ID)))
	uc := newReconciler(tx)

	payload := dto.SyncPayload{Businesses: []entity.BusinessProfile{
		localBusiness("b1", "joe's shop"), // colisiona sin resolución
		localBusiness("b2", "Otra Tienda"),
	}}
	result, err := uc.Reconcile(context.Background(), owner, payload)
	require.NoError(t, err)

	require.NotNil(t, result.Conflict)
	assert.Equal(t, dto.ConflictPlanLimit, result.Conflict.Error,
		"PLAN_LIMIT_EXCEEDED debe ganar cuando cuota y colisión aplican a la vez")
	require.Len(t, result.Conflict.ExistingBusinesses, 1)
	assert.Equal(t, "cloud-1", result.Conflict.ExistingBusinesses[0].ID)
}

// Un rechazo no deja efectos parciales: la poda por allowedIds se revierte.
func TestReconcile_RechazoRevierteLaPoda(t *testing.T) {
	tx := newFakeTxRunner()
	owner := testOwner(entity.PlanLite)
	require.NoError(t, tx.biz.Create(cloudBusiness("cloud-1", "Tienda A", owner.ID)))
	require.NoError(t, tx.biz.Create(cloudBusiness("cloud-2", "Tienda B", owner.ID)))
	uc := newReconciler(tx)

	// La lista de conservación excluye cloud-2, pero el payload vuelve a
	// exceder la cuota: todo el intento debe revertirse.
	payload := dto.SyncPayload{
		Businesses: []entity.BusinessProfile{
			localBusiness("b1", "Nueva 1"),
			localBusiness("b2", "Nueva 2"),
		},
		AllowedIDs: []string{"cloud-1", "b1", "b2"},
	}
	result, err := uc.Reconcile(context.Background(), owner, payload)
	require.NoError(t, err)
	require.NotNil(t, result.Conflict)

	still, err := tx.biz.GetByID("cloud-2")
	require.NoError(t, err)
	assert.NotNil(t, still, "el rechazo no debe conservar la poda previa")
}

// ──────────────────────────────────────────────────────────────────────────────
// Colisión de nombres
// ──────────────────────────────────────────────────────────────────────────────

// Colisión exacta sin distinguir mayúsculas y sin resolución → NAME_COLLISION.
func TestReconcile_ColisionSinResolucion(t *testing.T) {
	tx := newFakeTxRunner()
	owner := testOwner(entity.PlanUnlimited)
	require.NoError(t, tx.biz.Create(cloudBusiness("cloud-1", "joe's shop", owner.ID)))
	uc := newReconciler(tx)

	payload := dto.SyncPayload{Businesses: []entity.BusinessProfile{localBusiness("b1", "Joe's Shop")}}
	result, err := uc.Reconcile(context.Background(), owner, payload)
	require.NoError(t, err)

	require.NotNil(t, result.Conflict)
	assert.Equal(t, dto.ConflictNameCollision, result.Conflict.Error)
	require.Len(t, result.Conflict.Conflicts, 1)
	assert.Equal(t, "b1", result.Conflict.Conflicts[0].Local.ID)
	assert.Equal(t, "cloud-1", result.Conflict.Conflicts[0].Cloud.ID)
}

// Escenario: REPLACE sobreescribe el perfil en nube conservando su ID, plan y
// roster, y borra la data anidada previa antes de upsertar la local.
func TestReconcile_Replace_SobreescribeConservandoIdentidadNube(t *testing.T) {
	tx := newFakeTxRunner()
	owner := testOwner(entity.PlanUnlimited)
	cloud := cloudBusiness("cloud-1", "joe's shop", owner.ID)
	cloud.Plan = entity.PlanEntrepreneur
	require.NoError(t, tx.biz.Create(cloud))
	require.NoError(t, tx.products.UpsertMany("cloud-1", []entity.Product{localProduct("p-viejo", "cloud-1")}))
	uc := newReconciler(tx)

	local := localBusiness("b1", "Joe's Shop")
	local.Currency = "USD"
	payload := dto.SyncPayload{
		Businesses:  []entity.BusinessProfile{local},
		Products:    []entity.Product{localProduct("p-nuevo", "b1")},
		Resolutions: map[string]string{"b1": dto.ResolutionReplace},
	}
	result, err := uc.Reconcile(context.Background(), owner, payload)
	require.NoError(t, err)
	require.NotNil(t, result.Accepted)

	merged, err := tx.biz.GetByID("cloud-1")
	require.NoError(t, err)
	require.NotNil(t, merged)
	assert.Equal(t, "Joe's Shop", merged.Name, "el nombre local pisa al de nube")
	assert.Equal(t, "USD", merged.Currency)
	assert.Equal(t, entity.PlanEntrepreneur, merged.Plan, "el plan de nube se conserva")
	assert.Equal(t, owner.ID, merged.OwnerID)
	require.Len(t, merged.Collaborators, 1, "el roster de nube se conserva")

	products, err := tx.products.ListByBusiness("cloud-1")
	require.NoError(t, err)
	require.Len(t, products, 1, "la data anidada previa se borra antes del upsert")
	assert.Equal(t, "p-nuevo", products[0].ID)

	local2, err := tx.biz.GetByID("b1")
	require.NoError(t, err)
	assert.Nil(t, local2, "REPLACE no crea un negocio aparte")
}

// MERGE: los registros locales caen bajo el negocio en nube; el perfil no cambia.
func TestReconcile_Merge_RegistrosCaenBajoNegocioNube(t *testing.T) {
	tx := newFakeTxRunner()
	owner := testOwner(entity.PlanUnlimited)
	require.NoError(t, tx.biz.Create(cloudBusiness("cloud-1", "Joe's Shop", owner.ID)))
	require.NoError(t, tx.products.UpsertMany("cloud-1", []entity.Product{localProduct("p-nube", "cloud-1")}))
	uc := newReconciler(tx)

	payload := dto.SyncPayload{
		Businesses:  []entity.BusinessProfile{localBusiness("b1", "joe's shop")},
		Products:    []entity.Product{localProduct("p-local", "b1")},
		Resolutions: map[string]string{"b1": dto.ResolutionMerge},
	}
	result, err := uc.Reconcile(context.Background(), owner, payload)
	require.NoError(t, err)
	require.NotNil(t, result.Accepted)

	merged, err := tx.biz.GetByID("cloud-1")
	require.NoError(t, err)
	assert.Equal(t, "Joe's Shop", merged.Name, "MERGE no toca el perfil de nube")

	products, err := tx.products.ListByBusiness("cloud-1")
	require.NoError(t, err)
	assert.Len(t, products, 2, "los registros de nube y los locales conviven")
}

// KEEP_SEPARATE: la copia local entra renombrada "<nombre> (Local)" y nada se borra.
func TestReconcile_KeepSeparate_InsertaCopiaRenombrada(t *testing.T) {
	tx := newFakeTxRunner()
	owner := testOwner(entity.PlanUnlimited)
	require.NoError(t, tx.biz.Create(cloudBusiness("cloud-1", "Joe's Shop", owner.ID)))
	uc := newReconciler(tx)

	payload := dto.SyncPayload{
		Businesses:  []entity.BusinessProfile{localBusiness("b1", "joe's shop")},
		Resolutions: map[string]string{"b1": dto.ResolutionKeepSeparate},
	}
	result, err := uc.Reconcile(context.Background(), owner, payload)
	require.NoError(t, err)
	require.NotNil(t, result.Accepted)

	clone, err := tx.biz.GetByID("b1")
	require.NoError(t, err)
	require.NotNil(t, clone)
	assert.Equal(t, "joe's shop (Local)", clone.Name)
	assert.Equal(t, owner.ID, clone.OwnerID)

	original, err := tx.biz.GetByID("cloud-1")
	require.NoError(t, err)
	assert.Equal(t, "Joe's Shop", original.Name, "el negocio de nube queda intacto")
}

// ──────────────────────────────────────────────────────────────────────────────
// Alta nueva y poda
// ──────────────────────────────────────────────────────────────────────────────

// Alta nueva: el negocio queda reclamado con OwnerID, membresía OWNER sembrada
// y el PIN hasheado (nunca en claro en la nube).
func TestReconcile_AltaNueva_ReclamaYSiembraOwner(t *testing.T) {
	tx := newFakeTxRunner()
	owner := testOwner(entity.PlanLite)
	uc := newReconciler(tx)

	local := localBusiness("b1", "Tienda Ana")
	local.Pin = "1234"
	payload := dto.SyncPayload{Businesses: []entity.BusinessProfile{local}}
	result, err := uc.Reconcile(context.Background(), owner, payload)
	require.NoError(t, err)
	require.NotNil(t, result.Accepted)

	created, err := tx.biz.GetByID("b1")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, owner.ID, created.OwnerID)
	require.Len(t, created.Collaborators, 1)
	assert.Equal(t, entity.RoleOwner, created.Collaborators[0].Role)
	assert.True(t, strings.HasPrefix(created.Pin, "$2"), "el PIN debe llegar hasheado con bcrypt")
}

// La poda por allowedIds elimina en cascada los negocios fuera de la lista.
func TestReconcile_AllowedIds_PodaEnCascada(t *testing.T) {
	tx := newFakeTxRunner()
	owner := testOwner(entity.PlanEntrepreneur)
	require.NoError(t, tx.biz.Create(cloudBusiness("cloud-1", "Tienda A", owner.ID)))
	require.NoError(t, tx.biz.Create(cloudBusiness("cloud-2", "Tienda B", owner.ID)))
	require.NoError(t, tx.products.UpsertMany("cloud-2", []entity.Product{localProduct("p-b", "cloud-2")}))
	uc := newReconciler(tx)

	payload := dto.SyncPayload{AllowedIDs: []string{"cloud-1"}}
	result, err := uc.Reconcile(context.Background(), owner, payload)
	require.NoError(t, err)
	require.NotNil(t, result.Accepted)

	gone, err := tx.biz.GetByID("cloud-2")
	require.NoError(t, err)
	assert.Nil(t, gone)

	orphans, err := tx.products.ListByBusiness("cloud-2")
	require.NoError(t, err)
	assert.Empty(t, orphans, "la poda arrastra los registros anidados")
}

// Reenvío de un negocio ya reclamado por la cuenta: no se duplica.
func TestReconcile_ReenvioIdempotente(t *testing.T) {
	tx := newFakeTxRunner()
	owner := testOwner(entity.PlanLite)
	uc := newReconciler(tx)

	payload := dto.SyncPayload{Businesses: []entity.BusinessProfile{localBusiness("b1", "Tienda Ana")}}
	first, err := uc.Reconcile(context.Background(), owner, payload)
	require.NoError(t, err)
	require.NotNil(t, first.Accepted)

	second, err := uc.Reconcile(context.Background(), owner, payload)
	require.NoError(t, err)
	require.NotNil(t, second.Accepted, "repetir el mismo payload no debe fallar ni duplicar")

	all, err := tx.biz.ListByOwner(owner.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// Un valor de resolución fuera del vocabulario no cuenta como "resuelto":
// se rechaza con entrada inválida sin insertar nada (una copia con el nombre
// en colisión nunca debe nacer por esta vía).
func TestReconcile_ResolucionDesconocidaEsRechazada(t *testing.T) {
	tx := newFakeTxRunner()
	tx.biz.items["c1"] = cloudBusiness("c1", "Tienda Ana", "user-1")
	uc := newReconciler(tx)

	payload := dto.SyncPayload{
		Businesses:  []entity.BusinessProfile{localBusiness("b1", "Tienda Ana")},
		Resolutions: map[string]string{"b1": "BOGUS"},
	}
	result, err := uc.Reconcile(context.Background(), testOwner(entity.PlanEntrepreneur), payload)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)

	all, listErr := tx.biz.ListByOwner("user-1")
	require.NoError(t, listErr)
	assert.Len(t, all, 1, "el estado en nube queda intacto")
}
