package repository

import "github.com/jhoicas/dailyprofit-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	// UpsertMany inserta o actualiza por el UUID generado en el dispositivo,
	// reasignando BusinessID al negocio destino del merge.
	UpsertMany(businessID string, products []entity.Product) error
	ListByBusiness(businessID string) ([]entity.Product, error)
	DeleteByBusiness(businessIDs ...string) error
}
