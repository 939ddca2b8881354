package repository

import "github.com/jhoicas/dailyprofit-api/internal/domain/entity"

// SaleRepository define el puerto de persistencia para Sale (DIP).
type SaleRepository interface {
	UpsertMany(businessID string, sales []entity.Sale) error
	ListByBusiness(businessID string) ([]entity.Sale, error)
	DeleteByBusiness(businessIDs ...string) error
}
