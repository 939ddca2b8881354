// Package harvest arma el payload de sincronización a partir del estado
// local del dispositivo. Es libre de efectos: puede llamarse tantas veces
// como reintentos haga el coordinador, y refleja cualquier edición hecha
// mientras un conflicto estaba abierto.
package harvest

import (
	"fmt"
	"sort"

	"github.com/jhoicas/dailyprofit-api/internal/application/dto"
	"github.com/jhoicas/dailyprofit-api/internal/device/store"
	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
)

// Harvest lee todos los negocios locales y une sus colecciones anidadas.
// El orden es determinista: dos cosechas sin mutación intermedia producen
// payloads byte a byte idénticos.
func Harvest(s store.LocalStore) (dto.SyncPayload, error) {
	return harvest(s, nil)
}

// HarvestSubset cosecha solo los negocios cuyo id pertenece a subset
// (y sus registros anidados). Para el reintento acotado por cuota.
func HarvestSubset(s store.LocalStore, subset map[string]bool) (dto.SyncPayload, error) {
	return harvest(s, subset)
}

func harvest(s store.LocalStore, subset map[string]bool) (dto.SyncPayload, error) {
	var payload dto.SyncPayload

	var businesses []entity.BusinessProfile
	if _, err := s.Load(store.KeyBusinesses, &businesses); err != nil {
		return payload, fmt.Errorf("leer negocios locales: %w", err)
	}
	sort.Slice(businesses, func(i, j int) bool { return businesses[i].ID < businesses[j].ID })

	for _, b := range businesses {
		if subset != nil && !subset[b.ID] {
			continue
		}
		payload.Businesses = append(payload.Businesses, b)

		var products []entity.Product
		if _, err := s.Load(store.ProductsKey(b.ID), &products); err != nil {
			return payload, fmt.Errorf("leer productos de %s: %w", b.ID, err)
		}
		sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
		payload.Products = append(payload.Products, products...)

		var sales []entity.Sale
		if _, err := s.Load(store.SalesKey(b.ID), &sales); err != nil {
			return payload, fmt.Errorf("leer ventas de %s: %w", b.ID, err)
		}
		sort.Slice(sales, func(i, j int) bool {
			if sales[i].CreatedAt != sales[j].CreatedAt {
				return sales[i].CreatedAt < sales[j].CreatedAt
			}
			return sales[i].ID < sales[j].ID
		})
		payload.Sales = append(payload.Sales, sales...)

		var expenses []entity.Expense
		if _, err := s.Load(store.ExpensesKey(b.ID), &expenses); err != nil {
			return payload, fmt.Errorf("leer gastos de %s: %w", b.ID, err)
		}
		sort.Slice(expenses, func(i, j int) bool { return expenses[i].ID < expenses[j].ID })
		payload.Expenses = append(payload.Expenses, expenses...)
	}
	return payload, nil
}
