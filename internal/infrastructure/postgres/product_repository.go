package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/dailyprofit-api/internal/domain/entity"
	"github.com/jhoicas/dailyprofit-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// UpsertMany inserta o actualiza productos por su UUID de dispositivo,
// reasignando business_id al negocio destino (importa en merges).
func (r *ProductRepo) UpsertMany(businessID string, products []entity.Product) error {
	ctx := context.Background()
	query := `
		INSERT INTO products (
			id, business_id, name, cost_price, selling_price, category,
			stock_quantity, total_sold, unit, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			business_id = EXCLUDED.business_id,
			name = EXCLUDED.name,
			cost_price = EXCLUDED.cost_price,
			selling_price = EXCLUDED.selling_price,
			category = EXCLUDED.category,
			stock_quantity = EXCLUDED.stock_quantity,
			total_sold = EXCLUDED.total_sold,
			unit = EXCLUDED.unit,
			is_active = EXCLUDED.is_active,
			updated_at = now()`
	for _, p := range products {
		_, err := r.q.Exec(ctx, query,
			p.ID, businessID, p.Name, p.CostPrice, p.SellingPrice, p.Category,
			p.StockQuantity, p.TotalSold, p.Unit, p.IsActive,
		)
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}

// ListByBusiness devuelve los productos de un negocio.
func (r *ProductRepo) ListByBusiness(businessID string) ([]entity.Product, error) {
	query := `
		SELECT id, business_id, name, cost_price, selling_price, category,
		       stock_quantity, total_sold, unit, is_active
		FROM products WHERE business_id = $1 ORDER BY name, id`
	rows, err := r.q.Query(context.Background(), query, businessID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var out []entity.Product
	for rows.Next() {
		var p entity.Product
		err := rows.Scan(&p.ID, &p.BusinessID, &p.Name, &p.CostPrice, &p.SellingPrice,
			&p.Category, &p.StockQuantity, &p.TotalSold, &p.Unit, &p.IsActive)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// DeleteByBusiness borra todos los productos de los negocios indicados.
func (r *ProductRepo) DeleteByBusiness(businessIDs ...string) error {
	if len(businessIDs) == 0 {
		return nil
	}
	_, err := r.q.Exec(context.Background(),
		`DELETE FROM products WHERE business_id = ANY($1)`, businessIDs)
	if err != nil {
		return fmt.Errorf("delete products: %w", err)
	}
	return nil
}
