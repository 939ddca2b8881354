package entity

import "github.com/shopspring/decimal"

// Sale es una venta plana asociada a un negocio. Revenue/Cost/Profit
// se calculan al registrar la venta y viajan ya computados en el payload de sync.
type Sale struct {
	ID          string          `json:"id"`
	BusinessID  string          `json:"businessId"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"` // desnormalizado para el historial
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	Profit      decimal.Decimal `json:"profit"`
	Date        string          `json:"date"`                // ISO 8601
	CreatedAt   int64           `json:"createdAt,omitempty"` // epoch millis, desempate de orden
}
