package entity

import "github.com/shopspring/decimal"

// Product pertenece a exactamente un BusinessProfile vía BusinessID.
// El ID lo genera el dispositivo (UUID) y se conserva al sincronizar: el upsert en nube usa este ID.
type Product struct {
	ID            string          `json:"id"`
	BusinessID    string          `json:"businessId"`
	Name          string          `json:"name"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	Category      string          `json:"category,omitempty"`
	StockQuantity int             `json:"stockQuantity,omitempty"`
	TotalSold     int             `json:"totalSold,omitempty"`
	Unit          string          `json:"unit,omitempty"`
	IsActive      bool            `json:"isActive"`
}
