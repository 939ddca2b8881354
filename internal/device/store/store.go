// Package store define el contrato del almacenamiento local del dispositivo:
// un clave-valor JSON con claves planas para globales y claves con sufijo
// `{colección}_{businessId}` para las colecciones anidadas de cada negocio.
package store

// Claves globales del dispositivo.
const (
	KeyBusinesses     = "businesses"
	KeyActiveBusiness = "active_business_id"
	KeyAuthToken      = "auth_token"
)

// ProductsKey clave de los productos de un negocio.
func ProductsKey(businessID string) string { return "products_" + businessID }

// SalesKey clave de las ventas de un negocio.
func SalesKey(businessID string) string { return "sales_" + businessID }

// ExpensesKey clave de los gastos de un negocio.
func ExpensesKey(businessID string) string { return "expenses_" + businessID }

// CategoriesKey clave de las categorías de gasto de un negocio.
func CategoriesKey(businessID string) string { return "categories_" + businessID }

// LocalOwnerKey marca de "este dispositivo originó el negocio".
func LocalOwnerKey(businessID string) string { return "local_owner_" + businessID }

// NestedKeys todas las claves anidadas de un negocio, para la poda atómica.
func NestedKeys(businessID string) []string {
	return []string{
		ProductsKey(businessID),
		SalesKey(businessID),
		ExpensesKey(businessID),
		CategoriesKey(businessID),
		LocalOwnerKey(businessID),
	}
}

// LocalStore es el contrato del clave-valor local. Load devuelve false sin
// error cuando la clave no existe; out queda sin tocar en ese caso.
type LocalStore interface {
	Load(key string, out any) (bool, error)
	Save(key string, value any) error
	// Remove borra las claves indicadas en una sola operación. Borrar una
	// clave inexistente no es error.
	Remove(keys ...string) error
}
