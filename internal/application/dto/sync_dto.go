package dto

import "github.com/jhoicas/dailyprofit-api/internal/domain/entity"

// Resoluciones posibles para una colisión de nombre local/nube.
const (
	ResolutionMerge        = "MERGE"
	ResolutionReplace      = "REPLACE"
	ResolutionKeepSeparate = "KEEP_SEPARATE"
)

// Variantes de conflicto reportadas por el reconciliador (error del body 409).
const (
	ConflictPlanLimit     = "PLAN_LIMIT_EXCEEDED"
	ConflictNameCollision = "NAME_COLLISION"
)

// SyncPayload es la cosecha local completa que el dispositivo ofrece a la nube.
// AllowedIDs (lista de conservación explícita) viaja solo en el retry del
// conflicto de cuota; Resolutions solo en el retry de colisión de nombres.
type SyncPayload struct {
	Businesses []entity.BusinessProfile `json:"businesses"`
	Products   []entity.Product         `json:"products"`
	Sales      []entity.Sale            `json:"sales"`
	Expenses   []entity.Expense         `json:"expenses"`

	AllowedIDs  []string          `json:"allowedIds,omitempty"`
	Resolutions map[string]string `json:"resolutions,omitempty"` // id local -> MERGE|REPLACE|KEEP_SEPARATE
}

// NameCollisionPair es un par local/nube con el mismo nombre (comparación
// exacta, sin distinguir mayúsculas).
type NameCollisionPair struct {
	Local entity.BusinessProfile `json:"local"`
	Cloud entity.BusinessProfile `json:"cloud"`
}

// SyncConflictResponse es el body del 409 del reconciliador.
// Error discrimina la variante; los demás campos dependen de ella.
type SyncConflictResponse struct {
	Error              string                   `json:"error"`
	Limit              int                      `json:"limit,omitempty"`
	CurrentCount       int                      `json:"currentCount,omitempty"`
	ProjectedCount     int                      `json:"projectedCount,omitempty"`
	ExistingBusinesses []entity.BusinessProfile `json:"existingBusinesses,omitempty"`
	Conflicts          []NameCollisionPair      `json:"conflicts,omitempty"`
}

// SyncAccepted es la respuesta 200 del reconciliador.
type SyncAccepted struct {
	Success    bool                     `json:"success"`
	Businesses []entity.BusinessProfile `json:"businesses"`
	Stats      SyncStats                `json:"stats"`
}

// SyncStats resume cuántos registros anidados se upsertaron.
type SyncStats struct {
	Products int `json:"products"`
	Sales    int `json:"sales"`
	Expenses int `json:"expenses"`
}
