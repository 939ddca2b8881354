package entity

import "time"

// Invitation es el registro efímero de un código de invitación a un negocio.
// Un solo uso: se consume (borra) atómicamente en el join exitoso.
type Invitation struct {
	Code       string // 6 dígitos
	BusinessID string
	IssuerID   string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// Expired indica si el código ya venció respecto a now.
func (i *Invitation) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
