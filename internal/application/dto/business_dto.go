package dto

import "github.com/jhoicas/dailyprofit-api/internal/domain/entity"

// CreateBusinessRequest entrada para crear un negocio ya autenticado.
// El ID puede venir generado por el dispositivo; si falta, lo asigna el servidor.
type CreateBusinessRequest struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name" validate:"required,min=1,max=200"`
	Type                string   `json:"type"`
	Currency            string   `json:"currency" validate:"required"`
	PhoneNumber         string   `json:"phoneNumber"`
	OnboardingCompleted bool     `json:"onboardingCompleted"`
	ExpenseCategories   []string `json:"expenseCategories"`
}

// UpdateBusinessRequest campos editables del perfil. Punteros = "no tocar".
type UpdateBusinessRequest struct {
	Name                *string  `json:"name"`
	Type                *string  `json:"type"`
	Currency            *string  `json:"currency"`
	PhoneNumber         *string  `json:"phoneNumber"`
	OnboardingCompleted *bool    `json:"onboardingCompleted"`
	ExpenseCategories   []string `json:"expenseCategories"`
}

// SetPinRequest fija o cambia el PIN de bloqueo de transacciones.
type SetPinRequest struct {
	Pin string `json:"pin" validate:"required,len=4"`
}

// VerifyPinRequest comprueba el PIN sin exponer el hash.
type VerifyPinRequest struct {
	Pin string `json:"pin" validate:"required"`
}

// InviteResponse código de invitación emitido y su vencimiento en epoch millis.
type InviteResponse struct {
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expiresAt"`
}

// JoinRequest entrada para unirse a un negocio con un código de 6 dígitos.
type JoinRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// JoinResponse el negocio al que se unió el usuario.
type JoinResponse struct {
	Business entity.BusinessProfile `json:"business"`
}

// UpdateCollaboratorRequest edita rol/estado/override de un colaborador.
type UpdateCollaboratorRequest struct {
	Role        *string             `json:"role"`
	Status      *string             `json:"status"`
	Permissions *entity.Permissions `json:"permissions"`
}

// BusinessDataResponse colecciones anidadas de un negocio (lectura post-merge).
type BusinessDataResponse struct {
	Products []entity.Product `json:"products"`
	Sales    []entity.Sale    `json:"sales"`
	Expenses []entity.Expense `json:"expenses"`
}
