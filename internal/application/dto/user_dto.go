package dto

import "time"

// GoogleLoginRequest entrada para login con Google (ID token del SDK nativo/web).
type GoogleLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// AppleLoginRequest entrada para login con Apple. Apple solo envía el nombre
// en el primer login, por eso viaja aparte del identity token.
type AppleLoginRequest struct {
	IdentityToken string `json:"identityToken" validate:"required"`
	GivenName     string `json:"givenName"`
	FamilyName    string `json:"familyName"`
}

// UserResponse salida de un usuario (sin hash de password).
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName,omitempty"`
	PhotoURL    string    `json:"photoURL,omitempty"`
	Plan        string    `json:"plan"`
	IsGuest     bool      `json:"isGuest,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LoginResponse salida con token JWT y el usuario autenticado.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
