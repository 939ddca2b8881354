package entity

import "time"

// User representa una cuenta de nube (Google, Apple o invitado).
type User struct {
	ID           string
	Email        string
	DisplayName  string
	PhotoURL     string
	ProviderID   string // sub de Google/Apple; vacío para invitados
	PasswordHash string // bcrypt; las cuentas sociales reciben uno aleatorio
	Plan         string // FREE, LITE, ENTREPRENEUR, UNLIMITED
	IsGuest      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
