package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrBusinessNotFound   = errors.New("negocio no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInviteExpired      = errors.New("código de invitación inválido o expirado")
	ErrManagerLimit       = errors.New("límite de colaboradores del plan alcanzado")
	ErrVersionMismatch    = errors.New("el negocio fue modificado por otro usuario")
	ErrAlreadyCollaborator = errors.New("el usuario ya es colaborador del negocio")
)
