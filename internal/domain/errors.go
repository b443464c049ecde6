package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                = errors.New("recurso no encontrado")
	ErrInvalidInput            = errors.New("entrada inválida")
	ErrDuplicate               = errors.New("recurso duplicado")
	ErrConflict                = errors.New("conflicto con el estado actual")
	ErrMissingCredentials      = errors.New("credenciales del ERP no configuradas")
	ErrPayableNotFoundUpstream = errors.New("conta a pagar não encontrada no ERP")
	ErrExternalService         = errors.New("falla en el servicio externo")
)
