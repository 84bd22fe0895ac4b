package captcha

import "emperror.dev/errors"

const (
	ErrAlreadyRunning   = errors.Sentinel("el miembro ya tiene un captcha en curso")
	ErrNotRunning       = errors.Sentinel("el miembro no tiene ningún captcha en curso")
	ErrMissingChannel   = errors.Sentinel("falta el canal de verificación")
	ErrMissingLogs      = errors.Sentinel("falta el canal de registros")
	ErrAskedForReload   = errors.Sentinel("el miembro pidió otro código")
	ErrLeftServer       = errors.Sentinel("el miembro salió del servidor")
	ErrTimeout          = errors.Sentinel("el miembro no respondió a tiempo")
	ErrSkipped          = errors.Sentinel("el captcha fue omitido")
	ErrInvalidType      = errors.Sentinel("tipo de captcha inválido")
	ErrInvalidTimeout   = errors.Sentinel("el tiempo límite debe estar entre 1 y 15 minutos")
	ErrInvalidRetries   = errors.Sentinel("los reintentos deben estar entre 1 y 10")
	ErrInvalidParallel  = errors.Sentinel("los desafíos simultáneos deben estar entre 1 y 10")
	ErrMissingPerms     = errors.Sentinel("al bot le faltan permisos")
	ErrCopiedCode       = errors.Sentinel("código copiado")
	ErrChallengeRunning = errors.Sentinel("ya hay un intento en marcha")
)
