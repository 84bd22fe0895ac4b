package leveler

import "emperror.dev/errors"

const (
	ErrInvalidLevel     = errors.Sentinel("el nivel no puede ser negativo")
	ErrSelfRep          = errors.Sentinel("no puedes darte reputación a ti mismo")
	ErrBotRep           = errors.Sentinel("no puedes dar reputación a un bot")
	ErrInvalidColor     = errors.Sentinel("color inválido")
	ErrUnknownSection   = errors.Sentinel("sección desconocida")
	ErrUnknownBg        = errors.Sentinel("ese fondo no existe")
	ErrNotEnoughCredits = errors.Sentinel("no tienes suficientes créditos")
	ErrTitleTooLong     = errors.Sentinel("el título no puede superar los 20 caracteres")
	ErrInfoTooLong      = errors.Sentinel("la descripción no puede superar los 150 caracteres")
	ErrBadgeExists      = errors.Sentinel("ya existe una insignia con ese nombre")
	ErrBadgeNotFound    = errors.Sentinel("esa insignia no existe")
	ErrBadgeOwned       = errors.Sentinel("ya tienes esa insignia")
	ErrBadgeNotOwned    = errors.Sentinel("no tienes esa insignia")
	ErrBadgeNotForSale  = errors.Sentinel("esa insignia no se puede comprar")
	ErrBadgePurchasable = errors.Sentinel("no puedes quitar insignias que se pueden comprar")
	ErrBadgeName        = errors.Sentinel("el nombre de la insignia no puede contener '.'")
	ErrBadgePrice       = errors.Sentinel("el precio debe ser -1 o mayor")
	ErrBadgeDescription = errors.Sentinel("la descripción no puede superar las 40 palabras")
	ErrBadgePriority    = errors.Sentinel("la prioridad debe estar entre -1 y 5000")
	ErrBadgeGuildSize   = errors.Sentinel("el servidor necesita al menos 35 miembros humanos para crear insignias")
	ErrBadgeGlobalOwner = errors.Sentinel("solo los dueños del bot pueden gestionar insignias globales")
	ErrLinkNotFound     = errors.Sentinel("ese vínculo no existe")
	ErrBadXPRange       = errors.Sentinel("rango de experiencia inválido")
	ErrUserNotFound     = errors.Sentinel("ese usuario no tiene datos de niveles")
)
