// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrForbidden — у пользователя нет прав на операцию или объект.
	ErrForbidden = errors.New("доступ запрещён")
	// ErrInsufficientStock — на складе недостаточно материала.
	ErrInsufficientStock = errors.New("недостаточно материала на складе")
	// ErrInvalidRole — некорректная роль: допустимые значения — admin, manager, worker.
	ErrInvalidRole = errors.New("некорректная роль: допустимые значения — admin, manager, worker")
	// ErrIDPUnavailable — провайдер идентификации недоступен.
	ErrIDPUnavailable = errors.New("провайдер идентификации недоступен")
	// ErrExtractorUnavailable — сервис распознавания накладных недоступен.
	ErrExtractorUnavailable = errors.New("сервис распознавания накладных недоступен")

	// Состояния ссылок загрузки.

	// ErrLinkInactive — ссылка деактивирована.
	ErrLinkInactive = errors.New("ссылка деактивирована")
	// ErrLinkUsed — временная ссылка уже использована.
	ErrLinkUsed = errors.New("ссылка уже использована")
	// ErrLinkExpired — срок действия ссылки истёк.
	ErrLinkExpired = errors.New("срок действия ссылки истёк")
)
