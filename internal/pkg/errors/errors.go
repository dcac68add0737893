package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется, когда событие сессии приходит не от её владельца.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation используется для ошибок валидации входных данных
	// (пустой список вопросов, несовпадение числа вопросов и наборов вариантов и т.п.).
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния
	// (например, попытка запустить сессию поверх уже активной).
	ErrConflict = errors.New("resource state conflict")

	// ErrSessionTimeout означает, что сессия опроса завершилась по бездействию.
	// Штатное терминальное состояние, а не сбой.
	ErrSessionTimeout = errors.New("session timed out")
)
