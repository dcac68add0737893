package service

import "errors"

// Определяем кастомные ошибки для сервисов
var (
	// ErrSessionExists означает, что у пользователя уже идет живая сессия этого опроса.
	ErrSessionExists = errors.New("survey session already in progress")
	// ErrNoActiveSession означает, что живой сессии для пары (опрос, пользователь) нет.
	ErrNoActiveSession = errors.New("no active survey session")
)
