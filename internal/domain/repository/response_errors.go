package repository

import "errors"

var (
	// ErrDuplicateAnswer означает, что ответ на этот вопрос от этого пользователя уже записан.
	// Ожидаемый исход гонки двух одновременных отправок, не фатальная ошибка.
	ErrDuplicateAnswer = errors.New("answer already recorded for this question")
)
