package sessionmanager

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/yourusername/survey-api/internal/domain/entity"
	"github.com/yourusername/survey-api/internal/domain/repository"
)

// ResponseRecorder сохраняет один ответ (или явный пропуск) на вопрос опроса
type ResponseRecorder struct {
	config *Config
	deps   *Dependencies
}

// NewResponseRecorder создает новый рекордер ответов
func NewResponseRecorder(config *Config, deps *Dependencies) *ResponseRecorder {
	return &ResponseRecorder{config: config, deps: deps}
}

// Record сохраняет ответ пользователя. Пропуск записывается с пустыми
// selectedOption и textAnswer. При повторной записи для той же тройки
// (survey, question, user) возвращает repository.ErrDuplicateAnswer - это
// штатный исход гонки двух отправок, не ошибка системы.
// Выход индекса варианта за границы списка - ошибка вызывающего кода,
// рекордер его не перепроверяет.
func (rc *ResponseRecorder) Record(
	ctx context.Context,
	surveyID uint,
	questionID uint,
	userID string,
	username string,
	selectedOption *int,
	textAnswer *string,
) (*entity.Response, error) {
	response := &entity.Response{
		SurveyID:       surveyID,
		QuestionID:     questionID,
		UserID:         userID,
		Username:       username,
		SelectedOption: selectedOption,
		TextAnswer:     textAnswer,
	}

	if err := rc.deps.ResponseRepo.Create(response); err != nil {
		if errors.Is(err, repository.ErrDuplicateAnswer) {
			// Не ошибка: вторая из двух одновременных отправок
			log.Printf("[ResponseRecorder] Пользователь %s уже отвечал на вопрос #%d опроса #%d", userID, questionID, surveyID)
			return nil, repository.ErrDuplicateAnswer
		}
		return nil, fmt.Errorf("failed to save response: %w", err)
	}

	// Сбрасываем кеш-отметку завершенности: счетчик ответов изменился
	if rc.deps.CacheRepo != nil {
		if err := rc.deps.CacheRepo.Delete(completionCacheKey(surveyID, userID)); err != nil {
			log.Printf("[ResponseRecorder] Не удалось сбросить кеш завершенности (survey=%d, user=%s): %v", surveyID, userID, err)
		}
	}

	return response, nil
}
