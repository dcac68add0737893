package sessionmanager

import (
	"context"
	"fmt"
	"log"

	"github.com/yourusername/survey-api/internal/domain/entity"
)

// QuestionSelector выбирает следующий вопрос для пользователя с учетом
// порядка вопросов и условных правил показа
type QuestionSelector struct {
	config *Config
	deps   *Dependencies
}

// NewQuestionSelector создает новый селектор вопросов
func NewQuestionSelector(config *Config, deps *Dependencies) *QuestionSelector {
	return &QuestionSelector{config: config, deps: deps}
}

// NextQuestion возвращает первый неотвеченный доступный вопрос опроса или nil,
// если доступных вопросов не осталось (опрос пройден).
// Условные вопросы перепроверяются при каждом вызове: вопрос доступен, только если
// на вопрос-зависимость уже записан ответ с ровно требуемым вариантом.
func (s *QuestionSelector) NextQuestion(ctx context.Context, surveyID uint, userID string) (*entity.Question, error) {
	questions, err := s.deps.QuestionRepo.GetBySurveyID(surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey questions: %w", err)
	}

	responses, err := s.deps.ResponseRepo.GetBySurveyAndUser(surveyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user responses: %w", err)
	}

	return nextEligible(questions, responses), nil
}

// nextEligible реализует сам проход по отсортированному списку вопросов.
// Вынесено отдельно, чтобы сессия могла переиспользовать уже загруженные данные.
func nextEligible(questions []entity.Question, responses []entity.Response) *entity.Question {
	answered := make(map[uint]*entity.Response, len(responses))
	for i := range responses {
		answered[responses[i].QuestionID] = &responses[i]
	}

	for i := range questions {
		q := &questions[i]

		// Пропуск тоже считается ответом: вопрос больше не предлагается
		if _, ok := answered[q.ID]; ok {
			continue
		}

		if q.Conditional != nil {
			dep, ok := answered[q.Conditional.DependsOnQuestionID]
			if !ok {
				continue
			}
			if dep.SelectedOption == nil || *dep.SelectedOption != q.Conditional.RequiredOptionIndex {
				continue
			}
		}

		return q
	}

	return nil
}

// HasCompleted проверяет, прошел ли пользователь опрос. Источник истины - селектор:
// опрос пройден тогда и только тогда, когда NextQuestion возвращает nil.
// Кеш-отметка служит быстрым путем и ставится только после подтверждения селектором.
func (s *QuestionSelector) HasCompleted(ctx context.Context, surveyID uint, userID string) (bool, error) {
	cacheKey := completionCacheKey(surveyID, userID)
	if s.deps.CacheRepo != nil {
		exists, err := s.deps.CacheRepo.Exists(cacheKey)
		if err != nil {
			// Кеш недоступен - падаем на честную проверку
			log.Printf("[QuestionSelector] Ошибка кеша при проверке завершенности (survey=%d, user=%s): %v", surveyID, userID, err)
		} else if exists {
			return true, nil
		}
	}

	next, err := s.NextQuestion(ctx, surveyID, userID)
	if err != nil {
		return false, err
	}
	if next != nil {
		return false, nil
	}

	if s.deps.CacheRepo != nil {
		if err := s.deps.CacheRepo.Set(cacheKey, "1", s.config.CompletionCacheTTL); err != nil {
			log.Printf("[QuestionSelector] Не удалось записать кеш-отметку завершенности (survey=%d, user=%s): %v", surveyID, userID, err)
		}
	}
	return true, nil
}

func completionCacheKey(surveyID uint, userID string) string {
	return fmt.Sprintf("survey:%d:completed:%s", surveyID, userID)
}
