package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/survey-api/internal/domain/entity"
	"github.com/yourusername/survey-api/internal/domain/repository"
	apperrors "github.com/yourusername/survey-api/internal/pkg/errors"
	"github.com/yourusername/survey-api/internal/service/sessionmanager"
)

const (
	activeSurveysCacheKey = "surveys:active"
	activeSurveysCacheTTL = 30 * time.Second
	searchLimit           = 25
)

// QuestionInput описывает один вопрос при создании опроса
type QuestionInput struct {
	Text        string
	Kind        string
	Options     []string
	IsRequired  bool
	Conditional *ConditionalInput
}

// ConditionalInput описывает условие показа вопроса через порядковый номер зависимости
type ConditionalInput struct {
	DependsOnOrder      int
	RequiredOptionIndex int
}

// SurveyService предоставляет методы для работы с опросами
type SurveyService struct {
	surveyRepo   repository.SurveyRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
	config       *sessionmanager.Config
}

// NewSurveyService создает новый сервис опросов
func NewSurveyService(
	surveyRepo repository.SurveyRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
	config *sessionmanager.Config,
) *SurveyService {
	if config == nil {
		config = sessionmanager.DefaultConfig()
	}
	return &SurveyService{
		surveyRepo:   surveyRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
		config:       config,
	}
}

// BuildQuestionsFromLines собирает вопросы из построчного формата:
// по одной строке на вопрос и по одной строке вариантов на каждый вопрос
// (варианты разделены запятыми, "-" для текстового вопроса).
func BuildQuestionsFromLines(questionLines, optionLines []string) ([]QuestionInput, error) {
	questions := trimNonEmpty(questionLines)
	optionSets := trimNonEmpty(optionLines)

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", apperrors.ErrValidation)
	}
	if len(questions) != len(optionSets) {
		return nil, fmt.Errorf("%w: %d questions but %d option sets supplied", apperrors.ErrValidation, len(questions), len(optionSets))
	}

	inputs := make([]QuestionInput, 0, len(questions))
	for i, text := range questions {
		input := QuestionInput{Text: text, IsRequired: true}

		if optionSets[i] == "-" {
			input.Kind = entity.QuestionKindText
		} else {
			input.Kind = entity.QuestionKindChoice
			for _, opt := range strings.Split(optionSets[i], ",") {
				opt = strings.TrimSpace(opt)
				if opt != "" {
					input.Options = append(input.Options, opt)
				}
			}
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}

func trimNonEmpty(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// CreateSurvey создает опрос с вопросами. Опрос создается неактивным.
// Условные правила валидируются на этапе создания: зависимость может указывать
// только на более ранний по порядку вопрос с вариантами ответа.
func (s *SurveyService) CreateSurvey(title, description, createdBy string, inputs []QuestionInput) (*entity.Survey, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", apperrors.ErrValidation)
	}

	questions := make([]entity.Question, 0, len(inputs))
	for i, input := range inputs {
		if strings.TrimSpace(input.Text) == "" {
			return nil, fmt.Errorf("%w: question %d has empty text", apperrors.ErrValidation, i+1)
		}

		kind := input.Kind
		if kind == "" {
			kind = entity.QuestionKindChoice
		}

		switch kind {
		case entity.QuestionKindChoice:
			if len(input.Options) < 2 {
				return nil, fmt.Errorf("%w: question %d needs at least 2 options", apperrors.ErrValidation, i+1)
			}
		case entity.QuestionKindText:
			if len(input.Options) > 0 {
				return nil, fmt.Errorf("%w: question %d is a text question and cannot have options", apperrors.ErrValidation, i+1)
			}
		default:
			return nil, fmt.Errorf("%w: question %d has unknown kind %q", apperrors.ErrValidation, i+1, input.Kind)
		}

		question := entity.Question{
			Text:       input.Text,
			Kind:       kind,
			Options:    entity.StringArray(input.Options),
			Order:      i,
			IsRequired: input.IsRequired,
		}

		if input.Conditional != nil {
			if err := validateConditional(i, input.Conditional, inputs); err != nil {
				return nil, err
			}
		}

		questions = append(questions, question)
	}

	survey := &entity.Survey{
		Title:       title,
		Description: description,
		CreatedBy:   createdBy,
		IsActive:    false,
	}

	if err := s.surveyRepo.Create(survey); err != nil {
		return nil, fmt.Errorf("failed to create survey: %w", err)
	}

	for i := range questions {
		questions[i].SurveyID = survey.ID
	}
	if err := s.questionRepo.CreateBatch(questions); err != nil {
		return nil, fmt.Errorf("failed to create questions for survey #%d: %w", survey.ID, err)
	}
	survey.Questions = questions

	// Условные правила ссылаются на ID вопросов, которые известны только после вставки
	if err := s.attachConditionals(survey, inputs); err != nil {
		return nil, err
	}

	log.Printf("[SurveyService] Создан опрос #%d %q с %d вопросами", survey.ID, survey.Title, len(survey.Questions))
	return survey, nil
}

// validateConditional отклоняет зависимости вперед, на себя и на текстовые вопросы
func validateConditional(index int, cond *ConditionalInput, inputs []QuestionInput) error {
	if cond.DependsOnOrder >= index {
		return fmt.Errorf("%w: question %d may only depend on an earlier question", apperrors.ErrValidation, index+1)
	}
	if cond.DependsOnOrder < 0 {
		return fmt.Errorf("%w: question %d has invalid dependency order", apperrors.ErrValidation, index+1)
	}

	dep := inputs[cond.DependsOnOrder]
	if dep.Kind == entity.QuestionKindText {
		return fmt.Errorf("%w: question %d depends on a text question", apperrors.ErrValidation, index+1)
	}
	if cond.RequiredOptionIndex < 0 || cond.RequiredOptionIndex >= len(dep.Options) {
		return fmt.Errorf("%w: question %d requires option %d of question %d, which has only %d options",
			apperrors.ErrValidation, index+1, cond.RequiredOptionIndex, cond.DependsOnOrder+1, len(dep.Options))
	}
	return nil
}

func (s *SurveyService) attachConditionals(survey *entity.Survey, inputs []QuestionInput) error {
	for i := range inputs {
		if inputs[i].Conditional == nil {
			continue
		}
		q := &survey.Questions[i]
		q.Conditional = &entity.ConditionalRule{
			DependsOnQuestionID: survey.Questions[inputs[i].Conditional.DependsOnOrder].ID,
			RequiredOptionIndex: inputs[i].Conditional.RequiredOptionIndex,
		}
		if err := s.questionRepo.Update(q); err != nil {
			return fmt.Errorf("failed to attach conditional rule to question #%d: %w", q.ID, err)
		}
	}
	return nil
}

// GetSurvey возвращает опрос по ID
func (s *SurveyService) GetSurvey(surveyID uint) (*entity.Survey, error) {
	return s.surveyRepo.GetByID(surveyID)
}

// GetSurveyWithQuestions возвращает опрос с вопросами в порядке показа
func (s *SurveyService) GetSurveyWithQuestions(surveyID uint) (*entity.Survey, error) {
	return s.surveyRepo.GetWithQuestions(surveyID)
}

// ListSurveys возвращает опросы, новые первыми
func (s *SurveyService) ListSurveys(limit, offset int) ([]entity.Survey, error) {
	return s.surveyRepo.List(limit, offset)
}

// GetActiveSurveys возвращает активные опросы (с коротким кешем)
func (s *SurveyService) GetActiveSurveys() ([]entity.Survey, error) {
	if s.cacheRepo != nil {
		var cached []entity.Survey
		if err := s.cacheRepo.GetJSON(activeSurveysCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	surveys, err := s.surveyRepo.GetActive()
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(activeSurveysCacheKey, surveys, activeSurveysCacheTTL); err != nil {
			log.Printf("[SurveyService] Не удалось закешировать активные опросы: %v", err)
		}
	}
	return surveys, nil
}

// SetActive включает или выключает опрос и сбрасывает кеш активных опросов
func (s *SurveyService) SetActive(surveyID uint, active bool) error {
	if err := s.surveyRepo.SetActive(surveyID, active); err != nil {
		return err
	}
	s.invalidateActiveCache()

	status := "деактивирован"
	if active {
		status = "активирован"
	}
	log.Printf("[SurveyService] Опрос #%d %s", surveyID, status)
	return nil
}

// DeleteSurvey удаляет опрос вместе с вопросами и ответами
func (s *SurveyService) DeleteSurvey(surveyID uint) error {
	if _, err := s.surveyRepo.GetByID(surveyID); err != nil {
		return err
	}
	if err := s.surveyRepo.Delete(surveyID); err != nil {
		return err
	}
	s.invalidateActiveCache()
	return nil
}

func (s *SurveyService) invalidateActiveCache() {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(activeSurveysCacheKey); err != nil {
		log.Printf("[SurveyService] Не удалось сбросить кеш активных опросов: %v", err)
	}
}

// Search ищет опросы по подстроке названия для автодополнения.
// Read-only запрос с ограниченным числом повторов; при исчерпании повторов
// возвращается пустой список, а не ошибка.
func (s *SurveyService) Search(ctx context.Context, query string, onlyActive bool) []entity.Survey {
	deadline := time.Now().Add(s.config.SearchTimeout)

	var lastErr error
	for attempt := 0; attempt <= s.config.SearchRetries; attempt++ {
		if time.Now().After(deadline) || ctx.Err() != nil {
			break
		}

		surveys, err := s.surveyRepo.SearchByTitle(query, onlyActive, searchLimit)
		if err == nil {
			return surveys
		}
		lastErr = err
	}

	if lastErr != nil {
		log.Printf("[SurveyService] Поиск опросов по %q не удался, возвращаю пустой список: %v", query, lastErr)
	}
	return []entity.Survey{}
}
