package repository

import (
	"github.com/yourusername/survey-api/internal/domain/entity"
)

// SurveyRepository определяет методы для работы с опросами
type SurveyRepository interface {
	Create(survey *entity.Survey) error
	GetByID(id uint) (*entity.Survey, error)
	// GetWithQuestions возвращает опрос с вопросами, отсортированными по question_order
	GetWithQuestions(id uint) (*entity.Survey, error)
	// GetActiveByTitle ищет активный опрос по точному названию
	GetActiveByTitle(title string) (*entity.Survey, error)
	// SearchByTitle ищет опросы по подстроке названия (для автодополнения)
	SearchByTitle(query string, onlyActive bool, limit int) ([]entity.Survey, error)
	GetActive() ([]entity.Survey, error)
	List(limit, offset int) ([]entity.Survey, error)
	SetActive(surveyID uint, active bool) error
	Update(survey *entity.Survey) error
	Delete(id uint) error
}
