package repository

import (
	"github.com/yourusername/survey-api/internal/domain/entity"
)

// QuestionRepository определяет методы для работы с вопросами опросов
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	// GetBySurveyID возвращает вопросы опроса, отсортированные по question_order
	GetBySurveyID(surveyID uint) ([]entity.Question, error)
	CountBySurveyID(surveyID uint) (int64, error)
	Update(question *entity.Question) error
	Delete(id uint) error
}
