package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/survey-api/internal/domain/entity"
	apperrors "github.com/yourusername/survey-api/internal/pkg/errors"
)

// SurveyRepo реализует repository.SurveyRepository
type SurveyRepo struct {
	db *gorm.DB
}

// NewSurveyRepo создает новый репозиторий опросов
func NewSurveyRepo(db *gorm.DB) *SurveyRepo {
	return &SurveyRepo{db: db}
}

// Create создает новый опрос (вопросы сохраняются вместе с ним)
func (r *SurveyRepo) Create(survey *entity.Survey) error {
	return r.db.Create(survey).Error
}

// GetByID возвращает опрос по ID
func (r *SurveyRepo) GetByID(id uint) (*entity.Survey, error) {
	var survey entity.Survey
	err := r.db.First(&survey, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &survey, nil
}

// GetWithQuestions возвращает опрос с вопросами, отсортированными по question_order
func (r *SurveyRepo) GetWithQuestions(id uint) (*entity.Survey, error) {
	var survey entity.Survey
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("question_order ASC")
	}).First(&survey, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &survey, nil
}

// GetActiveByTitle ищет активный опрос по точному названию
func (r *SurveyRepo) GetActiveByTitle(title string) (*entity.Survey, error) {
	var survey entity.Survey
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("question_order ASC")
	}).Where("title = ? AND is_active = ?", title, true).First(&survey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &survey, nil
}

// SearchByTitle ищет опросы по подстроке названия (регистронезависимо)
func (r *SurveyRepo) SearchByTitle(query string, onlyActive bool, limit int) ([]entity.Survey, error) {
	var surveys []entity.Survey
	q := r.db.Where("title ILIKE ?", "%"+query+"%")
	if onlyActive {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("id ASC").Limit(limit).Find(&surveys).Error
	if err != nil {
		return nil, err
	}
	return surveys, nil
}

// GetActive возвращает все активные опросы с вопросами
func (r *SurveyRepo) GetActive() ([]entity.Survey, error) {
	var surveys []entity.Survey
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("question_order ASC")
	}).Where("is_active = ?", true).Order("id ASC").Find(&surveys).Error
	if err != nil {
		return nil, err
	}
	return surveys, nil
}

// List возвращает опросы (новые первыми) с пагинацией
func (r *SurveyRepo) List(limit, offset int) ([]entity.Survey, error) {
	var surveys []entity.Survey
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&surveys).Error
	if err != nil {
		return nil, err
	}
	return surveys, nil
}

// SetActive включает или выключает опрос
func (r *SurveyRepo) SetActive(surveyID uint, active bool) error {
	result := r.db.Model(&entity.Survey{}).Where("id = ?", surveyID).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Update обновляет информацию об опросе
func (r *SurveyRepo) Update(survey *entity.Survey) error {
	return r.db.Save(survey).Error
}

// Delete удаляет опрос (вопросы и ответы удаляются каскадно на уровне БД)
func (r *SurveyRepo) Delete(id uint) error {
	return r.db.Delete(&entity.Survey{}, id).Error
}
