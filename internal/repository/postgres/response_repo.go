package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/yourusername/survey-api/internal/domain/entity"
	"github.com/yourusername/survey-api/internal/domain/repository"
)

// uniqueViolation - код ошибки PostgreSQL для нарушения уникального ограничения
const uniqueViolation = "23505"

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return true
	}
	return false
}

// ResponseRepo реализует repository.ResponseRepository
type ResponseRepo struct {
	db *gorm.DB
}

// NewResponseRepo создает новый репозиторий ответов
func NewResponseRepo(db *gorm.DB) *ResponseRepo {
	return &ResponseRepo{db: db}
}

// Create сохраняет ответ. При нарушении уникальности (survey_id, question_id, user_id)
// возвращает repository.ErrDuplicateAnswer: из двух одновременных вставок для одной
// тройки ровно одна проходит, вторая получает нарушение ограничения.
func (r *ResponseRepo) Create(response *entity.Response) error {
	err := r.db.Create(response).Error
	if err != nil {
		if isUniqueViolation(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrDuplicateAnswer
		}
		return err
	}
	return nil
}

// GetBySurveyAndUser возвращает ответы пользователя в рамках опроса в порядке вставки
func (r *ResponseRepo) GetBySurveyAndUser(surveyID uint, userID string) ([]entity.Response, error) {
	var responses []entity.Response
	err := r.db.Where("survey_id = ? AND user_id = ?", surveyID, userID).
		Order("id ASC").
		Find(&responses).Error
	return responses, err
}

// GetBySurveyID возвращает все ответы опроса в порядке вставки
func (r *ResponseRepo) GetBySurveyID(surveyID uint) ([]entity.Response, error) {
	var responses []entity.Response
	err := r.db.Where("survey_id = ?", surveyID).Order("id ASC").Find(&responses).Error
	return responses, err
}

// GetByUser возвращает все ответы пользователя по всем опросам
func (r *ResponseRepo) GetByUser(userID string) ([]entity.Response, error) {
	var responses []entity.Response
	err := r.db.Where("user_id = ?", userID).Order("id ASC").Find(&responses).Error
	return responses, err
}

// CountBySurveyAndUser возвращает число ответов пользователя в рамках опроса
func (r *ResponseRepo) CountBySurveyAndUser(surveyID uint, userID string) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Response{}).
		Where("survey_id = ? AND user_id = ?", surveyID, userID).
		Count(&count).Error
	return count, err
}

// CountDistinctParticipants возвращает число уникальных участников опроса
func (r *ResponseRepo) CountDistinctParticipants(surveyID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.Response{}).
		Where("survey_id = ?", surveyID).
		Distinct("user_id").
		Count(&count).Error
	return count, err
}

// GetDailyTrend группирует ответы по календарной дате создания.
// Дни без ответов отсутствуют в результате, нулями не заполняются.
func (r *ResponseRepo) GetDailyTrend(surveyID uint) ([]repository.DailyTrendRow, error) {
	var rows []repository.DailyTrendRow
	err := r.db.Model(&entity.Response{}).
		Select("DATE(created_at) AS date, COUNT(DISTINCT user_id) AS distinct_participants, COUNT(id) AS total_answers").
		Where("survey_id = ?", surveyID).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&rows).Error
	return rows, err
}

// GetLeaderboard возвращает самых активных участников опросов
func (r *ResponseRepo) GetLeaderboard(limit int) ([]repository.LeaderboardRow, error) {
	var rows []repository.LeaderboardRow
	err := r.db.Model(&entity.Response{}).
		Select("user_id, username, COUNT(DISTINCT survey_id) AS surveys_answered, COUNT(id) AS total_answers").
		Group("user_id, username").
		Order("surveys_answered DESC, total_answers DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
