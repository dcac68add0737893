package repository

import (
	"time"

	"github.com/yourusername/survey-api/internal/domain/entity"
)

// DailyTrendRow представляет агрегат ответов за один календарный день
type DailyTrendRow struct {
	Date                 time.Time `json:"date"`
	DistinctParticipants int64     `json:"distinct_participants"`
	TotalAnswers         int64     `json:"total_answers"`
}

// LeaderboardRow представляет активность одного участника опросов
type LeaderboardRow struct {
	UserID          string `json:"user_id"`
	Username        string `json:"username"`
	SurveysAnswered int64  `json:"surveys_answered"`
	TotalAnswers    int64  `json:"total_answers"`
}

// ResponseRepository определяет методы для работы с ответами на вопросы.
// Create обязан возвращать ErrDuplicateAnswer при нарушении уникальности
// (survey_id, question_id, user_id) — это штатный исход гонки двух отправок.
type ResponseRepository interface {
	Create(response *entity.Response) error
	// GetBySurveyAndUser возвращает ответы пользователя в рамках опроса (по порядку вставки)
	GetBySurveyAndUser(surveyID uint, userID string) ([]entity.Response, error)
	GetBySurveyID(surveyID uint) ([]entity.Response, error)
	GetByUser(userID string) ([]entity.Response, error)
	CountBySurveyAndUser(surveyID uint, userID string) (int64, error)
	// CountDistinctParticipants возвращает число уникальных пользователей с хотя бы одним ответом
	CountDistinctParticipants(surveyID uint) (int64, error)
	// GetDailyTrend группирует ответы по календарной дате создания, по возрастанию даты
	GetDailyTrend(surveyID uint) ([]DailyTrendRow, error)
	// GetLeaderboard возвращает самых активных участников: сортировка по числу опросов, затем ответов
	GetLeaderboard(limit int) ([]LeaderboardRow, error)
}
