package entity

import (
	"time"
)

// Response представляет ответ пользователя на один вопрос опроса.
// Пара (SurveyID, QuestionID, UserID) уникальна: повторная вставка для той же тройки
// завершается нарушением ограничения, а не перезаписью.
// Пропуск необязательного вопроса хранится как запись с пустыми SelectedOption и TextAnswer.
type Response struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SurveyID       uint      `gorm:"not null;index;uniqueIndex:idx_survey_question_user,priority:1" json:"survey_id"`
	QuestionID     uint      `gorm:"not null;index;uniqueIndex:idx_survey_question_user,priority:2" json:"question_id"`
	UserID         string    `gorm:"size:64;not null;index;uniqueIndex:idx_survey_question_user,priority:3" json:"user_id"`
	Username       string    `gorm:"size:100;not null" json:"username"`
	SelectedOption *int      `json:"selected_option,omitempty"`
	TextAnswer     *string   `gorm:"type:text" json:"text_answer,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Response) TableName() string {
	return "survey_responses"
}

// IsSkip проверяет, является ли запись явным пропуском вопроса
func (r *Response) IsSkip() bool {
	return r.SelectedOption == nil && r.TextAnswer == nil
}
