package entity

import (
	"time"
)

// Survey представляет опрос с упорядоченным набором вопросов
type Survey struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:100;not null;index" json:"title"`
	Description string     `gorm:"size:500" json:"description,omitempty"`
	CreatedBy   string     `gorm:"size:64;not null" json:"created_by"`
	IsActive    bool       `gorm:"not null;default:false" json:"is_active"`
	Questions   []Question `gorm:"foreignKey:SurveyID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Survey) TableName() string {
	return "surveys"
}

// QuestionCount возвращает количество вопросов опроса
func (s *Survey) QuestionCount() int {
	return len(s.Questions)
}
