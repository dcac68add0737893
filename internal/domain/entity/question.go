package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Виды вопросов
const (
	QuestionKindChoice = "choice"
	QuestionKindText   = "text"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// ConditionalRule описывает условие показа вопроса: вопрос доступен только если
// пользователь ответил на вопрос DependsOnQuestionID выбором варианта RequiredOptionIndex
type ConditionalRule struct {
	DependsOnQuestionID uint `json:"depends_on_question_id"`
	RequiredOptionIndex int  `json:"required_option_index"`
}

// Scan реализует интерфейс sql.Scanner для ConditionalRule (nullable JSONB)
func (c *ConditionalRule) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, c)
}

// Value реализует интерфейс driver.Valuer для ConditionalRule
func (c ConditionalRule) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Question представляет один вопрос опроса.
// Order задаёт позицию вопроса (0-based, уникален в рамках опроса).
type Question struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	SurveyID    uint             `gorm:"not null;index" json:"survey_id"`
	Text        string           `gorm:"size:500;not null" json:"text"`
	Kind        string           `gorm:"size:16;not null;default:choice" json:"kind"`
	Options     StringArray      `gorm:"type:jsonb" json:"options,omitempty"`
	ImageURL    string           `gorm:"size:500" json:"image_url,omitempty"`
	Order       int              `gorm:"column:question_order;not null" json:"order"`
	// Без default-тега: gorm не пишет zero-value поля с default при вставке,
	// и явный false превращался бы в true из умолчания БД
	IsRequired  bool             `gorm:"not null" json:"is_required"`
	Conditional *ConditionalRule `gorm:"type:jsonb" json:"conditional,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "survey_questions"
}

// IsText проверяет, является ли вопрос текстовым
func (q *Question) IsText() bool {
	return q.Kind == QuestionKindText
}

// IsChoice проверяет, является ли вопрос вопросом с вариантами ответа
func (q *Question) IsChoice() bool {
	return q.Kind == QuestionKindChoice
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidOption(selectedOption int) bool {
	return selectedOption >= 0 && selectedOption < len(q.Options)
}
