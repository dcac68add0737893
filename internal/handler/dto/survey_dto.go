package dto

import (
	"time"

	"github.com/yourusername/survey-api/internal/domain/entity"
	"github.com/yourusername/survey-api/internal/handler/helper"
	"github.com/yourusername/survey-api/internal/service"
)

// ConditionalRequest описывает условие показа вопроса при создании опроса.
// Зависимость задается 0-based порядковым номером вопроса, т.к. ID еще не существуют.
type ConditionalRequest struct {
	DependsOnOrder      int `json:"depends_on_order" binding:"min=0"`
	RequiredOptionIndex int `json:"required_option_index" binding:"min=0"`
}

// QuestionRequest представляет вопрос в запросе на создание опроса
type QuestionRequest struct {
	Text        string              `json:"text" binding:"required"`
	Kind        string              `json:"kind" binding:"required,oneof=choice text"`
	Options     []string            `json:"options"`
	IsRequired  bool                `json:"is_required"`
	Conditional *ConditionalRequest `json:"conditional,omitempty"`
}

// CreateSurveyRequest представляет запрос на создание опроса со структурированными вопросами
type CreateSurveyRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Questions   []QuestionRequest `json:"questions" binding:"required,min=1"`
}

// CreateSurveyFromLinesRequest представляет запрос на создание опроса в построчном формате:
// одна строка на вопрос, строка вариантов через запятую ("-" для текстового вопроса).
type CreateSurveyFromLinesRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	QuestionLines []string `json:"question_lines" binding:"required,min=1"`
	OptionLines   []string `json:"option_lines" binding:"required,min=1"`
}

// SetActiveRequest представляет запрос на включение/выключение опроса
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// StartSessionRequest представляет запрос на начало прохождения опроса
type StartSessionRequest struct {
	Username string `json:"username"`
}

// StartSessionByTitleRequest представляет запрос на начало прохождения
// активного опроса по точному названию
type StartSessionByTitleRequest struct {
	Title    string `json:"title" binding:"required"`
	Username string `json:"username"`
}

// SubmitAnswerRequest представляет ответ на текущий вопрос сессии
type SubmitAnswerRequest struct {
	QuestionID     uint    `json:"question_id" binding:"required"`
	SelectedOption *int    `json:"selected_option,omitempty"`
	TextAnswer     *string `json:"text_answer,omitempty"`
	Skip           bool    `json:"skip"`
}

// OpenTextRequest представляет запрос на открытие текстового ввода
type OpenTextRequest struct {
	QuestionID uint `json:"question_id" binding:"required"`
}

// ConditionalResponse представляет условие показа вопроса в ответе клиенту
type ConditionalResponse struct {
	DependsOnQuestionID uint `json:"depends_on_question_id"`
	RequiredOptionIndex int  `json:"required_option_index"`
}

// QuestionResponse представляет вопрос в формате для ответа клиенту
type QuestionResponse struct {
	ID          uint                    `json:"id"`
	SurveyID    uint                    `json:"survey_id"`
	Text        string                  `json:"text"`
	Kind        string                  `json:"kind"`
	Options     []helper.QuestionOption `json:"options,omitempty"`
	ImageURL    string                  `json:"image_url,omitempty"`
	Order       int                     `json:"order"`
	IsRequired  bool                    `json:"is_required"`
	Conditional *ConditionalResponse    `json:"conditional,omitempty"`
}

// SurveyResponse представляет опрос в формате для ответа клиенту
type SurveyResponse struct {
	ID            uint               `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	IsActive      bool               `json:"is_active"`
	QuestionCount int                `json:"question_count"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// SessionResponse представляет состояние сессии прохождения опроса
type SessionResponse struct {
	Token           string            `json:"token"`
	SurveyID        uint              `json:"survey_id"`
	State           string            `json:"state"`
	CurrentQuestion *QuestionResponse `json:"current_question,omitempty"`
}

// UserSurveyResponse представляет прогресс пользователя по активному опросу
type UserSurveyResponse struct {
	SurveyID    uint   `json:"survey_id"`
	Title       string `json:"title"`
	Answered    int64  `json:"answered"`
	Total       int64  `json:"total"`
	Percent     int    `json:"percent"`
	ProgressBar string `json:"progress_bar"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	resp := QuestionResponse{
		ID:         q.ID,
		SurveyID:   q.SurveyID,
		Text:       q.Text,
		Kind:       q.Kind,
		ImageURL:   q.ImageURL,
		Order:      q.Order,
		IsRequired: q.IsRequired,
	}
	if q.IsChoice() {
		resp.Options = helper.ConvertOptionsToObjects(q.Options)
	}
	if q.Conditional != nil {
		resp.Conditional = &ConditionalResponse{
			DependsOnQuestionID: q.Conditional.DependsOnQuestionID,
			RequiredOptionIndex: q.Conditional.RequiredOptionIndex,
		}
	}
	return resp
}

// NewSurveyResponse создает DTO для опроса.
// includeQuestions управляет включением полного списка вопросов.
func NewSurveyResponse(s *entity.Survey, includeQuestions bool) SurveyResponse {
	resp := SurveyResponse{
		ID:            s.ID,
		Title:         s.Title,
		Description:   s.Description,
		IsActive:      s.IsActive,
		QuestionCount: s.QuestionCount(),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if includeQuestions {
		resp.Questions = make([]QuestionResponse, 0, len(s.Questions))
		for i := range s.Questions {
			resp.Questions = append(resp.Questions, NewQuestionResponse(&s.Questions[i]))
		}
	}
	return resp
}

// NewSurveyListResponse создает список DTO без вопросов
func NewSurveyListResponse(surveys []entity.Survey) []SurveyResponse {
	out := make([]SurveyResponse, 0, len(surveys))
	for i := range surveys {
		out = append(out, NewSurveyResponse(&surveys[i], false))
	}
	return out
}

// NewUserSurveyResponse создает DTO прогресса с текстовым прогресс-баром
func NewUserSurveyResponse(st service.UserSurveyStatus) UserSurveyResponse {
	return UserSurveyResponse{
		SurveyID:    st.SurveyID,
		Title:       st.Title,
		Answered:    st.Answered,
		Total:       st.Total,
		Percent:     st.Percent,
		ProgressBar: helper.ProgressBar(st.Answered, st.Total),
	}
}

// ToQuestionInputs преобразует запрос в входные данные сервиса опросов
func (r *CreateSurveyRequest) ToQuestionInputs() []service.QuestionInput {
	inputs := make([]service.QuestionInput, 0, len(r.Questions))
	for _, q := range r.Questions {
		in := service.QuestionInput{
			Text:       q.Text,
			Kind:       q.Kind,
			Options:    q.Options,
			IsRequired: q.IsRequired,
		}
		if q.Conditional != nil {
			in.Conditional = &service.ConditionalInput{
				DependsOnOrder:      q.Conditional.DependsOnOrder,
				RequiredOptionIndex: q.Conditional.RequiredOptionIndex,
			}
		}
		inputs = append(inputs, in)
	}
	return inputs
}
