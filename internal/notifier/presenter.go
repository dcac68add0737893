package notifier

import (
	"github.com/yourusername/survey-api/internal/domain/entity"
)

// Типы событий, доставляемых участникам опросов
const (
	EventQuestion         = "survey:question"
	EventTextPrompt       = "survey:text_prompt"
	EventCompleted        = "survey:completed"
	EventTimedOut         = "survey:timeout"
	EventAlreadyCompleted = "survey:already_completed"
)

// SurveyPresenter реализует sessionmanager.Presenter поверх хаба уведомлений
type SurveyPresenter struct {
	hub *Hub
}

// NewSurveyPresenter создает презентер опросов
func NewSurveyPresenter(hub *Hub) *SurveyPresenter {
	return &SurveyPresenter{hub: hub}
}

// questionPayload - вид вопроса, отправляемый участнику
type questionPayload struct {
	SurveyID    uint     `json:"survey_id"`
	SurveyTitle string   `json:"survey_title"`
	QuestionID  uint     `json:"question_id"`
	Text        string   `json:"text"`
	Kind        string   `json:"kind"`
	Options     []string `json:"options,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	IsRequired  bool     `json:"is_required"`
	Position    int      `json:"position"`
	Total       int      `json:"total"`
}

// ShowQuestion доставляет очередной вопрос участнику
func (p *SurveyPresenter) ShowQuestion(userID string, survey *entity.Survey, question *entity.Question, position, total int) error {
	return p.hub.SendToUser(userID, EventQuestion, questionPayload{
		SurveyID:    survey.ID,
		SurveyTitle: survey.Title,
		QuestionID:  question.ID,
		Text:        question.Text,
		Kind:        question.Kind,
		Options:     question.Options,
		ImageURL:    question.ImageURL,
		IsRequired:  question.IsRequired,
		Position:    position,
		Total:       total,
	})
}

// ShowTextPrompt сообщает, что открыто поле свободного ввода
func (p *SurveyPresenter) ShowTextPrompt(userID string, survey *entity.Survey, question *entity.Question) error {
	return p.hub.SendToUser(userID, EventTextPrompt, map[string]interface{}{
		"survey_id":   survey.ID,
		"question_id": question.ID,
		"text":        question.Text,
	})
}

// ShowCompleted сообщает о завершении опроса
func (p *SurveyPresenter) ShowCompleted(userID string, survey *entity.Survey) error {
	return p.hub.SendToUser(userID, EventCompleted, map[string]interface{}{
		"survey_id": survey.ID,
		"title":     survey.Title,
	})
}

// ShowTimedOut сообщает о завершении сессии по бездействию и необходимости перезапуска
func (p *SurveyPresenter) ShowTimedOut(userID string, survey *entity.Survey) error {
	return p.hub.SendToUser(userID, EventTimedOut, map[string]interface{}{
		"survey_id": survey.ID,
		"title":     survey.Title,
		"message":   "Survey timed out. Start again to continue from the first unanswered question.",
	})
}

// ShowAlreadyCompleted сообщает, что опрос уже пройден
func (p *SurveyPresenter) ShowAlreadyCompleted(userID string, survey *entity.Survey) error {
	return p.hub.SendToUser(userID, EventAlreadyCompleted, map[string]interface{}{
		"survey_id": survey.ID,
		"title":     survey.Title,
	})
}
