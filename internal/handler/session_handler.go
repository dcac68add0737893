package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/survey-api/internal/domain/repository"
	"github.com/yourusername/survey-api/internal/handler/dto"
	apperrors "github.com/yourusername/survey-api/internal/pkg/errors"
	"github.com/yourusername/survey-api/internal/service"
	"github.com/yourusername/survey-api/internal/service/sessionmanager"
)

// SessionHandler обрабатывает запросы сессий прохождения опросов
type SessionHandler struct {
	sessionManager *service.SessionManager
}

// NewSessionHandler создает новый обработчик сессий
func NewSessionHandler(sessionManager *service.SessionManager) *SessionHandler {
	return &SessionHandler{sessionManager: sessionManager}
}

// StartSession начинает прохождение опроса пользователем.
// Первый вопрос отправляется через WebSocket, здесь возвращается токен сессии.
func (h *SessionHandler) StartSession(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint)
	userID := c.MustGet("userID").(string)

	var req dto.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	username := req.Username
	if username == "" {
		username = userID
	}

	session, err := h.sessionManager.StartSession(c.Request.Context(), surveyID, userID, username)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(session))
}

// StartSessionByTitle начинает прохождение активного опроса по точному названию
func (h *SessionHandler) StartSessionByTitle(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	var req dto.StartSessionByTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	username := req.Username
	if username == "" {
		username = userID
	}

	session, err := h.sessionManager.StartSessionByTitle(c.Request.Context(), req.Title, userID, username)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(session))
}

// GetSessionState возвращает текущее состояние сессии пользователя
func (h *SessionHandler) GetSessionState(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint)
	userID := c.MustGet("userID").(string)

	session, err := h.sessionManager.GetSession(surveyID, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(session))
}

// SubmitAnswer передает ответ (или пропуск) в сессию пользователя
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint)
	userID := c.MustGet("userID").(string)

	var req dto.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev := sessionmanager.AnswerEvent{
		UserID:         userID,
		QuestionID:     req.QuestionID,
		SelectedOption: req.SelectedOption,
		TextAnswer:     req.TextAnswer,
		Skip:           req.Skip,
	}
	if err := h.sessionManager.SubmitAnswer(surveyID, userID, ev); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer accepted"})
}

// OpenTextInput открывает ввод свободного текста для текущего текстового вопроса
func (h *SessionHandler) OpenTextInput(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint)
	userID := c.MustGet("userID").(string)

	var req dto.OpenTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessionManager.OpenTextInput(surveyID, userID, userID, req.QuestionID); err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Text input opened"})
}

func sessionResponse(s *sessionmanager.Session) dto.SessionResponse {
	state, current := s.State()
	resp := dto.SessionResponse{
		Token:    s.Token,
		SurveyID: s.SurveyID,
		State:    state,
	}
	if current != nil {
		q := dto.NewQuestionResponse(current)
		resp.CurrentQuestion = &q
	}
	return resp
}

// handleSessionError обрабатывает ошибки сессий и возвращает соответствующий HTTP-статус
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sessionmanager.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSessionExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoActiveSession):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicateAnswer):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error in SessionHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
