package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/survey-api/internal/handler/dto"
	apperrors "github.com/yourusername/survey-api/internal/pkg/errors"
	"github.com/yourusername/survey-api/internal/service"
)

// SurveyHandler обрабатывает запросы, связанные с опросами
type SurveyHandler struct {
	surveyService *service.SurveyService
}

// NewSurveyHandler создает новый обработчик опросов
func NewSurveyHandler(surveyService *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveyService: surveyService}
}

// CreateSurvey создает новый опрос со структурированным списком вопросов
func (h *SurveyHandler) CreateSurvey(c *gin.Context) {
	var req dto.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	createdBy := c.GetString("userID")
	survey, err := h.surveyService.CreateSurvey(req.Title, req.Description, createdBy, req.ToQuestionInputs())
	if err != nil {
		h.handleSurveyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSurveyResponse(survey, true))
}

// CreateSurveyFromLines создает опрос из построчного формата:
// строки вопросов и строки вариантов через запятую ("-" для текстового вопроса).
func (h *SurveyHandler) CreateSurveyFromLines(c *gin.Context) {
	var req dto.CreateSurveyFromLinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs, err := service.BuildQuestionsFromLines(req.QuestionLines, req.OptionLines)
	if err != nil {
		h.handleSurveyError(c, err)
		return
	}

	createdBy := c.GetString("userID")
	survey, err := h.surveyService.CreateSurvey(req.Title, req.Description, createdBy, inputs)
	if err != nil {
		h.handleSurveyError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewSurveyResponse(survey, true))
}

// GetSurvey возвращает опрос со всеми вопросами
func (h *SurveyHandler) GetSurvey(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint) // Получаем из контекста

	survey, err := h.surveyService.GetSurveyWithQuestions(surveyID)
	if err != nil {
		h.handleSurveyError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSurveyResponse(survey, true))
}

// ListSurveys возвращает список опросов.
// По умолчанию только активные; ?all=true возвращает все с пагинацией.
func (h *SurveyHandler) ListSurveys(c *gin.Context) {
	if c.Query("all") == "true" {
		limit, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		surveys, err := h.surveyService.ListSurveys(limit, (page-1)*limit)
		if err != nil {
			h.handleSurveyError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"surveys": dto.NewSurveyListResponse(surveys), "page": page, "per_page": limit})
		return
	}

	surveys, err := h.surveyService.GetActiveSurveys()
	if err != nil {
		h.handleSurveyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"surveys": dto.NewSurveyListResponse(surveys)})
}

// SearchSurveys ищет опросы по подстроке названия (автодополнение).
// Никогда не отвечает ошибкой: при сбое хранилища возвращает пустой список.
func (h *SurveyHandler) SearchSurveys(c *gin.Context) {
	query := c.Query("q")
	onlyActive := c.DefaultQuery("active", "true") != "false"

	surveys := h.surveyService.Search(c.Request.Context(), query, onlyActive)
	c.JSON(http.StatusOK, gin.H{"surveys": dto.NewSurveyListResponse(surveys)})
}

// SetActive включает или выключает опрос
func (h *SurveyHandler) SetActive(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint)

	var req dto.SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.surveyService.SetActive(surveyID, *req.IsActive); err != nil {
		h.handleSurveyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"survey_id": surveyID, "is_active": *req.IsActive})
}

// DeleteSurvey удаляет опрос вместе с вопросами и ответами
func (h *SurveyHandler) DeleteSurvey(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint)

	if err := h.surveyService.DeleteSurvey(surveyID); err != nil {
		h.handleSurveyError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Survey deleted"})
}

// handleSurveyError обрабатывает ошибки сервиса опросов и возвращает соответствующий HTTP-статус
func (h *SurveyHandler) handleSurveyError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in SurveyHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
