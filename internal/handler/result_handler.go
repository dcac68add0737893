package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/survey-api/internal/handler/dto"
	apperrors "github.com/yourusername/survey-api/internal/pkg/errors"
	"github.com/yourusername/survey-api/internal/service"
)

// ResultHandler обрабатывает запросы агрегированных результатов опросов
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler создает новый обработчик результатов
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// GetSurveyResults возвращает агрегированный отчет по опросу.
// ?refresh=true принудительно пересчитывает, минуя кеш.
func (h *ResultHandler) GetSurveyResults(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint)
	refresh := c.Query("refresh") == "true"

	results, err := h.resultService.Aggregate(surveyID, refresh)
	if err != nil {
		h.handleResultError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetCompletionStatus возвращает прогресс пользователя по опросу
func (h *ResultHandler) GetCompletionStatus(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint)
	userID := c.MustGet("userID").(string)

	status, err := h.resultService.CompletionStatus(surveyID, userID)
	if err != nil {
		h.handleResultError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetDailyTrend возвращает динамику участия по дням
func (h *ResultHandler) GetDailyTrend(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint)

	trend, err := h.resultService.DailyTrend(surveyID)
	if err != nil {
		h.handleResultError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"survey_id": surveyID, "trend": trend})
}

// GetLeaderboard возвращает самых активных участников опросов
func (h *ResultHandler) GetLeaderboard(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	rows, err := h.resultService.Leaderboard(limit)
	if err != nil {
		h.handleResultError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": rows})
}

// GetMySurveys возвращает прогресс пользователя по всем активным опросам
func (h *ResultHandler) GetMySurveys(c *gin.Context) {
	userID := c.MustGet("userID").(string)

	statuses, err := h.resultService.UserSurveys(userID)
	if err != nil {
		h.handleResultError(c, err)
		return
	}

	out := make([]dto.UserSurveyResponse, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, dto.NewUserSurveyResponse(st))
	}
	c.JSON(http.StatusOK, gin.H{"surveys": out})
}

var exportHeader = []string{"question_order", "question", "user_id", "username", "answer", "answered_at"}

// ExportCSV выгружает все ответы опроса в CSV
func (h *ResultHandler) ExportCSV(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint)

	_, rows, err := h.resultService.ExportRows(surveyID)
	if err != nil {
		h.handleResultError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=survey_%d_responses.csv", surveyID))

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeader)
	for _, row := range rows {
		_ = w.Write([]string{
			strconv.Itoa(row.QuestionOrder),
			row.QuestionText,
			row.UserID,
			row.Username,
			row.Answer,
			row.AnsweredAt.Format("2006-01-02 15:04:05"),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Printf("[ResultHandler] Ошибка записи CSV для опроса #%d: %v", surveyID, err)
	}
}

// ExportXLSX выгружает все ответы опроса в Excel-файл
func (h *ResultHandler) ExportXLSX(c *gin.Context) {
	surveyID := c.MustGet("surveyID").(uint)

	title, rows, err := h.resultService.ExportRows(surveyID)
	if err != nil {
		h.handleResultError(c, err)
		return
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("[ResultHandler] Ошибка закрытия файла Excel: %v", err)
		}
	}()

	const sheet = "Responses"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
	}
	for i, row := range rows {
		values := []interface{}{
			row.QuestionOrder,
			row.QuestionText,
			row.UserID,
			row.Username,
			row.Answer,
			row.AnsweredAt.Format("2006-01-02 15:04:05"),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=survey_%d_responses.xlsx", surveyID))

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[ResultHandler] Ошибка выгрузки Excel для опроса #%d (%s): %v", surveyID, title, err)
	}
}

// handleResultError обрабатывает ошибки сервиса результатов
func (h *ResultHandler) handleResultError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in ResultHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
