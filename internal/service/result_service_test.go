package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/survey-api/internal/domain/entity"
	"github.com/yourusername/survey-api/internal/domain/repository"
)

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}

// ============================================================================
// Тесты для ResultService.Aggregate
// ============================================================================

// TestAggregate_SkipsExcludedFromDenominator — явные пропуски не попадают
// ни в счетчики вариантов, ни в знаменатель: проценты сходятся к 100.
func TestAggregate_SkipsExcludedFromDenominator(t *testing.T) {
	survey := &entity.Survey{
		ID:    7,
		Title: "Обратная связь",
		Questions: []entity.Question{
			{ID: 1, SurveyID: 7, Order: 0, Kind: entity.QuestionKindChoice, Options: entity.StringArray{"Да", "Нет"}},
		},
	}
	responses := []entity.Response{
		{QuestionID: 1, UserID: "u1", SelectedOption: intPtr(0)},
		{QuestionID: 1, UserID: "u2", SelectedOption: intPtr(0)},
		{QuestionID: 1, UserID: "u3", SelectedOption: intPtr(1)},
		{QuestionID: 1, UserID: "u4"}, // пропуск
	}

	mockSurveys := new(MockSurveyRepository)
	mockSurveys.On("GetWithQuestions", uint(7)).Return(survey, nil)
	mockResponses := new(MockResponseRepository)
	mockResponses.On("GetBySurveyID", uint(7)).Return(responses, nil)
	mockResponses.On("CountDistinctParticipants", uint(7)).Return(int64(4), nil)

	svc := NewResultService(mockSurveys, new(MockQuestionRepository), mockResponses, nil)

	results, err := svc.Aggregate(7, false)

	require.NoError(t, err)
	assert.Equal(t, int64(4), results.TotalParticipants, "Участник с одним пропуском тоже участник")

	q := results.Questions[0]
	assert.Equal(t, int64(3), q.TotalResponses, "Пропуск не входит в знаменатель")
	assert.Equal(t, int64(2), q.Options[0].Count)
	assert.Equal(t, int64(1), q.Options[1].Count)
	assert.Equal(t, 67, q.Options[0].Percentage)
	assert.Equal(t, 33, q.Options[1].Percentage)
}

// TestAggregate_TextSamplesLimited — текстовых примеров не больше пяти,
// остаток отражается счетчиком.
func TestAggregate_TextSamplesLimited(t *testing.T) {
	survey := &entity.Survey{
		ID:    7,
		Title: "Обратная связь",
		Questions: []entity.Question{
			{ID: 1, SurveyID: 7, Order: 0, Kind: entity.QuestionKindText},
		},
	}
	var responses []entity.Response
	for i := 0; i < 7; i++ {
		responses = append(responses, entity.Response{
			QuestionID: 1,
			UserID:     fmt.Sprintf("u%d", i),
			TextAnswer: strPtr(fmt.Sprintf("ответ %d", i)),
		})
	}

	mockSurveys := new(MockSurveyRepository)
	mockSurveys.On("GetWithQuestions", uint(7)).Return(survey, nil)
	mockResponses := new(MockResponseRepository)
	mockResponses.On("GetBySurveyID", uint(7)).Return(responses, nil)
	mockResponses.On("CountDistinctParticipants", uint(7)).Return(int64(7), nil)

	svc := NewResultService(mockSurveys, new(MockQuestionRepository), mockResponses, nil)

	results, err := svc.Aggregate(7, false)

	require.NoError(t, err)
	q := results.Questions[0]
	assert.Equal(t, int64(7), q.TotalResponses)
	assert.Len(t, q.TextSamples, 5)
	assert.Equal(t, int64(2), q.RemainingTexts)
}

// TestAggregate_ParticipantsFallback — сбой COUNT DISTINCT не срывает отчет:
// участники пересчитываются по загруженной выборке.
func TestAggregate_ParticipantsFallback(t *testing.T) {
	survey := &entity.Survey{
		ID:    7,
		Title: "Обратная связь",
		Questions: []entity.Question{
			{ID: 1, SurveyID: 7, Order: 0, Kind: entity.QuestionKindChoice, Options: entity.StringArray{"Да", "Нет"}},
		},
	}
	responses := []entity.Response{
		{QuestionID: 1, UserID: "u1", SelectedOption: intPtr(0)},
		{QuestionID: 1, UserID: "u2", SelectedOption: intPtr(1)},
	}

	mockSurveys := new(MockSurveyRepository)
	mockSurveys.On("GetWithQuestions", uint(7)).Return(survey, nil)
	mockResponses := new(MockResponseRepository)
	mockResponses.On("GetBySurveyID", uint(7)).Return(responses, nil)
	mockResponses.On("CountDistinctParticipants", uint(7)).Return(int64(0), errors.New("db error"))

	svc := NewResultService(mockSurveys, new(MockQuestionRepository), mockResponses, nil)

	results, err := svc.Aggregate(7, false)

	require.NoError(t, err)
	assert.Equal(t, int64(2), results.TotalParticipants)
}

// ============================================================================
// Тесты для CompletionStatus и Leaderboard
// ============================================================================

// TestCompletionStatus_CountsSkips — в счетчик отвеченных входят и пропуски.
func TestCompletionStatus_CountsSkips(t *testing.T) {
	mockQuestions := new(MockQuestionRepository)
	mockQuestions.On("CountBySurveyID", uint(7)).Return(int64(4), nil)
	mockResponses := new(MockResponseRepository)
	mockResponses.On("CountBySurveyAndUser", uint(7), "u1").Return(int64(2), nil)

	svc := NewResultService(new(MockSurveyRepository), mockQuestions, mockResponses, nil)

	status, err := svc.CompletionStatus(7, "u1")

	require.NoError(t, err)
	assert.Equal(t, int64(2), status.Answered)
	assert.Equal(t, int64(4), status.Total)
	assert.Equal(t, 50, status.Percent)
}

// TestLeaderboard_LimitClamped — нулевой лимит заменяется умолчанием,
// завышенный срезается до максимума.
func TestLeaderboard_LimitClamped(t *testing.T) {
	mockResponses := new(MockResponseRepository)
	mockResponses.On("GetLeaderboard", 10).Return([]repository.LeaderboardRow{}, nil).Once()
	mockResponses.On("GetLeaderboard", 25).Return([]repository.LeaderboardRow{}, nil).Once()

	svc := NewResultService(new(MockSurveyRepository), new(MockQuestionRepository), mockResponses, nil)

	_, err := svc.Leaderboard(0)
	require.NoError(t, err)
	_, err = svc.Leaderboard(100)
	require.NoError(t, err)

	mockResponses.AssertExpectations(t)
}

// ============================================================================
// Тесты для ExportRows
// ============================================================================

// TestExportRows_RendersAnswers — выбранный вариант выгружается текстом,
// пропуск помечается явно, порядок следует порядку вопросов.
func TestExportRows_RendersAnswers(t *testing.T) {
	survey := &entity.Survey{
		ID:    7,
		Title: "Обратная связь",
		Questions: []entity.Question{
			{ID: 1, SurveyID: 7, Order: 0, Kind: entity.QuestionKindChoice, Options: entity.StringArray{"Да", "Нет"}},
			{ID: 2, SurveyID: 7, Order: 1, Kind: entity.QuestionKindText},
		},
	}
	responses := []entity.Response{
		{QuestionID: 2, UserID: "u1", Username: "user one", TextAnswer: strPtr("норм")},
		{QuestionID: 1, UserID: "u1", Username: "user one", SelectedOption: intPtr(1)},
		{QuestionID: 1, UserID: "u2", Username: "user two"}, // пропуск
	}

	mockSurveys := new(MockSurveyRepository)
	mockSurveys.On("GetWithQuestions", uint(7)).Return(survey, nil)
	mockResponses := new(MockResponseRepository)
	mockResponses.On("GetBySurveyID", uint(7)).Return(responses, nil)

	svc := NewResultService(mockSurveys, new(MockQuestionRepository), mockResponses, nil)

	title, rows, err := svc.ExportRows(7)

	require.NoError(t, err)
	assert.Equal(t, "Обратная связь", title)
	require.Len(t, rows, 3)

	// Сначала все ответы вопроса #1, затем вопроса #2
	assert.Equal(t, "Нет", rows[0].Answer)
	assert.Equal(t, "(пропущено)", rows[1].Answer)
	assert.Equal(t, "норм", rows[2].Answer)
	assert.Equal(t, 1, rows[2].QuestionOrder)
}
