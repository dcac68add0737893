package sessionmanager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/survey-api/internal/domain/entity"
	"github.com/yourusername/survey-api/internal/domain/repository"
)

// TestRecord_SavesAnswerAndInvalidatesCache — успешная запись сбрасывает
// кеш-отметку завершенности: набор отвеченных вопросов изменился.
func TestRecord_SavesAnswerAndInvalidatesCache(t *testing.T) {
	mockResponses := new(MockResponseRepo)
	mockResponses.On("Create", mock.MatchedBy(func(r *entity.Response) bool {
		return r.SurveyID == 7 && r.QuestionID == 3 && r.UserID == "u1" && *r.SelectedOption == 1
	})).Return(nil)

	mockCache := new(MockCacheRepo)
	mockCache.On("Delete", "survey:7:completed:u1").Return(nil)

	recorder := NewResponseRecorder(DefaultConfig(), &Dependencies{
		ResponseRepo: mockResponses,
		CacheRepo:    mockCache,
	})

	resp, err := recorder.Record(context.Background(), 7, 3, "u1", "user one", intPtr(1), nil)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "user one", resp.Username)
	mockResponses.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

// TestRecord_SkipStoresBothFieldsEmpty — пропуск сохраняется строкой
// с пустыми selected_option и text_answer.
func TestRecord_SkipStoresBothFieldsEmpty(t *testing.T) {
	mockResponses := new(MockResponseRepo)
	mockResponses.On("Create", mock.MatchedBy(func(r *entity.Response) bool {
		return r.SelectedOption == nil && r.TextAnswer == nil
	})).Return(nil)

	mockCache := new(MockCacheRepo)
	mockCache.On("Delete", "survey:7:completed:u1").Return(nil)

	recorder := NewResponseRecorder(DefaultConfig(), &Dependencies{
		ResponseRepo: mockResponses,
		CacheRepo:    mockCache,
	})

	resp, err := recorder.Record(context.Background(), 7, 3, "u1", "u1", nil, nil)

	require.NoError(t, err)
	assert.True(t, resp.IsSkip())
}

// TestRecord_DuplicateIsNotAnError — повторная запись возвращает
// ErrDuplicateAnswer как есть, без оборачивания: вызывающий код различает
// этот штатный исход гонки.
func TestRecord_DuplicateIsNotAnError(t *testing.T) {
	mockResponses := new(MockResponseRepo)
	mockResponses.On("Create", mock.MatchedBy(func(r *entity.Response) bool { return true })).
		Return(repository.ErrDuplicateAnswer)

	recorder := NewResponseRecorder(DefaultConfig(), &Dependencies{
		ResponseRepo: mockResponses,
	})

	resp, err := recorder.Record(context.Background(), 7, 3, "u1", "u1", intPtr(0), nil)

	assert.ErrorIs(t, err, repository.ErrDuplicateAnswer)
	assert.Nil(t, resp)
}
