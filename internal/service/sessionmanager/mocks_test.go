package sessionmanager

import (
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/survey-api/internal/domain/entity"
	"github.com/yourusername/survey-api/internal/domain/repository"
)

// ============================================================================
// Моки репозиториев и презентера для тестов компонентов сессий
// ============================================================================

// MockSurveyRepo реализует repository.SurveyRepository
type MockSurveyRepo struct {
	mock.Mock
}

func (m *MockSurveyRepo) Create(survey *entity.Survey) error {
	args := m.Called(survey)
	return args.Error(0)
}

func (m *MockSurveyRepo) GetByID(id uint) (*entity.Survey, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Survey), args.Error(1)
}

func (m *MockSurveyRepo) GetWithQuestions(id uint) (*entity.Survey, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Survey), args.Error(1)
}

func (m *MockSurveyRepo) GetActiveByTitle(title string) (*entity.Survey, error) {
	args := m.Called(title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Survey), args.Error(1)
}

func (m *MockSurveyRepo) SearchByTitle(query string, onlyActive bool, limit int) ([]entity.Survey, error) {
	args := m.Called(query, onlyActive, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Survey), args.Error(1)
}

func (m *MockSurveyRepo) GetActive() ([]entity.Survey, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Survey), args.Error(1)
}

func (m *MockSurveyRepo) List(limit, offset int) ([]entity.Survey, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Survey), args.Error(1)
}

func (m *MockSurveyRepo) SetActive(surveyID uint, active bool) error {
	args := m.Called(surveyID, active)
	return args.Error(0)
}

func (m *MockSurveyRepo) Update(survey *entity.Survey) error {
	args := m.Called(survey)
	return args.Error(0)
}

func (m *MockSurveyRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockQuestionRepo реализует repository.QuestionRepository
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) Create(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) CreateBatch(questions []entity.Question) error {
	args := m.Called(questions)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetBySurveyID(surveyID uint) ([]entity.Question, error) {
	args := m.Called(surveyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) CountBySurveyID(surveyID uint) (int64, error) {
	args := m.Called(surveyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQuestionRepo) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockResponseRepo реализует repository.ResponseRepository
type MockResponseRepo struct {
	mock.Mock
}

func (m *MockResponseRepo) Create(response *entity.Response) error {
	args := m.Called(response)
	return args.Error(0)
}

func (m *MockResponseRepo) GetBySurveyAndUser(surveyID uint, userID string) ([]entity.Response, error) {
	args := m.Called(surveyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Response), args.Error(1)
}

func (m *MockResponseRepo) GetBySurveyID(surveyID uint) ([]entity.Response, error) {
	args := m.Called(surveyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Response), args.Error(1)
}

func (m *MockResponseRepo) GetByUser(userID string) ([]entity.Response, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Response), args.Error(1)
}

func (m *MockResponseRepo) CountBySurveyAndUser(surveyID uint, userID string) (int64, error) {
	args := m.Called(surveyID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResponseRepo) CountDistinctParticipants(surveyID uint) (int64, error) {
	args := m.Called(surveyID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockResponseRepo) GetDailyTrend(surveyID uint) ([]repository.DailyTrendRow, error) {
	args := m.Called(surveyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.DailyTrendRow), args.Error(1)
}

func (m *MockResponseRepo) GetLeaderboard(limit int) ([]repository.LeaderboardRow, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.LeaderboardRow), args.Error(1)
}

// MockCacheRepo реализует repository.CacheRepository
type MockCacheRepo struct {
	mock.Mock
}

func (m *MockCacheRepo) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheRepo) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockCacheRepo) SetJSON(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockCacheRepo) GetJSON(key string, dest interface{}) error {
	args := m.Called(key, dest)
	return args.Error(0)
}

func (m *MockCacheRepo) Exists(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

// MockPresenter реализует Presenter
type MockPresenter struct {
	mock.Mock
}

func (m *MockPresenter) ShowQuestion(userID string, survey *entity.Survey, question *entity.Question, position, total int) error {
	args := m.Called(userID, survey, question, position, total)
	return args.Error(0)
}

func (m *MockPresenter) ShowTextPrompt(userID string, survey *entity.Survey, question *entity.Question) error {
	args := m.Called(userID, survey, question)
	return args.Error(0)
}

func (m *MockPresenter) ShowCompleted(userID string, survey *entity.Survey) error {
	args := m.Called(userID, survey)
	return args.Error(0)
}

func (m *MockPresenter) ShowTimedOut(userID string, survey *entity.Survey) error {
	args := m.Called(userID, survey)
	return args.Error(0)
}

func (m *MockPresenter) ShowAlreadyCompleted(userID string, survey *entity.Survey) error {
	args := m.Called(userID, survey)
	return args.Error(0)
}

// ============================================================================
// Ручной фейковый Clock: таймеры не срабатывают сами, тест запускает их явно
// ============================================================================

type fakeTimer struct {
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{}
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) TimerHandle {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

// timer возвращает i-й взведенный таймер (в порядке взведения)
func (c *fakeClock) timer(i int) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.timers) {
		return nil
	}
	return c.timers[i]
}

func (c *fakeClock) timerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// fire запускает колбэк i-го таймера, как это сделал бы time.AfterFunc
func (c *fakeClock) fire(i int) {
	t := c.timer(i)
	if t != nil {
		t.f()
	}
}
