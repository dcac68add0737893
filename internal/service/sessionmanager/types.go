package sessionmanager

import (
	"errors"
	"time"

	"github.com/yourusername/survey-api/internal/domain/entity"
	"github.com/yourusername/survey-api/internal/domain/repository"
)

// Состояния сессии прохождения опроса
const (
	StateAwaitingAnswer   = "awaiting_answer"
	StateRecording        = "recording"
	StateAdvancing        = "advancing"
	StateCompleted        = "completed"
	StateTimedOut         = "timed_out"
	StateAlreadyCompleted = "already_completed"
)

var (
	// ErrAlreadyCompleted означает, что пользователь уже прошел опрос до конца.
	ErrAlreadyCompleted = errors.New("survey already completed by this user")
	// ErrSessionClosed означает, что сессия уже завершена (по таймауту или полностью пройдена).
	ErrSessionClosed = errors.New("session is closed")
)

// Config содержит настройки компонентов сессий опросов
type Config struct {
	// IdleTimeout - предел бездействия, после которого сессия завершается по таймауту
	IdleTimeout time.Duration

	// EventBuffer - размер буфера канала событий сессии
	EventBuffer int

	// CompletionCacheTTL - время жизни кеш-отметки "опрос пройден"
	CompletionCacheTTL time.Duration

	// SearchTimeout - общий предел времени на поисковые запросы (автодополнение)
	SearchTimeout time.Duration

	// SearchRetries - число повторов read-only поиска перед пустым результатом
	SearchRetries int
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		IdleTimeout:        5 * time.Minute,
		EventBuffer:        16,
		CompletionCacheTTL: 24 * time.Hour,
		SearchTimeout:      2 * time.Second,
		SearchRetries:      2,
	}
}

// Presenter - односторонний интерфейс доставки сообщений пользователю.
// Доставка best-effort: ошибки логируются вызывающей стороной и не влияют
// на корректность сессии.
type Presenter interface {
	ShowQuestion(userID string, survey *entity.Survey, question *entity.Question, position, total int) error
	ShowTextPrompt(userID string, survey *entity.Survey, question *entity.Question) error
	ShowCompleted(userID string, survey *entity.Survey) error
	ShowTimedOut(userID string, survey *entity.Survey) error
	ShowAlreadyCompleted(userID string, survey *entity.Survey) error
}

// TimerHandle - запущенный одноразовый таймер, который можно остановить
type TimerHandle interface {
	Stop() bool
}

// Clock планирует одноразовый вызов f через d. Реализация по умолчанию - time.AfterFunc,
// в тестах подменяется ручным управлением срабатываниями.
type Clock interface {
	AfterFunc(d time.Duration, f func()) TimerHandle
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) TimerHandle {
	return time.AfterFunc(d, f)
}

// NewRealClock возвращает Clock на основе time.AfterFunc
func NewRealClock() Clock {
	return realClock{}
}

// Dependencies содержит зависимости компонентов сессий
type Dependencies struct {
	SurveyRepo   repository.SurveyRepository
	QuestionRepo repository.QuestionRepository
	ResponseRepo repository.ResponseRepository
	CacheRepo    repository.CacheRepository
	Presenter    Presenter
	Clock        Clock
}
