package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/yourusername/survey-api/internal/domain/repository"
	apperrors "github.com/yourusername/survey-api/internal/pkg/errors"
	"github.com/yourusername/survey-api/internal/service/sessionmanager"
)

// SessionManager координирует живые сессии прохождения опросов.
// Сессии разных пользователей и разных опросов полностью независимы:
// каждая держит собственное состояние и собственный канал событий.
type SessionManager struct {
	config   *sessionmanager.Config
	deps     *sessionmanager.Dependencies
	selector *sessionmanager.QuestionSelector
	recorder *sessionmanager.ResponseRecorder

	// Ключ - "surveyID:userID"
	sessions sync.Map

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSessionManager создает новый менеджер сессий
func NewSessionManager(
	surveyRepo repository.SurveyRepository,
	questionRepo repository.QuestionRepository,
	responseRepo repository.ResponseRepository,
	cacheRepo repository.CacheRepository,
	presenter sessionmanager.Presenter,
	clock sessionmanager.Clock,
	config *sessionmanager.Config,
) *SessionManager {
	ctx, cancel := context.WithCancel(context.Background())

	if config == nil {
		config = sessionmanager.DefaultConfig()
	}
	if clock == nil {
		clock = sessionmanager.NewRealClock()
	}

	deps := &sessionmanager.Dependencies{
		SurveyRepo:   surveyRepo,
		QuestionRepo: questionRepo,
		ResponseRepo: responseRepo,
		CacheRepo:    cacheRepo,
		Presenter:    presenter,
		Clock:        clock,
	}

	sm := &SessionManager{
		config:   config,
		deps:     deps,
		selector: sessionmanager.NewQuestionSelector(config, deps),
		recorder: sessionmanager.NewResponseRecorder(config, deps),
		ctx:      ctx,
		cancel:   cancel,
	}

	log.Println("[SessionManager] Менеджер сессий опросов инициализирован")
	return sm
}

// Selector возвращает селектор вопросов (для переиспользования другими сервисами)
func (sm *SessionManager) Selector() *sessionmanager.QuestionSelector {
	return sm.selector
}

func sessionKey(surveyID uint, userID string) string {
	return fmt.Sprintf("%d:%s", surveyID, userID)
}

// StartSession начинает прохождение активного опроса пользователем.
// Если пользователь уже прошел опрос, возвращает sessionmanager.ErrAlreadyCompleted.
// Перезапуск после таймаута - это новый вызов StartSession: уже отвеченные вопросы
// селектор пропустит сам.
func (sm *SessionManager) StartSession(ctx context.Context, surveyID uint, userID, username string) (*sessionmanager.Session, error) {
	survey, err := sm.deps.SurveyRepo.GetWithQuestions(surveyID)
	if err != nil {
		return nil, err
	}

	// Неактивный опрос для участника неотличим от отсутствующего
	if !survey.IsActive {
		return nil, apperrors.ErrNotFound
	}

	if len(survey.Questions) == 0 {
		return nil, fmt.Errorf("%w: survey has no questions", apperrors.ErrValidation)
	}

	session := sessionmanager.NewSession(
		uuid.NewString(),
		survey,
		userID,
		username,
		sm.config,
		sm.deps,
		sm.selector,
		sm.recorder,
		func(s *sessionmanager.Session) {
			// Удаляем ключ только если он все еще указывает на эту сессию:
			// закрытие отставшей сессии не должно снести живую
			sm.sessions.CompareAndDelete(sessionKey(s.SurveyID, s.UserID), s)
			log.Printf("[SessionManager] Сессия %s (survey=%d, user=%s) удалена из реестра", s.Token, s.SurveyID, s.UserID)
		},
	)

	// Атомарно резервируем ключ до проверки завершенности: два одновременных
	// старта для одной пары (опрос, пользователь) не должны пройти оба
	key := sessionKey(surveyID, userID)
	if existing, loaded := sm.sessions.LoadOrStore(key, session); loaded {
		state, _ := existing.(*sessionmanager.Session).State()
		log.Printf("[SessionManager] Сессия для (survey=%d, user=%s) уже существует в состоянии %s", surveyID, userID, state)
		return nil, ErrSessionExists
	}

	// Входная проверка завершенности; при отказе освобождаем резерв
	completed, err := sm.selector.HasCompleted(ctx, surveyID, userID)
	if err != nil {
		sm.sessions.CompareAndDelete(key, session)
		return nil, err
	}
	if completed {
		sm.sessions.CompareAndDelete(key, session)
		if perr := sm.deps.Presenter.ShowAlreadyCompleted(userID, survey); perr != nil {
			log.Printf("[SessionManager] Ошибка доставки already_completed пользователю %s: %v", userID, perr)
		}
		return nil, sessionmanager.ErrAlreadyCompleted
	}

	go session.Run(sm.ctx)

	log.Printf("[SessionManager] Запущена сессия %s (survey=%d, user=%s)", session.Token, surveyID, userID)
	return session, nil
}

// StartSessionByTitle начинает прохождение активного опроса, найденного
// по точному названию. Удобно для клиентов, которые знают опрос по имени,
// а не по ID.
func (sm *SessionManager) StartSessionByTitle(ctx context.Context, title, userID, username string) (*sessionmanager.Session, error) {
	survey, err := sm.deps.SurveyRepo.GetActiveByTitle(title)
	if err != nil {
		return nil, err
	}
	return sm.StartSession(ctx, survey.ID, userID, username)
}

// GetSession возвращает живую сессию пары (опрос, пользователь)
func (sm *SessionManager) GetSession(surveyID uint, userID string) (*sessionmanager.Session, error) {
	value, ok := sm.sessions.Load(sessionKey(surveyID, userID))
	if !ok {
		return nil, ErrNoActiveSession
	}
	return value.(*sessionmanager.Session), nil
}

// SubmitAnswer передает ответ или пропуск в живую сессию.
// actorID - инициатор события; сессия сама отклонит чужие события.
func (sm *SessionManager) SubmitAnswer(surveyID uint, ownerID string, ev sessionmanager.AnswerEvent) error {
	session, err := sm.GetSession(surveyID, ownerID)
	if err != nil {
		return err
	}

	err = session.Submit(ev)
	if errors.Is(err, sessionmanager.ErrSessionClosed) {
		return ErrNoActiveSession
	}
	return err
}

// OpenTextInput запрашивает поле свободного ввода для текущего текстового вопроса
func (sm *SessionManager) OpenTextInput(surveyID uint, ownerID, actorID string, questionID uint) error {
	session, err := sm.GetSession(surveyID, ownerID)
	if err != nil {
		return err
	}

	err = session.OpenTextInput(actorID, questionID)
	if errors.Is(err, sessionmanager.ErrSessionClosed) {
		return ErrNoActiveSession
	}
	return err
}

// Shutdown останавливает все живые сессии
func (sm *SessionManager) Shutdown() {
	log.Println("[SessionManager] Остановка всех сессий")
	sm.cancel()
}

// ActiveSessionCount возвращает число живых сессий (для диагностики)
func (sm *SessionManager) ActiveSessionCount() int {
	count := 0
	sm.sessions.Range(func(_, _ interface{}) bool {
		count++
		return true
	})
	return count
}
