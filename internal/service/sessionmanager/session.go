package sessionmanager

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/yourusername/survey-api/internal/domain/entity"
	"github.com/yourusername/survey-api/internal/domain/repository"
	apperrors "github.com/yourusername/survey-api/internal/pkg/errors"
)

type eventKind int

const (
	eventAnswer eventKind = iota
	eventOpenText
	eventTimerFired
)

// AnswerEvent - входящее действие пользователя по текущему вопросу сессии.
// Skip и ответ взаимно исключены; QuestionID привязывает действие к конкретному
// вопросу, чтобы запоздавшее повторное действие не попало в следующий вопрос.
type AnswerEvent struct {
	UserID         string
	Username       string
	QuestionID     uint
	SelectedOption *int
	TextAnswer     *string
	Skip           bool
}

// sessionEvent - внутреннее событие сессии. Ответы и срабатывания таймера идут
// через один упорядоченный канал: гонка "ответ против таймаута" разрешается
// детерминированно - выигрывает событие, обработанное первым.
type sessionEvent struct {
	kind     eventKind
	answer   AnswerEvent
	timerSeq uint64
	reply    chan error
}

// Session - машина состояний прохождения одного опроса одним пользователем.
// Жизненный цикл: AwaitingAnswer -> Recording -> Advancing -> AwaitingAnswer | Completed.
// Таймаут бездействия в AwaitingAnswer переводит сессию в терминальный TimedOut.
type Session struct {
	Token    string
	SurveyID uint
	UserID   string
	Username string

	config   *Config
	deps     *Dependencies
	selector *QuestionSelector
	recorder *ResponseRecorder

	survey *entity.Survey

	events    chan sessionEvent
	done      chan struct{}
	closeOnce sync.Once
	onClose   func(*Session)

	mu      sync.RWMutex
	state   string
	current *entity.Question

	timer    TimerHandle
	timerSeq uint64
}

// NewSession создает сессию для пользователя и опроса (survey уже с вопросами по порядку)
func NewSession(
	token string,
	survey *entity.Survey,
	userID, username string,
	config *Config,
	deps *Dependencies,
	selector *QuestionSelector,
	recorder *ResponseRecorder,
	onClose func(*Session),
) *Session {
	return &Session{
		Token:    token,
		SurveyID: survey.ID,
		UserID:   userID,
		Username: username,
		config:   config,
		deps:     deps,
		selector: selector,
		recorder: recorder,
		survey:   survey,
		events:   make(chan sessionEvent, config.EventBuffer),
		done:     make(chan struct{}),
		onClose:  onClose,
		state:    StateAdvancing,
	}
}

// State возвращает текущее состояние и текущий вопрос сессии
func (s *Session) State() (string, *entity.Question) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.current
}

func (s *Session) setState(state string, current *entity.Question) {
	s.mu.Lock()
	s.state = state
	s.current = current
	s.mu.Unlock()
}

// Submit передает ответ или пропуск в сессию и дожидается результата обработки
func (s *Session) Submit(ev AnswerEvent) error {
	return s.push(sessionEvent{kind: eventAnswer, answer: ev, reply: make(chan error, 1)})
}

// OpenTextInput - первый из двух под-ожиданий текстового вопроса: пользователь
// запросил поле ввода для вопроса questionID. Таймер не перевзводится -
// внешний предел покрывает оба ожидания.
func (s *Session) OpenTextInput(userID string, questionID uint) error {
	return s.push(sessionEvent{kind: eventOpenText, answer: AnswerEvent{UserID: userID, QuestionID: questionID}, reply: make(chan error, 1)})
}

func (s *Session) push(ev sessionEvent) error {
	select {
	case s.events <- ev:
	case <-s.done:
		return ErrSessionClosed
	}
	select {
	case err := <-ev.reply:
		return err
	case <-s.done:
		return ErrSessionClosed
	}
}

// Run запускает цикл сессии. Вызывается в отдельной горутине менеджером сессий.
func (s *Session) Run(ctx context.Context) {
	defer s.close()

	// Входная проверка: если селектору нечего предложить, опрос уже пройден
	first, err := s.selector.NextQuestion(ctx, s.SurveyID, s.UserID)
	if err != nil {
		log.Printf("[Session] Не удалось выбрать первый вопрос (survey=%d, user=%s): %v", s.SurveyID, s.UserID, err)
		return
	}
	if first == nil {
		s.setState(StateAlreadyCompleted, nil)
		if err := s.deps.Presenter.ShowAlreadyCompleted(s.UserID, s.survey); err != nil {
			log.Printf("[Session] Ошибка доставки already_completed пользователю %s: %v", s.UserID, err)
		}
		return
	}

	s.presentQuestion(first)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Session] Остановка сессии %s (survey=%d, user=%s): контекст завершен", s.Token, s.SurveyID, s.UserID)
			return

		case ev := <-s.events:
			switch ev.kind {
			case eventTimerFired:
				if s.handleTimerFired(ev) {
					return
				}
			case eventOpenText:
				s.handleOpenText(ev)
			case eventAnswer:
				if s.handleAnswer(ctx, ev) {
					return
				}
			}
		}
	}
}

// handleTimerFired обрабатывает срабатывание таймера бездействия.
// Возвращает true, если сессия завершена.
func (s *Session) handleTimerFired(ev sessionEvent) bool {
	// Срабатывание отмененного таймера от предыдущего вопроса игнорируется
	if ev.timerSeq != s.timerSeq {
		return false
	}

	s.setState(StateTimedOut, nil)
	log.Printf("[Session] Сессия %s (survey=%d, user=%s) завершена по таймауту", s.Token, s.SurveyID, s.UserID)
	if err := s.deps.Presenter.ShowTimedOut(s.UserID, s.survey); err != nil {
		log.Printf("[Session] Ошибка доставки timeout пользователю %s: %v", s.UserID, err)
	}
	return true
}

func (s *Session) handleOpenText(ev sessionEvent) {
	if ev.answer.UserID != s.UserID {
		ev.reply <- apperrors.ErrUnauthorized
		return
	}

	_, current := s.State()
	if current == nil || !current.IsText() {
		ev.reply <- fmt.Errorf("%w: текущий вопрос не предполагает свободный ввод", apperrors.ErrValidation)
		return
	}
	if ev.answer.QuestionID != current.ID {
		ev.reply <- fmt.Errorf("%w: вопрос #%d не является текущим", apperrors.ErrValidation, ev.answer.QuestionID)
		return
	}

	if err := s.deps.Presenter.ShowTextPrompt(s.UserID, s.survey, current); err != nil {
		log.Printf("[Session] Ошибка доставки текстового поля пользователю %s: %v", s.UserID, err)
	}
	ev.reply <- nil
}

// handleAnswer обрабатывает ответ или пропуск. Возвращает true, если сессия завершена.
func (s *Session) handleAnswer(ctx context.Context, ev sessionEvent) bool {
	answer := ev.answer

	// Событие от чужого пользователя отбрасывается без изменения состояния
	if answer.UserID != s.UserID {
		log.Printf("[Session] Отклонено событие от пользователя %s: сессия принадлежит %s", answer.UserID, s.UserID)
		ev.reply <- apperrors.ErrUnauthorized
		return false
	}

	_, current := s.State()
	if current == nil {
		ev.reply <- ErrSessionClosed
		return false
	}

	// Действие по уже пройденному вопросу: сессия продвинулась, повтор - no-op
	if answer.QuestionID != 0 && answer.QuestionID != current.ID {
		ev.reply <- repository.ErrDuplicateAnswer
		return false
	}

	if err := validateAnswer(current, answer); err != nil {
		ev.reply <- err
		return false
	}

	s.setState(StateRecording, current)
	s.stopTimer()

	username := answer.Username
	if username == "" {
		username = s.Username
	}

	_, err := s.recorder.Record(ctx, s.SurveyID, current.ID, s.UserID, username, answer.SelectedOption, answer.TextAnswer)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateAnswer) {
			// Ответ уже записан конкурентной отправкой: сессия уже продвинулась,
			// дополнительных действий не требуется
			ev.reply <- repository.ErrDuplicateAnswer
			s.setState(StateAwaitingAnswer, current)
			s.armTimer()
			return false
		}
		log.Printf("[Session] Ошибка записи ответа (survey=%d, question=%d, user=%s): %v", s.SurveyID, current.ID, s.UserID, err)
		ev.reply <- err
		return true
	}

	s.setState(StateAdvancing, nil)

	next, err := s.selector.NextQuestion(ctx, s.SurveyID, s.UserID)
	if err != nil {
		log.Printf("[Session] Ошибка выбора следующего вопроса (survey=%d, user=%s): %v", s.SurveyID, s.UserID, err)
		ev.reply <- err
		return true
	}

	if next == nil {
		s.setState(StateCompleted, nil)
		log.Printf("[Session] Пользователь %s завершил опрос #%d", s.UserID, s.SurveyID)
		if perr := s.deps.Presenter.ShowCompleted(s.UserID, s.survey); perr != nil {
			log.Printf("[Session] Ошибка доставки completed пользователю %s: %v", s.UserID, perr)
		}
		ev.reply <- nil
		return true
	}

	s.presentQuestion(next)
	ev.reply <- nil
	return false
}

// validateAnswer проверяет согласованность действия с видом текущего вопроса
func validateAnswer(q *entity.Question, ev AnswerEvent) error {
	if ev.Skip {
		if q.IsRequired {
			return fmt.Errorf("%w: вопрос #%d обязательный, пропуск недоступен", apperrors.ErrValidation, q.ID)
		}
		if ev.SelectedOption != nil || ev.TextAnswer != nil {
			return fmt.Errorf("%w: пропуск не может содержать ответ", apperrors.ErrValidation)
		}
		return nil
	}

	switch {
	case q.IsChoice():
		if ev.SelectedOption == nil {
			return fmt.Errorf("%w: для вопроса с вариантами нужен selected_option", apperrors.ErrValidation)
		}
		if ev.TextAnswer != nil {
			return fmt.Errorf("%w: текстовый ответ недопустим для вопроса с вариантами", apperrors.ErrValidation)
		}
		if !q.IsValidOption(*ev.SelectedOption) {
			return fmt.Errorf("%w: вариант #%d вне диапазона 0..%d", apperrors.ErrValidation, *ev.SelectedOption, len(q.Options)-1)
		}
	case q.IsText():
		if ev.SelectedOption != nil {
			return fmt.Errorf("%w: выбор варианта недопустим для текстового вопроса", apperrors.ErrValidation)
		}
		if ev.TextAnswer == nil || *ev.TextAnswer == "" {
			return fmt.Errorf("%w: для текстового вопроса нужен непустой text_answer", apperrors.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: неизвестный вид вопроса %q", apperrors.ErrValidation, q.Kind)
	}
	return nil
}

func (s *Session) presentQuestion(q *entity.Question) {
	s.setState(StateAwaitingAnswer, q)
	s.armTimer()

	if err := s.deps.Presenter.ShowQuestion(s.UserID, s.survey, q, q.Order+1, len(s.survey.Questions)); err != nil {
		log.Printf("[Session] Ошибка доставки вопроса #%d пользователю %s: %v", q.ID, s.UserID, err)
	}
}

// armTimer взводит таймер бездействия текущего вопроса. Номер поколения отличает
// живое срабатывание от срабатывания уже отмененного таймера, застрявшего в канале.
func (s *Session) armTimer() {
	s.stopTimer()
	s.timerSeq++
	seq := s.timerSeq

	s.timer = s.deps.Clock.AfterFunc(s.config.IdleTimeout, func() {
		select {
		case s.events <- sessionEvent{kind: eventTimerFired, timerSeq: seq}:
		case <-s.done:
		}
	})
}

func (s *Session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		s.stopTimer()
		close(s.done)
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}
