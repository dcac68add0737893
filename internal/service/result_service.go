package service

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/yourusername/survey-api/internal/domain/entity"
	"github.com/yourusername/survey-api/internal/domain/repository"
)

const (
	textSampleLimit     = 5
	resultsCacheTTL     = 30 * time.Second
	defaultLeaderboard  = 10
	maxLeaderboardLimit = 25
)

// OptionCount - распределение ответов по одному варианту
type OptionCount struct {
	Option     string `json:"option"`
	Count      int64  `json:"count"`
	Percentage int    `json:"percentage"`
}

// QuestionResult - агрегат ответов по одному вопросу
type QuestionResult struct {
	QuestionID     uint          `json:"question_id"`
	Text           string        `json:"text"`
	Kind           string        `json:"kind"`
	TotalResponses int64         `json:"total_responses"`
	Options        []OptionCount `json:"options,omitempty"`
	TextSamples    []string      `json:"text_samples,omitempty"`
	RemainingTexts int64         `json:"remaining_texts,omitempty"`
}

// SurveyResults - полный отчет по опросу
type SurveyResults struct {
	SurveyID          uint             `json:"survey_id"`
	Title             string           `json:"title"`
	TotalParticipants int64            `json:"total_participants"`
	GeneratedAt       time.Time        `json:"generated_at"`
	Questions         []QuestionResult `json:"questions"`
}

// CompletionStatus - прогресс пользователя по опросу
type CompletionStatus struct {
	Answered int64 `json:"answered"`
	Total    int64 `json:"total"`
	Percent  int   `json:"percent"`
}

// UserSurveyStatus - прогресс пользователя по одному активному опросу
type UserSurveyStatus struct {
	SurveyID uint   `json:"survey_id"`
	Title    string `json:"title"`
	Answered int64  `json:"answered"`
	Total    int64  `json:"total"`
	Percent  int    `json:"percent"`
}

// ResultService вычисляет агрегаты по сохраненным ответам.
// С живыми сессиями не взаимодействует: читает только зафиксированные данные.
type ResultService struct {
	surveyRepo   repository.SurveyRepository
	questionRepo repository.QuestionRepository
	responseRepo repository.ResponseRepository
	cacheRepo    repository.CacheRepository
}

// NewResultService создает новый сервис результатов
func NewResultService(
	surveyRepo repository.SurveyRepository,
	questionRepo repository.QuestionRepository,
	responseRepo repository.ResponseRepository,
	cacheRepo repository.CacheRepository,
) *ResultService {
	return &ResultService{
		surveyRepo:   surveyRepo,
		questionRepo: questionRepo,
		responseRepo: responseRepo,
		cacheRepo:    cacheRepo,
	}
}

func resultsCacheKey(surveyID uint) string {
	return fmt.Sprintf("survey:%d:results", surveyID)
}

// Aggregate строит отчет по опросу. refresh=true принудительно пересчитывает,
// минуя кеш. Сбой подсчета по одному вопросу не прерывает остальные:
// частичный отчет лучше, чем никакой.
func (s *ResultService) Aggregate(surveyID uint, refresh bool) (*SurveyResults, error) {
	if !refresh && s.cacheRepo != nil {
		var cached SurveyResults
		if err := s.cacheRepo.GetJSON(resultsCacheKey(surveyID), &cached); err == nil {
			return &cached, nil
		}
	}

	survey, err := s.surveyRepo.GetWithQuestions(surveyID)
	if err != nil {
		return nil, err
	}

	responses, err := s.responseRepo.GetBySurveyID(surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load survey responses: %w", err)
	}

	results := &SurveyResults{
		SurveyID:    survey.ID,
		Title:       survey.Title,
		GeneratedAt: time.Now(),
		Questions:   make([]QuestionResult, 0, len(survey.Questions)),
	}

	participants, err := s.responseRepo.CountDistinctParticipants(surveyID)
	if err != nil {
		// Падение подсчета участников не срывает отчет: считаем по загруженным данным
		log.Printf("[ResultService] Не удалось посчитать участников опроса #%d, считаю по выборке: %v", surveyID, err)
		participants = countDistinctUsers(responses)
	}
	results.TotalParticipants = participants

	byQuestion := make(map[uint][]*entity.Response)
	for i := range responses {
		r := &responses[i]
		byQuestion[r.QuestionID] = append(byQuestion[r.QuestionID], r)
	}

	for i := range survey.Questions {
		q := &survey.Questions[i]
		results.Questions = append(results.Questions, tallyQuestion(q, byQuestion[q.ID]))
	}

	if s.cacheRepo != nil {
		if err := s.cacheRepo.SetJSON(resultsCacheKey(surveyID), results, resultsCacheTTL); err != nil {
			log.Printf("[ResultService] Не удалось закешировать отчет опроса #%d: %v", surveyID, err)
		}
	}
	return results, nil
}

// tallyQuestion агрегирует ответы одного вопроса.
// Явные пропуски не попадают ни в счетчики вариантов, ни в примеры текста.
func tallyQuestion(q *entity.Question, responses []*entity.Response) QuestionResult {
	result := QuestionResult{
		QuestionID: q.ID,
		Text:       q.Text,
		Kind:       q.Kind,
	}

	if q.IsText() {
		for _, r := range responses {
			if r.TextAnswer == nil {
				continue
			}
			result.TotalResponses++
			if len(result.TextSamples) < textSampleLimit {
				result.TextSamples = append(result.TextSamples, *r.TextAnswer)
			}
		}
		if result.TotalResponses > textSampleLimit {
			result.RemainingTexts = result.TotalResponses - textSampleLimit
		}
		return result
	}

	counts := make([]int64, len(q.Options))
	for _, r := range responses {
		if r.SelectedOption == nil {
			continue
		}
		result.TotalResponses++
		if idx := *r.SelectedOption; idx >= 0 && idx < len(counts) {
			counts[idx]++
		}
	}

	result.Options = make([]OptionCount, len(q.Options))
	for i, option := range q.Options {
		result.Options[i] = OptionCount{
			Option:     option,
			Count:      counts[i],
			Percentage: percent(counts[i], result.TotalResponses),
		}
	}
	return result
}

// percent возвращает долю в целых процентах; при нулевом знаменателе - 0
func percent(count, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

func countDistinctUsers(responses []entity.Response) int64 {
	seen := make(map[string]struct{}, len(responses))
	for i := range responses {
		seen[responses[i].UserID] = struct{}{}
	}
	return int64(len(seen))
}

// CompletionStatus возвращает прогресс пользователя: сырые счетчики и процент.
// Счетчик ответов включает явные пропуски.
func (s *ResultService) CompletionStatus(surveyID uint, userID string) (*CompletionStatus, error) {
	total, err := s.questionRepo.CountBySurveyID(surveyID)
	if err != nil {
		return nil, fmt.Errorf("failed to count survey questions: %w", err)
	}

	answered, err := s.responseRepo.CountBySurveyAndUser(surveyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count user responses: %w", err)
	}

	return &CompletionStatus{
		Answered: answered,
		Total:    total,
		Percent:  percent(answered, total),
	}, nil
}

// DailyTrend возвращает суточную динамику ответов опроса.
// Дни без ответов в списке отсутствуют.
func (s *ResultService) DailyTrend(surveyID uint) ([]repository.DailyTrendRow, error) {
	if _, err := s.surveyRepo.GetByID(surveyID); err != nil {
		return nil, err
	}
	return s.responseRepo.GetDailyTrend(surveyID)
}

// Leaderboard возвращает самых активных участников опросов
func (s *ResultService) Leaderboard(limit int) ([]repository.LeaderboardRow, error) {
	if limit <= 0 {
		limit = defaultLeaderboard
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	return s.responseRepo.GetLeaderboard(limit)
}

// UserSurveys возвращает прогресс пользователя по всем активным опросам
func (s *ResultService) UserSurveys(userID string) ([]UserSurveyStatus, error) {
	surveys, err := s.surveyRepo.GetActive()
	if err != nil {
		return nil, err
	}

	responses, err := s.responseRepo.GetByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user responses: %w", err)
	}

	perSurvey := make(map[uint]int64)
	for i := range responses {
		perSurvey[responses[i].SurveyID]++
	}

	statuses := make([]UserSurveyStatus, 0, len(surveys))
	for i := range surveys {
		sv := &surveys[i]
		total := int64(len(sv.Questions))
		answered := perSurvey[sv.ID]
		statuses = append(statuses, UserSurveyStatus{
			SurveyID: sv.ID,
			Title:    sv.Title,
			Answered: answered,
			Total:    total,
			Percent:  percent(answered, total),
		})
	}
	return statuses, nil
}

// ExportRow - одна строка выгрузки ответов опроса
type ExportRow struct {
	QuestionOrder int
	QuestionText  string
	UserID        string
	Username      string
	Answer        string
	AnsweredAt    time.Time
}

// ExportRows выгружает все ответы опроса построчно, в порядке вопросов.
// Пропуски помечаются как "(пропущено)", у вопросов с вариантами
// выгружается текст выбранного варианта.
func (s *ResultService) ExportRows(surveyID uint) (string, []ExportRow, error) {
	survey, err := s.surveyRepo.GetWithQuestions(surveyID)
	if err != nil {
		return "", nil, err
	}

	responses, err := s.responseRepo.GetBySurveyID(surveyID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load responses: %w", err)
	}

	byQuestion := make(map[uint][]*entity.Response)
	for i := range responses {
		r := &responses[i]
		byQuestion[r.QuestionID] = append(byQuestion[r.QuestionID], r)
	}

	rows := make([]ExportRow, 0, len(responses))
	for i := range survey.Questions {
		q := &survey.Questions[i]
		for _, r := range byQuestion[q.ID] {
			rows = append(rows, ExportRow{
				QuestionOrder: q.Order,
				QuestionText:  q.Text,
				UserID:        r.UserID,
				Username:      r.Username,
				Answer:        renderAnswer(q, r),
				AnsweredAt:    r.CreatedAt,
			})
		}
	}
	return survey.Title, rows, nil
}

func renderAnswer(q *entity.Question, r *entity.Response) string {
	switch {
	case r.IsSkip():
		return "(пропущено)"
	case r.SelectedOption != nil:
		idx := *r.SelectedOption
		if idx >= 0 && idx < len(q.Options) {
			return q.Options[idx]
		}
		return fmt.Sprintf("вариант #%d", idx)
	case r.TextAnswer != nil:
		return *r.TextAnswer
	default:
		return ""
	}
}
