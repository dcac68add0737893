package helper

import (
	"fmt"
	"strings"

	"github.com/yourusername/survey-api/internal/domain/entity"
)

// QuestionOption представляет вариант ответа для фронтенда
type QuestionOption struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// ConvertOptionsToObjects преобразует массив строк в массив объектов с id и text
// ID использует 0-based индексацию для совместимости с SelectedOption в базе данных
func ConvertOptionsToObjects(options entity.StringArray) []QuestionOption {
	converted := make([]QuestionOption, len(options))
	for i, opt := range options {
		// Дополнительная проверка на пустые строки
		if opt == "" {
			opt = "(пустой вариант)"
		}
		converted[i] = QuestionOption{ID: i, Text: opt}
	}
	return converted
}

const progressBarWidth = 10

// ProgressBar строит текстовый прогресс-бар вида "[■■■■□□□□□□] 4/10"
func ProgressBar(answered, total int64) string {
	if total <= 0 {
		return fmt.Sprintf("[%s] 0/0", strings.Repeat("□", progressBarWidth))
	}
	filled := int(answered * progressBarWidth / total)
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(strings.Repeat("■", filled))
	b.WriteString(strings.Repeat("□", progressBarWidth-filled))
	b.WriteByte(']')
	return fmt.Sprintf("%s %d/%d", b.String(), answered, total)
}
