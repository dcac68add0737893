package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_IsValidOption(t *testing.T) {
	// Arrange
	question := &Question{
		Options: StringArray{"A", "B", "C", "D"},
	}

	// Act & Assert: валидные опции
	assert.True(t, question.IsValidOption(0), "Индекс 0 должен быть валидным")
	assert.True(t, question.IsValidOption(3), "Индекс 3 должен быть валидным")

	// Assert: невалидные опции
	assert.False(t, question.IsValidOption(-1), "Отрицательный индекс должен быть невалидным")
	assert.False(t, question.IsValidOption(4), "Индекс вне диапазона должен быть невалидным")
}

func TestQuestion_Kind(t *testing.T) {
	choice := &Question{Kind: QuestionKindChoice, Options: StringArray{"Да", "Нет"}}
	text := &Question{Kind: QuestionKindText}

	assert.True(t, choice.IsChoice())
	assert.False(t, choice.IsText())
	assert.Equal(t, 2, choice.OptionsCount())

	assert.True(t, text.IsText())
	assert.False(t, text.IsChoice())
	assert.Equal(t, 0, text.OptionsCount())
}

func TestStringArray_ScanValue(t *testing.T) {
	// Arrange
	original := StringArray{"Красный", "Синий", "Зелёный"}

	// Act
	value, err := original.Value()
	require.NoError(t, err)

	var restored StringArray
	err = restored.Scan(value)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestStringArray_ScanNil(t *testing.T) {
	var arr StringArray
	err := arr.Scan(nil)

	require.NoError(t, err)
	assert.Empty(t, arr)
}

func TestConditionalRule_ScanValue(t *testing.T) {
	// Arrange
	rule := ConditionalRule{DependsOnQuestionID: 7, RequiredOptionIndex: 2}

	// Act
	value, err := rule.Value()
	require.NoError(t, err)

	var restored ConditionalRule
	err = restored.Scan(value)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, rule, restored)
}

func TestResponse_IsSkip(t *testing.T) {
	option := 1
	text := "свободный ответ"

	skip := &Response{}
	withOption := &Response{SelectedOption: &option}
	withText := &Response{TextAnswer: &text}

	assert.True(t, skip.IsSkip(), "Ответ без варианта и текста должен считаться пропуском")
	assert.False(t, withOption.IsSkip())
	assert.False(t, withText.IsSkip())
}
