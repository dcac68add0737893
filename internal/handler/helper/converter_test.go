package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/survey-api/internal/domain/entity"
)

func TestConvertOptionsToObjects(t *testing.T) {
	options := entity.StringArray{"Да", "", "Нет"}

	converted := ConvertOptionsToObjects(options)

	assert.Len(t, converted, 3)
	assert.Equal(t, 0, converted[0].ID, "ID вариантов 0-based")
	assert.Equal(t, "Да", converted[0].Text)
	assert.Equal(t, "(пустой вариант)", converted[1].Text)
	assert.Equal(t, 2, converted[2].ID)
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[■■■■■□□□□□] 2/4", ProgressBar(2, 4))
	assert.Equal(t, "[■■■■■■■■■■] 4/4", ProgressBar(4, 4))
	assert.Equal(t, "[□□□□□□□□□□] 0/4", ProgressBar(0, 4))
	assert.Equal(t, "[□□□□□□□□□□] 0/0", ProgressBar(0, 0))
}
