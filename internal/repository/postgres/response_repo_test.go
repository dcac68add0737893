package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

// ====================================================================
// Маппинг ошибок уникальности
// ====================================================================

// TestIsUniqueViolation_PgconnError проверяет, что нарушение уникальности
// от pgx-драйвера (pgconn.PgError) распознается даже в обернутом виде.
func TestIsUniqueViolation_PgconnError(t *testing.T) {
	err := fmt.Errorf("insert failed: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, isUniqueViolation(err))
}

// TestIsUniqueViolation_PqError проверяет ветку для lib/pq драйвера.
func TestIsUniqueViolation_PqError(t *testing.T) {
	err := fmt.Errorf("insert failed: %w", &pq.Error{Code: "23505"})
	assert.True(t, isUniqueViolation(err))
}

// TestIsUniqueViolation_OtherErrors проверяет, что прочие ошибки не
// принимаются за дубликат.
func TestIsUniqueViolation_OtherErrors(t *testing.T) {
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
}
