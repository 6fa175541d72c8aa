package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	raw := &pgconn.PgError{Code: "23505", ConstraintName: "feedbacks_lesson_id_key"}

	assert.True(t, IsUniqueViolation(raw))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", raw)))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))

	assert.Equal(t, "feedbacks_lesson_id_key", ConstraintName(fmt.Errorf("x: %w", raw)))
	assert.Equal(t, "", ConstraintName(gorm.ErrDuplicatedKey))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("find: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsNotFound(errors.New("x")))
}
