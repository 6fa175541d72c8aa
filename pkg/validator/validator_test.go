package validator

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reactionInput struct {
	Reaction string `validate:"required,reaction"`
	Message  string `validate:"omitempty,maxrunes=100"`
}

type signupInput struct {
	Email  string `validate:"required,email"`
	Role   string `validate:"required,oneof=teacher student"`
	Rating int    `validate:"min=1,max=5"`
}

func newValidate(t *testing.T) *validator.Validate {
	v := validator.New()
	require.NoError(t, Register(v))
	return v
}

func TestReactionTag(t *testing.T) {
	v := newValidate(t)

	assert.NoError(t, v.Struct(reactionInput{Reaction: "🔥"}))
	assert.NoError(t, v.Struct(reactionInput{Reaction: "🙏", Message: strings.Repeat("🎵", 100)}))

	err := v.Struct(reactionInput{Reaction: "❤️"})
	require.Error(t, err)
	assert.Contains(t, FormatValidationError(err), "Reaction must be one of")

	err = v.Struct(reactionInput{Reaction: "👍", Message: strings.Repeat("a", 101)})
	require.Error(t, err)
	assert.Equal(t, "Message must be at most 100 characters", FormatValidationError(err))
}

func TestFormatValidationErrorJoinsMessages(t *testing.T) {
	v := newValidate(t)

	err := v.Struct(signupInput{Email: "nope", Role: "admin", Rating: 9})
	require.Error(t, err)

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "Email must be a valid email")
	assert.Contains(t, msg, "Role must be one of: teacher student")
	assert.Contains(t, msg, "Rating must be at most 5")
	assert.Equal(t, 2, strings.Count(msg, "; "))
}
