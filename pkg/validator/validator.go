package validator

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"vocalstudio.app/backend/internal/entity"
)

// RegisterCustomValidations installs the project's tags on gin's validator.
func RegisterCustomValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	return Register(v)
}

// Register adds the custom tags to v.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("reaction", func(fl validator.FieldLevel) bool {
		return entity.IsValidReaction(fl.Field().String())
	}); err != nil {
		return err
	}
	// maxrunes counts characters, not bytes
	return v.RegisterValidation("maxrunes", func(fl validator.FieldLevel) bool {
		var limit int
		if _, err := fmt.Sscan(fl.Param(), &limit); err != nil {
			return false
		}
		return utf8.RuneCountInString(fl.Field().String()) <= limit
	})
}

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			messages = append(messages, getFieldErrorMessage(fieldError))
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required", "required_without":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "reaction":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(entity.StudentReactions, " "))
	case "min", "gte":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte", "maxrunes":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Name":             "Name",
		"Email":            "Email",
		"Password":         "Password",
		"Role":             "Role",
		"Phone":            "Phone",
		"StudentID":        "Student",
		"TeacherID":        "Teacher",
		"NewTeacherID":     "New teacher",
		"StudentProfileID": "Student profile",
		"LessonID":         "Lesson",
		"ScheduledAt":      "Scheduled time",
		"Duration":         "Duration",
		"Rating":           "Rating",
		"Content":          "Content",
		"Reaction":         "Reaction",
		"Message":          "Message",
		"ReferenceURLs":    "Reference URLs",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
