package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreRegistrationToProfileAndConsume(t *testing.T) {
	teacherID := uuid.New()
	voice := "soprano"
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	pre := &PreRegistration{TeacherID: teacherID, StudentPhone: "+15550001", VoiceType: &voice, StartDate: start}

	studentID := uuid.New()
	profile := pre.ToProfile(studentID)
	assert.Equal(t, studentID, profile.UserID)
	assert.Equal(t, teacherID, profile.TeacherID)
	assert.Equal(t, &voice, profile.VoiceType)
	assert.Equal(t, start, profile.StartDate)
	assert.True(t, profile.IsActive)

	now := time.Now()
	pre.Consume(studentID, now)
	assert.True(t, pre.IsRegistered)
	require.NotNil(t, pre.RegisteredUserID)
	assert.Equal(t, studentID, *pre.RegisteredUserID)
	assert.Equal(t, now, *pre.RegisteredAt)
}

func TestFileVisibleTo(t *testing.T) {
	uploader, student, other := uuid.New(), uuid.New(), uuid.New()

	shared := &File{UploaderID: uploader}
	assert.True(t, shared.VisibleTo(other))

	private := &File{UploaderID: uploader, StudentID: &student}
	assert.True(t, private.VisibleTo(uploader))
	assert.True(t, private.VisibleTo(student))
	assert.False(t, private.VisibleTo(other))
}

func TestUserSummaryNilSafe(t *testing.T) {
	var u *User
	assert.Nil(t, u.Summary())
	assert.Nil(t, (&User{}).Summary())

	id := uuid.New()
	assert.Equal(t, "Ana", (&User{ID: id, Name: "Ana"}).Summary().Name)
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "01012345678", NormalizePhone(" 010-1234-5678 "))
	assert.Equal(t, "+15550100", NormalizePhone("+1 (555) 0100"))
	assert.Equal(t, "", NormalizePhone("  "))
}
