package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vocalstudio.app/backend/pkg/apperror"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestGetUserID(t *testing.T) {
	c, _ := newContext()
	_, err := GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	id := uuid.New()
	c.Set(KeyUserID, id.String())
	got, err := GetUserID(c)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	c.Set(KeyUserID, "nope")
	_, err = GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestResponseErrorHidesInternals(t *testing.T) {
	c, w := newContext()
	ResponseErrorWithFallback(c, errors.New("pq: connection reset"), "Failed to get lessons")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Failed to get lessons", body["error"])
}

func TestResponseErrorMapsStatus(t *testing.T) {
	c, w := newContext()
	ResponseError(c, apperror.NotFound("Lesson not found"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Lesson not found"}`, w.Body.String())
}

func TestUploadEnvelope(t *testing.T) {
	c, w := newContext()
	UploadError(c, http.StatusBadRequest, "No file uploaded")
	assert.JSONEq(t, `{"success":false,"error":{"message":"No file uploaded"}}`, w.Body.String())

	c, w = newContext()
	UploadSuccess(c, http.StatusOK, gin.H{"url": "https://x"})
	assert.JSONEq(t, `{"success":true,"data":{"url":"https://x"}}`, w.Body.String())
}

func TestGetActor(t *testing.T) {
	c, _ := newContext()
	id := uuid.New()
	c.Set(KeyUserID, id.String())
	c.Set(KeyRole, "teacher")
	c.Set(KeyIsAdmin, true)

	actor, err := GetActor(c)
	require.NoError(t, err)
	assert.Equal(t, id, actor.ID)
	assert.True(t, actor.IsTeacher())
	assert.True(t, actor.IsAdmin)

	c.Set(KeyRole, "janitor")
	_, err = GetActor(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
