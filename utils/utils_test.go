package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHash(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID, companyID := uuid.New(), uuid.New()

	r := gin.New()
	r.GET("/me", AuthMiddleware("test-secret"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user": UserID(c), "company": CompanyID(c)})
	})

	token, err := GenerateToken(userID, companyID, "test-secret", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), companyID.String())

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other, err := GenerateToken(userID, companyID, "other-secret", time.Hour)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	expired, err := GenerateToken(userID, companyID, "test-secret", -time.Hour)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	_, err := GenerateToken(uuid.New(), uuid.New(), "", time.Hour)
	assert.Error(t, err)
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+1 (555) 010-0100"))
	assert.True(t, ValidatePhone("555-0100"))
	assert.False(t, ValidatePhone("abc"))
	assert.False(t, ValidatePhone("12"))
}

func TestGenerateRandomString(t *testing.T) {
	s := GenerateRandomString(8)
	assert.Len(t, s, 8)
	assert.Regexp(t, `^[A-Z0-9]{8}$`, s)
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 4, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, DaysBetween(start, end))
	assert.Equal(t, 1, BeginningOfMonth(end).Day())
}
