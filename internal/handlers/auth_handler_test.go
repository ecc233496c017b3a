package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"civicapp/internal/models"
	contextutils "civicapp/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthHandlerRouter(userSvc *fakeUserService, emailSvc *fakeEmailService) *gin.Engine {
	router := newTestRouter()
	h := NewAuthHandler(userSvc, emailSvc, newTestConfig(), newTestLogger())

	auth := router.Group("/v1/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/signup", h.Signup)
		auth.GET("/status", h.Status)
	}
	return router
}

func TestLogin_Success(t *testing.T) {
	userSvc := &fakeUserService{
		authenticateFn: func(_ context.Context, email, password string) (*models.User, error) {
			assert.Equal(t, "jane@example.com", email)
			assert.Equal(t, "secret123", password)
			return &models.User{ID: 42, Email: email, FullName: "Jane Doe", Role: models.RoleCitizen, Enabled: true}, nil
		},
	}
	router := newAuthHandlerRouter(userSvc, &fakeEmailService{})

	body := models.LoginRequest{Email: "jane@example.com", Password: "secret123"}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/auth/login", body))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Result().Cookies(), "login should set a session cookie")

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
	user := resp["user"].(map[string]interface{})
	assert.Equal(t, float64(42), user["id"])
	assert.Equal(t, "CITIZEN", user["role"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	userSvc := &fakeUserService{
		authenticateFn: func(_ context.Context, _, _ string) (*models.User, error) {
			return nil, contextutils.ErrInvalidCredentials
		},
	}
	router := newAuthHandlerRouter(userSvc, &fakeEmailService{})

	body := models.LoginRequest{Email: "jane@example.com", Password: "wrong"}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/auth/login", body))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_MalformedBody(t *testing.T) {
	router := newAuthHandlerRouter(&fakeUserService{}, &fakeEmailService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/auth/login", map[string]string{"email": "not-an-email"}))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSignup_ForcesCitizenRole(t *testing.T) {
	emailSvc := &fakeEmailService{enabled: true}
	userSvc := &fakeUserService{
		createFn: func(_ context.Context, req *models.CreateUserRequest) (*models.User, error) {
			assert.Equal(t, models.RoleCitizen, req.Role, "signup must not honor a requested role")
			return &models.User{ID: 7, Email: req.Email, FullName: req.FullName, Role: models.RoleCitizen, Enabled: true}, nil
		},
	}
	router := newAuthHandlerRouter(userSvc, emailSvc)

	body := map[string]interface{}{
		"full_name": "Jane Doe",
		"email":     "jane@example.com",
		"password":  "secret123",
		"role":      "ADMIN",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/auth/signup", body))

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []int{7}, emailSvc.welcomes)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	userSvc := &fakeUserService{
		createFn: func(_ context.Context, _ *models.CreateUserRequest) (*models.User, error) {
			return nil, contextutils.ErrRecordExists
		},
	}
	router := newAuthHandlerRouter(userSvc, &fakeEmailService{})

	body := map[string]interface{}{
		"full_name": "Jane Doe",
		"email":     "jane@example.com",
		"password":  "secret123",
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/auth/signup", body))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStatus_Unauthenticated(t *testing.T) {
	router := newAuthHandlerRouter(&fakeUserService{}, &fakeEmailService{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "GET", "/v1/auth/status", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["authenticated"])
}

func TestStatus_Authenticated(t *testing.T) {
	userSvc := &fakeUserService{
		getByIDFn: func(_ context.Context, id int) (*models.User, error) {
			return &models.User{ID: id, Email: "jane@example.com", Role: models.RoleCitizen, Enabled: true}, nil
		},
	}
	router := newAuthHandlerRouter(userSvc, &fakeEmailService{})
	cookie := loginAs(t, router, 42, models.RoleCitizen)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "GET", "/v1/auth/status", nil, cookie))

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["authenticated"])
}

func TestLogout_ClearsSession(t *testing.T) {
	userSvc := &fakeUserService{
		getByIDFn: func(_ context.Context, id int) (*models.User, error) {
			return &models.User{ID: id, Role: models.RoleCitizen, Enabled: true}, nil
		},
	}
	router := newAuthHandlerRouter(userSvc, &fakeEmailService{})
	cookie := loginAs(t, router, 42, models.RoleCitizen)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, jsonRequest(t, "POST", "/v1/auth/logout", nil, cookie))

	require.Equal(t, http.StatusOK, w.Code)
}
