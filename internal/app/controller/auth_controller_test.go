package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinotiBot/PerfumesPlugApp/internal/app/repository"
	"github.com/kinotiBot/PerfumesPlugApp/internal/app/service"
	"github.com/kinotiBot/PerfumesPlugApp/internal/db"
)

func setupAuthControllerTest(t *testing.T) (*AuthController, *gin.Engine) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(userRepo, "test-secret", 15*time.Minute, 7*24*time.Hour)
	authController := NewAuthController(authService)

	gin.SetMode(gin.TestMode)
	router := gin.New()

	return authController, router
}

func registerTestUser(t *testing.T, router *gin.Engine, email string) map[string]interface{} {
	t.Helper()

	body, _ := json.Marshal(map[string]interface{}{
		"email":      email,
		"password":   "secret123",
		"first_name": "Jane",
		"last_name":  "Doe",
	})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	return decodeResponse(t, w)
}

func TestAuthController_Register_Success(t *testing.T) {
	controller, router := setupAuthControllerTest(t)
	router.POST("/register", controller.Register)

	response := registerTestUser(t, router, "jane@example.com")
	assert.Equal(t, "User registered successfully", response["message"])

	user := response["user"].(map[string]interface{})
	assert.Equal(t, "jane@example.com", user["email"])
	assert.Equal(t, false, user["is_staff"])

	tokens := response["tokens"].(map[string]interface{})
	assert.NotEmpty(t, tokens["access"])
	assert.NotEmpty(t, tokens["refresh"])
}

func TestAuthController_Register_DuplicateEmail(t *testing.T) {
	controller, router := setupAuthControllerTest(t)
	router.POST("/register", controller.Register)

	registerTestUser(t, router, "jane@example.com")

	body, _ := json.Marshal(map[string]interface{}{
		"email":      "jane@example.com",
		"password":   "other456",
		"first_name": "Janet",
	})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, "This email is already registered", response["message"])
}

func TestAuthController_Register_InvalidPayload(t *testing.T) {
	controller, router := setupAuthControllerTest(t)
	router.POST("/register", controller.Register)

	// Password below the minimum length
	body, _ := json.Marshal(map[string]interface{}{
		"email":      "jane@example.com",
		"password":   "123",
		"first_name": "Jane",
	})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthController_Login(t *testing.T) {
	controller, router := setupAuthControllerTest(t)
	router.POST("/register", controller.Register)
	router.POST("/login", controller.Login)

	registerTestUser(t, router, "jane@example.com")

	body, _ := json.Marshal(map[string]interface{}{
		"email":    "jane@example.com",
		"password": "secret123",
	})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	response := decodeResponse(t, w)
	tokens := response["tokens"].(map[string]interface{})
	assert.NotEmpty(t, tokens["access"])
}

func TestAuthController_Login_WrongPassword(t *testing.T) {
	controller, router := setupAuthControllerTest(t)
	router.POST("/register", controller.Register)
	router.POST("/login", controller.Login)

	registerTestUser(t, router, "jane@example.com")

	body, _ := json.Marshal(map[string]interface{}{
		"email":    "jane@example.com",
		"password": "wrongpass",
	})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	response := decodeResponse(t, w)
	assert.Equal(t, "Invalid email or password", response["message"])
}

func TestAuthController_GetProfile(t *testing.T) {
	controller, router := setupAuthControllerTest(t)
	router.POST("/register", controller.Register)

	response := registerTestUser(t, router, "jane@example.com")
	userID := uint(response["user"].(map[string]interface{})["id"].(float64))

	router.GET("/me", func(c *gin.Context) {
		c.Set("user_id", userID)
		controller.GetProfile(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	profile := decodeResponse(t, w)
	user := profile["user"].(map[string]interface{})
	assert.Equal(t, "jane@example.com", user["email"])
}

func TestAuthController_UpdateProfile(t *testing.T) {
	controller, router := setupAuthControllerTest(t)
	router.POST("/register", controller.Register)

	response := registerTestUser(t, router, "jane@example.com")
	userID := uint(response["user"].(map[string]interface{})["id"].(float64))

	router.PUT("/me", func(c *gin.Context) {
		c.Set("user_id", userID)
		controller.UpdateProfile(c)
	})

	body, _ := json.Marshal(map[string]interface{}{
		"first_name": "Janet",
		"phone":      "+250788111222",
	})
	req := httptest.NewRequest(http.MethodPut, "/me", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeResponse(t, w)
	user := updated["user"].(map[string]interface{})
	assert.Equal(t, "Janet", user["first_name"])
	assert.Equal(t, "+250788111222", user["phone"])
}
