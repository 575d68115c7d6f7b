package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/myshop/app/models"
	"github.com/shashiranjanraj/myshop/app/routes"
	"github.com/shashiranjanraj/myshop/config"
	"github.com/shashiranjanraj/myshop/pkg/auth"
	"github.com/shashiranjanraj/myshop/pkg/cache"
	"github.com/shashiranjanraj/myshop/pkg/database"
	"github.com/shashiranjanraj/myshop/pkg/router"
)

var apiSeq int

// newAPI boots an isolated database plus the full /api route table. Throttle
// budgets are raised so tests exercising other behavior never trip them.
func newAPI(t *testing.T) http.Handler {
	t.Helper()

	config.Set("THROTTLE_USER_PER_MIN", "10000")
	config.Set("THROTTLE_ANON_PER_MIN", "10000")
	config.Set("THROTTLE_BURST_PER_MIN", "10000")
	config.Set("THROTTLE_STRICT_ANON_PER_MIN", "10000")

	apiSeq++
	dsn := fmt.Sprintf("file:api%d?mode=memory&cache=shared", apiSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.UserProfile{},
		&models.Product{}, &models.ProductImage{},
	))
	database.DB = db
	cache.Use(cache.NewMemory())

	r := router.New()
	routes.RegisterAPI(r)
	return r.Handler()
}

func signup(t *testing.T, role string) (models.User, string) {
	t.Helper()
	user := models.User{
		Name:     "API Tester",
		Email:    fmt.Sprintf("api-%d-%s-%d@myshop.test", apiSeq, role, len(role)),
		Password: "irrelevant",
		Role:     role,
	}
	require.NoError(t, database.DB.Create(&user).Error)

	token, err := auth.GenerateToken(user.ID, user.Role)
	require.NoError(t, err)
	return user, token
}

func do(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.77:1234"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Data
}

// Two users, one product: the owner can edit it, the other user cannot,
// and an anonymous read sees the committed price.
func TestOwnershipLifecycle(t *testing.T) {
	api := newAPI(t)
	_, tokenA := signup(t, models.RoleUser)
	userB := models.User{Name: "B", Email: fmt.Sprintf("b-%d@myshop.test", apiSeq), Password: "x", Role: models.RoleUser}
	require.NoError(t, database.DB.Create(&userB).Error)
	tokenB, err := auth.GenerateToken(userB.ID, userB.Role)
	require.NoError(t, err)

	create := map[string]interface{}{
		"name":        "Widget",
		"description": "A perfectly ordinary widget.",
		"price":       9.99,
		"stock":       5,
	}

	rec := do(t, api, "POST", "/api/products", tokenA, create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := uint(dataField(t, rec)["ID"].(float64))

	patch := map[string]interface{}{"price": 12.99}

	rec = do(t, api, "PATCH", fmt.Sprintf("/api/products/%d", id), tokenB, patch)
	require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = do(t, api, "PATCH", fmt.Sprintf("/api/products/%d", id), tokenA, patch)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, api, "GET", fmt.Sprintf("/api/products/%d", id), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 12.99, dataField(t, rec)["price"])
}

func TestAnonymousCannotWrite(t *testing.T) {
	api := newAPI(t)
	_, token := signup(t, models.RoleUser)

	create := map[string]interface{}{
		"name":        "Widget",
		"description": "A perfectly ordinary widget.",
		"price":       9.99,
		"stock":       5,
	}

	rec := do(t, api, "POST", "/api/products", "", create)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, api, "POST", "/api/products", token, create)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := uint(dataField(t, rec)["ID"].(float64))

	for _, method := range []string{"PUT", "PATCH", "DELETE"} {
		rec = do(t, api, method, fmt.Sprintf("/api/products/%d", id), "", create)
		require.Equal(t, http.StatusUnauthorized, rec.Code, method)
	}

	// Reads stay public.
	rec = do(t, api, "GET", "/api/products", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminCanMutateAnyProduct(t *testing.T) {
	api := newAPI(t)
	_, ownerToken := signup(t, models.RoleUser)
	_, adminToken := signup(t, models.RoleAdmin)

	create := map[string]interface{}{
		"name":        "Widget",
		"description": "A perfectly ordinary widget.",
		"price":       9.99,
		"stock":       5,
	}
	rec := do(t, api, "POST", "/api/products", ownerToken, create)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := uint(dataField(t, rec)["ID"].(float64))

	rec = do(t, api, "PATCH", fmt.Sprintf("/api/products/%d", id), adminToken,
		map[string]interface{}{"stock": 99})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, api, "DELETE", fmt.Sprintf("/api/products/%d", id), adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestValidationErrorsReturn400(t *testing.T) {
	api := newAPI(t)
	_, token := signup(t, models.RoleUser)

	rec := do(t, api, "POST", "/api/products", token, map[string]interface{}{
		"name":        "Widget",
		"description": "A perfectly ordinary widget.",
		"price":       -5,
		"stock":       5,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, api, "POST", "/api/products", token, map[string]interface{}{
		"name":        "<script>alert(1)</script>",
		"description": "A perfectly ordinary widget.",
		"price":       9.99,
		"stock":       5,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestShowUnknownProduct(t *testing.T) {
	api := newAPI(t)

	rec := do(t, api, "GET", "/api/products/99999", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, api, "GET", "/api/products/not-a-number", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	api := newAPI(t)

	rec := do(t, api, "POST", "/api/auth/register", "", map[string]interface{}{
		"name":                  "New User",
		"email":                 fmt.Sprintf("new-%d@myshop.test", apiSeq),
		"password":              "supersecret1",
		"password_confirmation": "supersecret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, api, "POST", "/api/auth/login", "", map[string]interface{}{
		"email":    fmt.Sprintf("new-%d@myshop.test", apiSeq),
		"password": "supersecret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := dataField(t, rec)
	require.NotEmpty(t, data["access_token"])
	require.NotEmpty(t, data["refresh_token"])

	rec = do(t, api, "POST", "/api/auth/login", "", map[string]interface{}{
		"email":    fmt.Sprintf("new-%d@myshop.test", apiSeq),
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// A refresh token must not authenticate requests, and an access token must
// not mint new token pairs.
func TestAccessAndRefreshTokensAreDistinct(t *testing.T) {
	api := newAPI(t)
	user, accessToken := signup(t, models.RoleUser)

	refreshToken, err := auth.GenerateRefreshToken(user.ID, user.Role)
	require.NoError(t, err)

	rec := do(t, api, "GET", "/api/auth/profile", refreshToken, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())

	rec = do(t, api, "POST", "/api/auth/refresh", "", map[string]interface{}{
		"refresh_token": accessToken,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())

	rec = do(t, api, "POST", "/api/auth/refresh", "", map[string]interface{}{
		"refresh_token": refreshToken,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := dataField(t, rec)
	require.NotEmpty(t, data["access_token"])
	require.NotEmpty(t, data["refresh_token"])
}
