package handlers

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/motimate/backend/internal/database"
	"github.com/motimate/backend/internal/middleware"
	"github.com/motimate/backend/internal/models"
	"github.com/motimate/backend/internal/services"
	"github.com/motimate/backend/pkg/logger"
	"github.com/motimate/backend/pkg/shortcode"
	"github.com/motimate/backend/pkg/utils"
	"gorm.io/gorm"
)

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	storage *fakeImageStore
}

// fakeImageStore records uploads in memory so tests can assert on what
// reached object storage.
type fakeImageStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failAll bool
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{objects: map[string][]byte{}}
}

func (s *fakeImageStore) Upload(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll {
		return fmt.Errorf("storage unavailable")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.objects[objectName] = data
	return nil
}

func (s *fakeImageStore) ObjectURL(objectName string) string {
	return "http://storage.test/motimate-images/" + objectName
}

var (
	testSetupOnce   sync.Once
	testUserCodeSeq atomic.Int64
)

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	testSetupOnce.Do(func() {
		gosqlite.MustRegisterScalarFunction("NOW", 0, func(ctx *gosqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			return time.Now().UTC(), nil
		})
		logger.Init()
		utils.ConfigureJWT("test-secret", 24, 24*14)
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed migrating schema: %v", err)
	}

	groupCodes := shortcode.NewGenerator("G", 6)
	userCodes := shortcode.NewGenerator("", 7)

	groupService := services.NewGroupService(db, groupCodes, "")
	categoryService := services.NewCategoryService(db)
	achievementService := services.NewAchievementService(db)

	imageStore := newFakeImageStore()

	authHandler := NewAuthHandler(db, userCodes)
	usersHandler := NewUsersHandler(db)
	groupsHandler := NewGroupsHandler(groupService)
	categoriesHandler := NewCategoriesHandler(categoryService, groupService)
	achievementsHandler := NewAchievementsHandler(achievementService, groupService)
	imagesHandler := NewImagesHandler(imageStore)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 20 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	api := app.Group("/api/v1")

	api.Get("/operate/policy", GetPolicy)

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.Refresh)
	authRoutes.Get("/me", authMiddleware.RequireAuth, authHandler.Me)
	authRoutes.Put("/me", authMiddleware.RequireAuth, authHandler.UpdateMe)

	api.Get("/users/search", authMiddleware.RequireAuth, usersHandler.Search)

	groupRoutes := api.Group("/groups", authMiddleware.RequireAuth)
	groupRoutes.Post("/", groupsHandler.Create)
	groupRoutes.Get("/", groupsHandler.List)
	groupRoutes.Post("/join", groupsHandler.Join)
	groupRoutes.Get("/:id", groupsHandler.Get)
	groupRoutes.Post("/:id/invite", groupsHandler.Invite)
	groupRoutes.Delete("/:id/members/:userId", groupsHandler.RemoveMember)
	groupRoutes.Patch("/:id/members/:userCode/grade", groupsHandler.UpdateGrade)

	groupRoutes.Post("/:id/categories", categoriesHandler.CreateInGroup)
	groupRoutes.Get("/:id/categories", categoriesHandler.ListInGroup)
	groupRoutes.Get("/:id/categories/:categoryId", categoriesHandler.GetInGroup)
	groupRoutes.Delete("/:id/categories/:categoryId", categoriesHandler.DeleteInGroup)

	groupRoutes.Post("/:id/achievements", achievementsHandler.CreateInGroup)
	groupRoutes.Get("/:id/achievements", achievementsHandler.ListInGroup)
	groupRoutes.Get("/:id/achievements/:achievementId", achievementsHandler.GetInGroup)
	groupRoutes.Put("/:id/achievements/:achievementId", achievementsHandler.UpdateInGroup)
	groupRoutes.Delete("/:id/achievements/:achievementId", achievementsHandler.DeleteInGroup)

	categoryRoutes := api.Group("/categories", authMiddleware.RequireAuth)
	categoryRoutes.Post("/", categoriesHandler.Create)
	categoryRoutes.Get("/", categoriesHandler.List)
	categoryRoutes.Get("/:categoryId", categoriesHandler.Get)
	categoryRoutes.Delete("/:categoryId", categoriesHandler.Delete)

	achievementRoutes := api.Group("/achievements", authMiddleware.RequireAuth)
	achievementRoutes.Post("/", achievementsHandler.Create)
	achievementRoutes.Get("/", achievementsHandler.List)
	achievementRoutes.Get("/:achievementId", achievementsHandler.Get)
	achievementRoutes.Put("/:achievementId", achievementsHandler.Update)
	achievementRoutes.Delete("/:achievementId", achievementsHandler.Delete)

	api.Post("/images", authMiddleware.RequireAuth, imagesHandler.Upload)

	return &testEnv{app: app, db: db, storage: imageStore}
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string) (*models.User, string) {
	t.Helper()

	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Nickname:     "Tester",
		UserCode:     fmt.Sprintf("U%06d", testUserCodeSeq.Add(1)),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed creating test user: %v", err)
	}

	token, err := utils.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("failed generating auth token: %v", err)
	}

	return user, token
}

func authHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func performRequest(t *testing.T, app *fiber.App, method, path string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req, int((10 * time.Second).Milliseconds()))
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}

	return resp
}

func performJSONRequest(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	requestHeaders := map[string]string{}
	for key, value := range headers {
		requestHeaders[key] = value
	}
	if payload != nil {
		requestHeaders["Content-Type"] = "application/json"
	}

	return performRequest(t, app, method, path, body, requestHeaders)
}

func decodeJSONMap(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		t.Fatalf("failed decoding JSON response: %v body=%q", err, string(raw))
	}

	return payload
}

func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

func assertEnvelopeError(t *testing.T, body map[string]any, expected string) {
	t.Helper()

	success, ok := body["success"].(bool)
	if !ok || success {
		t.Fatalf("expected success=false envelope, got %v", body["success"])
	}
	if body["error"] != expected {
		t.Fatalf("expected error %q, got %v", expected, body["error"])
	}
}

func envelopeData(t *testing.T, body map[string]any) map[string]any {
	t.Helper()

	success, ok := body["success"].(bool)
	if !ok || !success {
		t.Fatalf("expected success=true envelope, got %v (error=%v)", body["success"], body["error"])
	}

	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %T", body["data"])
	}
	return data
}

func envelopeDataSlice(t *testing.T, body map[string]any) []any {
	t.Helper()

	success, ok := body["success"].(bool)
	if !ok || !success {
		t.Fatalf("expected success=true envelope, got %v (error=%v)", body["success"], body["error"])
	}

	data, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected data array, got %T", body["data"])
	}
	return data
}

// createTestGroup creates a group through the API and returns its id and
// join code.
func createTestGroup(t *testing.T, env *testEnv, token, name string) (string, string) {
	t.Helper()

	resp := performJSONRequest(t, env.app, http.MethodPost, "/api/v1/groups/", map[string]any{"name": name}, authHeaders(token))
	assertStatus(t, resp, http.StatusCreated)

	data := envelopeData(t, decodeJSONMap(t, resp))
	id, _ := data["id"].(string)
	code, _ := data["groupCode"].(string)
	if id == "" || code == "" {
		t.Fatalf("expected created group to have id and groupCode, got %v", data)
	}
	return id, code
}
