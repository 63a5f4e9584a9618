package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/motimate/backend/internal/config"
	"github.com/motimate/backend/internal/database"
	"github.com/motimate/backend/internal/handlers"
	"github.com/motimate/backend/internal/middleware"
	"github.com/motimate/backend/internal/services"
	"github.com/motimate/backend/internal/storage"
	"github.com/motimate/backend/pkg/logger"
	"github.com/motimate/backend/pkg/shortcode"
	"github.com/motimate/backend/pkg/utils"
)

func main() {
	logger.Init()

	cfg := config.Load()
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.AccessExpirationHrs, cfg.JWT.RefreshExpirationHrs)

	db, err := database.Connect(cfg.DB)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	storageClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("minio initialization failed: %v", err)
	}
	if err := storageClient.EnsureBucket(context.Background()); err != nil {
		log.Fatalf("failed ensuring minio bucket: %v", err)
	}

	groupCodes := shortcode.NewGenerator("G", 6)
	userCodes := shortcode.NewGenerator("", 7)

	groupService := services.NewGroupService(db, groupCodes, cfg.Group.DefaultAvatarURL)
	categoryService := services.NewCategoryService(db)
	achievementService := services.NewAchievementService(db)

	authHandler := handlers.NewAuthHandler(db, userCodes)
	usersHandler := handlers.NewUsersHandler(db)
	groupsHandler := handlers.NewGroupsHandler(groupService)
	categoriesHandler := handlers.NewCategoriesHandler(categoryService, groupService)
	achievementsHandler := handlers.NewAchievementsHandler(achievementService, groupService)
	imagesHandler := handlers.NewImagesHandler(storageClient)

	authMiddleware := middleware.NewAuthMiddleware(db)

	app := fiber.New(fiber.Config{BodyLimit: 20 * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	api.Get("/operate/policy", handlers.GetPolicy)

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

	listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	logger.Info("server_starting", map[string]interface{}{
		"port":    cfg.Server.Port,
		"address": listenAddr,
		"version": handlers.Version,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(listenAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("shutting down server due to signal: %s", sig)
		shutdownDone := make(chan struct{})
		go func() {
			_ = app.Shutdown()
			close(shutdownDone)
		}()
		select {
		case <-shutdownDone:
		case <-time.After(10 * time.Second):
			log.Print("forced shutdown timeout reached")
		}
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	}
}
