package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"teacher_portal/internal/config"
	"teacher_portal/internal/handler"
	"teacher_portal/internal/middleware"
	"teacher_portal/internal/model"
	"teacher_portal/internal/repository"
	"teacher_portal/internal/service"
	"teacher_portal/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on environment variables")
	}

	// --- Configuration ---
	dbCfg, err := config.LoadDBConfig()
	if err != nil {
		log.Fatalf("Failed to load DB config: %v", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		log.Fatalf("JWT_SECRET_KEY not set in environment")
	}
	tokenExpireMinutesStr := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES")
	tokenExpireMinutes, err := strconv.ParseInt(tokenExpireMinutesStr, 10, 64)
	if err != nil || tokenExpireMinutes <= 0 {
		log.Printf("Invalid ACCESS_TOKEN_EXPIRE_MINUTES, defaulting to 30")
		tokenExpireMinutes = 30
	}

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080" // Default port
	}

	// --- Database Connection ---
	dbPool, err := config.ConnectDB(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	// --- Auto Migration ---
	if err := config.AutoMigrate(dbPool); err != nil {
		log.Fatalf("Failed to auto-migrate database: %v", err)
	}

	// --- Initialize Utilities ---
	jwtUtil := utils.NewJWTUtil(jwtSecret, time.Duration(tokenExpireMinutes)*time.Minute)

	// --- Initialize Repositories ---
	userRepo := repository.NewUserRepository(dbPool)

	// --- Initialize Services ---
	authService := service.NewAuthService(userRepo, jwtUtil)
	userService := service.NewUserService(userRepo)

	// --- Bootstrap Super Admin ---
	if err := ensureInitialSuperAdmin(userService); err != nil {
		log.Fatalf("Failed to bootstrap initial super admin: %v", err)
	}

	// --- Initialize Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	// --- Setup Gin Router ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.New()
	router.Use(gin.Logger())

	// Simple CORS middleware (allow all for development)
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.Use(middleware.RequestID())
	router.Use(middleware.ResponseEnvelope())

	// --- Initialize Gates ---
	superAdminGate := middleware.Permissions(jwtUtil, userRepo, middleware.IsSuperAdmin)

	// --- Register Routes ---
	apiGroup := router.Group("/api/v1")
	authHandler.RegisterAuthRoutes(apiGroup)
	userHandler.RegisterUserRoutes(apiGroup, superAdminGate)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the Teacher Data Entry Portal API"})
	})

	router.GET("/health", func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "db": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "healthy"})
	})

	// --- Start Server ---
	srv := &http.Server{
		Addr:    ":" + serverPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on port %s", serverPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}

// ensureInitialSuperAdmin creates the first super admin account from env
// vars, since user creation itself is gated behind the super_admin role.
// A no-op when the vars are unset or the account already exists.
func ensureInitialSuperAdmin(users service.UserService) error {
	mobile := os.Getenv("INITIAL_ADMIN_MOBILE")
	email := os.Getenv("INITIAL_ADMIN_EMAIL")
	password := os.Getenv("INITIAL_ADMIN_PASSWORD")
	if mobile == "" || email == "" || password == "" {
		return nil
	}

	_, err := users.CreateUser(context.Background(), model.CreateUserRequest{
		MobileNo: mobile,
		Email:    email,
		Role:     model.RoleSuperAdmin,
		Password: password,
	})
	if errors.Is(err, service.ErrUserAlreadyExists) {
		return nil
	}
	if err == nil {
		log.Printf("INFO: Initial super admin %s created via INITIAL_ADMIN_MOBILE.", mobile)
	}
	return err
}
