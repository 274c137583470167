package main

import (
	"context"                             // context package is needed for Redis operations
	"log"                                 // log package is needed for logging
	"payment_tracker/internal/api"        // Custom package for API handlers
	"payment_tracker/internal/auth"       // Custom package for credentials and tokens
	"payment_tracker/internal/config"     // Custom package for configuration
	"payment_tracker/internal/middleware" // Custom package for middleware
	mysqlrepo "payment_tracker/internal/repository/mysql"
	"payment_tracker/internal/service" // Custom package for account use cases
	"time"                             // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Refuse to start without a token signing secret
	if cfg.JWTSecret == "" {
		logrus.Fatal("JWT_SECRET is required")
	}

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Wire the persistence, credential and token collaborators
	users := mysqlrepo.NewUserRepository(db)
	ledger := service.NewLedger(users)
	hasher := auth.NewPasswordHasher()
	if cfg.BcryptCost > 0 {
		hasher.Cost = cfg.BcryptCost // Override the bcrypt work factor
	}
	issuer := auth.NewTokenIssuer(cfg.JWTSecret)
	issuer.TTL = time.Duration(cfg.JWTTTLHours) * time.Hour // Configured token lifetime
	accounts := service.NewAccountService(users, ledger, hasher, issuer)

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/register", api.RegisterHandler(accounts)) // Registration endpoint
	r.POST("/login", api.LoginHandler(accounts))       // Login endpoint

	// User routes (protected by JWT)
	userGroup := r.Group("/users")
	userGroup.Use(middleware.JWTAuthMiddleware(issuer)) // Protect user routes with JWT middleware

	// Collection endpoints (admin only)
	userAdmin := userGroup.Group("")
	userAdmin.Use(middleware.AdminOnlyMiddleware())                // Restrict collection endpoints to admins
	userAdmin.GET("", api.ListUsersHandler(accounts, redisClient)) // List users endpoint
	userAdmin.POST("", api.CreateUserHandler(accounts))            // Create user endpoint

	// Account endpoints (self or admin, enforced per request)
	userGroup.GET("/:id", api.GetUserHandler(accounts, redisClient))                           // Get user endpoint
	userGroup.PUT("/:id", api.UpdateUserHandler(accounts, redisClient))                        // Update user endpoint
	userGroup.DELETE("/:id", api.DeleteUserHandler(accounts, redisClient))                     // Delete user endpoint
	userGroup.POST("/:id/transactions", api.AppendTransactionHandler(accounts, redisClient))   // Record payment endpoint
	userGroup.GET("/:id/transactions", api.ListUserTransactionsHandler(accounts, redisClient)) // Payment history endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	// Protect admin routes with JWT and AdminOnly middleware
	adminGroup.Use(middleware.JWTAuthMiddleware(issuer), middleware.AdminOnlyMiddleware())
	adminGroup.GET("/transactions", api.ListAllTransactionsHandler(accounts, redisClient)) // List all payments endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
