package api

import (
	"context"                             // Context for Redis operations
	"net/http"                            // HTTP status codes
	"payment_tracker/internal/auth"       // Authorization guard
	"payment_tracker/internal/domain"     // Domain models
	"payment_tracker/internal/middleware" // Principal extraction
	"payment_tracker/internal/service"    // Account use cases
	"payment_tracker/internal/utils"      // Cache helpers
	"time"                                // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// CreateUserRequest represents an administrative account creation request
type CreateUserRequest struct {
	Username     string  `json:"username" binding:"required"`    // Username must be provided
	Email        string  `json:"email" binding:"required,email"` // Email must be provided and well formed
	Password     string  `json:"password"`                       // Optional when passwordless is set
	Passwordless bool    `json:"passwordless"`                   // Marks an account with no usable credential
	Balance      float64 `json:"balance"`                        // Initial reported balance
	Wallet       string  `json:"wallet"`                         // Optional wallet address
	Seed         string  `json:"seed"`                           // Optional seed value
	Role         string  `json:"role"`                           // Optional role, defaults to user
}

// UpdateUserRequest represents a partial profile update; omitted fields are
// left untouched
type UpdateUserRequest struct {
	Username *string  `json:"username"` // New display name
	Email    *string  `json:"email"`    // New email
	Password *string  `json:"password"` // New plaintext password
	Balance  *float64 `json:"balance"`  // New reported balance
	Wallet   *string  `json:"wallet"`   // New wallet address
	Seed     *string  `json:"seed"`     // New seed value
	Role     *string  `json:"role"`     // New role, admin only
}

// ListUsersHandler returns all accounts page by page
func ListUsersHandler(svc service.AccountService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFromContext(c) // Get the principal from context
		// Check if the principal exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:users:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		// Try to get cached response
		var cached struct {
			Users      []domain.User `json:"users"`       // List of accounts
			Page       int           `json:"page"`        // Current page
			PageSize   int           `json:"page_size"`   // Page size
			Total      int64         `json:"total"`       // Total number of accounts
			TotalPages int           `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of accounts
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of accounts
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page, pageSize := pagination(c) // Read pagination from the query
		// Fetch the page through the service
		users, total, err := svc.ListUsers(c.Request.Context(), p, page, pageSize)
		if err != nil {
			respondError(c, err) // Map the failure to a status
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize // Calculate total pages
		// Prepare final response data
		respData := gin.H{
			"users":       users,      // List of accounts
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of accounts
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// CreateUserHandler creates an account on behalf of an administrator
func CreateUserHandler(svc service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFromContext(c) // Get the principal from context
		// Check if the principal exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Create the account through the service
		user, err := svc.CreateUser(c.Request.Context(), p, service.CreateUserInput{
			Username:     req.Username,     // Display name
			Email:        req.Email,        // Login email
			Password:     req.Password,     // Plaintext, hashed by the service
			Passwordless: req.Passwordless, // Explicit no-credential marker
			Balance:      req.Balance,      // Initial reported balance
			Wallet:       req.Wallet,       // Optional wallet address
			Seed:         req.Seed,         // Optional seed value
			Role:         req.Role,         // Requested role
		})
		if err != nil {
			respondError(c, err) // Map the failure to a status
			return
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"user_id":    user.ID,   // New account ID
			"role":       user.Role, // Assigned role
			"created_by": p.UserID,  // Acting administrator
		}).Info("User created") // Log creation
		// Return the created account
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// GetUserHandler returns one account with its payment history
func GetUserHandler(svc service.AccountService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFromContext(c) // Get the principal from context
		// Check if the principal exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id := c.Param("id") // Target account ID
		// Check the self-or-admin rule before touching the cache
		if err := auth.RequireSelfOrAdmin(p, id); err != nil {
			respondError(c, err) // Return forbidden
			return
		}
		ctx := context.Background()        // Use background context for Redis
		cacheKey := utils.UserCacheKey(id) // Cache key for the account
		var cachedUser domain.User         // Account struct to hold cached data
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cachedUser)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"user": cachedUser, "cached": true})
			return
		}
		// If not in cache, fetch through the service
		user, err := svc.GetUser(c.Request.Context(), p, id)
		if err != nil {
			respondError(c, err) // Map the failure to a status
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, user, 60*time.Second) // Cache the account for 60 seconds
		c.JSON(http.StatusOK, gin.H{"user": user, "cached": false})  // Return the account
	}
}

// UpdateUserHandler applies a partial profile update
func UpdateUserHandler(svc service.AccountService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFromContext(c) // Get the principal from context
		// Check if the principal exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id := c.Param("id")       // Target account ID
		var req UpdateUserRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Apply the update through the service
		user, err := svc.UpdateUser(c.Request.Context(), p, id, service.UpdateUserInput{
			Username: req.Username, // New display name
			Email:    req.Email,    // New email
			Password: req.Password, // New plaintext password
			Balance:  req.Balance,  // New reported balance
			Wallet:   req.Wallet,   // New wallet address
			Seed:     req.Seed,     // New seed value
			Role:     req.Role,     // New role, admin only
		})
		if err != nil {
			respondError(c, err) // Map the failure to a status
			return
		}
		// Log successful update
		logrus.WithFields(logrus.Fields{
			"user_id":    user.ID,  // Updated account ID
			"updated_by": p.UserID, // Acting principal
		}).Info("User updated") // Log update
		// Invalidate the account and history cache
		utils.InvalidateUserCache(context.Background(), rdb, id)
		// Return the updated account
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// DeleteUserHandler removes an account and its payment history
func DeleteUserHandler(svc service.AccountService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFromContext(c) // Get the principal from context
		// Check if the principal exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id := c.Param("id") // Target account ID
		// Delete the account through the service
		if err := svc.DeleteUser(c.Request.Context(), p, id); err != nil {
			respondError(c, err) // Map the failure to a status
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{
			"user_id":    id,       // Deleted account ID
			"deleted_by": p.UserID, // Acting principal
		}).Info("User deleted") // Log deletion
		// Invalidate the account and history cache
		utils.InvalidateUserCache(context.Background(), rdb, id)
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
	}
}
