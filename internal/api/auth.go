package api

import (
	"net/http"                         // HTTP status codes
	"payment_tracker/internal/domain"  // Domain models
	"payment_tracker/internal/service" // Account use cases

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// RegisterRequest represents a self-registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`    // Username must be provided
	Email    string `json:"email" binding:"required,email"` // Email must be provided and well formed
	Password string `json:"password" binding:"required"`    // Password must be provided
	Wallet   string `json:"wallet"`                         // Optional wallet address
	Seed     string `json:"seed"`                           // Optional seed value
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`    // Email must be provided
	Password string `json:"password" binding:"required"` // Password must be provided
}

// AuthResponse represents a successful login
type AuthResponse struct {
	Token string       `json:"token"` // Signed session token
	User  *domain.User `json:"user"`  // Authenticated account
}

// RegisterHandler creates a new account with the user role
func RegisterHandler(svc service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Create the account through the service
		user, err := svc.Register(c.Request.Context(), service.RegisterInput{
			Username: req.Username, // Display name
			Email:    req.Email,    // Login email
			Password: req.Password, // Plaintext, hashed by the service
			Wallet:   req.Wallet,   // Optional wallet address
			Seed:     req.Seed,     // Optional seed value
		})
		if err != nil {
			respondError(c, err) // Map the failure to a status
			return
		}
		// Log successful registration
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID,    // New account ID
			"email":   user.Email, // Registered email
		}).Info("User registered") // Log registration
		// Return the created account
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

// LoginHandler authenticates an account and returns a signed token
func LoginHandler(svc service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Verify the credentials and issue a token
		token, user, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			respondError(c, err) // Unknown email and wrong password map the same way
			return
		}
		// Log successful login
		logrus.WithFields(logrus.Fields{
			"user_id": user.ID, // Authenticated account ID
		}).Info("User logged in") // Log login
		// Return the token and the account
		c.JSON(http.StatusOK, AuthResponse{Token: token, User: user})
	}
}
