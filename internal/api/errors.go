package api

import (
	"errors"                              // Error inspection
	"net/http"                            // HTTP status codes
	"payment_tracker/internal/auth"       // Authorization failures
	"payment_tracker/internal/domain"     // Validation failures
	"payment_tracker/internal/repository" // Persistence failures
	"payment_tracker/internal/service"    // Credential failures
	"strconv"                             // String conversion

	"github.com/gin-gonic/gin" // Gin web framework
)

// respondError maps service and repository failures onto HTTP statuses
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		// Invalid input, return bad request with the rejection reason
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		// Uniform credential failure, no side channel for unknown emails
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, auth.ErrForbidden):
		// Caller lacks the required role, return forbidden
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, repository.ErrUserNotFound):
		// Unknown account, return not found
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, repository.ErrEmailTaken):
		// Duplicate email, return bad request
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
	default:
		// Anything else is an internal failure
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// pagination reads page and page_size from the query string
func pagination(c *gin.Context) (int, int) {
	page := 1      // Default page number
	pageSize := 20 // Default page size
	// Check and set page number from query params
	if p := c.Query("page"); p != "" {
		// If valid, set page number
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	// Check and set page size within limits
	if ps := c.Query("page_size"); ps != "" {
		// If valid, set page size
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size if valid
		}
	}
	return page, pageSize
}
