package api

import (
	"context"                             // Context for Redis operations
	"net/http"                            // HTTP status codes
	"payment_tracker/internal/auth"       // Authorization guard
	"payment_tracker/internal/domain"     // Domain models
	"payment_tracker/internal/middleware" // Principal extraction
	"payment_tracker/internal/repository" // Listing filters
	"payment_tracker/internal/service"    // Account use cases
	"payment_tracker/internal/utils"      // Cache helpers
	"strconv"                             // String conversion
	"strings"                             // String manipulation
	"time"                                // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// TransactionRequest represents a payment record to append
type TransactionRequest struct {
	Date      string  `json:"date" binding:"required"`      // Payment date must be provided
	Amount    float64 `json:"amount" binding:"gte=0"`       // Amount must be non-negative
	Recipient string  `json:"recipient" binding:"required"` // Recipient must be provided
	Status    string  `json:"status"`                       // Optional status, defaults to Pending
}

// AdminTransactionResponse exposes the ownership and timing fields hidden on
// the user-facing payload
type AdminTransactionResponse struct {
	UserID    string  `json:"user_id"`    // Owning account ID
	Date      string  `json:"date"`       // Payment date
	Amount    float64 `json:"amount"`     // Payment amount
	Recipient string  `json:"recipient"`  // Payment recipient
	Status    string  `json:"status"`     // Payment status
	CreatedAt int64   `json:"created_at"` // Record time in unix milliseconds
}

// AppendTransactionHandler records one payment on an account's history
func AppendTransactionHandler(svc service.AccountService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFromContext(c) // Get the principal from context
		// Check if the principal exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id := c.Param("id")        // Target account ID
		var req TransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Build the payment record
		entry := domain.Transaction{
			Date:      req.Date,      // Payment date
			Amount:    req.Amount,    // Payment amount
			Recipient: req.Recipient, // Payment recipient
			Status:    req.Status,    // Requested status
		}
		// Append the record through the service
		user, err := svc.AppendTransaction(c.Request.Context(), p, id, entry)
		if err != nil {
			respondError(c, err) // Map the failure to a status
			return
		}
		// Log the recorded payment
		logrus.WithFields(logrus.Fields{
			"user_id":   id,                              // Owning account ID
			"amount":    req.Amount,                      // Payment amount
			"recipient": req.Recipient,                   // Payment recipient
			"status":    entry.Status,                    // Recorded status
			"timestamp": time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Transaction recorded") // Log the append
		// Invalidate the account and history cache
		utils.InvalidateUserCache(context.Background(), rdb, id)
		// Return the account with its updated history
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

// ListUserTransactionsHandler returns one account's payment history page by page
func ListUserTransactionsHandler(svc service.AccountService, rdb *redis.Client) gin.HandlerFunc {
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
		page, pageSize := pagination(c) // Read pagination from the query
		// Redis cache key
		cacheKey := utils.HistoryCacheKey(id, page, pageSize)
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Transactions []domain.Transaction `json:"transactions"` // List of payments
			Page         int                  `json:"page"`         // Current page
			PageSize     int                  `json:"page_size"`    // Page size
			Total        int64                `json:"total"`        // Total payments
			TotalPages   int                  `json:"total_pages"`  // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // Cached payments
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total payments
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		// Fetch the page through the service
		txs, total, err := svc.ListUserTransactions(c.Request.Context(), p, id, page, pageSize)
		if err != nil {
			respondError(c, err) // Map the failure to a status
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"transactions": txs,        // List of payments
			"page":         page,       // Current page
			"page_size":    pageSize,   // Page size
			"total":        total,      // Total payments
			"total_pages":  totalPages, // Total pages
			"cached":       false,      // Not from cache
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp) // Return the history page
	}
}

// ListAllTransactionsHandler returns payments across all accounts, with
// optional filtering by account, status, or record time
func ListAllTransactionsHandler(svc service.AccountService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := middleware.PrincipalFromContext(c) // Get the principal from context
		// Check if the principal exists in context
		if !ok {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background() // Use background context for Redis
		// Build cache key from all query params
		var keyParts []string // Parts of the cache key
		// Append each query parameter to the key parts
		for _, k := range []string{"user_id", "status", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		// Join key parts to form the final cache key
		cacheKey := "admin:txs:" + strings.Join(keyParts, ":")
		var cached struct {
			Transactions []AdminTransactionResponse `json:"transactions"` // List of payments
			Page         int                        `json:"page"`         // Current page
			PageSize     int                        `json:"page_size"`    // Page size
			Total        int64                      `json:"total"`        // Total payments
			TotalPages   int                        `json:"total_pages"`  // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // List of payments
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total payments
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		page, pageSize := pagination(c) // Read pagination from the query
		// Build the listing filter from query params
		filter := repository.TransactionFilter{
			UserID: c.Query("user_id"), // Filter by owning account
			Status: c.Query("status"),  // Filter by payment status
		}
		if from := c.Query("from"); from != "" {
			// Parse the lower record time bound
			if v, err := strconv.ParseInt(from, 10, 64); err == nil {
				filter.From = v // Lower bound in unix milliseconds
			}
		}
		if to := c.Query("to"); to != "" {
			// Parse the upper record time bound
			if v, err := strconv.ParseInt(to, 10, 64); err == nil {
				filter.To = v // Upper bound in unix milliseconds
			}
		}
		// Fetch the page through the service
		txs, total, err := svc.ListAllTransactions(c.Request.Context(), p, filter, page, pageSize)
		if err != nil {
			respondError(c, err) // Map the failure to a status
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		// Prepare response data
		resp := make([]AdminTransactionResponse, len(txs))
		// Map payments to the admin response format
		for i, t := range txs {
			resp[i] = AdminTransactionResponse{
				UserID:    t.UserID,    // Owning account ID
				Date:      t.Date,      // Payment date
				Amount:    t.Amount,    // Payment amount
				Recipient: t.Recipient, // Payment recipient
				Status:    t.Status,    // Payment status
				CreatedAt: t.CreatedAt, // Record time
			}
		}
		// Prepare final response data
		respData := gin.H{
			"transactions": resp,       // List of payments
			"page":         page,       // Current page
			"page_size":    pageSize,   // Page size
			"total":        total,      // Total payments
			"total_pages":  totalPages, // Total pages
			"cached":       false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}
