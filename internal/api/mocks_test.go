package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"payment_tracker/internal/auth"
	"payment_tracker/internal/domain"
	"payment_tracker/internal/middleware"
	"payment_tracker/internal/repository"
	"payment_tracker/internal/service"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// stubAccountService lets each test plug in only the calls it expects.
type stubAccountService struct {
	registerFn    func(ctx context.Context, in service.RegisterInput) (*domain.User, error)
	loginFn       func(ctx context.Context, email, password string) (string, *domain.User, error)
	createUserFn  func(ctx context.Context, p auth.Principal, in service.CreateUserInput) (*domain.User, error)
	listUsersFn   func(ctx context.Context, p auth.Principal, page, pageSize int) ([]domain.User, int64, error)
	getUserFn     func(ctx context.Context, p auth.Principal, id string) (*domain.User, error)
	updateUserFn  func(ctx context.Context, p auth.Principal, id string, in service.UpdateUserInput) (*domain.User, error)
	deleteUserFn  func(ctx context.Context, p auth.Principal, id string) error
	appendFn      func(ctx context.Context, p auth.Principal, id string, entry domain.Transaction) (*domain.User, error)
	listUserTxsFn func(ctx context.Context, p auth.Principal, id string, page, pageSize int) ([]domain.Transaction, int64, error)
	listAllTxsFn  func(ctx context.Context, p auth.Principal, filter repository.TransactionFilter, page, pageSize int) ([]domain.Transaction, int64, error)
}

var _ service.AccountService = (*stubAccountService)(nil)

func (s *stubAccountService) Register(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAccountService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAccountService) CreateUser(ctx context.Context, p auth.Principal, in service.CreateUserInput) (*domain.User, error) {
	return s.createUserFn(ctx, p, in)
}

func (s *stubAccountService) ListUsers(ctx context.Context, p auth.Principal, page, pageSize int) ([]domain.User, int64, error) {
	return s.listUsersFn(ctx, p, page, pageSize)
}

func (s *stubAccountService) GetUser(ctx context.Context, p auth.Principal, id string) (*domain.User, error) {
	return s.getUserFn(ctx, p, id)
}

func (s *stubAccountService) UpdateUser(ctx context.Context, p auth.Principal, id string, in service.UpdateUserInput) (*domain.User, error) {
	return s.updateUserFn(ctx, p, id, in)
}

func (s *stubAccountService) DeleteUser(ctx context.Context, p auth.Principal, id string) error {
	return s.deleteUserFn(ctx, p, id)
}

func (s *stubAccountService) AppendTransaction(ctx context.Context, p auth.Principal, id string, entry domain.Transaction) (*domain.User, error) {
	return s.appendFn(ctx, p, id, entry)
}

func (s *stubAccountService) ListUserTransactions(ctx context.Context, p auth.Principal, id string, page, pageSize int) ([]domain.Transaction, int64, error) {
	return s.listUserTxsFn(ctx, p, id, page, pageSize)
}

func (s *stubAccountService) ListAllTransactions(ctx context.Context, p auth.Principal, filter repository.TransactionFilter, page, pageSize int) ([]domain.Transaction, int64, error) {
	return s.listAllTxsFn(ctx, p, filter, page, pageSize)
}

// deadRedis returns a client whose server does not exist, so every cache
// lookup misses and every write is dropped.
func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1, // Fail each cache call on the first refused dial
	})
}

// newTestRouter mirrors the server's route tree over a stub service.
func newTestRouter(svc service.AccountService, issuer *auth.TokenIssuer, rdb *redis.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/register", RegisterHandler(svc))
	r.POST("/login", LoginHandler(svc))

	userGroup := r.Group("/users")
	userGroup.Use(middleware.JWTAuthMiddleware(issuer))

	userAdmin := userGroup.Group("")
	userAdmin.Use(middleware.AdminOnlyMiddleware())
	userAdmin.GET("", ListUsersHandler(svc, rdb))
	userAdmin.POST("", CreateUserHandler(svc))

	userGroup.GET("/:id", GetUserHandler(svc, rdb))
	userGroup.PUT("/:id", UpdateUserHandler(svc, rdb))
	userGroup.DELETE("/:id", DeleteUserHandler(svc, rdb))
	userGroup.POST("/:id/transactions", AppendTransactionHandler(svc, rdb))
	userGroup.GET("/:id/transactions", ListUserTransactionsHandler(svc, rdb))

	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(issuer), middleware.AdminOnlyMiddleware())
	adminGroup.GET("/transactions", ListAllTransactionsHandler(svc, rdb))

	return r
}

// doJSON performs one request against the router and returns the recorder
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func issueToken(t *testing.T, issuer *auth.TokenIssuer, userID, role string) string {
	t.Helper()
	token, err := issuer.Issue(userID, role)
	require.NoError(t, err)
	return token
}
