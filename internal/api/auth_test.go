package api

import (
	"context"
	"fmt"
	"net/http"
	"payment_tracker/internal/auth"
	"payment_tracker/internal/domain"
	"payment_tracker/internal/repository"
	"payment_tracker/internal/service"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHandler(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret")

	t.Run("success", func(t *testing.T) {
		svc := &stubAccountService{
			registerFn: func(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
				assert.Equal(t, "alice", in.Username)
				assert.Equal(t, "alice@example.com", in.Email)
				assert.Equal(t, "pass1234", in.Password)
				return &domain.User{ID: "u1", Username: in.Username, Email: in.Email, Role: domain.RoleUser}, nil
			},
		}
		r := newTestRouter(svc, issuer, deadRedis())

		w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
			"username": "alice", "email": "alice@example.com", "password": "pass1234",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		body := decodeBody(t, w)
		user := body["user"].(map[string]any)
		assert.Equal(t, "u1", user["id"])
		assert.NotContains(t, user, "password")
	})

	t.Run("malformed body", func(t *testing.T) {
		r := newTestRouter(&stubAccountService{}, issuer, deadRedis())

		w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{"username": "alice"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		svc := &stubAccountService{
			registerFn: func(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
				return nil, repository.ErrEmailTaken
			},
		}
		r := newTestRouter(svc, issuer, deadRedis())

		w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
			"username": "alice", "email": "alice@example.com", "password": "pass1234",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation failure", func(t *testing.T) {
		svc := &stubAccountService{
			registerFn: func(ctx context.Context, in service.RegisterInput) (*domain.User, error) {
				return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
			},
		}
		r := newTestRouter(svc, issuer, deadRedis())

		w := doJSON(t, r, http.MethodPost, "/register", "", gin.H{
			"username": " ", "email": "alice@example.com", "password": "pass1234",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLoginHandler(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret")

	t.Run("success", func(t *testing.T) {
		svc := &stubAccountService{
			loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
				assert.Equal(t, "alice@example.com", email)
				assert.Equal(t, "pass1234", password)
				return "signed-token", &domain.User{ID: "u1", Email: email, Role: domain.RoleUser}, nil
			},
		}
		r := newTestRouter(svc, issuer, deadRedis())

		w := doJSON(t, r, http.MethodPost, "/login", "", gin.H{
			"email": "alice@example.com", "password": "pass1234",
		})
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, "signed-token", body["token"])
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc := &stubAccountService{
			loginFn: func(ctx context.Context, email, password string) (string, *domain.User, error) {
				return "", nil, service.ErrInvalidCredentials
			},
		}
		r := newTestRouter(svc, issuer, deadRedis())

		w := doJSON(t, r, http.MethodPost, "/login", "", gin.H{
			"email": "alice@example.com", "password": "wrong",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		r := newTestRouter(&stubAccountService{}, issuer, deadRedis())

		w := doJSON(t, r, http.MethodPost, "/login", "", gin.H{"email": "alice@example.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
