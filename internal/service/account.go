package service

import (
	"context"                             // Context for store operations
	"errors"                              // Sentinel errors
	"fmt"                                 // Error formatting
	"payment_tracker/internal/auth"       // Credentials, tokens and guard
	"payment_tracker/internal/domain"     // Domain models
	"payment_tracker/internal/repository" // Repository contracts
	"strings"                             // Input normalization
)

// ErrInvalidCredentials is the uniform login failure: an unknown email and a
// wrong password are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterInput is the self-registration draft.
type RegisterInput struct {
	Username string // Display name
	Email    string // Login email
	Password string // Plaintext, hashed before storage
	Wallet   string // Optional wallet address
	Seed     string // Optional seed value
}

// CreateUserInput is the administrative creation draft.
type CreateUserInput struct {
	Username     string  // Display name
	Email        string  // Login email
	Password     string  // Optional when Passwordless is set
	Passwordless bool    // Explicit marker for accounts with no usable credential
	Balance      float64 // Initial reported balance
	Wallet       string  // Optional wallet address
	Seed         string  // Optional seed value
	Role         string  // Optional role, defaults to user
}

// UpdateUserInput is the partial profile update draft; nil fields are left
// untouched.
type UpdateUserInput struct {
	Username *string  // New display name
	Email    *string  // New email
	Password *string  // New plaintext password, hashed before storage
	Balance  *float64 // New reported balance
	Wallet   *string  // New wallet address
	Seed     *string  // New seed value
	Role     *string  // New role, admin principals only
}

// AccountService orchestrates the account and ledger use cases over the
// credential store, token issuer, guard and repository.
type AccountService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	CreateUser(ctx context.Context, p auth.Principal, in CreateUserInput) (*domain.User, error)
	ListUsers(ctx context.Context, p auth.Principal, page, pageSize int) ([]domain.User, int64, error)
	GetUser(ctx context.Context, p auth.Principal, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, p auth.Principal, id string, in UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, p auth.Principal, id string) error
	AppendTransaction(ctx context.Context, p auth.Principal, id string, entry domain.Transaction) (*domain.User, error)
	ListUserTransactions(ctx context.Context, p auth.Principal, id string, page, pageSize int) ([]domain.Transaction, int64, error)
	ListAllTransactions(ctx context.Context, p auth.Principal, filter repository.TransactionFilter, page, pageSize int) ([]domain.Transaction, int64, error)
}

type accountService struct {
	users  repository.UserRepository // Persistence collaborator
	ledger *Ledger                   // Transaction validator and sequencer
	hasher *auth.PasswordHasher      // One-way credential store
	tokens *auth.TokenIssuer         // Session token issuer
}

// NewAccountService wires the account use cases together
func NewAccountService(users repository.UserRepository, ledger *Ledger, hasher *auth.PasswordHasher, tokens *auth.TokenIssuer) AccountService {
	return &accountService{
		users:  users,
		ledger: ledger,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register creates a self-service account with the user role
func (s *accountService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	// Required fields are rejected before any hashing work
	if in.Username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if in.Email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	if in.Password == "" {
		return nil, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}
	// Hash the password before the draft ever reaches the store
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		Username: in.Username,     // Display name
		Email:    in.Email,        // Normalized email
		Password: hash,            // Hash, never the plaintext
		Wallet:   in.Wallet,       // Opaque pass-through
		Seed:     in.Seed,         // Opaque pass-through
		Role:     domain.RoleUser, // Self-registration never grants admin
	}
	// Duplicate emails surface as repository.ErrEmailTaken
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a session token
func (s *accountService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		// Unknown email collapses into the uniform credential failure
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	// A wrong password yields the same failure as an unknown email
	if !s.hasher.Verify(password, user.Password) {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// CreateUser creates an account on behalf of an administrator
func (s *accountService) CreateUser(ctx context.Context, p auth.Principal, in CreateUserInput) (*domain.User, error) {
	// Administrative creation is admin only
	if err := auth.RequireAdmin(p); err != nil {
		return nil, err
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if in.Username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if in.Email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser // Default role
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: role must be %q or %q", domain.ErrValidation, domain.RoleUser, domain.RoleAdmin)
	}
	var hash string
	switch {
	case in.Password != "":
		h, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	case in.Passwordless:
		// Explicitly marked service account: the empty hash never verifies,
		// so the account cannot log in
		hash = ""
	default:
		return nil, fmt.Errorf("%w: password is required unless passwordless is set", domain.ErrValidation)
	}
	user := &domain.User{
		Username: in.Username, // Display name
		Email:    in.Email,    // Normalized email
		Password: hash,        // Hash or the explicit empty placeholder
		Balance:  in.Balance,  // Initial reported balance
		Wallet:   in.Wallet,   // Opaque pass-through
		Seed:     in.Seed,     // Opaque pass-through
		Role:     role,        // Validated role
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers enumerates accounts page by page, admin only
func (s *accountService) ListUsers(ctx context.Context, p auth.Principal, page, pageSize int) ([]domain.User, int64, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, 0, err
	}
	return s.users.ListAll(ctx, page, pageSize)
}

// GetUser returns one account under the self-or-admin rule
func (s *accountService) GetUser(ctx context.Context, p auth.Principal, id string) (*domain.User, error) {
	if err := auth.RequireSelfOrAdmin(p, id); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

// UpdateUser applies a partial profile update under the self-or-admin rule
func (s *accountService) UpdateUser(ctx context.Context, p auth.Principal, id string, in UpdateUserInput) (*domain.User, error) {
	if err := auth.RequireSelfOrAdmin(p, id); err != nil {
		return nil, err
	}
	// Only admins may change roles; an account cannot escalate itself
	if in.Role != nil {
		if err := auth.RequireAdmin(p); err != nil {
			return nil, err
		}
		if !domain.ValidRole(*in.Role) {
			return nil, fmt.Errorf("%w: role must be %q or %q", domain.ErrValidation, domain.RoleUser, domain.RoleAdmin)
		}
	}
	update := repository.UserUpdate{
		Username: in.Username,
		Balance:  in.Balance,
		Wallet:   in.Wallet,
		Seed:     in.Seed,
		Role:     in.Role,
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		update.Email = &email
	}
	// A new password is hashed before it ever reaches the store
	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", domain.ErrValidation)
		}
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		update.Password = &hash
	}
	return s.users.Update(ctx, id, update)
}

// DeleteUser removes an account under the self-or-admin rule
func (s *accountService) DeleteUser(ctx context.Context, p auth.Principal, id string) error {
	if err := auth.RequireSelfOrAdmin(p, id); err != nil {
		return err
	}
	return s.users.Delete(ctx, id)
}

// AppendTransaction records one ledger entry under the self-or-admin rule
func (s *accountService) AppendTransaction(ctx context.Context, p auth.Principal, id string, entry domain.Transaction) (*domain.User, error) {
	if err := auth.RequireSelfOrAdmin(p, id); err != nil {
		return nil, err
	}
	return s.ledger.Append(ctx, id, entry)
}

// ListUserTransactions pages through one account's history under the
// self-or-admin rule
func (s *accountService) ListUserTransactions(ctx context.Context, p auth.Principal, id string, page, pageSize int) ([]domain.Transaction, int64, error) {
	if err := auth.RequireSelfOrAdmin(p, id); err != nil {
		return nil, 0, err
	}
	return s.users.ListTransactions(ctx, id, page, pageSize)
}

// ListAllTransactions pages through every account's entries, admin only
func (s *accountService) ListAllTransactions(ctx context.Context, p auth.Principal, filter repository.TransactionFilter, page, pageSize int) ([]domain.Transaction, int64, error) {
	if err := auth.RequireAdmin(p); err != nil {
		return nil, 0, err
	}
	return s.users.ListAllTransactions(ctx, filter, page, pageSize)
}

// normalizeEmail lowercases and trims an email so uniqueness is
// case-insensitive
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
