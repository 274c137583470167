package repository

import (
	"context"                         // Context for store operations
	"errors"                          // Sentinel errors
	"payment_tracker/internal/domain" // Domain models
)

// Sentinel errors shared by every repository implementation.
var (
	// ErrUserNotFound is returned when the target user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when a create or update would violate the
	// global email uniqueness constraint.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository defines persistence operations for User entities and their
// append-only transaction histories.
type UserRepository interface {
	// Create persists a new user; duplicate emails are rejected atomically
	// by the store and surface as ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) error
	// FindByID loads a user with its full ordered transaction history.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmail loads a user without history; authentication lookup only.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// ListAll enumerates users page by page and reports the total count.
	// Authorization is the caller's responsibility.
	ListAll(ctx context.Context, page, pageSize int) ([]domain.User, int64, error)
	// Update applies a partial merge, re-checks the User invariants and
	// returns the fully updated entity.
	Update(ctx context.Context, id string, update UserUpdate) (*domain.User, error)
	// Delete removes a user and, with it, the attached history.
	Delete(ctx context.Context, id string) error
	// AppendTransaction validates the entry, appends it preserving all prior
	// entries and returns the updated user.
	AppendTransaction(ctx context.Context, id string, entry domain.Transaction) (*domain.User, error)
	// ListTransactions pages through one user's history in append order.
	ListTransactions(ctx context.Context, userID string, page, pageSize int) ([]domain.Transaction, int64, error)
	// ListAllTransactions pages through every user's entries, newest first,
	// narrowed by the filter. Authorization is the caller's responsibility.
	ListAllTransactions(ctx context.Context, filter TransactionFilter, page, pageSize int) ([]domain.Transaction, int64, error)
}

// UserUpdate carries the optional fields of a partial profile update.
// Nil fields are left untouched.
type UserUpdate struct {
	Username *string  // New display name
	Email    *string  // New email, still globally unique
	Password *string  // New password hash, hashed by the caller
	Balance  *float64 // New reported balance
	Wallet   *string  // New wallet address
	Seed     *string  // New seed value
	Role     *string  // New role
}

// Apply merges the provided fields into user and reports the changed columns
func (u UserUpdate) Apply(user *domain.User) map[string]any {
	changes := map[string]any{}
	if u.Username != nil {
		user.Username = *u.Username
		changes["username"] = *u.Username
	}
	if u.Email != nil {
		user.Email = *u.Email
		changes["email"] = *u.Email
	}
	if u.Password != nil {
		user.Password = *u.Password
		changes["password"] = *u.Password
	}
	if u.Balance != nil {
		user.Balance = *u.Balance
		changes["balance"] = *u.Balance
	}
	if u.Wallet != nil {
		user.Wallet = *u.Wallet
		changes["wallet"] = *u.Wallet
	}
	if u.Seed != nil {
		user.Seed = *u.Seed
		changes["seed"] = *u.Seed
	}
	if u.Role != nil {
		user.Role = *u.Role
		changes["role"] = *u.Role
	}
	return changes
}

// TransactionFilter narrows the cross-user transaction listing.
type TransactionFilter struct {
	UserID string // Owning user, empty for all
	Status string // Transaction status, empty for all
	From   int64  // Inclusive lower bound on append time in unix millis, 0 for none
	To     int64  // Inclusive upper bound on append time in unix millis, 0 for none
}
