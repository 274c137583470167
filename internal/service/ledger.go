package service

import (
	"context"                             // Context for store operations
	"payment_tracker/internal/domain"     // Domain models
	"payment_tracker/internal/repository" // Repository contracts
)

// Ledger validates transaction entries and sequences them onto a user's
// append-only history through the repository.
type Ledger struct {
	users repository.UserRepository // Persistence collaborator
}

// NewLedger creates a ledger over the given user repository
func NewLedger(users repository.UserRepository) *Ledger {
	return &Ledger{users: users}
}

// Append validates the entry against the Transaction invariants and appends
// it to the user's history. Nothing is mutated when validation fails.
func (l *Ledger) Append(ctx context.Context, userID string, entry domain.Transaction) (*domain.User, error) {
	// An omitted status defaults to Pending
	if entry.Status == "" {
		entry.Status = domain.StatusPending
	}
	// Reject malformed entries before touching the store
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	return l.users.AppendTransaction(ctx, userID, entry)
}
