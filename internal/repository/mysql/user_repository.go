package mysql

import (
	"context"                             // Context for store operations
	"errors"                              // Error inspection
	"payment_tracker/internal/domain"     // Domain models
	"payment_tracker/internal/repository" // Repository contracts

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Row locking clause
)

// UserRepository is the MySQL-backed implementation of
// repository.UserRepository. The store handle is passed in explicitly so
// tests can run against their own database.
type UserRepository struct {
	db *gorm.DB // GORM database handle
}

var _ repository.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a repository over the given database handle
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user. The unique email index is the duplicate
// arbiter: no prior existence read, the insert either lands or is rejected
// atomically by the store.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	// Invariants are checked before touching the store
	if err := user.Validate(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		// Duplicate key on the email unique index
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repository.ErrEmailTaken
		}
		return err
	}
	return nil
}

// FindByID returns the user with its full transaction history in append order
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("transactions.id ASC") // Insertion order = append order
		}).
		First(&user, "id = ?", id).Error
	if err != nil {
		// Absence maps to the shared sentinel; the caller decides what it means
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns the user without history; used for the login lookup
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListAll returns one page of users plus the total count
func (r *UserRepository) ListAll(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	var total int64
	// Fetch total user count for pagination
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize // Calculate offset for pagination
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("created_at ASC").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update applies a partial merge under a row lock, re-checks the User
// invariants and returns the fully updated entity. A duplicate email on
// update is rejected by the same unique index as on create.
func (r *UserRepository) Update(ctx context.Context, id string, update repository.UserUpdate) (*domain.User, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user domain.User
		// Lock the row so concurrent partial merges serialize
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrUserNotFound
			}
			return err
		}
		changes := update.Apply(&user) // Merge provided fields only
		// Invariants are re-checked on every update, not only on create
		if err := user.Validate(); err != nil {
			return err
		}
		if len(changes) == 0 {
			return nil // Nothing to persist
		}
		if err := tx.Model(&user).Updates(changes).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return repository.ErrEmailTaken
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Return the stored entity including its history
	return r.FindByID(ctx, id)
}

// Delete removes a user; the attached history goes with it via the foreign
// key cascade. An absent id maps to ErrUserNotFound.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&domain.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	// Zero rows affected means the record never existed
	if res.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

// AppendTransaction appends one validated entry to the user's history.
// The append is a single insert: concurrent appends for the same user each
// land as their own row and can never overwrite one another. A missing user
// surfaces as a foreign key violation on that same insert, keeping the
// existence check and the append atomic.
func (r *UserRepository) AppendTransaction(ctx context.Context, id string, entry domain.Transaction) (*domain.User, error) {
	// Invariants are checked before touching the store
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	entry.ID = 0      // Sequence position is store-assigned
	entry.UserID = id // Owning user
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	// Return the updated entity with the full ordered history
	return r.FindByID(ctx, id)
}

// ListTransactions returns one page of a user's history in append order
func (r *UserRepository) ListTransactions(ctx context.Context, userID string, page, pageSize int) ([]domain.Transaction, int64, error) {
	// The target user must exist; an empty history is not a NotFound
	var exists int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Count(&exists).Error; err != nil {
		return nil, 0, err
	}
	if exists == 0 {
		return nil, 0, repository.ErrUserNotFound
	}
	var total int64
	// Count total entries for pagination
	if err := r.db.WithContext(ctx).Model(&domain.Transaction{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize // Calculate offset for pagination
	var entries []domain.Transaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC"). // Insertion order = append order
		Offset(offset).
		Limit(pageSize).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListAllTransactions returns one page of entries across all users, newest
// first, narrowed by the filter
func (r *UserRepository) ListAllTransactions(ctx context.Context, filter repository.TransactionFilter, page, pageSize int) ([]domain.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Transaction{}) // Start building the query
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID) // Filter by owning user
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status) // Filter by status
	}
	if filter.From > 0 {
		query = query.Where("created_at >= ?", filter.From) // Filter by start of append window
	}
	if filter.To > 0 {
		query = query.Where("created_at <= ?", filter.To) // Filter by end of append window
	}
	var total int64
	// Get total count of entries matching the filters
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * pageSize // Calculate offset for pagination
	var entries []domain.Transaction
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(pageSize).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
