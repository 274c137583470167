package service

import (
	"context"
	"payment_tracker/internal/domain"
	"payment_tracker/internal/repository"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// fakeUserRepo is an in-memory repository.UserRepository that mirrors the
// store semantics the service relies on: unique emails, append-only history
// in insertion order, and not-found sentinels.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	order  []string // Creation order for stable listing
	nextID uint     // Next transaction surrogate key
	clock  int64    // Monotonic append time in unix milliseconds
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}, clock: 1_000_000}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Transactions = append([]domain.Transaction(nil), u.Transactions...)
	return &c
}

func pageSlice[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return append([]T(nil), items[start:end]...)
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	f.users[user.ID] = cloneUser(user)
	f.order = append(f.order, user.ID)
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			c := cloneUser(u)
			c.Transactions = nil // The email lookup does not load history
			return c, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserRepo) ListAll(ctx context.Context, page, pageSize int) ([]domain.User, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]domain.User, 0, len(f.order))
	for _, id := range f.order {
		c := cloneUser(f.users[id])
		c.Transactions = nil
		all = append(all, *c)
	}
	return pageSlice(all, page, pageSize), int64(len(all)), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, id string, update repository.UserUpdate) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	merged := cloneUser(u)
	update.Apply(merged)
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	for otherID, other := range f.users {
		if otherID != id && other.Email == merged.Email {
			return nil, repository.ErrEmailTaken
		}
	}
	f.users[id] = merged
	return cloneUser(merged), nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(f.users, id)
	for i, oid := range f.order {
		if oid == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeUserRepo) AppendTransaction(ctx context.Context, id string, entry domain.Transaction) (*domain.User, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	f.nextID++
	entry.ID = f.nextID
	entry.UserID = id
	if entry.CreatedAt == 0 {
		f.clock++
		entry.CreatedAt = f.clock
	}
	u.Transactions = append(u.Transactions, entry)
	return cloneUser(u), nil
}

func (f *fakeUserRepo) ListTransactions(ctx context.Context, userID string, page, pageSize int) ([]domain.Transaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, 0, repository.ErrUserNotFound
	}
	return pageSlice(u.Transactions, page, pageSize), int64(len(u.Transactions)), nil
}

func (f *fakeUserRepo) ListAllTransactions(ctx context.Context, filter repository.TransactionFilter, page, pageSize int) ([]domain.Transaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []domain.Transaction
	for _, u := range f.users {
		for _, t := range u.Transactions {
			if filter.UserID != "" && t.UserID != filter.UserID {
				continue
			}
			if filter.Status != "" && t.Status != filter.Status {
				continue
			}
			if filter.From > 0 && t.CreatedAt < filter.From {
				continue
			}
			if filter.To > 0 && t.CreatedAt > filter.To {
				continue
			}
			all = append(all, t)
		}
	}
	// Newest first, matching the store's listing order
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt != all[j].CreatedAt {
			return all[i].CreatedAt > all[j].CreatedAt
		}
		return all[i].ID > all[j].ID
	})
	return pageSlice(all, page, pageSize), int64(len(all)), nil
}
