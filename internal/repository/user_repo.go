package repository

import (
	"context"
	"errors"
	"strings"

	"studyquest/internal/models"
	"studyquest/internal/store"
)

var (
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
)

// UserRepository persists users through the record store
type UserRepository struct {
	users *collection[models.User]
}

// NewUserRepository creates a new user repository
func NewUserRepository(s store.RecordStore) *UserRepository {
	return &UserRepository{
		users: newCollection(s, store.Users, func(u *models.User) string { return u.ID }),
	}
}

// GetUserByID retrieves a user by ID, returning nil when absent
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.users.find(ctx, id)
}

// GetUserByEmail retrieves a user by email address, case-insensitively
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, func(u *models.User) bool {
		return u.Email != "" && strings.EqualFold(u.Email, email)
	})
}

// GetUserByUsername retrieves a student by login username
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, func(u *models.User) bool {
		return u.Username != "" && strings.EqualFold(u.Username, username)
	})
}

// ListStudentsByGuardian returns the students a guardian manages
func (r *UserRepository) ListStudentsByGuardian(ctx context.Context, guardianID string) ([]models.User, error) {
	return r.users.filter(ctx, func(u *models.User) bool {
		return u.IsStudent() && u.GuardianID == guardianID
	})
}

// ListUsers returns every user in store order
func (r *UserRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	return r.users.all(ctx)
}

// CreateUser inserts a new account. The email and username checks run in
// the same collection write as the insert. When the collection is empty and
// firstRole is set, the user is given firstRole.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User, firstRole models.Role) error {
	return r.users.update(ctx, func(current []models.User) ([]models.User, error) {
		for i := range current {
			if user.Email != "" && strings.EqualFold(current[i].Email, user.Email) {
				return nil, ErrDuplicateEmail
			}
			if user.Username != "" && strings.EqualFold(current[i].Username, user.Username) {
				return nil, ErrDuplicateUsername
			}
		}
		if len(current) == 0 && firstRole != "" {
			user.Role = firstRole
		}
		return append(current, *user), nil
	})
}

// SaveUser inserts or replaces the user
func (r *UserRepository) SaveUser(ctx context.Context, user *models.User) error {
	return r.users.put(ctx, user)
}

// ReplaceAll overwrites every stored user
func (r *UserRepository) ReplaceAll(ctx context.Context, users []models.User) error {
	return r.users.replaceAll(ctx, users)
}

// Merge inserts or replaces each of users in one collection write
func (r *UserRepository) Merge(ctx context.Context, users []models.User) error {
	items := make([]*models.User, len(users))
	for i := range users {
		items[i] = &users[i]
	}
	return r.users.put(ctx, items...)
}

func (r *UserRepository) findOne(ctx context.Context, match func(*models.User) bool) (*models.User, error) {
	users, err := r.users.filter(ctx, match)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}
