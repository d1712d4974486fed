package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyquest/internal/credentials"
	"studyquest/internal/models"
	"studyquest/internal/repository"
	"studyquest/internal/security"
	"studyquest/internal/validation"
)

// Session is the result of a successful login
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// NewStudent is a created student plus the one-time plaintext password
type NewStudent struct {
	User     *models.User `json:"user"`
	Username string       `json:"username"`
	Password string       `json:"password"`
}

const maxUsernameAttempts = 10

// AuthService handles accounts and session tokens
type AuthService struct {
	userRepo *repository.UserRepository
	ledger   *LedgerService
	tokens   *security.TokenIssuer
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, ledger *LedgerService, tokens *security.TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		ledger:   ledger,
		tokens:   tokens,
		now:      time.Now,
	}
}

// RegisterGuardian creates a guardian account. The first account ever
// registered becomes the admin.
func (s *AuthService) RegisterGuardian(ctx context.Context, cmd validation.RegisterCommand) (*models.User, error) {
	passwordHash, err := security.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &models.User{
		ID:           uuid.NewString(),
		Role:         models.RoleGuardian,
		Name:         cmd.Name,
		Email:        cmd.Email,
		PasswordHash: passwordHash,
		Level:        1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.CreateUser(ctx, user, models.RoleAdmin); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, persistenceError("create user", err)
	}
	return user, nil
}

// CreateStudent creates a student linked to a guardian with generated
// credentials. The plaintext password is only returned here.
func (s *AuthService) CreateStudent(ctx context.Context, guardianID, name string) (*NewStudent, error) {
	name, err := validation.ParseName(name)
	if err != nil {
		return nil, err
	}

	guardian, err := s.userRepo.GetUserByID(ctx, guardianID)
	if err != nil {
		return nil, persistenceError("load guardian", err)
	}
	if guardian == nil {
		return nil, ErrUserNotFound
	}
	if guardian.IsStudent() {
		return nil, ErrForbidden
	}

	password, err := credentials.GenerateStudentPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	student := &models.User{
		ID:             uuid.NewString(),
		Role:           models.RoleStudent,
		Name:           name,
		PasswordHash:   passwordHash,
		GuardianID:     guardian.ID,
		Level:          models.LevelForPoints(0),
		CompletedTasks: []models.CompletedTaskRecord{},
		PendingRewards: []string{},
		WeakTopics:     []string{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// The username check happens inside CreateUser; a collision just draws again.
	for i := 0; i < maxUsernameAttempts; i++ {
		student.Username, err = credentials.GenerateStudentUsername()
		if err != nil {
			return nil, fmt.Errorf("failed to generate username: %w", err)
		}
		err = s.userRepo.CreateUser(ctx, student, "")
		if err == nil {
			return &NewStudent{User: student, Username: student.Username, Password: password}, nil
		}
		if !errors.Is(err, repository.ErrDuplicateUsername) {
			return nil, persistenceError("create student", err)
		}
	}
	return nil, fmt.Errorf("failed to generate a unique username after %d attempts", maxUsernameAttempts)
}

// Login checks credentials and issues a session token. identifier is an
// email for guardians and a username for students. A student login also
// runs the streak check.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.userRepo.GetUserByEmail(ctx, identifier)
	} else {
		user, err = s.userRepo.GetUserByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, persistenceError("load user", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if user.IsStudent() {
		if err := s.ledger.CheckStreakOnLogin(ctx, user.ID); err != nil {
			return nil, err
		}
		if user, err = s.userRepo.GetUserByID(ctx, user.ID); err != nil {
			return nil, persistenceError("reload user", err)
		}
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves a session token to its user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	user, err := s.userRepo.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, persistenceError("load user", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CanManage reports whether actor may act on behalf of the student
func (s *AuthService) CanManage(actor, student *models.User) bool {
	if actor == nil || student == nil {
		return false
	}
	if actor.Role == models.RoleAdmin {
		return true
	}
	return actor.Role == models.RoleGuardian && student.GuardianID == actor.ID
}

// GetUser loads a user by id
func (s *AuthService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, persistenceError("load user", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListStudents returns the students a guardian manages
func (s *AuthService) ListStudents(ctx context.Context, guardianID string) ([]models.User, error) {
	students, err := s.userRepo.ListStudentsByGuardian(ctx, guardianID)
	if err != nil {
		return nil, persistenceError("list students", err)
	}
	return students, nil
}

// ListGuardians returns every guardian and admin account
func (s *AuthService) ListGuardians(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, persistenceError("list users", err)
	}
	out := []models.User{}
	for _, u := range users {
		if !u.IsStudent() {
			out = append(out, u)
		}
	}
	return out, nil
}
