package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/easybills/easybills/internal/models"
	"github.com/easybills/easybills/internal/repository"
	"github.com/easybills/easybills/pkg/utils"
)

var (
	// ErrEmailNotAllowed is returned when a registration email is not
	// on the institution domain allow-list.
	ErrEmailNotAllowed = errors.New("email domain not allowed")

	// ErrUserExists is returned when the email is already registered.
	ErrUserExists = errors.New("user already exists")

	// ErrMissingFields is returned when required registration or login
	// fields are absent.
	ErrMissingFields = errors.New("all required fields must be provided")
)

// Service handles registration and login.
type Service struct {
	users          *repository.UserRepository
	tokens         *TokenManager
	allowedDomains []string
	logger         *zap.Logger
}

// NewService creates an auth service. allowedDomains restricts
// registration to institution email addresses; an empty list allows
// any domain.
func NewService(users *repository.UserRepository, tokens *TokenManager, allowedDomains []string, logger *zap.Logger) *Service {
	return &Service{
		users:          users,
		tokens:         tokens,
		allowedDomains: allowedDomains,
		logger:         logger,
	}
}

// RegisterInput carries registration fields.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Role       models.Role
	EmployeeID string
	Department string
}

func (s *Service) emailAllowed(email string) bool {
	if len(s.allowedDomains) == 0 {
		return true
	}
	for _, domain := range s.allowedDomains {
		if strings.HasSuffix(email, "@"+domain) {
			return true
		}
	}
	return false
}

// Register creates a user and returns a signed token for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, "", ErrMissingFields
	}
	if err := utils.ValidateEmail(in.Email); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMissingFields, err)
	}
	if !s.emailAllowed(in.Email) {
		return nil, "", ErrEmailNotAllowed
	}

	role := in.Role
	if role == "" {
		role = models.RoleFaculty
	}
	if !role.IsValid() {
		return nil, "", fmt.Errorf("%w: unknown role %q", ErrMissingFields, in.Role)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		EmployeeID:   in.EmployeeID,
		Department:   in.Department,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrUserExists
		}
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return user, token, nil
}

// Login verifies credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", ErrMissingFields
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !user.IsActive {
		return nil, "", ErrInvalidCredentials
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
