package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/plaxtilineas/catalog_api/internal/config"
	"github.com/plaxtilineas/catalog_api/internal/models"
	"github.com/plaxtilineas/catalog_api/internal/repository"
	"github.com/plaxtilineas/catalog_api/internal/utils"
)

const passwordCost = 10

// AuthService authenticates catalog users and issues their tokens.
type AuthService struct {
	users  *repository.UserRepository
	tokens *TokenManager
	cost   int
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users *repository.UserRepository, tokens *TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens, cost: passwordCost}
}

// Login checks email and password against an active account. Unknown email and
// wrong password fail identically with utils.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	user, err := s.users.GetActiveByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		log.Warn().Str("email", email).Msg("Login failed")
		return nil, utils.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Login failed")
		return nil, utils.ErrInvalidCredentials
	}

	log.Info().Int("user_id", user.ID).Msg("Login successful")
	return s.respond(user)
}

// Register creates a user account and logs it in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: role must be admin or user", utils.ErrValidation)
	}

	user, err := s.createUser(ctx, strings.TrimSpace(req.Username), strings.TrimSpace(req.Email), req.Password, role)
	if err != nil {
		return nil, err
	}
	log.Info().Int("user_id", user.ID).Str("role", role).Msg("User registered")
	return s.respond(user)
}

// Refresh issues a new token for the holder of a valid token whose account is still active.
func (s *AuthService) Refresh(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	user, err := s.users.GetActiveByID(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if user == nil {
		return "", utils.ErrUserNotFound
	}
	return s.tokens.Issue(user.Claims())
}

// EnsureAdmin creates the bootstrap account described by cfg unless its email
// or username is already taken. It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) (bool, error) {
	if !cfg.Enabled() {
		return false, nil
	}
	role := cfg.Role
	if role == "" {
		role = models.RoleAdmin
	}
	if !models.ValidRole(role) {
		return false, fmt.Errorf("%w: admin role %q", utils.ErrValidation, role)
	}

	user, err := s.createUser(ctx, cfg.Username, cfg.Email, cfg.Password, role)
	if errors.Is(err, utils.ErrUserExists) {
		log.Debug().Str("username", cfg.Username).Msg("Admin user already present")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	log.Info().Int("user_id", user.ID).Str("username", user.Username).Msg("Admin user created")
	return true, nil
}

func (s *AuthService) createUser(ctx context.Context, username, email, password, role string) (*models.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", utils.ErrValidation)
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return nil, utils.ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, utils.ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) respond(user *models.User) (*models.AuthResponse, error) {
	claims := user.Claims()
	token, err := s.tokens.Issue(claims)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{User: claims, Token: token, ExpiresIn: s.tokens.ExpiresIn()}, nil
}
