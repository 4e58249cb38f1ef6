package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"lingvocards/internal/models"
	"lingvocards/internal/repository"
	"lingvocards/internal/security"
	"lingvocards/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
	ErrBlockedName        = errors.New("name contains blocked words")
)

const passwordResetTTL = time.Hour

// WordFilter finds blocked words in user-supplied text
type WordFilter interface {
	BlockedWordsIn(ctx context.Context, text string) ([]string, error)
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	filter          WordFilter
	mailer          Mailer
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service. filter and mailer may be nil.
func NewAuthService(userRepo *repository.UserRepository, filter WordFilter, mailer Mailer, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		filter:          filter,
		mailer:          mailer,
		sessionDuration: sessionDuration,
	}
}

func (s *AuthService) checkName(ctx context.Context, name string) error {
	if s.filter == nil {
		return nil
	}
	blocked, err := s.filter.BlockedWordsIn(ctx, name)
	if err != nil {
		log.Printf("Warning: blocked words check failed: %v", err)
		return nil
	}
	if len(blocked) > 0 {
		return ErrBlockedName
	}
	return nil
}

// Register creates a new user account and sends the welcome email
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := s.checkName(ctx, name); err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.sendWelcome(ctx, user)
	return user, nil
}

// sendWelcome never fails registration; a lost welcome email is only logged
func (s *AuthService) sendWelcome(ctx context.Context, user *models.User) {
	if s.mailer == nil || !s.mailer.IsEnabled() {
		return
	}
	if err := s.mailer.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
		log.Printf("Warning: failed to send welcome email to user %d: %v", user.ID, err)
	}
}

func (s *AuthService) createSession(ctx context.Context, userID int64) (*models.Session, error) {
	session, err := s.userRepo.CreateSession(ctx, security.GenerateSessionID(), userID, time.Now().Add(s.sessionDuration))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Login authenticates a user and creates a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, *models.User, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

// ValidateSession checks if a session is valid and returns the associated user
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*models.User, error) {
	session, err := s.userRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.userRepo.DeleteSession(ctx, sessionID)
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}

	return user, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.userRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// UpdateName changes the display name shown on the profile
func (s *AuthService) UpdateName(ctx context.Context, userID int64, name string) error {
	name = strings.TrimSpace(name)
	if err := validation.ValidateName(name); err != nil {
		return err
	}
	if err := s.checkName(ctx, name); err != nil {
		return err
	}
	return s.userRepo.UpdateName(ctx, userID, name)
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) error {
	if err := s.userRepo.DeleteExpiredSessions(ctx); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

// OAuthLogin authenticates or creates a user using an OAuth provider. An
// existing password account with the same email is linked to the provider.
func (s *AuthService) OAuthLogin(ctx context.Context, provider, subject, email, name string) (*models.Session, *models.User, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.GetUserByOAuth(ctx, provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		user, err = s.linkOrCreateOAuthUser(ctx, provider, subject, email, name)
		if err != nil {
			return nil, nil, err
		}
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *AuthService) linkOrCreateOAuthUser(ctx context.Context, provider, subject, email, name string) (*models.User, error) {
	existingUser, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		if existingUser.OAuthProvider != "" && existingUser.OAuthProvider != provider {
			return nil, ErrEmailTaken
		}
		if err := s.userRepo.LinkOAuthProvider(ctx, existingUser.ID, provider, subject); err != nil {
			if errors.Is(err, repository.ErrOAuthAlreadyLinked) {
				return nil, ErrEmailTaken
			}
			return nil, err
		}
		return existingUser, nil
	}

	name = strings.TrimSpace(name)
	if validation.ValidateName(name) != nil || s.checkName(ctx, name) != nil {
		name, _, _ = strings.Cut(email, "@")
	}

	// OAuth accounts get an unguessable password so the column is never empty
	randomPasswordHash, err := security.HashPassword(security.GenerateSessionID())
	if err != nil {
		return nil, fmt.Errorf("failed to generate oauth password hash: %w", err)
	}
	user, err := s.userRepo.CreateUser(ctx, email, randomPasswordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}
	if err := s.userRepo.LinkOAuthProvider(ctx, user.ID, provider, subject); err != nil {
		return nil, err
	}
	user.OAuthProvider = provider
	user.OAuthSubject = subject

	s.sendWelcome(ctx, user)
	return user, nil
}

// RequestPasswordReset creates a password reset token and emails it. Unknown
// addresses succeed silently so the endpoint cannot be used to probe accounts.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	token, err := security.GenerateSecret(32)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_ = s.userRepo.DeleteUserPasswordResetTokens(ctx, user.ID)

	if err := s.userRepo.CreatePasswordResetToken(ctx, token, user.ID, time.Now().Add(passwordResetTTL)); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	if s.mailer != nil && s.mailer.IsEnabled() {
		if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Name, token); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}

	return nil
}

// ValidatePasswordResetToken checks if a reset token is valid
func (s *AuthService) ValidatePasswordResetToken(ctx context.Context, token string) (bool, error) {
	resetToken, err := s.userRepo.GetPasswordResetToken(ctx, token)
	if err != nil {
		return false, fmt.Errorf("failed to get reset token: %w", err)
	}
	return resetToken != nil && !resetToken.Used && !resetToken.IsExpired(), nil
}

// ResetPassword sets a new password using a valid token and signs the user
// out everywhere
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	resetToken, err := s.userRepo.GetPasswordResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}
	if resetToken == nil || resetToken.Used || resetToken.IsExpired() {
		return ErrInvalidResetToken
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePassword(ctx, resetToken.UserID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.userRepo.MarkPasswordResetTokenAsUsed(ctx, token); err != nil {
		return fmt.Errorf("failed to mark token as used: %w", err)
	}
	if err := s.userRepo.DeleteUserSessions(ctx, resetToken.UserID); err != nil {
		return fmt.Errorf("failed to invalidate sessions: %w", err)
	}

	return nil
}

// CleanupExpiredPasswordResetTokens removes expired reset tokens
func (s *AuthService) CleanupExpiredPasswordResetTokens(ctx context.Context) error {
	if err := s.userRepo.DeleteExpiredPasswordResetTokens(ctx); err != nil {
		return fmt.Errorf("failed to cleanup reset tokens: %w", err)
	}
	return nil
}
