package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/caseworks/servicedesk/internal/auth"
	"github.com/caseworks/servicedesk/internal/config"
	"github.com/caseworks/servicedesk/internal/domain"
	"github.com/caseworks/servicedesk/internal/events"
	"github.com/caseworks/servicedesk/internal/repository"
	"github.com/caseworks/servicedesk/pkg/apperrors"
)

// AuthService coordinates registration, login and identity resolution.
type AuthService struct {
	users          repository.UserRepository
	tokenMgr       *auth.TokenManager
	dispatcher     events.Dispatcher
	allowedDomain  string
	bcryptCost     int
	initialPwBytes int
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:          deps.UserRepo,
		tokenMgr:       auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		dispatcher:     deps.Dispatcher,
		allowedDomain:  strings.ToLower(cfg.AllowedEmailDomain),
		bcryptCost:     cfg.BcryptCost,
		initialPwBytes: cfg.InitialPasswordBytes,
	}
}

// Register creates a new account with a generated initial password. The
// plaintext leaves this method only via the registration event; storage sees
// the hash alone. MustChangePassword starts true.
func (s *AuthService) Register(ctx context.Context, username, email string) (*domain.User, string, error) {
	if !s.emailDomainAllowed(email) {
		return nil, "", apperrors.NewInvalidDomain(s.allowedDomain)
	}

	if _, err := s.users.GetByUsernameOrEmail(ctx, username, email); err == nil {
		return nil, "", apperrors.NewDuplicateIdentity()
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", err
	}

	initialPassword, err := auth.GenerateInitialPassword(s.initialPwBytes)
	if err != nil {
		return nil, "", err
	}
	hash, err := auth.HashPassword(initialPassword, s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Username:           username,
		Email:              email,
		PasswordHash:       hash,
		IsActive:           true,
		MustChangePassword: true,
	}
	// The repository maps concurrent unique violations to DuplicateIdentity,
	// which is what actually upholds the invariant under racing registrations.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserRegistered,
		ActorID: user.ID,
		Payload: events.UserRegisteredPayload{
			Username:        user.Username,
			Email:           user.Email,
			InitialPassword: initialPassword,
		},
	})
	return user, initialPassword, nil
}

// Login authenticates a user and issues a signed token bound to the
// username. Unknown username and wrong password are indistinguishable.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}
	if !user.IsActive {
		return nil, "", time.Time{}, apperrors.NewAccountDisabled()
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.Username)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// ChangePassword verifies the current password before storing the new hash
// and clearing the forced-rotation flag.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, oldPassword, newPassword string) error {
	if err := auth.ComparePassword(user.PasswordHash, oldPassword); err != nil {
		return apperrors.NewInvalidCredentials()
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.MustChangePassword = false
	return s.users.Update(ctx, user)
}

// ResolveIdentity verifies a token and loads the user it is bound to.
// Malformed, forged, expired and orphaned tokens all yield InvalidToken.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		return nil, apperrors.NewInvalidToken()
	}
	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidToken()
		}
		return nil, err
	}
	return user, nil
}

// Logout no-ops: tokens are stateless and remain valid until expiry.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

func (s *AuthService) emailDomainAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	return strings.ToLower(email[at+1:]) == s.allowedDomain
}

func (s *AuthService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
