package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"gadamagado/api/internal/config"
	"gadamagado/api/internal/ids"
	"gadamagado/api/internal/models"
	"gadamagado/api/internal/repository"
	"gadamagado/api/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user inactive")
	ErrPhoneRegistered    = errors.New("phone number already registered")
	ErrMissingFields      = errors.New("missing required fields")
)

// UserStore is the directory surface the auth flows need.
type UserStore interface {
	FindByPhone(ctx context.Context, phone string) (models.User, error)
	Create(ctx context.Context, user models.User) error
}

// SessionWriter creates and destroys server-side sessions.
type SessionWriter interface {
	Create(ctx context.Context, userID string) (string, error)
	Destroy(ctx context.Context, id string) error
}

type AuthService struct {
	users    UserStore
	sessions SessionWriter
	cfg      *config.AppConfig
	log      zerolog.Logger
}

func NewAuthService(users UserStore, sessions SessionWriter, cfg *config.AppConfig, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		cfg:      cfg,
		log:      log,
	}
}

type RegisterInput struct {
	FullName    string
	PhoneNumber string
	Email       string
	Password    string
	Region      string
	District    string
}

// AuthResult carries both credential channels: the session identifier for
// cookie clients and a bearer token for mobile clients.
type AuthResult struct {
	User      models.User
	Token     string
	SessionID string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	input.PhoneNumber = strings.TrimSpace(input.PhoneNumber)
	if input.FullName == "" || input.PhoneNumber == "" || input.Password == "" ||
		input.Region == "" || input.District == "" {
		return AuthResult{}, ErrMissingFields
	}

	if _, err := s.users.FindByPhone(ctx, input.PhoneNumber); err == nil {
		return AuthResult{}, ErrPhoneRegistered
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := security.HashPassword(input.Password)
	if err != nil {
		return AuthResult{}, err
	}

	var email *string
	if input.Email != "" {
		email = &input.Email
	}

	user := models.User{
		ID:           ids.New(),
		FullName:     input.FullName,
		PhoneNumber:  input.PhoneNumber,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.UserRoleUser,
		IsActive:     true,
		Region:       input.Region,
		District:     input.District,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return AuthResult{}, err
	}

	return s.openChannels(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, phone string, password string) (AuthResult, error) {
	phone = strings.TrimSpace(phone)
	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return AuthResult{}, ErrUserInactive
	}

	return s.openChannels(ctx, user)
}

// openChannels establishes both credential channels for a freshly
// authenticated user.
func (s *AuthService) openChannels(ctx context.Context, user models.User) (AuthResult, error) {
	sessionID, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	token, err := security.IssueToken(s.cfg.Security.TokenSecret, user.ID, s.cfg.Security.TokenTTL)
	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{
		User:      user,
		Token:     token,
		SessionID: sessionID,
	}, nil
}

// Logout destroys the session. It never fails from the caller's point of
// view: a store error must not block logging out.
func (s *AuthService) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		s.log.Warn().Err(err).Msg("session destroy failed on logout")
	}
}
