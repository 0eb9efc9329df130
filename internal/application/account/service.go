// Package account provides the application layer for authentication:
// registration, login, and guest sessions. Every issued token carries a
// session ID, which is what the kitchen keys its per-session state on.
package account

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/user"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/outbound"
	apperrors "github.com/Shunsena-Jian/kasalo-kusina/pkg/errors"
)

// Service implements the authentication use cases.
type Service struct {
	users         outbound.UserRepository
	jwtSecret     []byte
	jwtExpiration time.Duration
	logger        *zap.Logger
}

// NewService creates an account service.
func NewService(users outbound.UserRepository, jwtSecret string, jwtExpiration time.Duration, logger *zap.Logger) *Service {
	if jwtExpiration <= 0 {
		jwtExpiration = 24 * time.Hour
	}
	return &Service{
		users:         users,
		jwtSecret:     []byte(jwtSecret),
		jwtExpiration: jwtExpiration,
		logger:        logger.Named("account-service"),
	}
}

// RegisterCommand contains user registration data.
type RegisterCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginCommand contains user login data.
type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserDTO represents user data returned to the client.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse contains authentication response data.
type AuthResponse struct {
	User        UserDTO `json:"user"`
	AccessToken string  `json:"access_token"`
	ExpiresIn   int     `json:"expires_in"`
}

// Claims are the JWT token claims. SessionID is minted per login, not
// per user: two logins by the same account get independent kitchen
// sessions.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	jwt.RegisteredClaims
}

// Register creates a new user account and logs it in.
func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*AuthResponse, error) {
	s.logger.Info("Registering new user", zap.String("email", cmd.Email))

	if existing, err := s.users.FindByEmail(ctx, cmd.Email); err == nil && existing != nil {
		return nil, apperrors.NewEmailAlreadyExists()
	}

	newUser, err := user.NewUser(cmd.Email, cmd.Name, cmd.Password)
	if err != nil {
		return nil, apperrors.NewValidation(err.Error())
	}

	if err := s.users.Create(ctx, newUser); err != nil {
		return nil, apperrors.NewDatabase("create user", err)
	}

	token, err := s.issueToken(newUser.ID(), user.RoleUser)
	if err != nil {
		return nil, apperrors.NewInternal("failed to generate token").WithCause(err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", newUser.ID().String()),
		zap.String("email", newUser.Email()),
	)

	return &AuthResponse{
		User:        entityToDTO(newUser),
		AccessToken: token,
		ExpiresIn:   int(s.jwtExpiration.Seconds()),
	}, nil
}

// Login authenticates a user.
func (s *Service) Login(ctx context.Context, cmd LoginCommand) (*AuthResponse, error) {
	s.logger.Info("User login attempt", zap.String("email", cmd.Email))

	entity, err := s.users.FindByEmail(ctx, cmd.Email)
	if err != nil || entity == nil {
		return nil, apperrors.NewInvalidCredentials()
	}
	if err := entity.CheckPassword(cmd.Password); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("email", cmd.Email))
		return nil, apperrors.NewInvalidCredentials()
	}
	if !entity.IsActive() {
		return nil, apperrors.NewUnauthorized("Account is deactivated")
	}

	if err := s.users.UpdateLastLogin(ctx, entity.ID()); err != nil {
		s.logger.Error("Failed to update last login", zap.Error(err))
	}

	token, err := s.issueToken(entity.ID(), user.RoleUser)
	if err != nil {
		return nil, apperrors.NewInternal("failed to generate token").WithCause(err)
	}

	s.logger.Info("User logged in", zap.String("user_id", entity.ID().String()))

	return &AuthResponse{
		User:        entityToDTO(entity),
		AccessToken: token,
		ExpiresIn:   int(s.jwtExpiration.Seconds()),
	}, nil
}

// GuestSession issues a token for an anonymous browsing session. Guests
// can use the kitchen but own no catalog entries.
func (s *Service) GuestSession(ctx context.Context) (*AuthResponse, error) {
	guestID := uuid.New()

	token, err := s.issueToken(guestID, user.RoleGuest)
	if err != nil {
		return nil, apperrors.NewInternal("failed to generate token").WithCause(err)
	}

	s.logger.Info("Guest session issued", zap.String("guest_id", guestID.String()))

	return &AuthResponse{
		User: UserDTO{
			ID:        guestID,
			Name:      "Guest",
			Role:      string(user.RoleGuest),
			CreatedAt: time.Now(),
		},
		AccessToken: token,
		ExpiresIn:   int(s.jwtExpiration.Seconds()),
	}, nil
}

// ParseToken validates a token and returns its claims.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.NewUnauthorized("Unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, apperrors.NewUnauthorized("Invalid token").WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.NewUnauthorized("Invalid token")
	}
	return claims, nil
}

func (s *Service) issueToken(userID uuid.UUID, role user.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		SessionID: uuid.NewString(),
		Role:      string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func entityToDTO(u *user.User) UserDTO {
	return UserDTO{
		ID:        u.ID(),
		Email:     u.Email(),
		Name:      u.Name(),
		Role:      string(user.RoleUser),
		CreatedAt: u.CreatedAt(),
	}
}
