package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/events"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/jwt"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/model"
	"github.com/chandrakanthc072-pixel/weather-monitoring-system/internal/repository"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// login responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("user already exists")
	ErrTokenInvalid       = errors.New("token is invalid or expired")
	ErrUserNotFound       = errors.New("user not found")
)

const pgUniqueViolation = "23505"

type AuthService interface {
	Register(ctx context.Context, name, email, password, role string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, string, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	tokens    *jwt.Manager
	publisher events.Publisher
}

func NewAuthService(userRepo repository.UserRepository, tokens *jwt.Manager, publisher events.Publisher) AuthService {
	return &authService{
		userRepo:  userRepo,
		tokens:    tokens,
		publisher: publisher,
	}
}

// Register stores a new user and returns it together with a fresh access
// token. The role defaults to "user"; duplicate emails surface as
// ErrEmailTaken via the unique constraint.
func (s *authService) Register(ctx context.Context, name, email, password, role string) (*model.User, string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	if role == "" {
		role = model.RoleUser
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	newID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}
	user.ID = newID

	accessToken, _, err := s.tokens.GenerateTokens(user)
	if err != nil {
		return nil, "", err
	}

	go s.publisher.PublishUserRegistered(user.ID, user.Email)

	return user, accessToken, nil
}

// Login verifies the credentials, issues a fresh token pair and rotates the
// stored refresh token hash. Any earlier refresh token stops working at that
// point; there is at most one live session per user.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", "", err
	}
	if user == nil {
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.tokens.GenerateTokens(user)
	if err != nil {
		return nil, "", "", err
	}

	tokenHash := hashToken(refreshToken)
	if err := s.userRepo.UpdateRefreshTokenHash(ctx, user.ID, &tokenHash); err != nil {
		return nil, "", "", err
	}

	return user, accessToken, refreshToken, nil
}

// Refresh redeems a refresh token for a new access token. The token must
// verify and its hash must still match the stored one, so a token rotated
// out by a later login is rejected.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Validate(refreshToken)
	if err != nil {
		return "", ErrTokenInvalid
	}

	userID, err := jwt.UserIDFromClaims(claims)
	if err != nil {
		return "", ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil || user.RefreshTokenHash == nil || *user.RefreshTokenHash != hashToken(refreshToken) {
		return "", ErrTokenInvalid
	}

	newAccessToken, _, err := s.tokens.GenerateTokens(user)
	if err != nil {
		return "", err
	}

	return newAccessToken, nil
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.UpdateRefreshTokenHash(ctx, userID, nil)
}

func (s *authService) GetUser(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func (s *authService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListAll(ctx)
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
