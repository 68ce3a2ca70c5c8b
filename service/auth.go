package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"voice-recorder/constant"
	"voice-recorder/dto"
	"voice-recorder/entities"
	"voice-recorder/pkg/apperror"
	"voice-recorder/pkg/token"
	"voice-recorder/repository"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*dto.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*dto.AuthResponse, error)
	// ValidateUser re-confirms the token's principal still exists. It runs
	// on every authenticated request.
	ValidateUser(ctx context.Context, claims *token.Claims) (*entities.User, error)
	RefreshToken(ctx context.Context, userID uuid.UUID) (string, error)
	FindUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *token.Manager
}

func NewAuthService(users repository.UserRepository, tokens *token.Manager) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
	}
}

func (s *authService) Register(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict("user with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), constant.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	accessToken, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user registered")

	return &dto.AuthResponse{
		User:        dto.NewAuthUser(user),
		AccessToken: accessToken,
	}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same message as a bad password so callers cannot probe
			// which emails are registered.
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	accessToken, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID.String()).Msg("user logged in")

	return &dto.AuthResponse{
		User:        dto.NewAuthUser(user),
		AccessToken: accessToken,
	}, nil
}

func (s *authService) ValidateUser(ctx context.Context, claims *token.Claims) (*entities.User, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperror.Unauthorized("user not found or token invalid")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Unauthorized("user not found or token invalid")
		}
		return nil, err
	}

	return user, nil
}

func (s *authService) RefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperror.Unauthorized("user not found")
		}
		return "", err
	}

	return s.tokens.Generate(user.ID, user.Email)
}

func (s *authService) FindUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}
