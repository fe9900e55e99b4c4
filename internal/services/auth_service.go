package services

import (
	"errors"

	"hirehub_backend/internal/appErrors"
	"hirehub_backend/internal/auth"
	"hirehub_backend/internal/models"
	"hirehub_backend/internal/repositories"
	"hirehub_backend/internal/services/dto"
)

type AuthService interface {
	Register(req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(req *dto.LoginRequest) (*dto.AuthResponse, error)
}

type authService struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

// Register создает учетную запись владельца компании.
// UserID владельца одновременно является AccountID компании
func (s *authService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, appErrors.ErrWeakPassword
	}

	if _, err := s.userRepo.FindByEmail(req.Email); err == nil {
		return nil, appErrors.ErrEmailAlreadyExists
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: hash,
		CompanyName:  req.CompanyName,
		Role:         models.UserRoleCompany,
		Status:       models.UserStatusActive,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *authService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, appErrors.ErrInvalidCredentials
	}
	if user.Status == models.UserStatusSuspended {
		return nil, appErrors.ErrForbidden
	}

	return s.issueToken(user)
}

func (s *authService) issueToken(user *models.User) (*dto.AuthResponse, error) {
	if err := auth.ValidateRole(string(user.Role)); err != nil {
		return nil, appErrors.InternalError(err)
	}

	token, err := auth.GenerateToken(user.ID, user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		Token:       token,
		UserID:      user.ID,
		AccountID:   user.ID,
		CompanyName: user.CompanyName,
		Role:        string(user.Role),
	}, nil
}
