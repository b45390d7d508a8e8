package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	autherrors "leavehub/internal/auth/errors"
	"leavehub/internal/balance"
	"leavehub/internal/employee"
	"leavehub/internal/leavetype"
	"leavehub/internal/rbac"
	"leavehub/internal/shared/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

type Service interface {
	Signup(ctx context.Context, req SignupRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (TokenResponse, error)
	Me(ctx context.Context, userID string) (MeResponse, error)
}

type service struct {
	db           *gorm.DB
	repo         Repository
	employeeRepo employee.Repository
	typeRepo     leavetype.Repository
	balances     balance.Service
	logger       *zap.Logger
}

func NewService(
	db *gorm.DB,
	repo Repository,
	employeeRepo employee.Repository,
	typeRepo leavetype.Repository,
	balances balance.Service,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		typeRepo:     typeRepo,
		balances:     balances,
		logger:       l,
	}
}

// Signup creates the account, its employee profile and the first year's
// balance rows in one transaction. A failure anywhere leaves nothing behind.
func (s *service) Signup(ctx context.Context, req SignupRequest) (TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return TokenResponse{}, err
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	}
	emp := &employee.Employee{
		ID:         uuid.New(),
		UserID:     &user.ID,
		Email:      email,
		FullName:   req.FullName,
		Role:       rbac.RoleEmployee,
		Department: req.Department,
		IsActive:   true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, user); err != nil {
			return translateDuplicate(err)
		}
		if err := s.employeeRepo.WithTx(tx).Create(ctx, emp); err != nil {
			return translateDuplicate(err)
		}

		types, err := s.typeRepo.WithTx(tx).FindAllActive(ctx)
		if err != nil {
			return err
		}
		return s.balances.Onboard(ctx, tx, emp.ID, types)
	})
	if err != nil {
		s.logger.Warn("signup failed", zap.String("email", email), zap.Error(err))
		return TokenResponse{}, err
	}

	s.logger.Info("signup success",
		zap.String("user_id", user.ID.String()),
		zap.String("employee_id", emp.ID.String()),
	)
	return s.issueTokens(user.ID.String(), emp.ID.String(), emp.Role)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenResponse{}, autherrors.ErrInvalidCredentials
		}
		return TokenResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login rejected", zap.String("email", email))
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	emp, err := s.employeeRepo.FindByUserID(ctx, user.ID.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenResponse{}, autherrors.ErrNoEmployeeProfile
		}
		return TokenResponse{}, err
	}
	if !emp.IsActive {
		return TokenResponse{}, autherrors.ErrInvalidCredentials
	}

	s.logger.Info("login success", zap.String("user_id", user.ID.String()))
	return s.issueTokens(user.ID.String(), emp.ID.String(), emp.Role)
}

// Refresh trades a valid refresh token for a fresh pair. The role claim is
// re-read from the employee row, so a role change takes effect here.
func (s *service) Refresh(ctx context.Context, refreshToken string) (TokenResponse, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		if err != nil && strings.Contains(err.Error(), "expired") {
			return TokenResponse{}, autherrors.ErrTokenExpired
		}
		return TokenResponse{}, autherrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TokenResponse{}, autherrors.ErrInvalidRefreshToken
	}
	if tokenType, _ := claims["token_type"].(string); tokenType != "refresh" {
		return TokenResponse{}, autherrors.ErrInvalidRefreshToken
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return TokenResponse{}, autherrors.ErrInvalidRefreshToken
	}

	emp, err := s.employeeRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenResponse{}, autherrors.ErrNoEmployeeProfile
		}
		return TokenResponse{}, err
	}
	if !emp.IsActive {
		return TokenResponse{}, autherrors.ErrInvalidRefreshToken
	}

	return s.issueTokens(userID, emp.ID.String(), emp.Role)
}

func (s *service) Me(ctx context.Context, userID string) (MeResponse, error) {
	emp, err := s.employeeRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MeResponse{}, autherrors.ErrNoEmployeeProfile
		}
		return MeResponse{}, err
	}

	resp := MeResponse{
		EmployeeID: emp.ID.String(),
		Email:      emp.Email,
		FullName:   emp.FullName,
		Role:       emp.Role,
		Department: emp.Department,
	}
	if emp.UserID != nil {
		resp.UserID = emp.UserID.String()
	}
	return resp, nil
}

func (s *service) issueTokens(userID, employeeID, role string) (TokenResponse, error) {
	now := time.Now().UTC()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":     userID,
		"employee_id": employeeID,
		"role":        role,
		"iat":         now.Unix(),
		"exp":         now.Add(accessTokenTTL).Unix(),
	})
	accessToken, err := access.SignedString(jwtSecret())
	if err != nil {
		return TokenResponse{}, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":    userID,
		"token_type": "refresh",
		"iat":        now.Unix(),
		"exp":        now.Add(refreshTokenTTL).Unix(),
	})
	refreshToken, err := refresh.SignedString(jwtSecret())
	if err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
	}, nil
}

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func translateDuplicate(err error) error {
	mapped := apperror.FromDB(err)
	var appErr *apperror.AppError
	if errors.As(mapped, &appErr) && appErr.Code == apperror.CodeConflict {
		return autherrors.ErrEmailTaken
	}
	return err
}
