package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"github.com/RentalDesk/RentalDesk/internal/common/auth"
	"github.com/RentalDesk/RentalDesk/internal/common/config"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoleDirectory 校验角色是否存在（由 rbac 仓储实现）。
type RoleDirectory interface {
	RoleExists(ctx context.Context, name string) (bool, error)
}

type Service struct {
	repo    *Repo
	roles   RoleDirectory
	authCfg config.AuthConfig
}

func NewService(repo *Repo, roles RoleDirectory, authCfg config.AuthConfig) *Service {
	return &Service{repo: repo, roles: roles, authCfg: authCfg}
}

// LoginResult 登录结果。
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// Login 用户名密码换 JWT。认证失败统一回同一个错误，不泄露用户是否存在。
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.Validation("username/password required")
	}

	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Authorization("invalid credentials")
		}
		return nil, err
	}
	if !u.Active || !VerifyPassword(password, u.PasswordHash) {
		return nil, apperr.Authorization("invalid credentials")
	}

	ttl := time.Duration(s.authCfg.TokenTTLHour) * time.Hour
	token, expiresAt, err := auth.GenerateAccessToken(s.authCfg, u.ID, u.Role, ttl)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// CreateInput 创建后台用户的入参。
type CreateInput struct {
	Username string
	Password string
	Nickname string
	Phone    string
	Email    string
	Role     string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Role = strings.TrimSpace(in.Role)
	if in.Username == "" || in.Password == "" || in.Role == "" {
		return nil, apperr.Validation("username/password/role required")
	}

	if s.roles != nil {
		exists, err := s.roles.RoleExists(ctx, in.Role)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.Validation("role %s does not exist", in.Role)
		}
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: hash,
		Nickname:     strings.TrimSpace(in.Nickname),
		Phone:        strings.TrimSpace(in.Phone),
		Email:        strings.TrimSpace(in.Email),
		Role:         in.Role,
		Active:       true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	u, err := s.repo.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user %s not found", id)
		}
		return nil, err
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, role string, offset, limit int) ([]User, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.ListByRole(ctx, role, offset, limit)
}

// Deactivate 停用用户（不删除，登录会被拒绝）。
func (s *Service) Deactivate(ctx context.Context, id string) (*User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Active = false
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
