package rbac

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// RoleExists 角色是否存在（booking 服务用它探测 logistics 角色）。
func (r *Repo) RoleExists(ctx context.Context, name string) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	var role Role
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Repo) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var role Role
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// HasPermission 角色是否持有 resource:action 授权（支持 "*" 通配）。
func (r *Repo) HasPermission(ctx context.Context, roleName, resource, action string) (bool, error) {
	if r == nil || r.db == nil {
		return false, fmt.Errorf("repo db is nil")
	}
	role, err := r.FindRoleByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	var n int64
	err = r.db.WithContext(ctx).Model(&Permission{}).
		Where("role_id = ?", role.ID).
		Where("(resource = ? OR resource = '*')", resource).
		Where("(action = ? OR action = '*')", action).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// PermissionsForRole 角色的全部授权项。
func (r *Repo) PermissionsForRole(ctx context.Context, roleName string) ([]Permission, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	role, err := r.FindRoleByName(ctx, roleName)
	if err != nil {
		return nil, err
	}
	var perms []Permission
	if err := r.db.WithContext(ctx).Where("role_id = ?", role.ID).Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *Repo) ListRoles(ctx context.Context) ([]Role, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var roles []Role
	if err := r.db.WithContext(ctx).Order("name").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}
