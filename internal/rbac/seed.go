package rbac

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// defaultGrants 内置角色的授权目录。
// admin 全通配；manager 管业务数据；logistics 只碰预订流转和通知；
// staff 只读为主，可以录客户。
var defaultGrants = map[string][][2]string{
	RoleAdmin: {
		{"*", "*"},
	},
	RoleManager: {
		{"cars", "*"},
		{"customers", "*"},
		{"bookings", "*"},
		{"transactions", "*"},
		{"maintenance", "*"},
		{"reports", "*"},
		{"notifications", "*"},
	},
	RoleLogistics: {
		{"bookings", "list"},
		{"bookings", "view"},
		{"bookings", "pickup"},
		{"bookings", "return"},
		{"notifications", "*"},
	},
	RoleStaff: {
		{"cars", "list"},
		{"cars", "view"},
		{"customers", "list"},
		{"customers", "view"},
		{"customers", "create"},
		{"bookings", "list"},
		{"bookings", "view"},
		{"bookings", "create"},
		{"notifications", "*"},
	},
}

var defaultRoleDescriptions = map[string]string{
	RoleAdmin:     "Full system access",
	RoleManager:   "Fleet, customer and booking management",
	RoleLogistics: "Vehicle pickup and return handling",
	RoleStaff:     "Front-desk operations",
}

// EnsureDefaults 幂等地写入内置角色目录和授权项（启动时随迁移执行）。
func EnsureDefaults(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for name, grants := range defaultGrants {
			var role Role
			err := tx.Where("name = ?", name).First(&role).Error
			if err == gorm.ErrRecordNotFound {
				role = Role{
					ID:          uuid.NewString(),
					Name:        name,
					Description: defaultRoleDescriptions[name],
				}
				if err := tx.Create(&role).Error; err != nil {
					return fmt.Errorf("seed role %s: %w", name, err)
				}
			} else if err != nil {
				return err
			}

			for _, g := range grants {
				perm := Permission{
					ID:       uuid.NewString(),
					RoleID:   role.ID,
					Resource: g[0],
					Action:   g[1],
				}
				err := tx.Where("role_id = ? AND resource = ? AND action = ?", role.ID, g[0], g[1]).
					FirstOrCreate(&perm).Error
				if err != nil {
					return fmt.Errorf("seed permission %s %s:%s: %w", name, g[0], g[1], err)
				}
			}
		}
		return nil
	})
}
