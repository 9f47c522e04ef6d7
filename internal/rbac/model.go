package rbac

import "time"

// 内置角色名。角色表允许运营再加，但种子数据保证这几个存在
//（logistics 除外：是否启用取送车团队由部署方决定）。
const (
	RoleAdmin     = "admin"
	RoleManager   = "manager"
	RoleLogistics = "logistics"
	RoleStaff     = "staff"
)

// Role 角色 GORM 模型。一个用户只挂一个角色。
type Role struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:32;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Permission 资源:动作 授权项。"*" 表示通配。
// 用户的有效权限 = 其角色名下所有授权项的并集。
type Permission struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	RoleID   string `gorm:"index:idx_role_resource_action,unique;size:36;not null" json:"role_id"`
	Resource string `gorm:"index:idx_role_resource_action,unique;size:32;not null" json:"resource"`
	Action   string `gorm:"index:idx_role_resource_action,unique;size:32;not null" json:"action"`
}
