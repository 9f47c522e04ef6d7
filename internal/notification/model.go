package notification

import (
	"time"
)

// 通知类型（持久化为字符串）。
const (
	TypeBookingCreated = "booking_created"
	TypePickupRequest  = "pickup_request"
	TypeOverdue        = "booking_overdue"
	TypePickupDue      = "booking_pickup_due"
	TypeMaintenanceDue = "maintenance_due"
	TypeSystem         = "system"
)

// EventNew 新通知落库后推送的实时事件名。
const EventNew = "notification:new"

// Notification 通知 GORM 模型。
// 定向方式：user_id / role 二选一，都为空表示全局广播。
// 写入侧统一走 Target，避免出现 user 和 role 同时被设置的歧义。
type Notification struct {
	ID             string  `gorm:"primaryKey;size:36" json:"id"`
	UserID         *string `gorm:"index;size:36" json:"user_id"`         // 定向用户
	Role           *string `gorm:"index;size:32" json:"role"`            // 定向角色
	Type           string  `gorm:"size:32;index;not null" json:"type"`   // 通知类型
	Title          string  `gorm:"size:128;not null" json:"title"`       // 标题
	Message        string  `gorm:"size:512;not null" json:"message"`     // 正文
	Payload        string  `gorm:"type:text" json:"payload"`             // 附加数据（JSON）
	Read           bool    `gorm:"not null;default:false" json:"read"`   // 已读标记
	SenderID       string  `gorm:"size:36" json:"sender_id"`             // 可选：触发者
	ActionRequired bool    `gorm:"not null;default:false" json:"action_required"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TargetKind 通知定向类型。
type TargetKind int

const (
	TargetBroadcast TargetKind = iota // 全局
	TargetUser                        // 定向用户
	TargetRole                        // 定向角色（该角色所有成员）
)

// Target 通知定向（带标签的变体，三者互斥）。
type Target struct {
	Kind   TargetKind
	UserID string
	Role   string
}

// ToUser 定向到单个用户。
func ToUser(userID string) Target {
	return Target{Kind: TargetUser, UserID: userID}
}

// ToRole 定向到一个角色的所有成员。
func ToRole(role string) Target {
	return Target{Kind: TargetRole, Role: role}
}

// Broadcast 全局广播。
func Broadcast() Target {
	return Target{Kind: TargetBroadcast}
}

// apply 把定向写到模型的可空列上。
func (t Target) apply(n *Notification) {
	switch t.Kind {
	case TargetUser:
		if t.UserID != "" {
			id := t.UserID
			n.UserID = &id
		}
	case TargetRole:
		if t.Role != "" {
			role := t.Role
			n.Role = &role
		}
	}
}
