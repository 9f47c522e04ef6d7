package maintenance

import "time"

// EventDue 保养到期扫描推送的实时事件名。
const EventDue = "maintenance:due"

// Status 保养单状态枚举（持久化为字符串）。
type Status string

const (
	StatusScheduled  Status = "scheduled"   // 已排期
	StatusInProgress Status = "in_progress" // 进行中（车辆进保养位）
	StatusCompleted  Status = "completed"   // 已完成（终态）
)

// AllowTransition 保养单状态机。完成后不允许回退。
var AllowTransition = map[Status][]Status{
	StatusScheduled:  {StatusInProgress},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
}

// CanTransition 判断 from -> to 是否允许。
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Record 保养单 GORM 模型。
// in_progress 会把车辆置为 maintenance；completed 放回 available
// 并刷新车辆的保养基线（上次保养里程/时间）。
type Record struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	CarID       string  `gorm:"index;size:36;not null" json:"car_id"`
	Status      Status  `gorm:"type:varchar(16);index;not null" json:"status"`
	Description string  `gorm:"size:512" json:"description"`
	Cost        float64 `gorm:"not null;default:0" json:"cost"`
	Mileage     int64   `gorm:"not null;default:0" json:"mileage"` // 进场时里程读数

	ScheduledAt time.Time  `json:"scheduled_at"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
