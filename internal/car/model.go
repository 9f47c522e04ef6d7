package car

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Status 车辆状态枚举（持久化为字符串）。
type Status string

const (
	StatusAvailable   Status = "available"   // 可租
	StatusRented      Status = "rented"      // 租出中
	StatusMaintenance Status = "maintenance" // 保养/维修中
	StatusSold        Status = "sold"        // 已售出（终态）
)

// AllowTransition 车辆状态允许的流转关系。
// 不在表里的流转一律拒绝（比如 sold 之后不允许再动）。
var AllowTransition = map[Status][]Status{
	StatusAvailable:   {StatusRented, StatusMaintenance, StatusSold},
	StatusRented:      {StatusAvailable},
	StatusMaintenance: {StatusAvailable, StatusSold},
	StatusSold:        {},
}

// CanTransition 判断 from -> to 是否是允许的状态流转。
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

// Car 是 cars 表的 GORM 模型。软删除（DeletedAt）而非物理删除。
type Car struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	PlateNumber string `gorm:"uniqueIndex;size:32;not null" json:"plate_number"`
	VIN         string `gorm:"size:64" json:"vin"`
	Make        string `gorm:"size:64" json:"make"`
	Model       string `gorm:"size:64" json:"model"`
	Year        int    `gorm:"not null;default:0" json:"year"`
	Status      Status `gorm:"type:varchar(16);index;not null" json:"status"`

	Mileage   int64   `gorm:"not null;default:0" json:"mileage"`    // 当前里程（km）
	DailyRate float64 `gorm:"not null;default:0" json:"daily_rate"` // 默认日租价

	// 保养档案：interval 为 0 表示该维度未配置
	ServiceIntervalKM   int64      `gorm:"not null;default:0" json:"service_interval_km"`
	ServiceIntervalDays int        `gorm:"not null;default:0" json:"service_interval_days"`
	LastServiceMileage  int64      `gorm:"not null;default:0" json:"last_service_mileage"`
	LastServiceAt       *time.Time `json:"last_service_at"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// HasServiceProfile 是否配置了保养档案。
func (c *Car) HasServiceProfile() bool {
	return c != nil && (c.ServiceIntervalKM > 0 || c.ServiceIntervalDays > 0)
}

// ServiceDue 按保养档案判断是否到期：
// 上次保养后的里程增量达到里程阈值，或距上次保养天数达到天数阈值，任一满足即到期。
func (c *Car) ServiceDue(now time.Time) (bool, string) {
	if !c.HasServiceProfile() {
		return false, ""
	}
	if c.ServiceIntervalKM > 0 && c.Mileage-c.LastServiceMileage >= c.ServiceIntervalKM {
		return true, fmt.Sprintf("mileage since last service %dkm >= %dkm",
			c.Mileage-c.LastServiceMileage, c.ServiceIntervalKM)
	}
	if c.ServiceIntervalDays > 0 && c.LastServiceAt != nil {
		days := int(now.Sub(*c.LastServiceAt).Hours() / 24)
		if days >= c.ServiceIntervalDays {
			return true, fmt.Sprintf("%d days since last service >= %d days", days, c.ServiceIntervalDays)
		}
	}
	return false, ""
}
