package booking

import (
	"fmt"
	"time"
)

// Status 预订状态枚举（持久化为字符串）。
type Status string

const (
	StatusConfirmed Status = "confirmed" // 已确认，待取车
	StatusActive    Status = "active"    // 已取车，租期进行中
	StatusCompleted Status = "completed" // 已还车（终态）
	StatusCancelled Status = "cancelled" // 已取消（终态）
)

// OccupyingStatuses 占用车辆档期的状态：冲突检测只看这两种。
var OccupyingStatuses = []Status{StatusConfirmed, StatusActive}

// Booking 预订 GORM 模型，业务的核心实体。
// 不变式：同一辆车上，状态为 confirmed/active 的预订日期区间不允许重叠。
type Booking struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	BookingNo string `gorm:"uniqueIndex;size:32;not null" json:"booking_no"`

	CarID      string `gorm:"index;size:36;not null" json:"car_id"`
	CustomerID string `gorm:"index;size:36;not null" json:"customer_id"`
	CreatedBy  string `gorm:"index;size:36" json:"created_by"` // 创建预订的后台用户

	StartDate time.Time `gorm:"index;not null" json:"start_date"`
	EndDate   time.Time `gorm:"index;not null" json:"end_date"`

	// 金额明细
	DailyRate  float64 `gorm:"not null;default:0" json:"daily_rate"`
	TotalDays  int     `gorm:"not null;default:0" json:"total_days"`
	Subtotal   float64 `gorm:"not null;default:0" json:"subtotal"`
	Extras     float64 `gorm:"not null;default:0" json:"extras"`
	Taxes      float64 `gorm:"not null;default:0" json:"taxes"`
	Discount   float64 `gorm:"not null;default:0" json:"discount"`
	Total      float64 `gorm:"not null;default:0" json:"total"`
	PaidAmount float64 `gorm:"not null;default:0" json:"paid_amount"`

	Status Status `gorm:"type:varchar(16);index;not null" json:"status"`

	PickupAt    *time.Time `json:"pickup_at"`    // 取车时间
	ReturnAt    *time.Time `json:"return_at"`    // 还车时间
	CancelledAt *time.Time `json:"cancelled_at"` // 取消时间

	PickupOdometer *int64 `json:"pickup_odometer"` // 取车里程读数
	ReturnOdometer *int64 `json:"return_odometer"` // 还车里程读数

	Notes string `gorm:"size:512" json:"notes"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Overlaps 两个日期区间是否相交（闭区间语义）。
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// TotalDaysBetween 计费天数：按 24h 向上取整，最少 1 天（当天取还也算 1 天）。
func TotalDaysBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	d := end.Sub(start)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days
}

// NewBookingNo 生成预订号，格式 BK-YYYYMM-XXXXXX。
// 后缀取自时间纳秒，仅保证实践上基本不撞，不保证全局唯一
//（唯一索引兜底，撞上会被数据库拒绝）。
func NewBookingNo(now time.Time) string {
	return fmt.Sprintf("BK-%s-%06d", now.Format("200601"), now.UnixNano()%1_000_000)
}
