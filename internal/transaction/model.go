package transaction

import "time"

// Type 流水类型枚举。
type Type string

const (
	TypeIncome  Type = "income"  // 非订单收入
	TypeExpense Type = "expense" // 支出
	TypePayment Type = "payment" // 订单收款，会累加到订单已付金额
	TypeRefund  Type = "refund"  // 退款
)

func ValidType(t Type) bool {
	switch t {
	case TypeIncome, TypeExpense, TypePayment, TypeRefund:
		return true
	}
	return false
}

// Transaction 资金流水 GORM 模型。BookingID 可空（非订单流水）。
type Transaction struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	Type        Type    `gorm:"type:varchar(16);index;not null" json:"type"`
	Amount      float64 `gorm:"not null" json:"amount"`
	BookingID   *string `gorm:"index;size:36" json:"booking_id,omitempty"`
	Description string  `gorm:"size:512" json:"description"`
	CreatedBy   string  `gorm:"size:36" json:"created_by"`

	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
