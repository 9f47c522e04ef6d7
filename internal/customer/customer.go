package customer

import (
	"time"

	"gorm.io/gorm"
)

// Customer 是 customers 表的 GORM 模型。软删除而非物理删除。
type Customer struct {
	ID         string `gorm:"primaryKey;size:36" json:"id"`
	NationalID string `gorm:"uniqueIndex;size:64;not null" json:"national_id"`
	LicenseNo  string `gorm:"size:64" json:"license_no"`
	Name       string `gorm:"size:128;not null" json:"name"`
	Phone      string `gorm:"size:32" json:"phone"`
	Email      string `gorm:"size:128" json:"email"`
	Address    string `gorm:"size:255" json:"address"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
