package maintenance

import (
	"context"
	"fmt"

	"github.com/RentalDesk/RentalDesk/internal/car"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, rec *Record) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Record, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var rec Record
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveWithCar 在单个事务里保存保养单并更新车辆字段。
func (r *Repo) SaveWithCar(ctx context.Context, rec *Record, carUpdates map[string]interface{}) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
		if len(carUpdates) == 0 {
			return nil
		}
		return tx.Model(&car.Car{}).Where("id = ?", rec.CarID).Updates(carUpdates).Error
	})
}

func (r *Repo) ListByCar(ctx context.Context, carID string, offset, limit int) ([]Record, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Record{})
	if carID != "" {
		q = q.Where("car_id = ?", carID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []Record
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}
