package car

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, c *Car) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *Repo) Update(ctx context.Context, c *Car) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Car, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var c Car
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// SoftDelete 打软删标记（gorm.DeletedAt），不物理删除。
func (r *Repo) SoftDelete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&Car{}).Error
}

func (r *Repo) List(ctx context.Context, status Status, offset, limit int) ([]Car, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Car{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var cars []Car
	if err := q.Order("created_at desc").Offset(offset).Limit(limit).Find(&cars).Error; err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}

// ListWithServiceProfile 配置了保养档案的在册车辆（软删除的不算）。
func (r *Repo) ListWithServiceProfile(ctx context.Context) ([]Car, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var cars []Car
	err := r.db.WithContext(ctx).
		Where("service_interval_km > 0 OR service_interval_days > 0").
		Find(&cars).Error
	if err != nil {
		return nil, err
	}
	return cars, nil
}

// CountByStatus 各状态车辆数（报表用）。
func (r *Repo) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	type row struct {
		Status Status
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&Car{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[Status]int64, len(rows))
	for _, rw := range rows {
		out[rw.Status] = rw.N
	}
	return out, nil
}
