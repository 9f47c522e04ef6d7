package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/RentalDesk/RentalDesk/internal/car"
	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// conflictQuery 同车、占用状态、区间相交的预订。
// 相交判定：existing.start <= newEnd AND existing.end >= newStart。
func conflictQuery(db *gorm.DB, carID string, start, end time.Time, excludeID string) *gorm.DB {
	q := db.Model(&Booking{}).
		Where("car_id = ?", carID).
		Where("status IN ?", []Status{StatusConfirmed, StatusActive}).
		Where("start_date <= ? AND end_date >= ?", end, start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	return q
}

// FindConflicts 无锁的冲突读取（可用性查询接口用）。
func (r *Repo) FindConflicts(ctx context.Context, carID string, start, end time.Time, excludeID string) ([]Booking, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var conflicts []Booking
	if err := conflictQuery(r.db.WithContext(ctx), carID, start, end, excludeID).Find(&conflicts).Error; err != nil {
		return nil, err
	}
	return conflicts, nil
}

// CreateConfirmed 在单个事务里完成 冲突检查 -> 插入预订 -> 车辆置为 rented。
// 冲突查询对 MySQL 加 FOR UPDATE 行锁，堵住"两个并发请求都通过检查"的竞态；
// SQLite（测试环境）不支持行锁，靠其库级写锁达到同样效果。
func (r *Repo) CreateConfirmed(ctx context.Context, b *Booking) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := conflictQuery(tx, b.CarID, b.StartDate, b.EndDate, "")
		if tx.Dialector.Name() == "mysql" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var conflicts []Booking
		if err := q.Find(&conflicts).Error; err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return apperr.Conflict("car %s already booked in [%s, %s]",
				b.CarID,
				conflicts[0].StartDate.Format("2006-01-02"),
				conflicts[0].EndDate.Format("2006-01-02"))
		}

		var c car.Car
		if err := tx.Where("id = ?", b.CarID).First(&c).Error; err != nil {
			return err
		}
		if !car.CanTransition(c.Status, car.StatusRented) {
			return apperr.Conflict("car %s is %s, cannot be rented", c.ID, c.Status)
		}

		if err := tx.Create(b).Error; err != nil {
			return err
		}
		return tx.Model(&car.Car{}).Where("id = ?", b.CarID).
			Update("status", car.StatusRented).Error
	})
}

// SaveWithCar 在单个事务里保存预订并更新车辆状态（可选更新里程）。
// 取车/还车/取消都走这里，保证两张表的写入要么都生效要么都回滚。
func (r *Repo) SaveWithCar(ctx context.Context, b *Booking, carStatus car.Status, mileage *int64) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(b).Error; err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if carStatus != "" {
			updates["status"] = carStatus
		}
		if mileage != nil {
			updates["mileage"] = *mileage
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&car.Car{}).Where("id = ?", b.CarID).Updates(updates).Error
	})
}

func (r *Repo) Update(ctx context.Context, b *Booking) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Booking, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var b Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// ListFilter 查询条件。
type ListFilter struct {
	CarID      string
	CustomerID string
	Status     Status
	Offset     int
	Limit      int
}

func (r *Repo) List(ctx context.Context, f ListFilter) ([]Booking, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Booking{})
	if f.CarID != "" {
		q = q.Where("car_id = ?", f.CarID)
	}
	if f.CustomerID != "" {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var bookings []Booking
	if err := q.Order("created_at desc").Offset(f.Offset).Limit(f.Limit).Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// ListOverdue 逾期未还：active 且租期已过。
func (r *Repo) ListOverdue(ctx context.Context, now time.Time) ([]Booking, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusActive).
		Where("end_date < ?", now).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListPickupDue 今日待取车：confirmed 且起租日落在 [dayStart, dayEnd)。
func (r *Repo) ListPickupDue(ctx context.Context, dayStart, dayEnd time.Time) ([]Booking, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", StatusConfirmed).
		Where("start_date >= ? AND start_date < ?", dayStart, dayEnd).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// CountByStatus 各状态预订数（报表用）。
func (r *Repo) CountByStatus(ctx context.Context) (map[Status]int64, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	type row struct {
		Status Status
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&Booking{}).
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

// AddPaid 预订已收款累加（交易落账时调用，和交易在同一个事务里）。
func AddPaid(tx *gorm.DB, bookingID string, amount float64) error {
	return tx.Model(&Booking{}).Where("id = ?", bookingID).
		Update("paid_amount", gorm.Expr("paid_amount + ?", amount)).Error
}
