package transaction

import (
	"context"
	"fmt"
	"time"

	"github.com/RentalDesk/RentalDesk/internal/booking"
	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, t *Transaction) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Create(t).Error
}

// CreateWithBooking 落账并在同一事务里累加订单已付金额。
func (r *Repo) CreateWithBooking(ctx context.Context, t *Transaction, paidDelta float64) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		if t.BookingID == nil || paidDelta == 0 {
			return nil
		}
		return booking.AddPaid(tx, *t.BookingID, paidDelta)
	})
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Transaction, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var t Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListFilter 流水查询条件。
type ListFilter struct {
	Type      Type
	BookingID string
	From      time.Time
	To        time.Time
	Offset    int
	Limit     int
}

func (r *Repo) List(ctx context.Context, f ListFilter) ([]Transaction, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Transaction{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.BookingID != "" {
		q = q.Where("booking_id = ?", f.BookingID)
	}
	if !f.From.IsZero() {
		q = q.Where("created_at >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("created_at < ?", f.To)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []Transaction
	if err := q.Order("created_at desc").Offset(f.Offset).Limit(f.Limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// SumByType 区间内按类型汇总金额（报表用）。
func (r *Repo) SumByType(ctx context.Context, from, to time.Time) (map[Type]float64, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	type row struct {
		Type  Type
		Total float64
	}
	q := r.db.WithContext(ctx).Model(&Transaction{}).
		Select("type, sum(amount) as total").
		Group("type")
	if !from.IsZero() {
		q = q.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("created_at < ?", to)
	}
	var rows []row
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[Type]float64, len(rows))
	for _, rw := range rows {
		out[rw.Type] = rw.Total
	}
	return out, nil
}
