package notification

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

func (r *Repo) Create(ctx context.Context, n *Notification) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Create(n).Error
}

// ListFilter 查询条件：userID/role 描述当前用户，
// 返回定向给该用户、该角色、以及全局广播的通知。
type ListFilter struct {
	UserID     string
	Role       string
	UnreadOnly bool
	Offset     int
	Limit      int
}

func (r *Repo) List(ctx context.Context, f ListFilter) ([]Notification, int64, error) {
	if r == nil || r.db == nil {
		return nil, 0, fmt.Errorf("repo db is nil")
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	q := r.db.WithContext(ctx).Model(&Notification{}).
		Where("(user_id = ? OR role = ? OR (user_id IS NULL AND role IS NULL))", f.UserID, f.Role)
	if f.UnreadOnly {
		q = q.Where("`read` = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []Notification
	if err := q.Order("created_at desc").Offset(f.Offset).Limit(f.Limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Notification, error) {
	if r == nil || r.db == nil {
		return nil, fmt.Errorf("repo db is nil")
	}
	var n Notification
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&n).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *Repo) MarkRead(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ?", id).Update("read", true).Error
}

// MarkAllRead 把当前用户可见的未读通知全部置为已读。
func (r *Repo) MarkAllRead(ctx context.Context, userID, role string) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("repo db is nil")
	}
	return r.db.WithContext(ctx).Model(&Notification{}).
		Where("(user_id = ? OR role = ? OR (user_id IS NULL AND role IS NULL))", userID, role).
		Where("`read` = ?", false).
		Update("read", true).Error
}

func (r *Repo) CountUnread(ctx context.Context, userID, role string) (int64, error) {
	if r == nil || r.db == nil {
		return 0, fmt.Errorf("repo db is nil")
	}
	var total int64
	err := r.db.WithContext(ctx).Model(&Notification{}).
		Where("(user_id = ? OR role = ? OR (user_id IS NULL AND role IS NULL))", userID, role).
		Where("`read` = ?", false).
		Count(&total).Error
	return total, err
}
