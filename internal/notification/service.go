package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"github.com/google/uuid"
)

// Service 通知用例：落库一条记录，然后尽力广播一个实时事件。
// 广播失败不影响落库结果（离线客户端靠列表接口补偿）。
type Service struct {
	repo *Repo
	pub  Publisher
}

func NewService(repo *Repo, pub Publisher) *Service {
	return &Service{repo: repo, pub: pub}
}

// NotifyInput 创建通知的入参。
type NotifyInput struct {
	Target         Target
	Type           string
	Title          string
	Message        string
	Payload        interface{} // 可选的结构化数据，序列化为 JSON 存储
	SenderID       string
	ActionRequired bool
}

// Notify 持久化通知并广播 notification:new 事件。
func (s *Service) Notify(ctx context.Context, in NotifyInput) (*Notification, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if in.Type == "" || in.Title == "" {
		return nil, apperr.Validation("notification type/title required")
	}

	n := &Notification{
		ID:             uuid.NewString(),
		Type:           in.Type,
		Title:          in.Title,
		Message:        in.Message,
		SenderID:       in.SenderID,
		ActionRequired: in.ActionRequired,
	}
	in.Target.apply(n)

	if in.Payload != nil {
		data, err := json.Marshal(in.Payload)
		if err != nil {
			return nil, apperr.Validation("notification payload not serializable")
		}
		n.Payload = string(data)
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	if s.pub != nil {
		s.pub.Publish(EventNew, n)
	}
	return n, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Notification, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, f)
}

func (s *Service) MarkRead(ctx context.Context, id string) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("service not initialized")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID, role string) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("service not initialized")
	}
	return s.repo.MarkAllRead(ctx, userID, role)
}

func (s *Service) CountUnread(ctx context.Context, userID, role string) (int64, error) {
	if s == nil || s.repo == nil {
		return 0, fmt.Errorf("service not initialized")
	}
	return s.repo.CountUnread(ctx, userID, role)
}
