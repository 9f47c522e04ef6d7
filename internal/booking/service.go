package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RentalDesk/RentalDesk/internal/car"
	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"github.com/RentalDesk/RentalDesk/internal/common/logger"
	"github.com/RentalDesk/RentalDesk/internal/notification"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 预订相关的实时事件名。
const (
	EventCreated   = "booking:created"
	EventPickup    = "booking:pickup"
	EventOverdue   = "booking:overdue"
	EventPickupDue = "booking:pickup_due"
)

// LogisticsRole 负责取送车的角色名；存在该角色时取车请求会定向推给它。
const LogisticsRole = "logistics"

// RoleDirectory 角色目录的最小只读视图（由 rbac 仓储实现）。
type RoleDirectory interface {
	RoleExists(ctx context.Context, name string) (bool, error)
}

// Service 预订领域的核心用例。
// 通知和实时推送都是注入的依赖，方便测试时替换。
type Service struct {
	repo     *Repo
	cars     *car.Repo
	notifier *notification.Service
	pub      notification.Publisher
	roles    RoleDirectory
	log      logger.Logger
}

func NewService(repo *Repo, cars *car.Repo, notifier *notification.Service, pub notification.Publisher, roles RoleDirectory, log logger.Logger) *Service {
	return &Service{repo: repo, cars: cars, notifier: notifier, pub: pub, roles: roles, log: log}
}

// CreateInput 创建预订的入参。
type CreateInput struct {
	CarID      string
	CustomerID string
	CreatedBy  string
	StartDate  time.Time
	EndDate    time.Time
	DailyRate  float64 // 0 表示沿用车辆默认日租价
	Extras     float64
	Taxes      float64
	Discount   float64
	Notes      string
}

// CheckAvailability 查询某辆车在给定区间是否可租，返回冲突的预订列表。
// excludeID 用于更新场景：检查时排除这条预订自己。
func (s *Service) CheckAvailability(ctx context.Context, carID string, start, end time.Time, excludeID string) (bool, []Booking, error) {
	if s == nil || s.repo == nil {
		return false, nil, fmt.Errorf("service not initialized")
	}
	carID = strings.TrimSpace(carID)
	if carID == "" {
		return false, nil, apperr.Validation("car_id required")
	}
	if end.Before(start) {
		return false, nil, apperr.Validation("end_date before start_date")
	}
	conflicts, err := s.repo.FindConflicts(ctx, carID, start, end, excludeID)
	if err != nil {
		return false, nil, err
	}
	return len(conflicts) == 0, conflicts, nil
}

// Create 创建预订：
// 冲突检查、插入、车辆置为 rented 在同一个事务里完成；
// 事务提交后发通知、推事件（尽力而为，失败只记日志）。
func (s *Service) Create(ctx context.Context, in CreateInput) (*Booking, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	in.CarID = strings.TrimSpace(in.CarID)
	in.CustomerID = strings.TrimSpace(in.CustomerID)
	if in.CarID == "" || in.CustomerID == "" {
		return nil, apperr.Validation("car_id/customer_id required")
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, apperr.Validation("end_date before start_date")
	}
	if in.Extras < 0 || in.Taxes < 0 || in.Discount < 0 {
		return nil, apperr.Validation("extras/taxes/discount must be non-negative")
	}

	c, err := s.cars.FindByID(ctx, in.CarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("car %s not found", in.CarID)
		}
		return nil, err
	}

	rate := in.DailyRate
	if rate <= 0 {
		rate = c.DailyRate
	}

	now := time.Now()
	totalDays := TotalDaysBetween(in.StartDate, in.EndDate)
	subtotal := float64(totalDays) * rate

	b := &Booking{
		ID:         uuid.NewString(),
		BookingNo:  NewBookingNo(now),
		CarID:      in.CarID,
		CustomerID: in.CustomerID,
		CreatedBy:  strings.TrimSpace(in.CreatedBy),
		StartDate:  in.StartDate,
		EndDate:    in.EndDate,
		DailyRate:  rate,
		TotalDays:  totalDays,
		Subtotal:   subtotal,
		Extras:     in.Extras,
		Taxes:      in.Taxes,
		Discount:   in.Discount,
		Total:      subtotal + in.Extras + in.Taxes - in.Discount,
		Status:     StatusConfirmed,
		Notes:      strings.TrimSpace(in.Notes),
	}

	if err := s.repo.CreateConfirmed(ctx, b); err != nil {
		return nil, err
	}

	s.notifyCreated(ctx, b)
	s.publish(EventCreated, b)
	return b, nil
}

// notifyCreated 预订创建后的通知扇出：全局一条；有 logistics 角色再定向一条取车请求。
func (s *Service) notifyCreated(ctx context.Context, b *Booking) {
	if s.notifier == nil {
		return
	}
	_, err := s.notifier.Notify(ctx, notification.NotifyInput{
		Target:  notification.Broadcast(),
		Type:    notification.TypeBookingCreated,
		Title:   "New booking created",
		Message: fmt.Sprintf("Booking %s created for car %s", b.BookingNo, b.CarID),
		Payload: b,
	})
	if err != nil && s.log != nil {
		s.log.Warnf("booking %s: created notification failed: %v", b.BookingNo, err)
	}

	if s.roles == nil {
		return
	}
	exists, err := s.roles.RoleExists(ctx, LogisticsRole)
	if err != nil {
		if s.log != nil {
			s.log.Warnf("booking %s: role lookup failed: %v", b.BookingNo, err)
		}
		return
	}
	if !exists {
		return
	}
	_, err = s.notifier.Notify(ctx, notification.NotifyInput{
		Target:         notification.ToRole(LogisticsRole),
		Type:           notification.TypePickupRequest,
		Title:          "Pickup preparation needed",
		Message:        fmt.Sprintf("Prepare car %s for booking %s (pickup %s)", b.CarID, b.BookingNo, b.StartDate.Format("2006-01-02")),
		Payload:        b,
		ActionRequired: true,
	})
	if err != nil && s.log != nil {
		s.log.Warnf("booking %s: pickup-request notification failed: %v", b.BookingNo, err)
	}
}

// Pickup 取车：confirmed -> active，记录取车时间和里程读数。
func (s *Service) Pickup(ctx context.Context, id string, odometer *int64) (*Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusConfirmed {
		return nil, apperr.Validation("booking %s is %s, only confirmed bookings can be picked up", b.BookingNo, b.Status)
	}
	if err := ApplyTransition(b, StatusActive, time.Now()); err != nil {
		return nil, apperr.Validation("%v", err)
	}
	b.PickupOdometer = odometer

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.publish(EventPickup, b)
	return b, nil
}

// Return 还车：active -> completed，车辆回到 available，给了里程就更新车辆里程。
func (s *Service) Return(ctx context.Context, id string, mileage *int64) (*Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusActive {
		return nil, apperr.Validation("booking %s is %s, only active bookings can be returned", b.BookingNo, b.Status)
	}
	if err := ApplyTransition(b, StatusCompleted, time.Now()); err != nil {
		return nil, apperr.Validation("%v", err)
	}
	b.ReturnOdometer = mileage

	if err := s.repo.SaveWithCar(ctx, b, car.StatusAvailable, mileage); err != nil {
		return nil, err
	}
	return b, nil
}

// Cancel 取消：confirmed/active -> cancelled，车辆释放回 available。
func (s *Service) Cancel(ctx context.Context, id string) (*Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status == StatusCancelled {
		return nil, apperr.Validation("booking %s is already cancelled", b.BookingNo)
	}
	if err := ApplyTransition(b, StatusCancelled, time.Now()); err != nil {
		return nil, apperr.Validation("%v", err)
	}
	if err := s.repo.SaveWithCar(ctx, b, car.StatusAvailable, nil); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateInput 通用字段合并；nil 字段不动。
type UpdateInput struct {
	StartDate *time.Time
	EndDate   *time.Time
	DailyRate *float64
	Extras    *float64
	Taxes     *float64
	Discount  *float64
	Notes     *string
}

// Update 通用字段合并。改日期不会重查档期，冲突由调用方自行确认
//（历史遗留口径，不是特性）。金额字段同样只覆盖不重算。
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Booking, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.StartDate != nil {
		b.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		b.EndDate = *in.EndDate
	}
	if in.DailyRate != nil {
		b.DailyRate = *in.DailyRate
	}
	if in.Extras != nil {
		b.Extras = *in.Extras
	}
	if in.Taxes != nil {
		b.Taxes = *in.Taxes
	}
	if in.Discount != nil {
		b.Discount = *in.Discount
	}
	if in.Notes != nil {
		b.Notes = *in.Notes
	}
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Booking, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.Validation("id required")
	}
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("booking %s not found", id)
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Booking, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, f)
}

func (s *Service) publish(event string, payload interface{}) {
	if s.pub != nil {
		s.pub.Publish(event, payload)
	}
}
