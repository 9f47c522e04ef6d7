// Package sweep 周期性扫描预订和车辆，生成提醒通知并推送实时事件。
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/RentalDesk/RentalDesk/internal/booking"
	"github.com/RentalDesk/RentalDesk/internal/car"
	"github.com/RentalDesk/RentalDesk/internal/common/logger"
	"github.com/RentalDesk/RentalDesk/internal/maintenance"
	"github.com/RentalDesk/RentalDesk/internal/notification"
)

// Sweeper 三个扫描任务的实现。扫描不做去重：同一单在多个
// 扫描周期里会重复提醒，直到状态被处理掉。
type Sweeper struct {
	bookings *booking.Repo
	cars     *car.Repo
	notifier *notification.Service
	pub      notification.Publisher
	log      logger.Logger
}

func NewSweeper(bookings *booking.Repo, cars *car.Repo, notifier *notification.Service, pub notification.Publisher, log logger.Logger) *Sweeper {
	return &Sweeper{bookings: bookings, cars: cars, notifier: notifier, pub: pub, log: log}
}

// SweepOverdue 扫描逾期未还的预订。遇到第一个错误即中止本轮。
func (s *Sweeper) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	if s == nil || s.bookings == nil {
		return 0, fmt.Errorf("sweeper not initialized")
	}
	overdue, err := s.bookings.ListOverdue(ctx, now)
	if err != nil {
		return 0, err
	}
	for i := range overdue {
		b := &overdue[i]
		_, err := s.notifier.Notify(ctx, notification.NotifyInput{
			Target:  notification.Broadcast(),
			Type:    notification.TypeOverdue,
			Title:   "booking overdue",
			Message: fmt.Sprintf("booking %s passed its return date", b.BookingNo),
			Payload: b,
		})
		if err != nil {
			return i, err
		}
		if s.pub != nil {
			s.pub.Publish(booking.EventOverdue, b)
		}
	}
	return len(overdue), nil
}

// SweepPickupDue 扫描当天待取车的预订，窗口为 now 所在自然日。
func (s *Sweeper) SweepPickupDue(ctx context.Context, now time.Time) (int, error) {
	if s == nil || s.bookings == nil {
		return 0, fmt.Errorf("sweeper not initialized")
	}
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	due, err := s.bookings.ListPickupDue(ctx, dayStart, dayEnd)
	if err != nil {
		return 0, err
	}
	for i := range due {
		b := &due[i]
		_, err := s.notifier.Notify(ctx, notification.NotifyInput{
			Target:         notification.ToRole(booking.LogisticsRole),
			Type:           notification.TypePickupDue,
			Title:          "pickup due today",
			Message:        fmt.Sprintf("booking %s starts today", b.BookingNo),
			Payload:        b,
			ActionRequired: true,
		})
		if err != nil {
			return i, err
		}
		if s.pub != nil {
			s.pub.Publish(booking.EventPickupDue, b)
		}
	}
	return len(due), nil
}

// SweepMaintenanceDue 扫描到达保养阈值的车辆。
func (s *Sweeper) SweepMaintenanceDue(ctx context.Context, now time.Time) (int, error) {
	if s == nil || s.cars == nil {
		return 0, fmt.Errorf("sweeper not initialized")
	}
	cars, err := s.cars.ListWithServiceProfile(ctx)
	if err != nil {
		return 0, err
	}
	flagged := 0
	for i := range cars {
		c := &cars[i]
		due, reason := c.ServiceDue(now)
		if !due {
			continue
		}
		_, err := s.notifier.Notify(ctx, notification.NotifyInput{
			Target:  notification.Broadcast(),
			Type:    notification.TypeMaintenanceDue,
			Title:   "maintenance due",
			Message: fmt.Sprintf("car %s is due for service: %s", c.PlateNumber, reason),
			Payload: c,
		})
		if err != nil {
			return flagged, err
		}
		if s.pub != nil {
			s.pub.Publish(maintenance.EventDue, c)
		}
		flagged++
	}
	return flagged, nil
}
