package sweep

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RentalDesk/RentalDesk/internal/booking"
	"github.com/RentalDesk/RentalDesk/internal/car"
	"github.com/RentalDesk/RentalDesk/internal/notification"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:sweep_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&booking.Booking{}, &car.Car{}, &notification.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fakePub struct {
	events []string
}

func (p *fakePub) Publish(event string, payload interface{}) {
	p.events = append(p.events, event)
}

func newTestSweeper(t *testing.T) (*Sweeper, *gorm.DB, *fakePub) {
	t.Helper()
	db := newTestDB(t)
	pub := &fakePub{}
	notifier := notification.NewService(notification.NewRepo(db), pub)
	s := NewSweeper(booking.NewRepo(db), car.NewRepo(db), notifier, pub, nil)
	return s, db, pub
}

func countByType(t *testing.T, db *gorm.DB, typ string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&notification.Notification{}).Where("type = ?", typ).Count(&n).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return n
}

func countEvents(pub *fakePub, event string) int {
	n := 0
	for _, ev := range pub.events {
		if ev == event {
			n++
		}
	}
	return n
}

func TestSweepOverdue(t *testing.T) {
	s, db, pub := newTestSweeper(t)
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	seed := []booking.Booking{
		{ID: "b-1", BookingNo: "BK-202605-000001", CarID: "car-1", CustomerID: "c-1",
			StartDate: now.AddDate(0, 0, -5), EndDate: now.AddDate(0, 0, -1), Status: booking.StatusActive},
		{ID: "b-2", BookingNo: "BK-202605-000002", CarID: "car-2", CustomerID: "c-2",
			StartDate: now.AddDate(0, 0, -3), EndDate: now.AddDate(0, 0, 2), Status: booking.StatusActive},
		{ID: "b-3", BookingNo: "BK-202605-000003", CarID: "car-3", CustomerID: "c-3",
			StartDate: now.AddDate(0, 0, -5), EndDate: now.AddDate(0, 0, -1), Status: booking.StatusCompleted},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}

	n, err := s.SweepOverdue(context.Background(), now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("swept %d bookings, want 1", n)
	}
	if got := countByType(t, db, notification.TypeOverdue); got != 1 {
		t.Fatalf("overdue notifications = %d, want 1", got)
	}
	if got := countEvents(pub, booking.EventOverdue); got != 1 {
		t.Fatalf("overdue events = %d, want 1", got)
	}

	// 扫描不去重：下一轮同一单会再次提醒
	if _, err := s.SweepOverdue(context.Background(), now.Add(time.Hour)); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if got := countByType(t, db, notification.TypeOverdue); got != 2 {
		t.Fatalf("overdue notifications after second sweep = %d, want 2", got)
	}
}

func TestSweepPickupDue(t *testing.T) {
	s, db, pub := newTestSweeper(t)
	now := time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)
	today := time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)

	seed := []booking.Booking{
		{ID: "b-1", BookingNo: "BK-202605-000011", CarID: "car-1", CustomerID: "c-1",
			StartDate: today, EndDate: today.AddDate(0, 0, 3), Status: booking.StatusConfirmed},
		{ID: "b-2", BookingNo: "BK-202605-000012", CarID: "car-2", CustomerID: "c-2",
			StartDate: today.AddDate(0, 0, 1), EndDate: today.AddDate(0, 0, 4), Status: booking.StatusConfirmed},
		{ID: "b-3", BookingNo: "BK-202605-000013", CarID: "car-3", CustomerID: "c-3",
			StartDate: today, EndDate: today.AddDate(0, 0, 3), Status: booking.StatusActive},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed booking: %v", err)
		}
	}

	n, err := s.SweepPickupDue(context.Background(), now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("swept %d bookings, want 1 (only today's confirmed)", n)
	}
	if got := countEvents(pub, booking.EventPickupDue); got != 1 {
		t.Fatalf("pickup-due events = %d, want 1", got)
	}

	// 取车提醒定向给 logistics 角色
	var notif notification.Notification
	if err := db.Where("type = ?", notification.TypePickupDue).First(&notif).Error; err != nil {
		t.Fatalf("load notification: %v", err)
	}
	if notif.Role == nil || *notif.Role != booking.LogisticsRole {
		t.Fatalf("pickup-due notification not targeted at logistics role")
	}
	if !notif.ActionRequired {
		t.Fatalf("pickup-due notification should require action")
	}
}

func TestSweepMaintenanceDue(t *testing.T) {
	s, db, pub := newTestSweeper(t)
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

	seed := []car.Car{
		{ID: "car-1", PlateNumber: "P-1", Status: car.StatusAvailable,
			Mileage: 6000, LastServiceMileage: 1000, ServiceIntervalKM: 5000},
		{ID: "car-2", PlateNumber: "P-2", Status: car.StatusAvailable,
			Mileage: 5999, LastServiceMileage: 1000, ServiceIntervalKM: 5000},
		{ID: "car-3", PlateNumber: "P-3", Status: car.StatusAvailable,
			Mileage: 90000},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed car: %v", err)
		}
	}

	n, err := s.SweepMaintenanceDue(context.Background(), now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("flagged %d cars, want 1", n)
	}
	if got := countByType(t, db, notification.TypeMaintenanceDue); got != 1 {
		t.Fatalf("maintenance notifications = %d, want 1", got)
	}
	if got := countEvents(pub, "maintenance:due"); got != 1 {
		t.Fatalf("maintenance events = %d, want 1", got)
	}
}

func TestSweepMaintenanceDueByAge(t *testing.T) {
	s, db, _ := newTestSweeper(t)
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	old := now.AddDate(0, 0, -200)

	c := car.Car{ID: "car-1", PlateNumber: "P-1", Status: car.StatusAvailable,
		Mileage: 2000, LastServiceMileage: 1000, ServiceIntervalKM: 50000,
		ServiceIntervalDays: 180, LastServiceAt: &old}
	if err := db.Create(&c).Error; err != nil {
		t.Fatalf("seed car: %v", err)
	}

	n, err := s.SweepMaintenanceDue(context.Background(), now)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("flagged %d cars, want 1 (by days since last service)", n)
	}
}
