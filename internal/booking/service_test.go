package booking

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/RentalDesk/RentalDesk/internal/car"
	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"github.com/RentalDesk/RentalDesk/internal/notification"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:booking_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Booking{}, &car.Car{}, &notification.Notification{}); err != nil {
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

type fakeRoles struct {
	exists bool
}

func (f fakeRoles) RoleExists(ctx context.Context, name string) (bool, error) {
	return f.exists, nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *fakePub) {
	t.Helper()
	db := newTestDB(t)
	pub := &fakePub{}
	notifier := notification.NewService(notification.NewRepo(db), pub)
	svc := NewService(NewRepo(db), car.NewRepo(db), notifier, pub, fakeRoles{exists: true}, nil)
	return svc, db, pub
}

func seedCar(t *testing.T, db *gorm.DB, id string, rate float64) *car.Car {
	t.Helper()
	c := &car.Car{
		ID:          id,
		PlateNumber: "PLATE-" + id,
		Make:        "Toyota",
		Model:       "Corolla",
		Year:        2024,
		Status:      car.StatusAvailable,
		DailyRate:   rate,
		Mileage:     10000,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed car: %v", err)
	}
	return c
}

func TestCreateRejectsOverlap(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedCar(t, db, "car-1", 50)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{
		CarID:      "car-1",
		CustomerID: "cust-1",
		StartDate:  date(2026, 1, 1),
		EndDate:    date(2026, 1, 5),
	})
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, err = svc.Create(ctx, CreateInput{
		CarID:      "car-1",
		CustomerID: "cust-2",
		StartDate:  date(2026, 1, 4),
		EndDate:    date(2026, 1, 8),
	})
	if err == nil {
		t.Fatalf("overlapping booking accepted")
	}
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("want conflict kind, got %v", err)
	}
}

func TestCreateAcceptsDisjointDates(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedCar(t, db, "car-1", 50)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{
		CarID:      "car-1",
		CustomerID: "cust-1",
		StartDate:  date(2026, 1, 1),
		EndDate:    date(2026, 1, 5),
	})
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// 同一辆车、不相交的区间可以继续接单
	b, err := svc.Create(ctx, CreateInput{
		CarID:      "car-1",
		CustomerID: "cust-2",
		StartDate:  date(2026, 1, 6),
		EndDate:    date(2026, 1, 8),
	})
	if err != nil {
		t.Fatalf("disjoint booking rejected: %v", err)
	}
	if b.Status != StatusConfirmed {
		t.Fatalf("new booking status = %s, want confirmed", b.Status)
	}
}

func TestCreateComputesTotals(t *testing.T) {
	svc, db, pub := newTestService(t)
	seedCar(t, db, "car-1", 50)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		CarID:      "car-1",
		CustomerID: "cust-1",
		StartDate:  date(2026, 2, 1),
		EndDate:    date(2026, 2, 4),
		Extras:     30,
		Taxes:      20,
		Discount:   10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.TotalDays != 3 {
		t.Fatalf("TotalDays = %d, want 3", b.TotalDays)
	}
	if b.DailyRate != 50 {
		t.Fatalf("DailyRate = %f, want car default 50", b.DailyRate)
	}
	if b.Subtotal != 150 {
		t.Fatalf("Subtotal = %f, want 150", b.Subtotal)
	}
	if b.Total != 190 {
		t.Fatalf("Total = %f, want 190", b.Total)
	}

	// 创建后车辆被占用
	var c car.Car
	if err := db.First(&c, "id = ?", "car-1").Error; err != nil {
		t.Fatalf("load car: %v", err)
	}
	if c.Status != car.StatusRented {
		t.Fatalf("car status = %s, want rented", c.Status)
	}

	// 通知扇出：全局一条 + logistics 一条 + 创建事件
	var notifications int64
	if err := db.Model(&notification.Notification{}).Count(&notifications).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	if notifications != 2 {
		t.Fatalf("notifications = %d, want 2", notifications)
	}
	found := false
	for _, ev := range pub.events {
		if ev == EventCreated {
			found = true
		}
	}
	if !found {
		t.Fatalf("%s event not published, got %v", EventCreated, pub.events)
	}
}

func TestCreateSameDayBookingIsOneDay(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedCar(t, db, "car-1", 80)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		CarID:      "car-1",
		CustomerID: "cust-1",
		StartDate:  date(2026, 3, 10),
		EndDate:    date(2026, 3, 10),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.TotalDays != 1 || b.Total != 80 {
		t.Fatalf("TotalDays = %d Total = %f, want 1 day at 80", b.TotalDays, b.Total)
	}
}

func TestPickupOnlyFromConfirmed(t *testing.T) {
	svc, db, pub := newTestService(t)
	seedCar(t, db, "car-1", 50)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		CarID:      "car-1",
		CustomerID: "cust-1",
		StartDate:  date(2026, 1, 1),
		EndDate:    date(2026, 1, 5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	odo := int64(10000)
	b, err = svc.Pickup(ctx, b.ID, &odo)
	if err != nil {
		t.Fatalf("pickup: %v", err)
	}
	if b.Status != StatusActive || b.PickupAt == nil {
		t.Fatalf("pickup did not activate booking")
	}

	if _, err := svc.Pickup(ctx, b.ID, &odo); err == nil {
		t.Fatalf("second pickup should be rejected")
	}

	found := false
	for _, ev := range pub.events {
		if ev == EventPickup {
			found = true
		}
	}
	if !found {
		t.Fatalf("%s event not published", EventPickup)
	}
}

func TestReturnReleasesCarAndRecordsMileage(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedCar(t, db, "car-1", 50)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		CarID:      "car-1",
		CustomerID: "cust-1",
		StartDate:  date(2026, 1, 1),
		EndDate:    date(2026, 1, 5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// 未取车不能还车
	mileage := int64(10450)
	if _, err := svc.Return(ctx, b.ID, &mileage); err == nil {
		t.Fatalf("return before pickup should be rejected")
	}

	odo := int64(10000)
	if _, err := svc.Pickup(ctx, b.ID, &odo); err != nil {
		t.Fatalf("pickup: %v", err)
	}
	b, err = svc.Return(ctx, b.ID, &mileage)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if b.Status != StatusCompleted || b.ReturnAt == nil {
		t.Fatalf("return did not complete booking")
	}

	var c car.Car
	if err := db.First(&c, "id = ?", "car-1").Error; err != nil {
		t.Fatalf("load car: %v", err)
	}
	if c.Status != car.StatusAvailable {
		t.Fatalf("car status = %s, want available", c.Status)
	}
	if c.Mileage != mileage {
		t.Fatalf("car mileage = %d, want %d", c.Mileage, mileage)
	}
}

func TestCancelRejectsAlreadyCancelled(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedCar(t, db, "car-1", 50)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		CarID:      "car-1",
		CustomerID: "cust-1",
		StartDate:  date(2026, 1, 1),
		EndDate:    date(2026, 1, 5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	b, err = svc.Cancel(ctx, b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if b.Status != StatusCancelled || b.CancelledAt == nil {
		t.Fatalf("cancel did not mark booking cancelled")
	}

	var c car.Car
	if err := db.First(&c, "id = ?", "car-1").Error; err != nil {
		t.Fatalf("load car: %v", err)
	}
	if c.Status != car.StatusAvailable {
		t.Fatalf("car not released after cancel, status = %s", c.Status)
	}

	if _, err := svc.Cancel(ctx, b.ID); err == nil {
		t.Fatalf("double cancel should be rejected")
	}
}

func TestCancelledBookingFreesDates(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedCar(t, db, "car-1", 50)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		CarID:      "car-1",
		CustomerID: "cust-1",
		StartDate:  date(2026, 1, 1),
		EndDate:    date(2026, 1, 5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Cancel(ctx, b.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// 取消后同样的日期可以再订
	if _, err := svc.Create(ctx, CreateInput{
		CarID:      "car-1",
		CustomerID: "cust-2",
		StartDate:  date(2026, 1, 2),
		EndDate:    date(2026, 1, 4),
	}); err != nil {
		t.Fatalf("rebooking after cancel rejected: %v", err)
	}
}

func TestCheckAvailability(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedCar(t, db, "car-1", 50)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		CarID:      "car-1",
		CustomerID: "cust-1",
		StartDate:  date(2026, 1, 1),
		EndDate:    date(2026, 1, 5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, conflicts, err := svc.CheckAvailability(ctx, "car-1", date(2026, 1, 3), date(2026, 1, 6), "")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok || len(conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got ok=%v conflicts=%d", ok, len(conflicts))
	}

	// 排除自己后不冲突（更新场景）
	ok, _, err = svc.CheckAvailability(ctx, "car-1", date(2026, 1, 3), date(2026, 1, 6), b.ID)
	if err != nil {
		t.Fatalf("check with exclude: %v", err)
	}
	if !ok {
		t.Fatalf("own booking should not count as conflict")
	}
}

func TestUpdateMergesFieldsWithoutRecompute(t *testing.T) {
	svc, db, _ := newTestService(t)
	seedCar(t, db, "car-1", 50)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateInput{
		CarID:      "car-1",
		CustomerID: "cust-1",
		StartDate:  date(2026, 1, 1),
		EndDate:    date(2026, 1, 5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	originalTotal := b.Total

	newEnd := date(2026, 1, 10)
	notes := "extended by phone"
	b, err = svc.Update(ctx, b.ID, UpdateInput{EndDate: &newEnd, Notes: &notes})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !b.EndDate.Equal(newEnd) || b.Notes != notes {
		t.Fatalf("fields not merged")
	}
	if b.Total != originalTotal {
		t.Fatalf("update must not recompute totals: %f != %f", b.Total, originalTotal)
	}

	got, err := svc.Get(ctx, b.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.EndDate.Equal(newEnd) {
		t.Fatalf("update not persisted")
	}
}
