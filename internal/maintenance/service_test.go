package maintenance

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/RentalDesk/RentalDesk/internal/car"
	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:maintenance_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Record{}, &car.Car{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedCar(t *testing.T, db *gorm.DB, status car.Status, mileage int64) *car.Car {
	t.Helper()
	c := &car.Car{
		ID: "car-1", PlateNumber: "P-1", Status: status,
		Mileage: mileage, ServiceIntervalKM: 5000,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("seed car: %v", err)
	}
	return c
}

func TestMaintenanceLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepo(db), car.NewRepo(db), nil)
	ctx := context.Background()
	seedCar(t, db, car.StatusAvailable, 6000)

	rec, err := svc.Schedule(ctx, ScheduleInput{CarID: "car-1", Description: "oil change"})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if rec.Status != StatusScheduled {
		t.Fatalf("status = %s, want scheduled", rec.Status)
	}

	// 排期不动车
	var c car.Car
	if err := db.First(&c, "id = ?", "car-1").Error; err != nil {
		t.Fatalf("load car: %v", err)
	}
	if c.Status != car.StatusAvailable {
		t.Fatalf("scheduling must not change car status, got %s", c.Status)
	}

	rec, err = svc.Start(ctx, rec.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if rec.Status != StatusInProgress || rec.StartedAt == nil {
		t.Fatalf("start did not move record to in_progress")
	}
	if err := db.First(&c, "id = ?", "car-1").Error; err != nil {
		t.Fatalf("load car: %v", err)
	}
	if c.Status != car.StatusMaintenance {
		t.Fatalf("car status = %s, want maintenance", c.Status)
	}

	rec, err = svc.Complete(ctx, rec.ID, CompleteInput{Cost: 120, Mileage: 6050})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if rec.Status != StatusCompleted || rec.CompletedAt == nil {
		t.Fatalf("complete did not finish record")
	}
	if err := db.First(&c, "id = ?", "car-1").Error; err != nil {
		t.Fatalf("load car: %v", err)
	}
	if c.Status != car.StatusAvailable {
		t.Fatalf("car status = %s, want available after completion", c.Status)
	}
	if c.LastServiceMileage != 6050 || c.Mileage != 6050 {
		t.Fatalf("service baseline not updated: mileage %d last %d", c.Mileage, c.LastServiceMileage)
	}
	if c.LastServiceAt == nil {
		t.Fatalf("LastServiceAt not set")
	}

	// 完工后保养到期判定应当清零
	if due, _ := c.ServiceDue(rec.CompletedAt.AddDate(0, 0, 1)); due {
		t.Fatalf("freshly serviced car should not be due")
	}
}

func TestStartRejectsRentedCar(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepo(db), car.NewRepo(db), nil)
	ctx := context.Background()
	seedCar(t, db, car.StatusRented, 6000)

	rec, err := svc.Schedule(ctx, ScheduleInput{CarID: "car-1"})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	_, err = svc.Start(ctx, rec.ID)
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("starting maintenance on rented car should conflict, got %v", err)
	}
}

func TestCompleteOnlyFromInProgress(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(NewRepo(db), car.NewRepo(db), nil)
	ctx := context.Background()
	seedCar(t, db, car.StatusAvailable, 6000)

	rec, err := svc.Schedule(ctx, ScheduleInput{CarID: "car-1"})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if _, err := svc.Complete(ctx, rec.ID, CompleteInput{}); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("completing a scheduled record should conflict, got %v", err)
	}
}
