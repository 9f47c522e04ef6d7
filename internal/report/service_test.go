package report

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RentalDesk/RentalDesk/internal/booking"
	"github.com/RentalDesk/RentalDesk/internal/car"
	"github.com/RentalDesk/RentalDesk/internal/transaction"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:report_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&transaction.Transaction{}, &booking.Booking{}, &car.Car{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewService(transaction.NewRepo(db), booking.NewRepo(db), car.NewRepo(db)), db
}

func TestRevenue(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seed := []transaction.Transaction{
		{ID: "t-1", Type: transaction.TypePayment, Amount: 500},
		{ID: "t-2", Type: transaction.TypeIncome, Amount: 100},
		{ID: "t-3", Type: transaction.TypeExpense, Amount: 80},
		{ID: "t-4", Type: transaction.TypeRefund, Amount: 50},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	rev, err := svc.Revenue(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if rev.ByType[transaction.TypePayment] != 500 {
		t.Fatalf("payment sum = %f, want 500", rev.ByType[transaction.TypePayment])
	}
	// 500 + 100 - 80 - 50
	if rev.Net != 470 {
		t.Fatalf("net = %f, want 470", rev.Net)
	}
}

func TestFleetUtilization(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seed := []car.Car{
		{ID: "c-1", PlateNumber: "P-1", Status: car.StatusRented},
		{ID: "c-2", PlateNumber: "P-2", Status: car.StatusRented},
		{ID: "c-3", PlateNumber: "P-3", Status: car.StatusAvailable},
		{ID: "c-4", PlateNumber: "P-4", Status: car.StatusMaintenance},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	util, err := svc.FleetUtilization(ctx)
	if err != nil {
		t.Fatalf("fleet: %v", err)
	}
	if util.Total != 4 {
		t.Fatalf("total = %d, want 4", util.Total)
	}
	if util.Utilization != 0.5 {
		t.Fatalf("utilization = %f, want 0.5", util.Utilization)
	}
}

func TestBookingSummary(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	now := time.Now()
	seed := []booking.Booking{
		{ID: "b-1", BookingNo: "BK-1", CarID: "c-1", CustomerID: "u-1",
			StartDate: now, EndDate: now, Status: booking.StatusConfirmed},
		{ID: "b-2", BookingNo: "BK-2", CarID: "c-2", CustomerID: "u-2",
			StartDate: now, EndDate: now, Status: booking.StatusConfirmed},
		{ID: "b-3", BookingNo: "BK-3", CarID: "c-3", CustomerID: "u-3",
			StartDate: now, EndDate: now, Status: booking.StatusCompleted},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	summary, err := svc.BookingSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary[booking.StatusConfirmed] != 2 || summary[booking.StatusCompleted] != 1 {
		t.Fatalf("summary = %v", summary)
	}
}
