package customer

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:customer_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Customer{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCreateGetUpdate(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)))
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateInput{NationalID: "ID-1001", Name: "  Jane Doe ", Phone: "555-1234"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.Name != "Jane Doe" {
		t.Fatalf("name not trimmed: %q", c.Name)
	}

	got, err := svc.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.NationalID != "ID-1001" {
		t.Fatalf("national id = %s", got.NationalID)
	}

	phone := "555-9999"
	got, err = svc.Update(ctx, c.ID, UpdateInput{Phone: &phone})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Phone != "555-9999" {
		t.Fatalf("phone not updated")
	}

	if _, err := svc.Create(ctx, CreateInput{Name: "no id"}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("missing national id should fail validation, got %v", err)
	}
}

func TestDeleteHidesCustomer(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)))
	ctx := context.Background()

	c, err := svc.Create(ctx, CreateInput{NationalID: "ID-2001", Name: "John"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, c.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("deleted customer should be not-found, got %v", err)
	}
}

func TestListSearch(t *testing.T) {
	svc := NewService(NewRepo(newTestDB(t)))
	ctx := context.Background()

	for i, name := range []string{"Alice Smith", "Bob Smith", "Carol Jones"} {
		if _, err := svc.Create(ctx, CreateInput{NationalID: fmt.Sprintf("ID-%d", i), Name: name}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	_, total, err := svc.List(ctx, "Smith", 0, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 {
		t.Fatalf("search Smith = %d, want 2", total)
	}
	_, total, err = svc.List(ctx, "", 0, 20)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if total != 3 {
		t.Fatalf("list all = %d, want 3", total)
	}
}
