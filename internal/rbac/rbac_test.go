package rbac

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBSeq int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:rbac_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Role{}, &Permission{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestEnsureDefaultsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := EnsureDefaults(ctx, db); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	var roles, perms int64
	db.Model(&Role{}).Count(&roles)
	db.Model(&Permission{}).Count(&perms)
	if roles != 4 {
		t.Fatalf("roles = %d, want 4", roles)
	}
	if perms == 0 {
		t.Fatalf("no permissions seeded")
	}

	if err := EnsureDefaults(ctx, db); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	var roles2, perms2 int64
	db.Model(&Role{}).Count(&roles2)
	db.Model(&Permission{}).Count(&perms2)
	if roles2 != roles || perms2 != perms {
		t.Fatalf("seed not idempotent: roles %d->%d perms %d->%d", roles, roles2, perms, perms2)
	}
}

func TestHasPermission(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if err := EnsureDefaults(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repo := NewRepo(db)

	cases := []struct {
		role, resource, action string
		want                   bool
	}{
		{RoleAdmin, "cars", "delete", true}, // 全通配
		{RoleAdmin, "anything", "anything", true},
		{RoleManager, "bookings", "cancel", true}, // 资源级通配
		{RoleManager, "users", "create", false},
		{RoleLogistics, "bookings", "pickup", true},
		{RoleLogistics, "bookings", "create", false},
		{RoleLogistics, "cars", "list", false},
		{RoleStaff, "bookings", "create", true},
		{RoleStaff, "cars", "delete", false},
		{"ghost-role", "cars", "list", false},
	}
	for _, c := range cases {
		got, err := repo.HasPermission(ctx, c.role, c.resource, c.action)
		if err != nil {
			t.Fatalf("HasPermission(%s, %s, %s): %v", c.role, c.resource, c.action, err)
		}
		if got != c.want {
			t.Errorf("HasPermission(%s, %s, %s) = %v, want %v", c.role, c.resource, c.action, got, c.want)
		}
	}
}

func TestRoleExists(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	if err := EnsureDefaults(ctx, db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	repo := NewRepo(db)

	exists, err := repo.RoleExists(ctx, RoleLogistics)
	if err != nil {
		t.Fatalf("RoleExists: %v", err)
	}
	if !exists {
		t.Fatalf("logistics role should exist after seeding")
	}
	exists, err = repo.RoleExists(ctx, "nope")
	if err != nil {
		t.Fatalf("RoleExists: %v", err)
	}
	if exists {
		t.Fatalf("unknown role reported as existing")
	}
}
