package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/RentalDesk/RentalDesk/internal/booking"
	"github.com/RentalDesk/RentalDesk/internal/car"
	"github.com/RentalDesk/RentalDesk/internal/common/config"
	"github.com/RentalDesk/RentalDesk/internal/common/db"
	"github.com/RentalDesk/RentalDesk/internal/common/logger"
	"github.com/RentalDesk/RentalDesk/internal/common/middleware"
	"github.com/RentalDesk/RentalDesk/internal/common/server"
	"github.com/RentalDesk/RentalDesk/internal/common/tracing"
	"github.com/RentalDesk/RentalDesk/internal/customer"
	"github.com/RentalDesk/RentalDesk/internal/maintenance"
	"github.com/RentalDesk/RentalDesk/internal/notification"
	"github.com/RentalDesk/RentalDesk/internal/rbac"
	"github.com/RentalDesk/RentalDesk/internal/report"
	"github.com/RentalDesk/RentalDesk/internal/sweep"
	"github.com/RentalDesk/RentalDesk/internal/transaction"
	"github.com/RentalDesk/RentalDesk/internal/user"
	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "configs/rental-server.json", "config file path")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "rental-server: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if cfg.Jaeger.Endpoint != "" {
		_, closer, err := tracing.InitTracer(cfg.Server.Name, cfg.Jaeger.Endpoint, cfg.Jaeger.Sampler)
		if err != nil {
			log.Warnf("tracer init failed, tracing disabled: %v", err)
		} else {
			defer closer.Close()
		}
	}

	gdb, err := db.NewMySQL(
		cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Database,
		cfg.Database.MaxIdle, cfg.Database.MaxOpen,
	)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	err = gdb.AutoMigrate(
		&user.User{},
		&rbac.Role{},
		&rbac.Permission{},
		&car.Car{},
		&customer.Customer{},
		&booking.Booking{},
		&transaction.Transaction{},
		&maintenance.Record{},
		&notification.Notification{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := rbac.EnsureDefaults(ctx, gdb); err != nil {
		return fmt.Errorf("seed rbac: %w", err)
	}

	hub := notification.NewHub(log)
	go hub.Run(ctx)

	// 仓储
	userRepo := user.NewRepo(gdb)
	rbacRepo := rbac.NewRepo(gdb)
	carRepo := car.NewRepo(gdb)
	customerRepo := customer.NewRepo(gdb)
	bookingRepo := booking.NewRepo(gdb)
	transactionRepo := transaction.NewRepo(gdb)
	maintenanceRepo := maintenance.NewRepo(gdb)
	notificationRepo := notification.NewRepo(gdb)

	// 服务
	notificationSvc := notification.NewService(notificationRepo, hub)
	userSvc := user.NewService(userRepo, rbacRepo, cfg.Auth)
	carSvc := car.NewService(carRepo)
	customerSvc := customer.NewService(customerRepo)
	bookingSvc := booking.NewService(bookingRepo, carRepo, notificationSvc, hub, rbacRepo, log)
	transactionSvc := transaction.NewService(transactionRepo, bookingRepo)
	maintenanceSvc := maintenance.NewService(maintenanceRepo, carRepo, log)
	reportSvc := report.NewService(transactionRepo, bookingRepo, carRepo)

	sweeper := sweep.NewSweeper(bookingRepo, carRepo, notificationSvc, hub, log)
	scheduler := sweep.NewScheduler(sweeper, log)
	if err := scheduler.Start(cfg.Cron); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer scheduler.Stop()

	// 接口限流：全局令牌桶
	limiter := middleware.NewTokenBucket(200, 100)

	userHandler := user.NewHandler(userSvc)
	handlers := []interface{ Register(rg *gin.RouterGroup) }{
		userHandler,
		rbac.NewHandler(rbacRepo),
		car.NewHandler(carSvc),
		customer.NewHandler(customerSvc),
		booking.NewHandler(bookingSvc),
		transaction.NewHandler(transactionSvc),
		maintenance.NewHandler(maintenanceSvc),
		report.NewHandler(reportSvc),
		notification.NewHandler(notificationSvc),
	}

	return server.RunHTTPServer(cfg, log, func(r *gin.Engine) error {
		public := r.Group("/")
		userHandler.RegisterPublic(public)
		public.GET("/ws", notification.ServeWS(hub))

		api := r.Group("/api", middleware.RateLimit(limiter))
		if cfg.Auth.Enabled {
			api.Use(server.RequireAuth(cfg.Auth), rbac.Gate(rbacRepo))
		}
		for _, h := range handlers {
			h.Register(api)
		}
		return nil
	})
}
