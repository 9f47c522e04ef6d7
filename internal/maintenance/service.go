package maintenance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RentalDesk/RentalDesk/internal/car"
	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"github.com/RentalDesk/RentalDesk/internal/common/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	repo *Repo
	cars *car.Repo
	log  logger.Logger
}

func NewService(repo *Repo, cars *car.Repo, log logger.Logger) *Service {
	return &Service{repo: repo, cars: cars, log: log}
}

// ScheduleInput 排期保养的入参。
type ScheduleInput struct {
	CarID       string
	Description string
	ScheduledAt time.Time
}

// Schedule 为车辆排期一条保养单。排期本身不动车辆状态。
func (s *Service) Schedule(ctx context.Context, in ScheduleInput) (*Record, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	in.CarID = strings.TrimSpace(in.CarID)
	if in.CarID == "" {
		return nil, apperr.Validation("car_id required")
	}
	c, err := s.cars.FindByID(ctx, in.CarID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("car %s not found", in.CarID)
		}
		return nil, err
	}
	if in.ScheduledAt.IsZero() {
		in.ScheduledAt = time.Now()
	}

	rec := &Record{
		ID:          uuid.NewString(),
		CarID:       c.ID,
		Status:      StatusScheduled,
		Description: strings.TrimSpace(in.Description),
		Mileage:     c.Mileage,
		ScheduledAt: in.ScheduledAt,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Start 开工：保养单转 in_progress，车辆转 maintenance。
// 车辆在租（rented）时不允许进保养位。
func (s *Service) Start(ctx context.Context, id string) (*Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(rec.Status, StatusInProgress) {
		return nil, apperr.Conflict("maintenance %s cannot start from %s", rec.ID, rec.Status)
	}
	c, err := s.cars.FindByID(ctx, rec.CarID)
	if err != nil {
		return nil, err
	}
	if !car.CanTransition(c.Status, car.StatusMaintenance) {
		return nil, apperr.Conflict("car %s cannot enter maintenance from %s", c.ID, c.Status)
	}

	now := time.Now()
	rec.Status = StatusInProgress
	rec.StartedAt = &now
	rec.Mileage = c.Mileage
	err = s.repo.SaveWithCar(ctx, rec, map[string]interface{}{"status": car.StatusMaintenance})
	if err != nil {
		return nil, err
	}
	if s.log != nil {
		s.log.Infof("maintenance %s started, car %s", rec.ID, rec.CarID)
	}
	return rec, nil
}

// CompleteInput 完工入参。Mileage 为 0 时沿用进场读数。
type CompleteInput struct {
	Cost    float64
	Mileage int64
}

// Complete 完工：保养单转 completed，车辆放回 available，
// 并在同一事务里刷新车辆的保养基线。
func (s *Service) Complete(ctx context.Context, id string, in CompleteInput) (*Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(rec.Status, StatusCompleted) {
		return nil, apperr.Conflict("maintenance %s cannot complete from %s", rec.ID, rec.Status)
	}
	if in.Cost < 0 {
		return nil, apperr.Validation("cost must not be negative")
	}

	now := time.Now()
	mileage := rec.Mileage
	if in.Mileage > 0 {
		mileage = in.Mileage
	}
	rec.Status = StatusCompleted
	rec.CompletedAt = &now
	rec.Cost = in.Cost
	rec.Mileage = mileage
	err = s.repo.SaveWithCar(ctx, rec, map[string]interface{}{
		"status":               car.StatusAvailable,
		"mileage":              mileage,
		"last_service_mileage": mileage,
		"last_service_at":      now,
	})
	if err != nil {
		return nil, err
	}
	if s.log != nil {
		s.log.Infof("maintenance %s completed, car %s cost %.2f", rec.ID, rec.CarID, rec.Cost)
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Record, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	rec, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("maintenance %s not found", id)
		}
		return nil, err
	}
	return rec, nil
}

func (s *Service) List(ctx context.Context, carID string, offset, limit int) ([]Record, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.ListByCar(ctx, strings.TrimSpace(carID), offset, limit)
}
