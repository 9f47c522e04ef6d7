package car

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service 车辆领域用例。状态变更一律走状态机表。
type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// CreateInput 录入车辆的入参。
type CreateInput struct {
	PlateNumber string
	VIN         string
	Make        string
	Model       string
	Year        int
	Mileage     int64
	DailyRate   float64

	ServiceIntervalKM   int64
	ServiceIntervalDays int
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	in.PlateNumber = strings.TrimSpace(in.PlateNumber)
	if in.PlateNumber == "" {
		return nil, apperr.Validation("plate_number required")
	}
	if in.DailyRate < 0 || in.Mileage < 0 {
		return nil, apperr.Validation("daily_rate/mileage must be non-negative")
	}

	c := &Car{
		ID:                  uuid.NewString(),
		PlateNumber:         in.PlateNumber,
		VIN:                 strings.TrimSpace(in.VIN),
		Make:                strings.TrimSpace(in.Make),
		Model:               strings.TrimSpace(in.Model),
		Year:                in.Year,
		Status:              StatusAvailable,
		Mileage:             in.Mileage,
		DailyRate:           in.DailyRate,
		ServiceIntervalKM:   in.ServiceIntervalKM,
		ServiceIntervalDays: in.ServiceIntervalDays,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Car, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.Validation("id required")
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("car %s not found", id)
		}
		return nil, err
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, status Status, offset, limit int) ([]Car, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, status, offset, limit)
}

// UpdateStatus 按状态机规则流转车辆状态。
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) (*Car, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(c.Status, to) {
		return nil, apperr.Validation("invalid car status transition: %s -> %s", c.Status, to)
	}
	c.Status = to
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateMileage 修正当前里程（只允许增加）。
func (s *Service) UpdateMileage(ctx context.Context, id string, mileage int64) (*Car, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if mileage < c.Mileage {
		return nil, apperr.Validation("mileage may not decrease: %d -> %d", c.Mileage, mileage)
	}
	c.Mileage = mileage
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete 软删除；租出中的车不允许删。
func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if c.Status == StatusRented {
		return apperr.Conflict("car %s is rented, return it first", id)
	}
	return s.repo.SoftDelete(ctx, id)
}
