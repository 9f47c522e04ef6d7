package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// CreateInput 录入客户的入参。
type CreateInput struct {
	NationalID string
	LicenseNo  string
	Name       string
	Phone      string
	Email      string
	Address    string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Customer, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	in.NationalID = strings.TrimSpace(in.NationalID)
	in.Name = strings.TrimSpace(in.Name)
	if in.NationalID == "" || in.Name == "" {
		return nil, apperr.Validation("national_id/name required")
	}

	c := &Customer{
		ID:         uuid.NewString(),
		NationalID: in.NationalID,
		LicenseNo:  strings.TrimSpace(in.LicenseNo),
		Name:       in.Name,
		Phone:      strings.TrimSpace(in.Phone),
		Email:      strings.TrimSpace(in.Email),
		Address:    strings.TrimSpace(in.Address),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Customer, error) {
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
			return nil, apperr.NotFound("customer %s not found", id)
		}
		return nil, err
	}
	return c, nil
}

// UpdateInput 可选字段合并。
type UpdateInput struct {
	LicenseNo *string
	Name      *string
	Phone     *string
	Email     *string
	Address   *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Customer, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.LicenseNo != nil {
		c.LicenseNo = strings.TrimSpace(*in.LicenseNo)
	}
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Email != nil {
		c.Email = strings.TrimSpace(*in.Email)
	}
	if in.Address != nil {
		c.Address = strings.TrimSpace(*in.Address)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) List(ctx context.Context, search string, offset, limit int) ([]Customer, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, search, offset, limit)
}
