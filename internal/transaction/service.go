package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RentalDesk/RentalDesk/internal/booking"
	"github.com/RentalDesk/RentalDesk/internal/common/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	repo     *Repo
	bookings *booking.Repo
}

func NewService(repo *Repo, bookings *booking.Repo) *Service {
	return &Service{repo: repo, bookings: bookings}
}

// CreateInput 记账入参。payment/refund 要求关联订单。
type CreateInput struct {
	Type        Type
	Amount      float64
	BookingID   string
	Description string
	CreatedBy   string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Transaction, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	if !ValidType(in.Type) {
		return nil, apperr.Validation("unknown transaction type %s", in.Type)
	}
	if in.Amount <= 0 {
		return nil, apperr.Validation("amount must be positive")
	}
	in.BookingID = strings.TrimSpace(in.BookingID)
	if (in.Type == TypePayment || in.Type == TypeRefund) && in.BookingID == "" {
		return nil, apperr.Validation("booking_id required for %s", in.Type)
	}

	t := &Transaction{
		ID:          uuid.NewString(),
		Type:        in.Type,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   in.CreatedBy,
	}
	if in.BookingID == "" {
		if err := s.repo.Create(ctx, t); err != nil {
			return nil, err
		}
		return t, nil
	}

	if _, err := s.bookings.GetByID(ctx, in.BookingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("booking %s not found", in.BookingID)
		}
		return nil, err
	}
	t.BookingID = &in.BookingID

	// payment 累加订单已付金额，refund 扣减，其余类型只落流水。
	var delta float64
	switch in.Type {
	case TypePayment:
		delta = in.Amount
	case TypeRefund:
		delta = -in.Amount
	}
	if err := s.repo.CreateWithBooking(ctx, t, delta); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Transaction, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	t, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("transaction %s not found", id)
		}
		return nil, err
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Transaction, int64, error) {
	if s == nil || s.repo == nil {
		return nil, 0, fmt.Errorf("service not initialized")
	}
	return s.repo.List(ctx, f)
}
