package report

import (
	"context"
	"fmt"
	"time"

	"github.com/RentalDesk/RentalDesk/internal/booking"
	"github.com/RentalDesk/RentalDesk/internal/car"
	"github.com/RentalDesk/RentalDesk/internal/transaction"
)

type Service struct {
	transactions *transaction.Repo
	bookings     *booking.Repo
	cars         *car.Repo
}

func NewService(transactions *transaction.Repo, bookings *booking.Repo, cars *car.Repo) *Service {
	return &Service{transactions: transactions, bookings: bookings, cars: cars}
}

// Revenue 区间收入报表。净额 = 收入类 - 支出类。
type Revenue struct {
	From   time.Time                    `json:"from"`
	To     time.Time                    `json:"to"`
	ByType map[transaction.Type]float64 `json:"by_type"`
	Net    float64                      `json:"net"`
}

func (s *Service) Revenue(ctx context.Context, from, to time.Time) (*Revenue, error) {
	if s == nil || s.transactions == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	byType, err := s.transactions.SumByType(ctx, from, to)
	if err != nil {
		return nil, err
	}
	net := byType[transaction.TypeIncome] + byType[transaction.TypePayment] -
		byType[transaction.TypeExpense] - byType[transaction.TypeRefund]
	return &Revenue{From: from, To: to, ByType: byType, Net: net}, nil
}

// BookingSummary 各状态预订数。
func (s *Service) BookingSummary(ctx context.Context) (map[booking.Status]int64, error) {
	if s == nil || s.bookings == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.bookings.CountByStatus(ctx)
}

// FleetUtilization 车队利用率：各状态车辆数 + 在租占比。
type FleetUtilization struct {
	ByStatus    map[car.Status]int64 `json:"by_status"`
	Total       int64                `json:"total"`
	Utilization float64              `json:"utilization"`
}

func (s *Service) FleetUtilization(ctx context.Context) (*FleetUtilization, error) {
	if s == nil || s.cars == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	byStatus, err := s.cars.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}
	out := &FleetUtilization{ByStatus: byStatus, Total: total}
	if total > 0 {
		out.Utilization = float64(byStatus[car.StatusRented]) / float64(total)
	}
	return out, nil
}
