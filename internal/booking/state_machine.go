package booking

import (
	"fmt"
	"time"
)

// AllowTransition 预订状态机的允许流转关系。
// 每条边都是单向的，completed / cancelled 是终态，不允许再流转。
var AllowTransition = map[Status][]Status{
	StatusConfirmed: {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransition 判断 from -> to 是否是一个允许的状态流转。
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition 对预订应用状态变更，并维护关键时间字段。
func ApplyTransition(b *Booking, to Status, now time.Time) error {
	if b == nil {
		return fmt.Errorf("booking is nil")
	}
	from := b.Status
	if !CanTransition(from, to) {
		return fmt.Errorf("invalid booking status transition: %s -> %s", from, to)
	}

	b.Status = to

	switch to {
	case StatusActive:
		if b.PickupAt == nil {
			t := now
			b.PickupAt = &t
		}
	case StatusCompleted:
		if b.ReturnAt == nil {
			t := now
			b.ReturnAt = &t
		}
	case StatusCancelled:
		if b.CancelledAt == nil {
			t := now
			b.CancelledAt = &t
		}
	}
	return nil
}
