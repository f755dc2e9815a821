// Package availability reads the live booking capacity of reservation
// offers: time slots for hour-based offers, date periods for daily ones.
package availability

import (
	"context"
	"fmt"
	"time"

	"dabachat_backend/internal/blanes"
	"dabachat_backend/platform/apperr"
	"dabachat_backend/platform/logger"
)

// Gateway is the slice of the blanes client this module needs. Slot and
// period lookups go through the public detail endpoints, which key by slug,
// so the offer is fetched by ID first.
type Gateway interface {
	GetBlane(ctx context.Context, id int) (blanes.Blane, error)
	GetBlaneBySlug(ctx context.Context, slug string) (blanes.Blane, error)
	TimeSlots(ctx context.Context, slug, date string) ([]blanes.TimeSlot, error)
}

// Service implements the availability lookups.
type Service struct {
	gateway Gateway
	logger  *logger.Logger
}

// NewService wires the module.
func NewService(gateway Gateway, log *logger.Logger) *Service {
	return &Service{gateway: gateway, logger: log}
}

// TimeSlots returns the offer and its open slots on a date (YYYY-MM-DD).
// Slots with no remaining capacity are dropped.
func (s *Service) TimeSlots(ctx context.Context, blaneID int, date string) (blanes.Blane, []blanes.TimeSlot, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return blanes.Blane{}, nil, apperr.Validationf("invalid date %q, expected format YYYY-MM-DD", date)
	}

	b, err := s.gateway.GetBlane(ctx, blaneID)
	if err != nil {
		return blanes.Blane{}, nil, err
	}
	if b.Type != blanes.TypeReservation || b.TypeTime != blanes.TypeTimeSlots {
		return blanes.Blane{}, nil, apperr.Validation(
			"this offer is not booked by time slot, try the available periods lookup instead")
	}
	if b.Slug == "" {
		return blanes.Blane{}, nil, apperr.Internal(fmt.Sprintf("blane %d has no slug", blaneID))
	}

	slots, err := s.gateway.TimeSlots(ctx, b.Slug, date)
	if err != nil {
		return blanes.Blane{}, nil, err
	}

	open := make([]blanes.TimeSlot, 0, len(slots))
	for _, slot := range slots {
		if bool(slot.Available) {
			open = append(open, slot)
		}
	}
	return b, open, nil
}

// Periods returns the offer and its open date periods. Periods marked
// unavailable are dropped.
func (s *Service) Periods(ctx context.Context, blaneID int) (blanes.Blane, []blanes.Period, error) {
	b, err := s.gateway.GetBlane(ctx, blaneID)
	if err != nil {
		return blanes.Blane{}, nil, err
	}
	if b.Type != blanes.TypeReservation || b.TypeTime != blanes.TypeTimePeriods {
		return blanes.Blane{}, nil, apperr.Validation(
			"this offer is not booked by period, try the time slot lookup instead")
	}
	if b.Slug == "" {
		return blanes.Blane{}, nil, apperr.Internal(fmt.Sprintf("blane %d has no slug", blaneID))
	}

	detail, err := s.gateway.GetBlaneBySlug(ctx, b.Slug)
	if err != nil {
		return blanes.Blane{}, nil, err
	}

	open := make([]blanes.Period, 0, len(detail.AvailablePeriods))
	for _, period := range detail.AvailablePeriods {
		if bool(period.Available) {
			open = append(open, period)
		}
	}
	return b, open, nil
}
