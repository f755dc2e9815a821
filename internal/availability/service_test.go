package availability

import (
	"context"
	"testing"

	"dabachat_backend/internal/blanes"
	"dabachat_backend/platform/apperr"
	"dabachat_backend/platform/logger"
)

type fakeGateway struct {
	blane  blanes.Blane
	detail blanes.Blane
	slots  []blanes.TimeSlot
}

func (f *fakeGateway) GetBlane(context.Context, int) (blanes.Blane, error) { return f.blane, nil }

func (f *fakeGateway) GetBlaneBySlug(context.Context, string) (blanes.Blane, error) {
	return f.detail, nil
}

func (f *fakeGateway) TimeSlots(context.Context, string, string) ([]blanes.TimeSlot, error) {
	return f.slots, nil
}

func TestTimeSlotsFiltersUnavailable(t *testing.T) {
	gw := &fakeGateway{
		blane: blanes.Blane{
			ID: 1, Slug: "beach-club", Type: blanes.TypeReservation, TypeTime: blanes.TypeTimeSlots,
		},
		slots: []blanes.TimeSlot{
			{Time: "09:00", Available: true, RemainingCapacity: 4},
			{Time: "09:30", Available: false},
			{Time: "10:00", Available: true, RemainingCapacity: 1},
		},
	}

	_, open, err := NewService(gw, logger.New("development")).TimeSlots(context.Background(), 1, "2026-03-07")
	if err != nil {
		t.Fatalf("TimeSlots: %v", err)
	}
	if len(open) != 2 || open[0].Time != "09:00" || open[1].Time != "10:00" {
		t.Fatalf("unexpected open slots: %+v", open)
	}
}

func TestTimeSlotsRejectsBadDateAndWrongMode(t *testing.T) {
	svc := NewService(&fakeGateway{
		blane: blanes.Blane{Type: blanes.TypeReservation, TypeTime: blanes.TypeTimePeriods, Slug: "x"},
	}, logger.New("development"))

	if _, _, err := svc.TimeSlots(context.Background(), 1, "07/03/2026"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected date format rejection, got %v", err)
	}
	if _, _, err := svc.TimeSlots(context.Background(), 1, "2026-03-07"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected mode rejection, got %v", err)
	}
}

func TestPeriodsFiltersUnavailable(t *testing.T) {
	gw := &fakeGateway{
		blane: blanes.Blane{
			ID: 2, Slug: "desert-weekend", Type: blanes.TypeReservation, TypeTime: blanes.TypeTimePeriods,
		},
		detail: blanes.Blane{
			AvailablePeriods: []blanes.Period{
				{Name: "Weekend 1", Available: true, RemainingCapacity: 3},
				{Name: "Weekend 2", Available: false},
			},
		},
	}

	_, open, err := NewService(gw, logger.New("development")).Periods(context.Background(), 2)
	if err != nil {
		t.Fatalf("Periods: %v", err)
	}
	if len(open) != 1 || open[0].Name != "Weekend 1" {
		t.Fatalf("unexpected open periods: %+v", open)
	}
}

func TestPeriodsRejectsSlotOffers(t *testing.T) {
	svc := NewService(&fakeGateway{
		blane: blanes.Blane{Type: blanes.TypeReservation, TypeTime: blanes.TypeTimeSlots, Slug: "x"},
	}, logger.New("development"))

	if _, _, err := svc.Periods(context.Background(), 1); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected mode rejection, got %v", err)
	}
}
