package booking

import (
	"strings"
	"testing"
	"time"

	"dabachat_backend/internal/blanes"
	"dabachat_backend/platform/apperr"
)

var today = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) // a Monday

func slotBlane() blanes.Blane {
	return blanes.Blane{
		Name:                 "Beach Club Casablanca",
		Type:                 blanes.TypeReservation,
		TypeTime:             blanes.TypeTimeSlots,
		HeureDebut:           "09:00:00",
		HeureFin:             "17:00:00",
		IntervaleReservation: 30,
	}
}

func TestSlotsHalfOpenRange(t *testing.T) {
	slots, err := Slots("09:00:00", "17:00:00", 30)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if slots[0] != "09:00" {
		t.Errorf("first slot = %q, want 09:00", slots[0])
	}
	if last := slots[len(slots)-1]; last != "16:30" {
		t.Errorf("last slot = %q, want 16:30 (closing time excluded)", last)
	}
	if len(slots) != 16 {
		t.Errorf("expected 16 slots, got %d", len(slots))
	}
}

func TestSlotsDefaultInterval(t *testing.T) {
	slots, err := Slots("10:00", "11:00", 0)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if len(slots) != 2 || slots[1] != "10:30" {
		t.Fatalf("expected default 30 minute stepping, got %v", slots)
	}
}

func TestValidateScheduleAcceptsOpenSlot(t *testing.T) {
	req := Request{Date: "2026-03-03", Time: "09:00"}
	if err := ValidateSchedule(slotBlane(), req, today); err != nil {
		t.Fatalf("expected acceptance, got %v", err)
	}
}

func TestValidateScheduleRejectsOffGridTime(t *testing.T) {
	req := Request{Date: "2026-03-03", Time: "17:15"}
	err := ValidateSchedule(slotBlane(), req, today)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "choose from:") || !strings.Contains(err.Error(), "16:30") {
		t.Fatalf("expected slot listing in message, got %q", err.Error())
	}
}

func TestValidateScheduleRejectsPastDate(t *testing.T) {
	req := Request{Date: "2026-03-01", Time: "09:00"}
	err := ValidateSchedule(slotBlane(), req, today)
	if !apperr.Is(err, apperr.KindValidation) || !strings.Contains(err.Error(), "past") {
		t.Fatalf("expected past-date rejection, got %v", err)
	}
}

func TestValidateScheduleOpenDays(t *testing.T) {
	b := slotBlane()
	b.JoursCreneaux = []string{"Samedi", "Dimanche"}

	// 2026-03-03 is a Tuesday.
	err := ValidateSchedule(b, Request{Date: "2026-03-03", Time: "09:00"}, today)
	if !apperr.Is(err, apperr.KindValidation) || !strings.Contains(err.Error(), "Mardi") {
		t.Fatalf("expected closed-day rejection naming Mardi, got %v", err)
	}

	// 2026-03-07 is a Saturday.
	if err := ValidateSchedule(b, Request{Date: "2026-03-07", Time: "09:00"}, today); err != nil {
		t.Fatalf("expected Saturday acceptance, got %v", err)
	}
}

func TestValidateSchedulePeriodRange(t *testing.T) {
	b := blanes.Blane{
		Name:           "Desert Weekend",
		Type:           blanes.TypeReservation,
		TypeTime:       blanes.TypeTimePeriods,
		StartDate:      "2026-03-01",
		ExpirationDate: "2026-03-31",
	}

	ok := Request{Date: "2026-03-10", EndDate: "2026-03-12"}
	if err := ValidateSchedule(b, ok, today); err != nil {
		t.Fatalf("expected in-range acceptance, got %v", err)
	}

	out := Request{Date: "2026-03-30", EndDate: "2026-04-02"}
	err := ValidateSchedule(b, out, today)
	if !apperr.Is(err, apperr.KindValidation) || !strings.Contains(err.Error(), "2026-03-31") {
		t.Fatalf("expected out-of-range rejection, got %v", err)
	}

	inverted := Request{Date: "2026-03-12", EndDate: "2026-03-10"}
	if err := ValidateSchedule(b, inverted, today); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected inverted-range rejection, got %v", err)
	}
}

func TestValidateScheduleOrderNeedsAddress(t *testing.T) {
	b := blanes.Blane{Type: blanes.TypeOrder}

	err := ValidateSchedule(b, Request{}, today)
	if !apperr.Is(err, apperr.KindValidation) || !strings.Contains(err.Error(), "delivery address") {
		t.Fatalf("expected address requirement, got %v", err)
	}

	b.IsDigital = true
	if err := ValidateSchedule(b, Request{}, today); err != nil {
		t.Fatalf("digital order should not need an address, got %v", err)
	}
}

func TestParseDateRoundTrip(t *testing.T) {
	for _, layout := range []string{LayoutDate, LayoutDateTime, LayoutISOFraction} {
		want := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
		if layout != LayoutDate {
			want = time.Date(2026, 3, 7, 14, 30, 0, 0, time.UTC)
		}
		got, err := ParseDate(want.Format(layout))
		if err != nil {
			t.Fatalf("ParseDate(%s): %v", layout, err)
		}
		if !got.Equal(want) {
			t.Errorf("round trip via %s: got %v, want %v", layout, got, want)
		}
	}
}
