package agent

import (
	"strings"
	"testing"

	"dabachat_backend/internal/blanes"
	"dabachat_backend/internal/booking"
	"dabachat_backend/internal/catalog"
	"dabachat_backend/platform/apperr"
)

func TestRenderError(t *testing.T) {
	if got := renderError(nil); got != "" {
		t.Fatalf("nil error should render empty, got %q", got)
	}

	got := renderError(apperr.NotFound("blane with ID 42 not found"))
	if got != "❌ blane with ID 42 not found" {
		t.Fatalf("unexpected rendering %q", got)
	}

	got = renderError(apperr.PartialSuccess(
		"booking RES-0007 created",
		"the payment link could not be generated, the booking is registered anyway"))
	if !strings.HasPrefix(got, "✅ booking RES-0007 created") || !strings.Contains(got, "⚠️ the payment link") {
		t.Fatalf("partial success should keep both lines, got %q", got)
	}
}

func TestRenderPageFooter(t *testing.T) {
	page := catalog.Page{
		Items: []blanes.Blane{
			{ID: 1, Name: "Spa Day", PriceCurrent: 149},
			{ID: 2, Name: "Beach Club"},
		},
		Start: 1, End: 2, Total: 30,
	}

	out := renderPage(page, "📋 Blanes list (items 1-2 of 30 total)")
	if !strings.Contains(out, "1. Spa Day — 149 Dhs (blane_id: 1)") {
		t.Fatalf("priced line missing:\n%s", out)
	}
	if !strings.Contains(out, "2. Beach Club (blane_id: 2)") {
		t.Fatalf("unpriced line should omit the price:\n%s", out)
	}
	if !strings.Contains(out, "More results available") {
		t.Fatalf("expected more-results footer:\n%s", out)
	}

	page.End, page.Total = 2, 2
	out = renderPage(page, "header")
	if !strings.Contains(out, "That's all for these filters") {
		t.Fatalf("expected end-of-results footer:\n%s", out)
	}
}

func TestRenderInfoPaymentOptions(t *testing.T) {
	out := renderInfo(blanes.Blane{
		ID: 3, Name: "Spa Day", City: "Casablanca",
		Type: blanes.TypeReservation, TypeTime: blanes.TypeTimeSlots,
		PriceCurrent: 149, PriceOld: 200,
		HeureDebut: "09:00:00", HeureFin: "17:00:00", IntervaleReservation: 30,
		Cash: true, Partiel: true, PartielField: 30,
	})

	for _, want := range []string{
		"🏷 *Name:* Spa Day",
		"~Old Price: 200 MAD~",
		"*Reservation Type:* Hour-Based",
		"*Slot Duration:* 30 minutes",
		"- 💵 Cash: ✅",
		"- 💳 Online Full: ❌",
		"- 💳 Online Partial: ✅ (30%)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("info card missing %q:\n%s", want, out)
		}
	}
}

func TestRenderChecklistListsSlots(t *testing.T) {
	out := renderChecklist(booking.Checklist{
		Blane: blanes.Blane{
			Name: "Spa Day", Type: blanes.TypeReservation, TypeTime: blanes.TypeTimeSlots,
			HeureDebut: "09:00:00", HeureFin: "11:00:00", IntervaleReservation: 60,
			StartDate: "2026-03-01", ExpirationDate: "2026-03-31",
		},
		Fields: []string{"name", "email", "date", "time"},
	})

	if !strings.Contains(out, "1. *Name*") || !strings.Contains(out, "4. *Time*") {
		t.Fatalf("field list missing:\n%s", out)
	}
	if !strings.Contains(out, "Available from 2026-03-01 to 2026-03-31") {
		t.Fatalf("date range missing:\n%s", out)
	}
	if !strings.Contains(out, "09:00, 10:00") {
		t.Fatalf("slot listing missing:\n%s", out)
	}
}

func TestRenderConfirmation(t *testing.T) {
	out := renderConfirmation(booking.Confirmation{
		Reference: "RES-0007",
		BlaneName: "Spa Day",
		Quote: booking.Quote{
			Total: 149, DueNow: 104, PartielPrice: 45, Route: booking.RoutePartiel,
		},
		PaymentURL: "https://pay.example/7",
	})

	for _, want := range []string{"RES-0007", "Total: 149 MAD", "Due now: 104 MAD", "💳 Pay here: https://pay.example/7"} {
		if !strings.Contains(out, want) {
			t.Fatalf("confirmation missing %q:\n%s", want, out)
		}
	}
}
