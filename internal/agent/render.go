package agent

import (
	"fmt"
	"strings"

	"dabachat_backend/internal/blanes"
	"dabachat_backend/internal/booking"
	"dabachat_backend/internal/catalog"
	"dabachat_backend/platform/apperr"
)

// The agent shell has no structured error channel back to the LLM, so every
// failure is rendered into user-facing text here. Typed kinds keep their
// specific wording; anything else degrades to a generic line.

func renderError(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := err.(*apperr.Error); ok {
		switch e.Kind {
		case apperr.KindPartialSuccess:
			return "✅ " + e.Message + "\n⚠️ " + e.Warning
		default:
			return "❌ " + e.Message
		}
	}
	return "❌ " + err.Error()
}

func renderBlaneLine(position int, b blanes.Blane) string {
	if b.PriceCurrent > 0 {
		return fmt.Sprintf("%d. %s — %g Dhs (blane_id: %d)", position, b.Name, float64(b.PriceCurrent), b.ID)
	}
	return fmt.Sprintf("%d. %s (blane_id: %d)", position, b.Name, b.ID)
}

func renderPage(page catalog.Page, header string) string {
	lines := []string{"Here are some options:", header, ""}
	for i, b := range page.Items {
		lines = append(lines, renderBlaneLine(page.Start+i, b))
	}
	lines = append(lines, "")
	if page.HasMore() {
		next := page.End + 1
		lines = append(lines, fmt.Sprintf("💡 More results available (items %d-%d of %d)",
			next, min(next+len(page.Items)-1, page.Total), page.Total))
	} else {
		lines = append(lines, "That's all for these filters. Want to try different search criteria or see details?")
	}
	return strings.Join(lines, "\n")
}

func renderMatches(matches []catalog.Match) string {
	lines := make([]string, 0, len(matches))
	for i, m := range matches {
		b := m.Blane
		if b.PriceCurrent > 0 {
			lines = append(lines, fmt.Sprintf("%d - %s — %g Dhs (blane_id: %d)", i+1, b.Name, float64(b.PriceCurrent), b.ID))
		} else {
			lines = append(lines, fmt.Sprintf("%d - %s (blane_id: %d)", i+1, b.Name, b.ID))
		}
	}
	return strings.Join(lines, "\n")
}

func renderCategories(categories []blanes.Category) string {
	lines := []string{"Available categories:"}
	for _, c := range categories {
		lines = append(lines, fmt.Sprintf("- %s (id: %d)", c.Name, c.ID))
	}
	return strings.Join(lines, "\n")
}

func renderDistricts(districts catalog.Districts) string {
	lines := []string{"Casablanca districts and their sub-areas:"}
	for _, name := range districts.Names() {
		lines = append(lines, fmt.Sprintf("- *%s*: %s", name, strings.Join(districts.SubAreas(name), ", ")))
	}
	return strings.Join(lines, "\n")
}

func renderInfo(b blanes.Blane) string {
	var sb strings.Builder
	sb.WriteString("📋 *Blane Details*\n\n")
	fmt.Fprintf(&sb, "🏷 *Name:* %s\n", b.Name)
	fmt.Fprintf(&sb, "🏙 *City:* %s\n", b.City)
	fmt.Fprintf(&sb, "\n💬 *Description:*\n%s\n", b.Description)
	fmt.Fprintf(&sb, "\n💰 *Price:* %g MAD", float64(b.PriceCurrent))
	if b.PriceOld > 0 {
		fmt.Fprintf(&sb, "\n~Old Price: %g MAD~", float64(b.PriceOld))
	}

	fmt.Fprintf(&sb, "\n\n📍 *Type:* %s", titleCase(b.Type))
	switch {
	case b.Type == blanes.TypeReservation && b.TypeTime == blanes.TypeTimeSlots:
		sb.WriteString("\n📆 *Reservation Type:* Hour-Based")
		fmt.Fprintf(&sb, "\n🕒 *Slot Duration:* %d minutes", int(b.IntervaleReservation))
		fmt.Fprintf(&sb, "\n🕓 *Opens:* %s", b.HeureDebut)
		fmt.Fprintf(&sb, "\n🕔 *Closes:* %s", b.HeureFin)
	case b.Type == blanes.TypeReservation:
		sb.WriteString("\n📆 *Reservation Type:* Daily-Based")
	case b.Type == blanes.TypeOrder && bool(b.IsDigital):
		sb.WriteString("\n🛍 *Product Type:* Digital Product")
	case b.Type == blanes.TypeOrder:
		sb.WriteString("\n🛍 *Product Type:* Physical Product")
	}

	if b.Type == blanes.TypeReservation {
		if b.StartDate != "" {
			fmt.Fprintf(&sb, "\n📅 *Available From:* %s", b.StartDate)
		}
		if b.ExpirationDate != "" {
			fmt.Fprintf(&sb, "\n📅 *Expires On:* %s", b.ExpirationDate)
		}
		if len(b.JoursCreneaux) > 0 {
			fmt.Fprintf(&sb, "\n📆 *Days Open:* %s", strings.Join(b.JoursCreneaux, ", "))
		}
		if b.MaxPerSlot > 0 {
			fmt.Fprintf(&sb, "\n👥 *Max Per Slot:* %d", int(b.MaxPerSlot))
		}
	}
	if b.Type == blanes.TypeOrder {
		if b.Stock > 0 {
			fmt.Fprintf(&sb, "\n📦 *Stock Available:* %d", int(b.Stock))
		}
		if !bool(b.IsDigital) {
			if b.LivraisonInCity > 0 {
				fmt.Fprintf(&sb, "\n🚚 *Delivery (Same City):* %g MAD", float64(b.LivraisonInCity))
			}
			if b.LivraisonOut > 0 {
				fmt.Fprintf(&sb, "\n🚛 *Delivery (Other City):* %g MAD", float64(b.LivraisonOut))
			}
		}
	}

	sb.WriteString("\n\n💳 *Payment Options:*")
	fmt.Fprintf(&sb, "\n- 💵 Cash: %s", checkmark(bool(b.Cash)))
	fmt.Fprintf(&sb, "\n- 💳 Online Full: %s", checkmark(bool(b.Online)))
	fmt.Fprintf(&sb, "\n- 💳 Online Partial: %s", checkmark(bool(b.Partiel)))
	if bool(b.Partiel) && b.PartielField > 0 {
		fmt.Fprintf(&sb, " (%g%%)", float64(b.PartielField))
	}

	if b.Advantages != "" {
		fmt.Fprintf(&sb, "\n\n🎁 *Advantages:* %s", b.Advantages)
	}
	if b.Conditions != "" {
		fmt.Fprintf(&sb, "\n📌 *Conditions:* %s", b.Conditions)
	}
	if b.Rating > 0 {
		fmt.Fprintf(&sb, "\n⭐ *Rating:* %.1f", float64(b.Rating))
	}

	sb.WriteString("\n\nDo you want me to book this for you, or see other blanes?")
	return sb.String()
}

func renderTimeSlots(b blanes.Blane, date string, slots []blanes.TimeSlot) string {
	if len(slots) == 0 {
		return fmt.Sprintf("No available time slots for '%s' on %s.", b.Name, date)
	}
	lines := []string{fmt.Sprintf("🗓 Available time slots for '%s' on %s:", b.Name, date)}
	for _, slot := range slots {
		lines = append(lines, fmt.Sprintf("- %s → %d spots", slot.Time, int(slot.RemainingCapacity)))
	}
	return strings.Join(lines, "\n")
}

func renderPeriods(b blanes.Blane, periods []blanes.Period) string {
	if len(periods) == 0 {
		return fmt.Sprintf("No available periods found for '%s'.", b.Name)
	}
	lines := []string{fmt.Sprintf("📅 Available periods for '%s':", b.Name)}
	for _, p := range periods {
		lines = append(lines, fmt.Sprintf("- %s → %d spots", p.Name, int(p.RemainingCapacity)))
	}
	return strings.Join(lines, "\n")
}

func renderChecklist(c booking.Checklist) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "To proceed with your booking for *%s*, I need the following details:\n\n", c.Blane.Name)
	for i, field := range c.Fields {
		fmt.Fprintf(&sb, "%d. *%s*\n", i+1, titleCase(field))
	}
	if c.Blane.Type == blanes.TypeReservation {
		if c.Blane.StartDate != "" && c.Blane.ExpirationDate != "" {
			fmt.Fprintf(&sb, "\nAvailable from %s to %s.", c.Blane.StartDate, c.Blane.ExpirationDate)
		}
		if c.Blane.TypeTime == blanes.TypeTimeSlots {
			if slots, err := booking.Slots(c.Blane.HeureDebut, c.Blane.HeureFin, int(c.Blane.IntervaleReservation)); err == nil {
				fmt.Fprintf(&sb, "\nAvailable slots: %s. Time format: HH:MM.", strings.Join(slots, ", "))
			}
		}
	}
	sb.WriteString("\nDate format: YYYY-MM-DD.")
	return strings.TrimSpace(sb.String())
}

func renderQuote(b blanes.Blane, quote booking.Quote) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🧾 *Booking preview for %s*\n", b.Name)
	fmt.Fprintf(&sb, "- Quantity: %d\n", quote.Quantity)
	fmt.Fprintf(&sb, "- Subtotal: %g MAD\n", quote.Subtotal)
	if quote.DeliveryFee > 0 {
		fmt.Fprintf(&sb, "- Delivery: %g MAD\n", quote.DeliveryFee)
	}
	fmt.Fprintf(&sb, "- Total: %g MAD\n", quote.Total)
	fmt.Fprintf(&sb, "- Payment route: %s", quote.Route)
	if quote.Route == booking.RoutePartiel && quote.PartielPrice > 0 {
		fmt.Fprintf(&sb, "\n- Due now: %g MAD (remaining %g MAD due later)", quote.DueNow, quote.PartielPrice)
	}
	sb.WriteString("\n\nShall I confirm this booking?")
	return sb.String()
}

func renderConfirmation(c booking.Confirmation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ Booking created for *%s*", c.BlaneName)
	if c.Reference != "" {
		fmt.Fprintf(&sb, " (ref: %s)", c.Reference)
	}
	fmt.Fprintf(&sb, "\n- Total: %g MAD", c.Quote.Total)
	if c.Quote.Route == booking.RoutePartiel && c.Quote.PartielPrice > 0 {
		fmt.Fprintf(&sb, "\n- Due now: %g MAD (remaining %g MAD due later)", c.Quote.DueNow, c.Quote.PartielPrice)
	}
	if c.PaymentURL != "" {
		fmt.Fprintf(&sb, "\n💳 Pay here: %s", c.PaymentURL)
	}
	if c.Warning != "" {
		fmt.Fprintf(&sb, "\n⚠️ %s", c.Warning)
	}
	return sb.String()
}

func renderHistory(email string, bookings []blanes.Booking) string {
	if len(bookings) == 0 {
		return fmt.Sprintf("No reservations or orders found for %s.", email)
	}
	lines := []string{fmt.Sprintf("📒 Bookings for %s:", email)}
	for _, b := range bookings {
		line := fmt.Sprintf("- %s", b.Reference)
		if b.BlaneName != "" {
			line += " — " + b.BlaneName
		}
		if b.Date != "" {
			line += " on " + b.Date
			if b.Time != "" {
				line += " at " + b.Time
			}
		}
		if b.Status != "" {
			line += fmt.Sprintf(" (%s)", b.Status)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func checkmark(v bool) string {
	if v {
		return "✅"
	}
	return "❌"
}
