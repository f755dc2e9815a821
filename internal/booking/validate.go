package booking

import (
	"strings"
	"time"

	"dabachat_backend/internal/blanes"
	"dabachat_backend/platform/apperr"
	"dabachat_backend/platform/textmatch"
)

// Date and time layouts accepted from users and the remote platform.
const (
	LayoutDate        = "2006-01-02"
	LayoutDateTime    = "2006-01-02 15:04:05"
	LayoutISOFraction = "2006-01-02T15:04:05.000Z"
	LayoutTime        = "15:04:05"
	LayoutTimeShort   = "15:04"
)

const defaultSlotInterval = 30 // minutes

// The remote platform stores open days by their French names.
var frenchWeekdays = map[time.Weekday]string{
	time.Monday:    "Lundi",
	time.Tuesday:   "Mardi",
	time.Wednesday: "Mercredi",
	time.Thursday:  "Jeudi",
	time.Friday:    "Vendredi",
	time.Saturday:  "Samedi",
	time.Sunday:    "Dimanche",
}

// Request carries the user-supplied booking fields. Derived pricing never
// lives here; it is computed fresh for every attempt.
type Request struct {
	BlaneID         int
	Name            string
	Email           string
	Phone           string
	City            string
	Date            string
	EndDate         string
	Time            string
	Quantity        int
	Persons         int
	DeliveryAddress string
	Comments        string
}

// ParseDate accepts the three layouts the platform emits and users type.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{LayoutDate, LayoutDateTime, LayoutISOFraction} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Validationf("invalid date %q, expected format YYYY-MM-DD", value)
}

func parseClock(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{LayoutTime, LayoutTimeShort} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperr.Validationf("invalid time %q, expected format HH:MM", value)
}

// Slots generates the bookable starting times by stepping from the opening
// time at the configured interval. The range is half-open: the closing time
// itself is never a slot.
func Slots(opening, closing string, intervalMinutes int) ([]string, error) {
	start, err := parseClock(opening)
	if err != nil {
		return nil, err
	}
	end, err := parseClock(closing)
	if err != nil {
		return nil, err
	}
	if intervalMinutes <= 0 {
		intervalMinutes = defaultSlotInterval
	}

	var slots []string
	step := time.Duration(intervalMinutes) * time.Minute
	for cur := start; cur.Before(end); cur = cur.Add(step) {
		slots = append(slots, cur.Format(LayoutTimeShort))
	}
	return slots, nil
}

// ValidateSchedule enforces the offer's booking rules against the request.
// Every rejection is a validation error with a message the assistant can
// relay verbatim.
func ValidateSchedule(b blanes.Blane, req Request, today time.Time) error {
	if b.Type == blanes.TypeOrder {
		if !bool(b.IsDigital) && strings.TrimSpace(req.DeliveryAddress) == "" {
			return apperr.Validation("a delivery address is required for this order")
		}
		return nil
	}

	if strings.TrimSpace(req.Date) == "" {
		return apperr.Validation("a reservation date is required (format YYYY-MM-DD)")
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return err
	}

	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if date.Before(midnight) {
		return apperr.Validationf("the requested date %s is in the past, please choose today or later", req.Date)
	}

	if len(b.JoursCreneaux) > 0 {
		weekday := frenchWeekdays[date.Weekday()]
		if !containsDay(b.JoursCreneaux, weekday) {
			return apperr.Validationf("%s is closed on %s, open days are: %s",
				b.Name, weekday, strings.Join(b.JoursCreneaux, ", "))
		}
	}

	switch b.TypeTime {
	case blanes.TypeTimeSlots:
		return validateSlot(b, req.Time)
	case blanes.TypeTimePeriods:
		return validatePeriod(b, date, req.EndDate)
	}
	return nil
}

func validateSlot(b blanes.Blane, requested string) error {
	if strings.TrimSpace(requested) == "" {
		return apperr.Validation("a reservation time is required (format HH:MM)")
	}
	parsed, err := parseClock(requested)
	if err != nil {
		return err
	}

	slots, err := Slots(b.HeureDebut, b.HeureFin, int(b.IntervaleReservation))
	if err != nil {
		return err
	}

	want := parsed.Format(LayoutTimeShort)
	for _, slot := range slots {
		if slot == want {
			return nil
		}
	}
	return apperr.Validationf("invalid time %s, choose from: %s", requested, strings.Join(slots, ", "))
}

func validatePeriod(b blanes.Blane, start time.Time, endDate string) error {
	if strings.TrimSpace(endDate) == "" {
		return apperr.Validation("an end date is required for this offer (format YYYY-MM-DD)")
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return err
	}
	if end.Before(start) {
		return apperr.Validation("the end date must not be before the start date")
	}

	if b.StartDate == "" || b.ExpirationDate == "" {
		return nil
	}
	rangeStart, err := ParseDate(b.StartDate)
	if err != nil {
		return nil // malformed remote data never blocks a booking here
	}
	rangeEnd, err := ParseDate(b.ExpirationDate)
	if err != nil {
		return nil
	}
	if start.Before(rangeStart) || end.After(rangeEnd) {
		return apperr.Validationf("%s runs from %s to %s, the requested dates fall outside this range",
			b.Name, rangeStart.Format(LayoutDate), rangeEnd.Format(LayoutDate))
	}
	return nil
}

func containsDay(days []string, day string) bool {
	for _, d := range days {
		if textmatch.Fold(d) == textmatch.Fold(day) {
			return true
		}
	}
	return false
}
