package notification

import (
	"context"
	"strings"
	"testing"

	"dabachat_backend/internal/events"
	"dabachat_backend/platform/logger"

	platformevents "dabachat_backend/platform/events"
)

type fakeMailer struct {
	to      string
	subject string
	body    string
	calls   int
}

func (f *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	f.to, f.subject, f.body = to, subject, body
	f.calls++
	return nil
}

func newTestService(mailer Mailer) *Service {
	return &Service{mailer: mailer, logger: logger.New("development")}
}

func TestBookingCreatedSendsConfirmation(t *testing.T) {
	mailer := &fakeMailer{}
	svc := newTestService(mailer)

	bus := platformevents.NewInMemoryBus(logger.New("development"))
	svc.Register(bus)

	err := bus.PublishSync(context.Background(), events.NewBookingCreated(events.BookingCreated{
		Reference:   "RES-0042",
		BlaneName:   "Spa Day",
		ClientName:  "Amina",
		ClientEmail: "amina@example.com",
		Date:        "2026-03-05",
		Time:        "10:00",
		Quantity:    2,
		Total:       300,
		DueNow:      90,
		PaymentURL:  "https://pay.example/cmi/42",
	}))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if mailer.calls != 1 {
		t.Fatalf("expected one email, got %d", mailer.calls)
	}
	if mailer.to != "amina@example.com" {
		t.Fatalf("unexpected recipient %q", mailer.to)
	}
	if !strings.Contains(mailer.subject, "RES-0042") {
		t.Fatalf("subject missing reference: %q", mailer.subject)
	}
	for _, want := range []string{"Spa Day", "RES-0042", "2026-03-05 at 10:00", "Due now: 90.00 MAD", "https://pay.example/cmi/42"} {
		if !strings.Contains(mailer.body, want) {
			t.Fatalf("body missing %q:\n%s", want, mailer.body)
		}
	}
}

func TestBookingWithoutEmailIsSkipped(t *testing.T) {
	mailer := &fakeMailer{}
	svc := newTestService(mailer)

	err := svc.onBookingCreated(context.Background(), events.NewBookingCreated(events.BookingCreated{
		Reference: "ORD-0001",
	}))
	if err != nil {
		t.Fatalf("onBookingCreated: %v", err)
	}
	if mailer.calls != 0 {
		t.Fatal("booking without client email must not send mail")
	}
}

func TestNilServiceRegisterIsNoop(t *testing.T) {
	var svc *Service
	bus := platformevents.NewInMemoryBus(logger.New("development"))
	svc.Register(bus) // must not panic
}
