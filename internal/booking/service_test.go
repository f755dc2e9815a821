package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"dabachat_backend/internal/blanes"
	"dabachat_backend/internal/events"
	"dabachat_backend/platform/apperr"
	"dabachat_backend/platform/logger"

	platformevents "dabachat_backend/platform/events"
)

type fakeGateway struct {
	blane          blanes.Blane
	blaneErr       error
	reservation    *blanes.ReservationPayload
	order          *blanes.OrderPayload
	submission     blanes.Submission
	paymentErr     error
	paymentURL     string
	paymentCalled  bool
	historyRes     []blanes.Booking
	historyOrd     []blanes.Booking
}

func (f *fakeGateway) GetBlane(context.Context, int) (blanes.Blane, error) {
	return f.blane, f.blaneErr
}

func (f *fakeGateway) CreateReservation(_ context.Context, p blanes.ReservationPayload) (blanes.Submission, error) {
	f.reservation = &p
	return f.submission, nil
}

func (f *fakeGateway) CreateOrder(_ context.Context, p blanes.OrderPayload) (blanes.Submission, error) {
	f.order = &p
	return f.submission, nil
}

func (f *fakeGateway) InitiatePayment(context.Context, string) (blanes.PaymentInit, error) {
	f.paymentCalled = true
	if f.paymentErr != nil {
		return blanes.PaymentInit{}, f.paymentErr
	}
	return blanes.PaymentInit{PaymentURL: f.paymentURL}, nil
}

func (f *fakeGateway) ReservationsByEmail(context.Context, string) ([]blanes.Booking, error) {
	return f.historyRes, nil
}

func (f *fakeGateway) OrdersByEmail(context.Context, string) ([]blanes.Booking, error) {
	return f.historyOrd, nil
}

type recordingBus struct {
	mu     sync.Mutex
	events []platformevents.Event
}

func (b *recordingBus) Publish(_ context.Context, e platformevents.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e platformevents.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, platformevents.Handler) {}

func newTestService(gw *fakeGateway, bus *recordingBus) *Service {
	svc := NewService(gw, bus, logger.New("development"))
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }
	return svc
}

func validRequest() Request {
	return Request{
		BlaneID:  1,
		Name:     "Amina",
		Email:    "amina@example.com",
		Phone:    "0612345678",
		City:     "Casablanca",
		Date:     "2026-03-03",
		Time:     "09:00",
		Quantity: 2,
		Persons:  2,
	}
}

func TestCreateReservationCashRoute(t *testing.T) {
	gw := &fakeGateway{
		blane:      slotBlane(),
		submission: blanes.Submission{Reference: "RES-0001", Status: "pending"},
	}
	gw.blane.PriceCurrent = 100
	gw.blane.Cash = true
	bus := &recordingBus{}

	conf, err := newTestService(gw, bus).Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if conf.Reference != "RES-0001" || conf.Quote.Total != 200 {
		t.Fatalf("unexpected confirmation: %+v", conf)
	}
	if gw.paymentCalled {
		t.Fatal("cash route must not initiate payment")
	}
	if gw.reservation == nil || gw.reservation.Status != "pending" {
		t.Fatalf("unexpected payload: %+v", gw.reservation)
	}
	if gw.reservation.Phone != "+212612345678" {
		t.Fatalf("expected normalized phone, got %q", gw.reservation.Phone)
	}
	if len(bus.events) != 1 || bus.events[0].EventName() != events.BookingCreatedName {
		t.Fatalf("expected one booking.created event, got %+v", bus.events)
	}
}

func TestCreateOnlineRouteReturnsPaymentURL(t *testing.T) {
	gw := &fakeGateway{
		blane:      slotBlane(),
		submission: blanes.Submission{Reference: "RES-0002"},
		paymentURL: "https://pay.example/abc",
	}
	gw.blane.PriceCurrent = 100
	gw.blane.Online = true

	conf, err := newTestService(gw, &recordingBus{}).Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if conf.PaymentURL != "https://pay.example/abc" || conf.Warning != "" {
		t.Fatalf("unexpected confirmation: %+v", conf)
	}
}

func TestCreatePaymentFailureIsPartialSuccess(t *testing.T) {
	gw := &fakeGateway{
		blane:      slotBlane(),
		submission: blanes.Submission{Reference: "RES-0003"},
		paymentErr: errors.New("cmi down"),
	}
	gw.blane.PriceCurrent = 100
	gw.blane.Online = true

	conf, err := newTestService(gw, &recordingBus{}).Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("booking must succeed despite payment failure, got %v", err)
	}
	if conf.Reference != "RES-0003" || conf.Warning == "" {
		t.Fatalf("expected warning on confirmation, got %+v", conf)
	}
}

func TestCreateOrderCarriesDeliveryAndSplit(t *testing.T) {
	gw := &fakeGateway{
		blane: blanes.Blane{
			ID:              5,
			Name:            "Gift Box",
			Type:            blanes.TypeOrder,
			City:            "Casablanca",
			PriceCurrent:    80,
			LivraisonInCity: 20,
			LivraisonOut:    50,
			Partiel:         true,
			PartielField:    50,
		},
		submission: blanes.Submission{Reference: "ORD-0001"},
		paymentURL: "https://pay.example/ord",
	}

	req := validRequest()
	req.City = "Rabat"
	req.Quantity = 1
	req.Date, req.Time = "", ""
	req.DeliveryAddress = "12 Rue Atlas"

	conf, err := newTestService(gw, &recordingBus{}).Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 80 + 50 delivery = 130, advance 50% = 65.
	if conf.Quote.Total != 130 || conf.Quote.PartielPrice != 65 || conf.Quote.DueNow != 65 {
		t.Fatalf("unexpected quote: %+v", conf.Quote)
	}
	if gw.order == nil || gw.order.TotalPrice != 65 || gw.order.PartielPrice != 65 {
		t.Fatalf("unexpected order payload: %+v", gw.order)
	}
}

func TestCreateRejectsBadContact(t *testing.T) {
	gw := &fakeGateway{blane: slotBlane()}
	svc := newTestService(gw, &recordingBus{})

	req := validRequest()
	req.Email = "not-an-email"
	if _, err := svc.Create(context.Background(), req); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected email rejection, got %v", err)
	}

	req = validRequest()
	req.Phone = "123"
	if _, err := svc.Create(context.Background(), req); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected phone rejection, got %v", err)
	}
}

func TestPrepareInfoListsRequiredFields(t *testing.T) {
	gw := &fakeGateway{blane: slotBlane()}

	checklist, err := newTestService(gw, &recordingBus{}).PrepareInfo(context.Background(), 1)
	if err != nil {
		t.Fatalf("PrepareInfo: %v", err)
	}

	want := map[string]bool{"date": false, "time": false, "quantity": false}
	for _, f := range checklist.Fields {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Errorf("checklist missing %q: %v", field, checklist.Fields)
		}
	}
}

func TestHistoryMergesReservationsAndOrders(t *testing.T) {
	gw := &fakeGateway{
		historyRes: []blanes.Booking{{Reference: "RES-1"}},
		historyOrd: []blanes.Booking{{Reference: "ORD-1"}},
	}
	svc := newTestService(gw, &recordingBus{})

	bookings, err := svc.History(context.Background(), "amina@example.com")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(bookings) != 2 {
		t.Fatalf("expected merged history, got %+v", bookings)
	}

	if _, err := svc.History(context.Background(), "  "); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected email requirement, got %v", err)
	}
}
