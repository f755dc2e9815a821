package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dabachat_backend/internal/blanes"
	"dabachat_backend/internal/events"
	"dabachat_backend/platform/apperr"
	"dabachat_backend/platform/logger"
	"dabachat_backend/platform/phone"

	platformevents "dabachat_backend/platform/events"

	"golang.org/x/sync/errgroup"
)

// Gateway is the slice of the blanes client the booking workflow needs.
type Gateway interface {
	GetBlane(ctx context.Context, id int) (blanes.Blane, error)
	CreateReservation(ctx context.Context, payload blanes.ReservationPayload) (blanes.Submission, error)
	CreateOrder(ctx context.Context, payload blanes.OrderPayload) (blanes.Submission, error)
	InitiatePayment(ctx context.Context, reference string) (blanes.PaymentInit, error)
	ReservationsByEmail(ctx context.Context, email string) ([]blanes.Booking, error)
	OrdersByEmail(ctx context.Context, email string) ([]blanes.Booking, error)
}

// Confirmation is the outcome of a successful submission.
type Confirmation struct {
	Reference  string
	BlaneName  string
	Quote      Quote
	PaymentURL string
	Warning    string // set when the booking exists but the payment link failed
}

// Checklist describes which fields a user must supply for a given offer.
type Checklist struct {
	Blane   blanes.Blane
	Fields  []string
	Quote   Quote // indicative, priced at quantity 1 in the offer's home city
}

// Service runs the booking workflow: fetch, validate, price, submit,
// payment link. Each step depends on the previous one, so the sequence is
// strictly linear.
type Service struct {
	gateway Gateway
	bus     platformevents.Bus
	logger  *logger.Logger
	now     func() time.Time
}

// NewService wires the workflow.
func NewService(gateway Gateway, bus platformevents.Bus, log *logger.Logger) *Service {
	return &Service{
		gateway: gateway,
		bus:     bus,
		logger:  log,
		now:     time.Now,
	}
}

// PrepareInfo returns the offer plus the fields the user still has to
// provide before Create can run.
func (s *Service) PrepareInfo(ctx context.Context, blaneID int) (Checklist, error) {
	b, err := s.gateway.GetBlane(ctx, blaneID)
	if err != nil {
		return Checklist{}, err
	}

	fields := []string{"name", "email", "phone", "city"}
	if b.Type == blanes.TypeReservation {
		fields = append(fields, "date")
		if b.TypeTime == blanes.TypeTimeSlots {
			fields = append(fields, "time")
		} else {
			fields = append(fields, "end_date")
		}
		fields = append(fields, "number of persons")
	} else if !bool(b.IsDigital) {
		fields = append(fields, "delivery address")
	}
	fields = append(fields, "quantity")

	return Checklist{
		Blane:  b,
		Fields: fields,
		Quote:  ComputeQuote(b, b.City, 1),
	}, nil
}

// Preview validates and prices a booking attempt without submitting it.
func (s *Service) Preview(ctx context.Context, req Request) (blanes.Blane, Quote, error) {
	b, err := s.gateway.GetBlane(ctx, req.BlaneID)
	if err != nil {
		return blanes.Blane{}, Quote{}, err
	}
	if err := s.validate(b, req); err != nil {
		return blanes.Blane{}, Quote{}, err
	}
	return b, ComputeQuote(b, req.City, req.Quantity), nil
}

// Create runs the full workflow. When the chosen route is online or partial
// it also requests a payment link; a failure there degrades to a partial
// success because the booking already exists remotely.
func (s *Service) Create(ctx context.Context, req Request) (Confirmation, error) {
	b, err := s.gateway.GetBlane(ctx, req.BlaneID)
	if err != nil {
		return Confirmation{}, err
	}
	if err := s.validate(b, req); err != nil {
		return Confirmation{}, err
	}

	quote := ComputeQuote(b, req.City, req.Quantity)

	submission, err := s.submit(ctx, b, req, quote)
	if err != nil {
		return Confirmation{}, err
	}

	confirmation := Confirmation{
		Reference: submission.Reference,
		BlaneName: b.Name,
		Quote:     quote,
	}

	if quote.Route == RouteOnline || quote.Route == RoutePartiel {
		if submission.Reference == "" {
			confirmation.Warning = "the payment link could not be generated, the booking is registered anyway"
		} else if payment, err := s.gateway.InitiatePayment(ctx, submission.Reference); err != nil {
			s.logger.WithContext(ctx).Warn("payment link initiation failed",
				"reference", submission.Reference, "error", err.Error())
			confirmation.Warning = "the payment link could not be generated, the booking is registered anyway"
		} else {
			confirmation.PaymentURL = payment.PaymentURL
		}
	}

	s.bus.Publish(ctx, events.NewBookingCreated(events.BookingCreated{
		Reference:   confirmation.Reference,
		BlaneName:   b.Name,
		ClientName:  req.Name,
		ClientEmail: req.Email,
		Date:        req.Date,
		Time:        req.Time,
		Quantity:    quote.Quantity,
		Total:       quote.Total,
		DueNow:      quote.DueNow,
		Route:       quote.Route,
		PaymentURL:  confirmation.PaymentURL,
	}))

	return confirmation, nil
}

// History merges the client's reservations and orders, newest first as the
// remote returns them.
func (s *Service) History(ctx context.Context, email string) ([]blanes.Booking, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperr.Validation("an email address is required to look up bookings")
	}

	var reservations, orders []blanes.Booking
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reservations, err = s.gateway.ReservationsByEmail(gctx, email)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.gateway.OrdersByEmail(gctx, email)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append(reservations, orders...), nil
}

func (s *Service) validate(b blanes.Blane, req Request) error {
	if strings.TrimSpace(req.Name) == "" {
		return apperr.Validation("a name is required for the booking")
	}
	if !strings.Contains(req.Email, "@") {
		return apperr.Validationf("invalid email address %q", req.Email)
	}
	if !phone.Valid(req.Phone) {
		return apperr.Validationf("invalid phone number %q", req.Phone)
	}
	return ValidateSchedule(b, req, s.now())
}

func (s *Service) submit(ctx context.Context, b blanes.Blane, req Request, quote Quote) (blanes.Submission, error) {
	normalized := phone.NormalizeE164(req.Phone)

	// The remote expects total_price as the amount due now; the partial
	// advance rides separately.
	if b.Type == blanes.TypeOrder {
		return s.gateway.CreateOrder(ctx, blanes.OrderPayload{
			BlaneID:       b.ID,
			Name:          req.Name,
			Email:         req.Email,
			Phone:         normalized,
			City:          req.City,
			DeliveryAddr:  req.DeliveryAddress,
			Quantity:      quote.Quantity,
			PaymentMethod: quote.Route,
			TotalPrice:    quote.DueNow,
			PartielPrice:  quote.PartielPrice,
			Comments:      req.Comments,
			Status:        "pending",
		})
	}

	persons := req.Persons
	if persons < 1 {
		persons = 1
	}
	return s.gateway.CreateReservation(ctx, blanes.ReservationPayload{
		BlaneID:       b.ID,
		Name:          req.Name,
		Email:         req.Email,
		Phone:         normalized,
		City:          req.City,
		Date:          req.Date,
		Time:          normalizeTime(req.Time),
		EndDate:       req.EndDate,
		Quantity:      quote.Quantity,
		NumberPersons: persons,
		PaymentMethod: quote.Route,
		TotalPrice:    quote.DueNow,
		PartielPrice:  quote.PartielPrice,
		Comments:      req.Comments,
		Status:        "pending",
	})
}

func normalizeTime(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	t, err := parseClock(value)
	if err != nil {
		return value
	}
	return t.Format(LayoutTimeShort)
}

// Describe renders a short one-line summary for logs and notifications.
func (c Confirmation) Describe() string {
	return fmt.Sprintf("%s (%s) total %.2f due now %.2f via %s",
		c.BlaneName, c.Reference, c.Quote.Total, c.Quote.DueNow, c.Route())
}

// Route is the chosen payment route.
func (c Confirmation) Route() string { return c.Quote.Route }
