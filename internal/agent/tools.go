package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"dabachat_backend/internal/availability"
	"dabachat_backend/internal/booking"
	"dabachat_backend/internal/catalog"
	"dabachat_backend/platform/logger"
)

// SessionBinder is the slice of the chat service the tools need to bind an
// email to the active session.
type SessionBinder interface {
	Authenticate(ctx context.Context, sessionID, email string) error
}

// ToolDependencies carries the services the tools call plus the per-turn
// session context. One assistant run holds the run mutex, so the session
// fields never interleave between turns.
type ToolDependencies struct {
	Catalog      *catalog.Service
	Availability *availability.Service
	Booking      *booking.Service
	Sessions     SessionBinder
	Logger       *logger.Logger

	mu          sync.RWMutex
	sessionID   string
	clientEmail string
}

// SetSessionContext binds the tools to the session of the current turn.
func (d *ToolDependencies) SetSessionContext(sessionID, clientEmail string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessionID = sessionID
	d.clientEmail = clientEmail
}

// SessionContext returns the active session ID and bound client email.
func (d *ToolDependencies) SessionContext() (string, string) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sessionID, d.clientEmail
}

// textOutput is the shared tool result shape: one formatted string the LLM
// relays to the user, errors included.
type textOutput struct {
	Message string `json:"message"`
}

func (d *ToolDependencies) observe(toolName string, started time.Time, err error) {
	sessionID, _ := d.SessionContext()
	d.Logger.ToolCall(sessionID, toolName, float64(time.Since(started).Milliseconds()), err)
}

// buildTools assembles the full tool list of the booking assistant.
func buildTools(deps *ToolDependencies) ([]tool.Tool, error) {
	builders := []func(*ToolDependencies) (tool.Tool, error){
		createIntroductionTool,
		createAuthenticateEmailTool,
		createListCategoriesTool,
		createListDistrictsTool,
		createListBlanesTool,
		createBlaneInfoTool,
		createFilterBlanesTool,
		createFindBlanesTool,
		createTimeSlotsTool,
		createPeriodsTool,
		createBeforeReservationTool,
		createPreviewReservationTool,
		createCreateReservationTool,
		createListReservationsTool,
	}

	tools := make([]tool.Tool, 0, len(builders))
	for _, build := range builders {
		t, err := build(deps)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

func createIntroductionTool(deps *ToolDependencies) (tool.Tool, error) {
	type input struct{}
	return functiontool.New(functiontool.Config{
		Name:        "introduction_message",
		Description: "Returns the assistant's introduction. Use it when the user greets (hello, salam, bonjour), asks what the assistant can do, or starts a new conversation.",
	}, func(ctx tool.Context, _ input) (textOutput, error) {
		return textOutput{Message: introductionMessage}, nil
	})
}

func createAuthenticateEmailTool(deps *ToolDependencies) (tool.Tool, error) {
	type input struct {
		ClientEmail string `json:"client_email"`
	}
	return functiontool.New(functiontool.Config{
		Name:        "authenticate_email",
		Description: "Associates the user's email address with the current chat session. Call this as soon as the user shares their email.",
	}, func(ctx tool.Context, in input) (textOutput, error) {
		started := time.Now()
		sessionID, _ := deps.SessionContext()

		err := deps.Sessions.Authenticate(context.Background(), sessionID, in.ClientEmail)
		deps.observe("authenticate_email", started, err)
		if err != nil {
			return textOutput{Message: renderError(err)}, nil
		}
		deps.SetSessionContext(sessionID, in.ClientEmail)
		return textOutput{Message: fmt.Sprintf("Authenticated %s for this session.", in.ClientEmail)}, nil
	})
}

func createListCategoriesTool(deps *ToolDependencies) (tool.Tool, error) {
	type input struct{}
	return functiontool.New(functiontool.Config{
		Name:        "list_categories",
		Description: "Lists all blane categories with their IDs.",
	}, func(ctx tool.Context, _ input) (textOutput, error) {
		started := time.Now()
		categories, err := deps.Catalog.Categories(context.Background())
		deps.observe("list_categories", started, err)
		if err != nil {
			return textOutput{Message: renderError(err)}, nil
		}
		return textOutput{Message: renderCategories(categories)}, nil
	})
}

func createListDistrictsTool(deps *ToolDependencies) (tool.Tool, error) {
	type input struct{}
	return functiontool.New(functiontool.Config{
		Name:        "list_districts_and_subdistricts",
		Description: "Lists the known Casablanca districts and their sub-areas, for narrowing a search by location.",
	}, func(ctx tool.Context, _ input) (textOutput, error) {
		return textOutput{Message: renderDistricts(deps.Catalog.Districts())}, nil
	})
}

func createListBlanesTool(deps *ToolDependencies) (tool.Tool, error) {
	type input struct {
		Start  int `json:"start"`
		Offset int `json:"offset"`
	}
	return functiontool.New(functiontool.Config{
		Name:        "list_blanes",
		Description: "Lists active blanes without filters, newest first. Use list_blanes_by_location_and_category when the user gives a category, city or district. start is 1-based; offset defaults to 10, max 25.",
	}, func(ctx tool.Context, in input) (textOutput, error) {
		started := time.Now()
		page, err := deps.Catalog.ListRange(context.Background(), in.Start, in.Offset)
		deps.observe("list_blanes", started, err)
		if err != nil {
			return textOutput{Message: renderError(err)}, nil
		}
		header := fmt.Sprintf("📋 Blanes list (items %d-%d of %d total)", page.Start, page.End, page.Total)
		return textOutput{Message: renderPage(page, header)}, nil
	})
}

func createBlaneInfoTool(deps *ToolDependencies) (tool.Tool, error) {
	type input struct {
		BlaneID int `json:"blane_id"`
	}
	return functiontool.New(functiontool.Config{
		Name:        "blanes_info",
		Description: "Returns the full details of one blane by its ID: description, price, schedule, delivery and payment options.",
	}, func(ctx tool.Context, in input) (textOutput, error) {
		started := time.Now()
		b, err := deps.Catalog.Info(context.Background(), in.BlaneID)
		deps.observe("blanes_info", started, err)
		if err != nil {
			return textOutput{Message: renderError(err)}, nil
		}
		return textOutput{Message: renderInfo(b)}, nil
	})
}

func createFilterBlanesTool(deps *ToolDependencies) (tool.Tool, error) {
	type input struct {
		District string `json:"district"`
		Category string `json:"category"`
		City     string `json:"city"`
		Start    int    `json:"start"`
		Offset   int    `json:"offset"`
	}
	return functiontool.New(functiontool.Config{
		Name:        "list_blanes_by_location_and_category",
		Description: "Lists active blanes of a category (required), optionally narrowed by city and Casablanca district. District matching uses the known sub-areas of the district.",
	}, func(ctx tool.Context, in input) (textOutput, error) {
		started := time.Now()
		filter := catalog.LocationFilter{
			District: in.District,
			Category: in.Category,
			City:     in.City,
			Start:    in.Start,
			Offset:   in.Offset,
		}
		page, err := deps.Catalog.FilterByLocation(context.Background(), filter)
		deps.observe("list_blanes_by_location_and_category", started, err)
		if err != nil {
			return textOutput{Message: renderError(err)}, nil
		}
		header := fmt.Sprintf("📋 Filtered results: %s\n📊 Showing items %d-%d of %d matches",
			filter.Summary(), page.Start, page.End, page.Total)
		return textOutput{Message: renderPage(page, header)}, nil
	})
}

func createFindBlanesTool(deps *ToolDependencies) (tool.Tool, error) {
	type input struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	return functiontool.New(functiontool.Config{
		Name:        "find_blanes_by_name_or_link",
		Description: "Finds blanes by name or from a shared link using fuzzy matching on names and slugs. Use when the user already knows which blane they want.",
	}, func(ctx tool.Context, in input) (textOutput, error) {
		started := time.Now()
		matches, err := deps.Catalog.FindByNameOrLink(context.Background(), in.Query, in.Limit, catalog.DefaultScoreThreshold)
		deps.observe("find_blanes_by_name_or_link", started, err)
		if err != nil {
			return textOutput{Message: renderError(err)}, nil
		}
		return textOutput{Message: renderMatches(matches)}, nil
	})
}

func createTimeSlotsTool(deps *ToolDependencies) (tool.Tool, error) {
	type input struct {
		BlaneID int    `json:"blane_id"`
		Date    string `json:"date"`
	}
	return functiontool.New(functiontool.Config{
		Name:        "get_available_time_slots",
		Description: "Returns the open time slots of an hour-based reservation blane on a date (YYYY-MM-DD), with remaining capacity.",
	}, func(ctx tool.Context, in input) (textOutput, error) {
		started := time.Now()
		b, slots, err := deps.Availability.TimeSlots(context.Background(), in.BlaneID, in.Date)
		deps.observe("get_available_time_slots", started, err)
		if err != nil {
			return textOutput{Message: renderError(err)}, nil
		}
		return textOutput{Message: renderTimeSlots(b, in.Date, slots)}, nil
	})
}

func createPeriodsTool(deps *ToolDependencies) (tool.Tool, error) {
	type input struct {
		BlaneID int `json:"blane_id"`
	}
	return functiontool.New(functiontool.Config{
		Name:        "get_available_periods",
		Description: "Returns the open date periods of a daily reservation blane, with remaining capacity.",
	}, func(ctx tool.Context, in input) (textOutput, error) {
		started := time.Now()
		b, periods, err := deps.Availability.Periods(context.Background(), in.BlaneID)
		deps.observe("get_available_periods", started, err)
		if err != nil {
			return textOutput{Message: renderError(err)}, nil
		}
		return textOutput{Message: renderPeriods(b, periods)}, nil
	})
}

func createBeforeReservationTool(deps *ToolDependencies) (tool.Tool, error) {
	type input struct {
		BlaneID int `json:"blane_id"`
	}
	return functiontool.New(functiontool.Config{
		Name:        "before_create_reservation",
		Description: "Run this before create_reservation. Returns the exact fields the user must provide for the given blane, plus its valid dates and time slots.",
	}, func(ctx tool.Context, in input) (textOutput, error) {
		started := time.Now()
		checklist, err := deps.Booking.PrepareInfo(context.Background(), in.BlaneID)
		deps.observe("before_create_reservation", started, err)
		if err != nil {
			return textOutput{Message: renderError(err)}, nil
		}
		return textOutput{Message: renderChecklist(checklist)}, nil
	})
}

// bookingInput is shared by the preview and create tools.
type bookingInput struct {
	BlaneID         int    `json:"blane_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	City            string `json:"city"`
	Date            string `json:"date"`
	EndDate         string `json:"end_date"`
	Time            string `json:"time"`
	Quantity        int    `json:"quantity"`
	NumberPersons   int    `json:"number_persons"`
	DeliveryAddress string `json:"delivery_address"`
	Comments        string `json:"comments"`
}

func (in bookingInput) toRequest(sessionEmail string) booking.Request {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		email = sessionEmail
	}
	return booking.Request{
		BlaneID:         in.BlaneID,
		Name:            in.Name,
		Email:           email,
		Phone:           in.Phone,
		City:            in.City,
		Date:            in.Date,
		EndDate:         in.EndDate,
		Time:            in.Time,
		Quantity:        in.Quantity,
		Persons:         in.NumberPersons,
		DeliveryAddress: in.DeliveryAddress,
		Comments:        in.Comments,
	}
}

func createPreviewReservationTool(deps *ToolDependencies) (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "preview_reservation",
		Description: "Validates a booking and shows the full price breakdown (delivery, payment route, partial advance) without submitting it. Use it to confirm the details with the user first.",
	}, func(ctx tool.Context, in bookingInput) (textOutput, error) {
		started := time.Now()
		_, sessionEmail := deps.SessionContext()

		b, quote, err := deps.Booking.Preview(context.Background(), in.toRequest(sessionEmail))
		deps.observe("preview_reservation", started, err)
		if err != nil {
			return textOutput{Message: renderError(err)}, nil
		}
		return textOutput{Message: renderQuote(b, quote)}, nil
	})
}

func createCreateReservationTool(deps *ToolDependencies) (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "create_reservation",
		Description: "Submits the reservation or order after the user confirmed the preview. Returns the booking reference and, for online or partial payment, the payment link.",
	}, func(ctx tool.Context, in bookingInput) (textOutput, error) {
		started := time.Now()
		_, sessionEmail := deps.SessionContext()

		confirmation, err := deps.Booking.Create(context.Background(), in.toRequest(sessionEmail))
		deps.observe("create_reservation", started, err)
		if err != nil {
			return textOutput{Message: renderError(err)}, nil
		}
		return textOutput{Message: renderConfirmation(confirmation)}, nil
	})
}

func createListReservationsTool(deps *ToolDependencies) (tool.Tool, error) {
	type input struct {
		Email string `json:"email"`
	}
	return functiontool.New(functiontool.Config{
		Name:        "list_reservations",
		Description: "Lists the user's existing reservations and orders. Uses the session's authenticated email when none is given.",
	}, func(ctx tool.Context, in input) (textOutput, error) {
		started := time.Now()
		email := strings.TrimSpace(in.Email)
		if email == "" {
			_, email = deps.SessionContext()
		}

		bookings, err := deps.Booking.History(context.Background(), email)
		deps.observe("list_reservations", started, err)
		if err != nil {
			return textOutput{Message: renderError(err)}, nil
		}
		return textOutput{Message: renderHistory(email, bookings)}, nil
	})
}
