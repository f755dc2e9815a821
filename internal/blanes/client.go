package blanes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"dabachat_backend/platform/apperr"
	"dabachat_backend/platform/config"
	"dabachat_backend/platform/logger"
)

// Client talks to the dabablane back-office and front APIs. It is safe for
// concurrent use; the underlying http.Client handles connection pooling.
type Client struct {
	backURL  string
	frontURL string
	tokens   TokenSource
	client   *http.Client
	logger   *logger.Logger
}

// NewClient builds the gateway client.
func NewClient(cfg config.BlanesConfig, tokens TokenSource, log *logger.Logger) *Client {
	return &Client{
		backURL:  cfg.GetBlanesBackURL(),
		frontURL: cfg.GetBlanesFrontURL(),
		tokens:   tokens,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   log,
	}
}

// ListBlanes fetches one page of active offers, newest first.
func (c *Client) ListBlanes(ctx context.Context, page, perPage int) ([]Blane, Meta, error) {
	query := url.Values{
		"status":     {"active"},
		"sort_by":    {"created_at"},
		"sort_order": {"desc"},
		"page":       {strconv.Itoa(page)},
		"per_page":   {strconv.Itoa(perPage)},
	}

	var envelope struct {
		Data []Blane `json:"data"`
		Meta Meta    `json:"meta"`
	}
	if err := c.do(ctx, "list blanes", http.MethodGet, c.backURL+"/blanes?"+query.Encode(), nil, &envelope); err != nil {
		return nil, Meta{}, err
	}
	return envelope.Data, envelope.Meta, nil
}

// ListAllBlanes walks the list endpoint until every active offer is
// collected. maxPages bounds the walk against a runaway remote.
func (c *Client) ListAllBlanes(ctx context.Context, perPage, maxPages int) ([]Blane, error) {
	var all []Blane
	for page := 1; page <= maxPages; page++ {
		batch, meta, err := c.ListBlanes(ctx, page, perPage)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) == 0 || page >= meta.LastPage {
			break
		}
	}
	return all, nil
}

// ListByCategory fetches offers belonging to a category.
func (c *Client) ListByCategory(ctx context.Context, categoryID, page, perPage int) ([]Blane, Meta, error) {
	query := url.Values{
		"category_id":    {strconv.Itoa(categoryID)},
		"sort_order":     {"desc"},
		"page":           {strconv.Itoa(page)},
		"paginationSize": {strconv.Itoa(perPage)},
	}

	var envelope struct {
		Data []Blane `json:"data"`
		Meta Meta    `json:"meta"`
	}
	if err := c.do(ctx, "list blanes by category", http.MethodGet, c.backURL+"/getBlanesByCategory?"+query.Encode(), nil, &envelope); err != nil {
		return nil, Meta{}, err
	}
	return envelope.Data, envelope.Meta, nil
}

// GetBlane fetches one offer by numeric ID from the back office.
func (c *Client) GetBlane(ctx context.Context, id int) (Blane, error) {
	var envelope struct {
		Data *Blane `json:"data"`
	}
	err := c.do(ctx, "get blane", http.MethodGet, fmt.Sprintf("%s/blanes/%d", c.backURL, id), nil, &envelope)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Blane{}, apperr.NotFound(fmt.Sprintf("blane with ID %d not found", id))
		}
		return Blane{}, err
	}
	if envelope.Data == nil {
		return Blane{}, apperr.NotFound(fmt.Sprintf("blane with ID %d not found", id))
	}
	return *envelope.Data, nil
}

// GetBlaneBySlug fetches the public offer detail, including scheduling and
// available periods, from the front API.
func (c *Client) GetBlaneBySlug(ctx context.Context, slug string) (Blane, error) {
	var envelope struct {
		Data *Blane `json:"data"`
	}
	err := c.do(ctx, "get blane detail", http.MethodGet, c.frontURL+"/blanes/"+url.PathEscape(slug), nil, &envelope)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return Blane{}, apperr.NotFound(fmt.Sprintf("blane %q not found", slug))
		}
		return Blane{}, err
	}
	if envelope.Data == nil {
		return Blane{}, apperr.NotFound(fmt.Sprintf("blane %q not found", slug))
	}
	return *envelope.Data, nil
}

// ListCategories fetches all offer categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var envelope struct {
		Data []Category `json:"data"`
	}
	if err := c.do(ctx, "list categories", http.MethodGet, c.backURL+"/categories", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// TimeSlots fetches the bookable starting times for a slug on a date
// (YYYY-MM-DD).
func (c *Client) TimeSlots(ctx context.Context, slug, date string) ([]TimeSlot, error) {
	endpoint := fmt.Sprintf("%s/blanes/%s/available-time-slots?date=%s",
		c.frontURL, url.PathEscape(slug), url.QueryEscape(date))

	var envelope struct {
		Data []TimeSlot `json:"data"`
	}
	if err := c.do(ctx, "time slots", http.MethodGet, endpoint, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// CreateReservation submits a reservation and returns the remote reference.
func (c *Client) CreateReservation(ctx context.Context, payload ReservationPayload) (Submission, error) {
	return c.submit(ctx, "create reservation", c.frontURL+"/reservations", payload)
}

// CreateOrder submits an order and returns the remote reference.
func (c *Client) CreateOrder(ctx context.Context, payload OrderPayload) (Submission, error) {
	return c.submit(ctx, "create order", c.frontURL+"/orders", payload)
}

func (c *Client) submit(ctx context.Context, op, endpoint string, payload any) (Submission, error) {
	var envelope struct {
		Data *submissionBody `json:"data"`
	}
	if err := c.do(ctx, op, http.MethodPost, endpoint, payload, &envelope); err != nil {
		return Submission{}, err
	}
	if envelope.Data == nil {
		return Submission{}, apperr.Unavailable(op + ": empty response from booking platform")
	}

	reference := envelope.Data.NumRes
	if reference == "" {
		reference = envelope.Data.NumOrd
	}
	return Submission{
		ID:        int(envelope.Data.ID),
		Reference: reference,
		Status:    envelope.Data.Status,
	}, nil
}

// InitiatePayment requests a CMI payment link for a reservation or order
// reference.
func (c *Client) InitiatePayment(ctx context.Context, reference string) (PaymentInit, error) {
	body := map[string]string{"number": reference}

	var decoded PaymentInit
	if err := c.do(ctx, "initiate payment", http.MethodPost, c.frontURL+"/payment/cmi/initiate", body, &decoded); err != nil {
		return PaymentInit{}, err
	}
	if decoded.PaymentURL == "" {
		return PaymentInit{}, apperr.Unavailable("payment link was not generated")
	}
	return decoded, nil
}

// ReservationsByEmail fetches a client's reservation history.
func (c *Client) ReservationsByEmail(ctx context.Context, email string) ([]Booking, error) {
	return c.history(ctx, "list reservations", c.backURL+"/reservations?email="+url.QueryEscape(email), false)
}

// OrdersByEmail fetches a client's order history.
func (c *Client) OrdersByEmail(ctx context.Context, email string) ([]Booking, error) {
	return c.history(ctx, "list orders", c.backURL+"/orders?email="+url.QueryEscape(email), true)
}

func (c *Client) history(ctx context.Context, op, endpoint string, orders bool) ([]Booking, error) {
	var envelope struct {
		Data []bookingBody `json:"data"`
	}
	if err := c.do(ctx, op, http.MethodGet, endpoint, nil, &envelope); err != nil {
		return nil, err
	}

	bookings := make([]Booking, 0, len(envelope.Data))
	for _, row := range envelope.Data {
		reference := row.NumRes
		if orders {
			reference = row.NumOrd
		}
		name := row.BlaneName
		if name == "" && row.Blane != nil {
			name = row.Blane.Name
		}
		bookings = append(bookings, Booking{
			Reference:  reference,
			BlaneName:  name,
			Date:       row.Date,
			Time:       row.Time,
			Status:     row.Status,
			TotalPrice: row.TotalPrice,
			Quantity:   row.Quantity,
		})
	}
	return bookings, nil
}

// do acquires a token, performs the request and decodes the JSON body into
// out. Remote failures come back as typed apperr values.
func (c *Client) do(ctx context.Context, op, method, endpoint string, body, out any) error {
	token, err := c.tokens.Acquire(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperr.Wrap(apperr.KindInternal, op+": marshal request", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, op+": build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.RemoteAPIError(op, 0, err)
		return apperr.Wrap(apperr.KindUnavailable, op+": booking platform unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperr.NotFound(op + ": not found")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := apperr.Unavailable(fmt.Sprintf("HTTP error %d: %s", resp.StatusCode, string(snippet))).WithOp(op)
		c.logger.RemoteAPIError(op, resp.StatusCode, err)
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.RemoteAPIError(op, resp.StatusCode, err)
		return apperr.Wrap(apperr.KindUnavailable, op+": decode response", err)
	}
	return nil
}
