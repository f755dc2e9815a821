package blanes

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dabachat_backend/platform/apperr"
	"dabachat_backend/platform/logger"
)

type staticTokens struct{ token string }

func (s staticTokens) Acquire(context.Context) (string, error) { return s.token, nil }

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := &Client{
		backURL:  server.URL + "/back",
		frontURL: server.URL + "/front",
		tokens:   staticTokens{token: "tok-123"},
		client:   server.Client(),
		logger:   logger.New("development"),
	}
	return client, server
}

func TestListBlanesSendsFiltersAndBearer(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("unexpected auth header %q", got)
		}
		q := r.URL.Query()
		if q.Get("status") != "active" || q.Get("sort_by") != "created_at" || q.Get("sort_order") != "desc" {
			t.Errorf("unexpected list filters: %v", q)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": 1, "name": "Spa Day", "slug": "spa-day"}},
			"meta": map[string]any{"total": 1, "last_page": 1},
		})
	}))

	blanes, meta, err := client.ListBlanes(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("ListBlanes: %v", err)
	}
	if len(blanes) != 1 || blanes[0].Name != "Spa Day" {
		t.Fatalf("unexpected blanes: %+v", blanes)
	}
	if meta.Total != 1 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestListAllBlanesWalksPages(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		data := []map[string]any{{"id": 1}}
		if page == "2" {
			data = []map[string]any{{"id": 2}}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": data,
			"meta": map[string]any{"total": 2, "last_page": 2},
		})
	}))

	all, err := client.ListAllBlanes(context.Background(), 10, 5)
	if err != nil {
		t.Fatalf("ListAllBlanes: %v", err)
	}
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 2 {
		t.Fatalf("unexpected accumulation: %+v", all)
	}
}

func TestGetBlaneNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetBlane(context.Background(), 42)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestSubmitReservationReadsReference(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/front/reservations" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var payload ReservationPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload.Status != "pending" {
			t.Errorf("expected pending status, got %q", payload.Status)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"id": 7, "NUM_RES": "RES-0007", "status": "pending"},
		})
	}))

	sub, err := client.CreateReservation(context.Background(), ReservationPayload{
		BlaneID: 1, Status: "pending",
	})
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	if sub.Reference != "RES-0007" {
		t.Fatalf("unexpected reference %q", sub.Reference)
	}
}

func TestRemoteErrorIncludesStatusAndBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))

	_, _, err := client.ListBlanes(context.Background(), 1, 10)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	var appErr *apperr.Error
	if ok := errorsAs(err, &appErr); !ok {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}
	if appErr.Message != "HTTP error 500: upstream exploded" {
		t.Fatalf("unexpected message %q", appErr.Message)
	}
}

func errorsAs(err error, target **apperr.Error) bool {
	e, ok := err.(*apperr.Error)
	if ok {
		*target = e
	}
	return ok
}

func TestInitiatePaymentRequiresURL(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/front/payment/cmi/initiate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"payment_url": ""})
	}))

	_, err := client.InitiatePayment(context.Background(), "RES-0007")
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable for missing payment_url, got %v", err)
	}
}

func TestLenientDecoding(t *testing.T) {
	raw := `{
		"id": 3,
		"partiel": "1",
		"cash": 0,
		"online": true,
		"partiel_field": "30",
		"price_current": "149.99",
		"livraison_in_city": null,
		"intervale_reservation": "60"
	}`

	var b Blane
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !bool(b.Partiel) || bool(b.Cash) || !bool(b.Online) {
		t.Fatalf("unexpected flags: %+v", b)
	}
	if float64(b.PartielField) != 30 || float64(b.PriceCurrent) != 149.99 {
		t.Fatalf("unexpected amounts: %+v", b)
	}
	if int(b.IntervaleReservation) != 60 {
		t.Fatalf("unexpected interval: %d", b.IntervaleReservation)
	}
}
