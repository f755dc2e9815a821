// Package blanes is the gateway to the remote dabablane booking platform.
// It owns the wire DTOs, the token source and the HTTP client; the catalog,
// availability and booking services build on top of it.
package blanes

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Offer types and scheduling modes as the remote API reports them.
const (
	TypeReservation = "reservation"
	TypeOrder       = "order"

	TypeTimeSlots   = "time"
	TypeTimePeriods = "date"
)

// Flag is a boolean that also accepts 0/1 and "0"/"1"/"true"/"false" on the
// wire. The remote platform is not consistent about how it encodes toggles.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", `""`:
		*f = false
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	switch strings.ToLower(string(data)) {
	case "1", "true":
		*f = true
	default:
		*f = false
	}
	return nil
}

// Amount is a float64 that also accepts quoted numbers and null.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "null", `""`:
		*a = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}

// Count is an int with the same lenient decoding as Amount.
type Count int

func (c *Count) UnmarshalJSON(data []byte) error {
	var a Amount
	if err := a.UnmarshalJSON(data); err != nil {
		return err
	}
	*c = Count(a)
	return nil
}

// Blane is one bookable offer. The back-office list endpoints return a
// subset of these fields; the front detail endpoint fills in scheduling and
// period data.
type Blane struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	City        string `json:"city"`
	Status      string `json:"status"`

	Type     string `json:"type"`      // reservation or order
	TypeTime string `json:"type_time"` // time or date, reservations only

	PriceCurrent Amount `json:"price_current"`
	PriceOld     Amount `json:"price_old"`

	Advantages string `json:"advantages"`
	Conditions string `json:"conditions"`
	Rating     Amount `json:"rating"`

	// Order delivery.
	IsDigital       Flag   `json:"is_digital"`
	LivraisonInCity Amount `json:"livraison_in_city"`
	LivraisonOut    Amount `json:"livraison_out_city"`
	Stock           Count  `json:"stock"`

	// Payment routes. PartielField is the advance percentage.
	Cash         Flag   `json:"cash"`
	Online       Flag   `json:"online"`
	Partiel      Flag   `json:"partiel"`
	PartielField Amount `json:"partiel_field"`

	// Reservation scheduling.
	JoursCreneaux        []string `json:"jours_creneaux"`
	HeureDebut           string   `json:"heure_debut"`
	HeureFin             string   `json:"heure_fin"`
	IntervaleReservation Count    `json:"intervale_reservation"`
	StartDate            string   `json:"start_date"`
	ExpirationDate       string   `json:"expiration_date"`
	NbMaxReservation     Count    `json:"nombre_max_reservation"`
	MaxPerSlot           Count    `json:"max_reservation_par_creneau"`

	AvailablePeriods []Period `json:"available_periods"`
}

// Category is an offer category from the back office.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TimeSlot is one bookable starting time on a given date.
type TimeSlot struct {
	Time              string `json:"time"`
	Available         Flag   `json:"available"`
	RemainingCapacity Count  `json:"remainingCapacity"`
}

// Period is one bookable date range for date-based reservations.
type Period struct {
	Name              string `json:"period_name"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	Available         Flag   `json:"available"`
	RemainingCapacity Count  `json:"remainingCapacity"`
}

// Meta is the pagination envelope the list endpoints return.
type Meta struct {
	Total       int `json:"total"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	PerPage     int `json:"per_page"`
}

// ReservationPayload is the body for POST /reservations.
type ReservationPayload struct {
	BlaneID         int     `json:"blane_id"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	City            string  `json:"city"`
	Date            string  `json:"date,omitempty"`
	Time            string  `json:"time,omitempty"`
	EndDate         string  `json:"end_date,omitempty"`
	Quantity        int     `json:"quantity"`
	NumberPersons   int     `json:"number_persons"`
	PaymentMethod   string  `json:"payment_method"`
	TotalPrice      float64 `json:"total_price"`
	PartielPrice    float64 `json:"partiel_price,omitempty"`
	Comments        string  `json:"comments,omitempty"`
	Status          string  `json:"status"`
}

// OrderPayload is the body for POST /orders.
type OrderPayload struct {
	BlaneID       int     `json:"blane_id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone"`
	City          string  `json:"city"`
	DeliveryAddr  string  `json:"delivery_address,omitempty"`
	Quantity      int     `json:"quantity"`
	PaymentMethod string  `json:"payment_method"`
	TotalPrice    float64 `json:"total_price"`
	PartielPrice  float64 `json:"partiel_price,omitempty"`
	Comments      string  `json:"comments,omitempty"`
	Status        string  `json:"status"`
}

// Submission is the remote acknowledgement for a created reservation or
// order. Reference carries NUM_RES or NUM_ORD depending on the offer type.
type Submission struct {
	ID        int    `json:"id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

type submissionBody struct {
	ID     Count  `json:"id"`
	NumRes string `json:"NUM_RES"`
	NumOrd string `json:"NUM_ORD"`
	Status string `json:"status"`
}

// PaymentInit is the response of the CMI payment initiation endpoint.
type PaymentInit struct {
	Status     Flag   `json:"status"`
	PaymentURL string `json:"payment_url"`
}

// Booking is one line of a client's reservation or order history.
type Booking struct {
	Reference  string `json:"reference"`
	BlaneName  string `json:"blane_name"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Status     string `json:"status"`
	TotalPrice Amount `json:"total_price"`
	Quantity   Count  `json:"quantity"`
}

type bookingBody struct {
	NumRes     string `json:"NUM_RES"`
	NumOrd     string `json:"NUM_ORD"`
	BlaneName  string `json:"blane_name"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Status     string `json:"status"`
	TotalPrice Amount `json:"total_price"`
	Quantity   Count  `json:"quantity"`
	Blane      *struct {
		Name string `json:"name"`
	} `json:"blane"`
}
