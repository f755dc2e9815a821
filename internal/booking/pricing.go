// Package booking implements the pricing, validation and submission workflow
// for reservations and orders. It is the only module that writes to the
// remote booking platform.
package booking

import (
	"math"

	"dabachat_backend/internal/blanes"
	"dabachat_backend/platform/textmatch"
)

// Payment routes, in selection precedence order.
const (
	RoutePartiel = "partiel"
	RouteOnline  = "online"
	RouteCash    = "cash"
)

// Quote is the computed price breakdown for a booking attempt.
type Quote struct {
	Quantity     int
	Subtotal     float64
	DeliveryFee  float64
	Total        float64
	Route        string
	PartielPrice float64 // due later when route is partiel
	DueNow       float64
}

// SelectRoute picks the payment route from the offer's support flags.
// Precedence is partial over online over cash; cash is the fallback when no
// flag is set.
func SelectRoute(cash, online, partiel bool) string {
	switch {
	case partiel:
		return RoutePartiel
	case online:
		return RouteOnline
	default:
		return RouteCash
	}
}

// ComputeQuote prices a booking attempt. Quantity is clamped to a minimum of
// one. Delivery fees apply only to physical orders: the out-of-city fee when
// the requested city differs from the offer's home city, the in-city fee
// otherwise. For the partial route the advance percentage is rounded to the
// nearest unit and the remainder is due now.
func ComputeQuote(b blanes.Blane, city string, quantity int) Quote {
	if quantity < 1 {
		quantity = 1
	}

	subtotal := float64(b.PriceCurrent) * float64(quantity)

	var delivery float64
	if b.Type == blanes.TypeOrder && !bool(b.IsDigital) {
		if sameCity(city, b.City) {
			delivery = float64(b.LivraisonInCity)
		} else {
			delivery = float64(b.LivraisonOut)
		}
	}

	total := subtotal + delivery
	route := SelectRoute(bool(b.Cash), bool(b.Online), bool(b.Partiel))

	quote := Quote{
		Quantity:    quantity,
		Subtotal:    subtotal,
		DeliveryFee: delivery,
		Total:       total,
		Route:       route,
		DueNow:      total,
	}
	if route == RoutePartiel && b.PartielField > 0 {
		quote.PartielPrice = math.Round(float64(b.PartielField) / 100 * total)
		quote.DueNow = total - quote.PartielPrice
	}
	return quote
}

func sameCity(a, b string) bool {
	return textmatch.Fold(a) == textmatch.Fold(b)
}
