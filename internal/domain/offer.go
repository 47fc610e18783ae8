package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Offer is a priced quote returned by the exchange. It is valid only for a
// short window and is consumed by a single confirmation.
type Offer struct {
	// ID opaque identifier assigned by the exchange.
	ID string
	// Side buy or sell.
	Side Side
	// EffectivePrice all-in price including exchange and API fees.
	EffectivePrice decimal.Decimal
	// BaseAmount quantity of BTC covered by the offer.
	BaseAmount decimal.Decimal
	// QuoteAmount quantity of BRL covered by the offer.
	QuoteAmount decimal.Decimal
	// IsQuote true when the requested amount was expressed in BRL.
	IsQuote bool
	// ExpiresAt end of the exchange-defined validity window.
	ExpiresAt time.Time
}

// OfferRequest parameters of a quote request.
type OfferRequest struct {
	Amount  decimal.Decimal
	IsQuote bool
	Op      Side
}

// Confirmation is the result of confirming a single offer (one trade leg).
type Confirmation struct {
	OfferID   string
	Confirmed bool
}

// Trade is a row from the account trade history.
type Trade struct {
	ID      string
	OfferID string
	Op      Side
}
