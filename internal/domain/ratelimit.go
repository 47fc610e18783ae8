package domain

// RateLimit published request budget for an exchange endpoint.
type RateLimit struct {
	WindowMs    int `json:"windowMs"`
	MaxRequests int `json:"maxRequests"`
}

// ExchangeMeta subset of the exchange metadata the bot cares about.
type ExchangeMeta struct {
	// OfferRateLimit budget of the quote endpoint, drives cycle pacing.
	OfferRateLimit RateLimit
}
