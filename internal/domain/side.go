// Package domain defines the core value types shared across the bot.
package domain

// Side is the direction of an offer or trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// String returns the wire representation of the side.
func (s Side) String() string {
	return string(s)
}
