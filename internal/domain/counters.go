package domain

import "fmt"

// Counters process-lifetime event counts. Mutated only by the cycle driver,
// which runs one iteration at a time, so no locking is needed.
type Counters struct {
	Cycles int
	Profit int
	Lose   int
	Errors int
}

// String returns the compact status form, e.g. "[C12|P3|L0|E1]".
func (c *Counters) String() string {
	return fmt.Sprintf("[C%d|P%d|L%d|E%d]", c.Cycles, c.Profit, c.Lose, c.Errors)
}
