package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounters_String(t *testing.T) {
	c := &Counters{}
	assert.Equal(t, "[C0|P0|L0|E0]", c.String())

	c.Cycles = 12
	c.Profit = 3
	c.Errors = 1
	assert.Equal(t, "[C12|P3|L0|E1]", c.String())
}
