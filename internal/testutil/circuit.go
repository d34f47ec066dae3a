package testutil

import (
	"fmt"
	"math/bits"
	"strings"
)

// CounterCircuit returns the wiring text of a network in the shape of the
// canonical puzzle input: one binary counter per period, each driven by the
// broadcaster, each feeding an inverter into the conjunction "hub", which
// drives the sink "rx".
//
// Counter j uses the prefix letter 'a'+j. For period n with k bits it has
// flip-flops <p>0..<p>(k-1) chained as a ripple counter, a conjunction <p>c
// fed by the bits set in n, and an inverter <p>i. When the counter reaches
// n the conjunction fires low, resets the counter to zero and sends one
// high pulse through the inverter to hub. Counter j therefore fires high
// into hub on presses n, 2n, 3n, ... and hub first sends low to rx on press
// LCM(periods).
//
// Periods must be odd and at least 3; an even period leaves bit 0 clear
// when the counter resets, and the reset pulse would set it. At most 26
// counters are supported.
func CounterCircuit(periods ...int) string {
	if len(periods) == 0 || len(periods) > 26 {
		panic(fmt.Sprintf("CounterCircuit: need 1..26 periods, got %d", len(periods)))
	}

	var heads []string
	var body []string
	for j, n := range periods {
		if n < 3 || n%2 == 0 {
			panic(fmt.Sprintf("CounterCircuit: period %d must be odd and at least 3", n))
		}
		prefix := string(rune('a' + j))
		heads = append(heads, prefix+"0")
		body = append(body, counterLines(prefix, n)...)
	}

	var sb strings.Builder
	sb.WriteString("broadcaster -> " + strings.Join(heads, ", ") + "\n")
	for _, line := range body {
		sb.WriteString(line + "\n")
	}
	sb.WriteString("&hub -> rx\n")
	return sb.String()
}

func counterLines(prefix string, n int) []string {
	k := bits.Len(uint(n))
	bit := func(i int) string { return fmt.Sprintf("%s%d", prefix, i) }
	conj := prefix + "c"
	inv := prefix + "i"

	lines := make([]string, 0, k+2)
	for i := 0; i < k; i++ {
		var outs []string
		if i+1 < k {
			outs = append(outs, bit(i+1))
		}
		if n>>i&1 == 1 {
			outs = append(outs, conj)
		}
		lines = append(lines, "%"+bit(i)+" -> "+strings.Join(outs, ", "))
	}

	// On reaching n the conjunction adds 1 + (zero bits of n) = 2^k - n,
	// overflowing the counter back to zero.
	outs := []string{bit(0)}
	for i := 1; i < k; i++ {
		if n>>i&1 == 0 {
			outs = append(outs, bit(i))
		}
	}
	outs = append(outs, inv)
	lines = append(lines, "&"+conj+" -> "+strings.Join(outs, ", "))
	lines = append(lines, "&"+inv+" -> hub")
	return lines
}
