package engine

import "math"

// GCD returns the greatest common divisor of a and b. GCD(0, 0) is 0.
// Negative inputs are treated by absolute value.
func GCD(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the least common multiple of positive values.
//
// Returns ErrCodeInvalidArgument for an empty list or a non-positive value
// and ErrCodeOverflow if the result does not fit in int64.
func LCM(values ...int64) (int64, error) {
	if len(values) == 0 {
		return 0, NewInvalidArgumentError("lcm of no values")
	}
	acc := int64(1)
	for _, v := range values {
		if v <= 0 {
			return 0, NewInvalidArgumentError("lcm of non-positive value")
		}
		next, ok := mulInt64(acc/GCD(acc, v), v)
		if !ok {
			return 0, NewOverflowError("lcm")
		}
		acc = next
	}
	return acc, nil
}

// mulInt64 returns a*b for non-negative operands and whether it fits.
func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt64/b {
		return 0, false
	}
	return a * b, true
}

// addInt64 returns a+b for non-negative operands and whether it fits.
func addInt64(a, b int64) (int64, bool) {
	if a > math.MaxInt64-b {
		return 0, false
	}
	return a + b, true
}
