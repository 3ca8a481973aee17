package domain

import (
	"fmt"
	"math/big"
	"strings"
)

// AmountBytes is the width of the fixed-size big-endian storage form.
const AmountBytes = 16

var maxAmount = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// Amount is an unsigned 128-bit money amount in the smallest unit of its currency.
// Amount is immutable: all operations return new values. The zero value is 0.
type Amount struct {
	v *big.Int
}

// NewAmount creates an Amount from a uint64.
func NewAmount(v uint64) Amount {
	return Amount{v: new(big.Int).SetUint64(v)}
}

// ParseAmount parses a base-10 string. Empty input, signs, fractions and values
// above 2^128-1 are rejected.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("%w: amount is empty", ErrInvalidArgument)
	}
	if s[0] == '+' || s[0] == '-' {
		return Amount{}, fmt.Errorf("%w: amount %q must be unsigned", ErrInvalidArgument, s)
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fmt.Errorf("%w: invalid amount %q", ErrInvalidArgument, s)
	}
	if v.Cmp(maxAmount) > 0 {
		return Amount{}, fmt.Errorf("%w: amount %q exceeds 128 bits", ErrInvalidArgument, s)
	}
	return Amount{v: v}, nil
}

// AmountFromBytes decodes the 16-byte big-endian storage form.
func AmountFromBytes(b []byte) (Amount, error) {
	if len(b) != AmountBytes {
		return Amount{}, fmt.Errorf("amount: want %d bytes, got %d", AmountBytes, len(b))
	}
	return Amount{v: new(big.Int).SetBytes(b)}, nil
}

func (a Amount) int() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// Bytes returns the 16-byte big-endian storage form.
func (a Amount) Bytes() []byte {
	out := make([]byte, AmountBytes)
	a.int().FillBytes(out)
	return out
}

// Add returns a + other. The sum is not clamped; callers adding untrusted
// amounts should check Overflows on the result.
func (a Amount) Add(other Amount) Amount {
	return Amount{v: new(big.Int).Add(a.int(), other.int())}
}

// Sub returns a - other, or an error when other is larger.
func (a Amount) Sub(other Amount) (Amount, error) {
	if a.LessThan(other) {
		return Amount{}, fmt.Errorf("amount: %s - %s underflows", a, other)
	}
	return Amount{v: new(big.Int).Sub(a.int(), other.int())}, nil
}

// Overflows reports whether the value no longer fits in 128 bits.
func (a Amount) Overflows() bool {
	return a.int().Cmp(maxAmount) > 0
}

func (a Amount) Cmp(other Amount) int {
	return a.int().Cmp(other.int())
}

func (a Amount) IsZero() bool {
	return a.int().Sign() == 0
}

func (a Amount) LessThan(other Amount) bool {
	return a.Cmp(other) < 0
}

func (a Amount) GreaterThan(other Amount) bool {
	return a.Cmp(other) > 0
}

func (a Amount) Equals(other Amount) bool {
	return a.Cmp(other) == 0
}

// String returns the base-10 representation.
func (a Amount) String() string {
	return a.int().String()
}
