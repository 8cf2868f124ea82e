// Package money provides exact decimal arithmetic for monetary amounts.
//
// Amounts are arbitrary-precision decimals, never binary floats. Rounding
// happens only where the pricing rules call for it (tax, totals, change),
// always to two decimal places, half to even. Intermediate sums stay exact.
package money

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// decCtx is the shared arithmetic context. 32 digits of precision is far
// beyond anything a single-register sale can accumulate.
var decCtx = func() *apd.Context {
	c := apd.BaseContext.WithPrecision(32)
	c.Rounding = apd.RoundHalfEven
	return c
}()

// Amount is a decimal monetary value. The zero value is 0.00 and ready to use.
type Amount struct {
	d apd.Decimal
}

// Parse converts a decimal string ("1.50", "0.0825") into an Amount.
// Non-finite and malformed inputs are rejected.
func Parse(s string) (Amount, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	if d.Form != apd.Finite {
		return Amount{}, fmt.Errorf("parse amount %q: not a finite number", s)
	}
	return Amount{d: *d}, nil
}

// MustParse is Parse for trusted constants. Panics on malformed input.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// arith runs one context operation and panics if the operands were invalid.
// All Amounts are finite by construction, so a failure here is a bug.
func arith(op func(res *apd.Decimal) (apd.Condition, error)) Amount {
	var res apd.Decimal
	if _, err := op(&res); err != nil {
		panic(fmt.Sprintf("money: arithmetic on invalid amount: %v", err))
	}
	return Amount{d: res}
}

// Add returns a + b exactly.
func (a Amount) Add(b Amount) Amount {
	return arith(func(res *apd.Decimal) (apd.Condition, error) {
		return decCtx.Add(res, &a.d, &b.d)
	})
}

// Sub returns a - b exactly.
func (a Amount) Sub(b Amount) Amount {
	return arith(func(res *apd.Decimal) (apd.Condition, error) {
		return decCtx.Sub(res, &a.d, &b.d)
	})
}

// Mul returns a * b exactly. Used for unit price times rate; callers round
// the result where the pricing rules say to.
func (a Amount) Mul(b Amount) Amount {
	return arith(func(res *apd.Decimal) (apd.Condition, error) {
		return decCtx.Mul(res, &a.d, &b.d)
	})
}

// MulInt returns a * n exactly. Used for unit price times quantity.
func (a Amount) MulInt(n int) Amount {
	q := apd.New(int64(n), 0)
	return arith(func(res *apd.Decimal) (apd.Condition, error) {
		return decCtx.Mul(res, &a.d, q)
	})
}

// Round2 returns a rounded to two decimal places, half to even.
func (a Amount) Round2() Amount {
	return arith(func(res *apd.Decimal) (apd.Condition, error) {
		return decCtx.Quantize(res, &a.d, -2)
	})
}

// FromCents builds an Amount from a whole number of cents.
func FromCents(c int64) Amount {
	return Amount{d: *apd.New(c, -2)}
}

// Cents returns the amount in whole cents after rounding to two decimal
// places. Lets callers aggregate money as integers without float drift.
func (a Amount) Cents() int64 {
	scaled := a.Round2().MulInt(100)
	n, err := scaled.d.Int64()
	if err != nil {
		panic(fmt.Sprintf("money: cents of %s: %v", a, err))
	}
	return n
}

// Cmp compares a and b numerically: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) int {
	return a.d.Cmp(&b.d)
}

// IsZero reports whether the amount equals zero.
func (a Amount) IsZero() bool {
	return a.d.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a.d.Negative && !a.d.IsZero()
}

// String renders the amount with exactly two decimal places ("1.50").
func (a Amount) String() string {
	r := a.Round2()
	return r.d.Text('f')
}

// MarshalJSON emits the amount as a plain JSON number with two decimals,
// keeping the persisted reference files human-diffable.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
