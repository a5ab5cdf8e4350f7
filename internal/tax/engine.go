package tax

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Bracket is one slice of a progressive tax table. Upper is nil for the
// unbounded top bracket.
type Bracket struct {
	Lower decimal.Decimal
	Upper *decimal.Decimal
	Rate  decimal.Decimal
}

var (
	ErrNoBrackets      = errors.New("no tax brackets configured")
	ErrInvalidBrackets = errors.New("invalid tax bracket table")
)

// Calculate runs a progressive bracket calculation over an amount.
// Brackets must be sorted ascending by Lower. Each bracket taxes
// min(remaining, upper-lower) at its rate; the top bracket (nil Upper) taxes
// the whole remainder. Every bracket contribution is rounded to 2 decimal
// places before accumulating, which is the engine's fixed rounding contract.
func Calculate(amount decimal.Decimal, brackets []Bracket) decimal.Decimal {
	if len(brackets) == 0 || amount.Sign() <= 0 {
		return decimal.Zero
	}

	total := decimal.Zero
	remaining := amount

	for _, b := range brackets {
		if remaining.Sign() <= 0 {
			break
		}

		var size decimal.Decimal
		if b.Upper != nil {
			size = b.Upper.Sub(b.Lower)
		} else {
			size = remaining
		}

		slice := decimal.Min(remaining, size)
		total = total.Add(slice.Mul(b.Rate).Round(2))
		remaining = remaining.Sub(slice)
	}

	return total.Round(2)
}

// Validate checks the structural invariants of a bracket table: sorted
// ascending, contiguous, rates within [0, 1], and exactly one unbounded top
// bracket sitting last.
func Validate(brackets []Bracket) error {
	if len(brackets) == 0 {
		return ErrNoBrackets
	}

	one := decimal.NewFromInt(1)
	unbounded := 0

	for i, b := range brackets {
		if b.Rate.Sign() < 0 || b.Rate.GreaterThan(one) {
			return fmt.Errorf("%w: bracket %d rate %s outside [0,1]", ErrInvalidBrackets, i, b.Rate)
		}

		if b.Upper == nil {
			unbounded++
			if i != len(brackets)-1 {
				return fmt.Errorf("%w: unbounded bracket %d is not the top bracket", ErrInvalidBrackets, i)
			}
			continue
		}

		if !b.Upper.GreaterThan(b.Lower) {
			return fmt.Errorf("%w: bracket %d upper %s not above lower %s", ErrInvalidBrackets, i, b.Upper, b.Lower)
		}

		if i+1 < len(brackets) && !brackets[i+1].Lower.Equal(*b.Upper) {
			return fmt.Errorf("%w: gap between bracket %d upper %s and bracket %d lower %s",
				ErrInvalidBrackets, i, b.Upper, i+1, brackets[i+1].Lower)
		}
	}

	if unbounded != 1 {
		return fmt.Errorf("%w: expected exactly one unbounded top bracket, found %d", ErrInvalidBrackets, unbounded)
	}

	return nil
}
