package tax

import "github.com/shopspring/decimal"

// CNSS contribution rates for Tunisia.
var (
	CNSSEmployeeRate = decimal.RequireFromString("0.0918")
	CNSSEmployerRate = decimal.RequireFromString("0.1657")
)

// TunisiaIRPP2025 is the statutory IRPP bracket table for Tunisia (2025
// schedule, annual income in TND). It is used to seed the tax_brackets table
// on first start; after seeding the database is the single source of truth.
func TunisiaIRPP2025() []Bracket {
	upper := func(v string) *decimal.Decimal {
		d := decimal.RequireFromString(v)
		return &d
	}
	return []Bracket{
		{Lower: decimal.Zero, Upper: upper("5000"), Rate: decimal.Zero},
		{Lower: decimal.RequireFromString("5000"), Upper: upper("20000"), Rate: decimal.RequireFromString("0.26")},
		{Lower: decimal.RequireFromString("20000"), Upper: upper("30000"), Rate: decimal.RequireFromString("0.28")},
		{Lower: decimal.RequireFromString("30000"), Upper: upper("50000"), Rate: decimal.RequireFromString("0.32")},
		{Lower: decimal.RequireFromString("50000"), Upper: nil, Rate: decimal.RequireFromString("0.35")},
	}
}
