package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthsElapsed returns the whole calendar-month difference between start and asOf.
// Day-of-month is ignored: a loan started on Jan 31 counts one month elapsed on Feb 1.
// The result is negative when asOf is in an earlier month than start.
func MonthsElapsed(start, asOf time.Time) int {
	return (asOf.Year()-start.Year())*12 + int(asOf.Month()) - int(start.Month())
}

// CalculateDueDate calculates the due date for a specific installment.
// Installment 1 is due one month after the origination date; the day is clamped
// to the last day of shorter months.
func CalculateDueDate(originationDate time.Time, month int) time.Time {
	y, m, d := originationDate.Date()
	target := time.Date(y, m+time.Month(month), 1, 0, 0, 0, 0, originationDate.Location())
	lastDay := time.Date(target.Year(), target.Month()+1, 0, 0, 0, 0, 0, originationDate.Location()).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, originationDate.Location())
}

// TruncateToDay drops the clock part of t in its own location.
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// RoundMoney rounds to two decimal places.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsWholeCents reports whether d carries no more than two decimal places.
func IsWholeCents(d decimal.Decimal) bool {
	return d.Equal(RoundMoney(d))
}

// MinDecimal returns the smaller of a and b.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MaxDecimal returns the larger of a and b.
func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
