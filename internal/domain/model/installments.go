package model

import (
	"time"

	"academy-payments/internal/domain"
)

// installmentPeriod is the spacing between consecutive due dates.
const installmentPeriod = 30 * 24 * time.Hour

// allowedMonths are the installment plan lengths offered at enrollment.
var allowedMonths = map[int]bool{3: true, 6: true, 12: true}

// AllowedMonths reports whether months is an offered plan length.
func AllowedMonths(months int) bool { return allowedMonths[months] }

// SplitAmount divides total (minor units) into months equal parts. The
// rounding remainder is absorbed by the last part so the parts always sum
// to total exactly.
func SplitAmount(total int64, months int) ([]int64, error) {
	if months <= 0 || total < 0 {
		return nil, domain.ErrInvalidArgument
	}
	base := total / int64(months)
	out := make([]int64, months)
	for i := range out {
		out[i] = base
	}
	out[months-1] = total - base*int64(months-1)
	return out, nil
}

// BuildSchedule produces the installment schedule for an intent created at
// now: amounts from SplitAmount, due dates 30 days apart starting at now,
// and the first entry marked paid (collected at enrollment).
func BuildSchedule(total int64, months int, now time.Time) ([]Installment, error) {
	if !AllowedMonths(months) {
		return nil, domain.ErrInvalidArgument
	}
	amounts, err := SplitAmount(total, months)
	if err != nil {
		return nil, err
	}
	sched := make([]Installment, months)
	for i, amt := range amounts {
		sched[i] = Installment{
			Amount:  amt,
			DueDate: now.Add(time.Duration(i) * installmentPeriod),
			IsPaid:  i == 0,
		}
	}
	return sched, nil
}

// ValidateSchedule checks the invariants every stored schedule must hold:
// non-empty, sums exactly to total, first entry pre-paid.
func ValidateSchedule(sched []Installment, total int64) error {
	if len(sched) == 0 {
		return domain.ErrPlanNotSelected
	}
	var sum int64
	for _, in := range sched {
		if in.Amount < 0 {
			return domain.ErrInvalidArgument
		}
		sum += in.Amount
	}
	if sum != total {
		return domain.ErrInvalidArgument
	}
	if !sched[0].IsPaid {
		return domain.ErrInvalidArgument
	}
	return nil
}
