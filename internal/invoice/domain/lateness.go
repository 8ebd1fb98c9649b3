package domain

import (
	"sort"
	"time"

	"github.com/sitekhata/sitekhata/internal/clock"
)

// Lateness is deliberately tri-state. An open invoice that is not yet due is
// neither late nor on time, and collapsing that into a boolean has caused
// real reporting bugs; callers must handle Undetermined explicitly.
type Lateness string

const (
	LatenessOnTime       Lateness = "on_time"
	LatenessLate         Lateness = "late"
	LatenessUndetermined Lateness = "undetermined"
)

// ClassifyLateness derives the lateness of an invoice from its payment
// history and a reference date.
//
// Fully paid: the verdict comes from the payment that first pushed the
// running total to the principal, compared against the due date. Otherwise:
// Undetermined until the due date passes, Late after.
func ClassifyLateness(inv *Invoice, payments []InvoicePayment, referenceDate time.Time) Lateness {
	dueDate := clock.Truncate(inv.DueDate)

	if inv.PaymentStatus == PaymentStatusFullyPaid {
		settled := settlementDate(inv.Amount, payments)
		if settled == nil {
			return LatenessUndetermined
		}
		if settled.After(dueDate) {
			return LatenessLate
		}
		return LatenessOnTime
	}

	if clock.Truncate(referenceDate).After(dueDate) {
		return LatenessLate
	}
	return LatenessUndetermined
}

// settlementDate returns the date of the payment that brought the running
// total to the principal, walking payments in payment-date order.
func settlementDate(principal float64, payments []InvoicePayment) *time.Time {
	ordered := make([]InvoicePayment, 0, len(payments))
	for _, p := range payments {
		if !p.IsDeleted {
			ordered = append(ordered, p)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].PaymentDate.Equal(ordered[j].PaymentDate) {
			return ordered[i].PaymentDate.Before(ordered[j].PaymentDate)
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	var running float64
	for _, p := range ordered {
		running += p.Amount
		if running >= principal {
			settled := clock.Truncate(p.PaymentDate)
			return &settled
		}
	}
	return nil
}
