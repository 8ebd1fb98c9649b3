package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2025, time.May, d, 0, 0, 0, 0, time.UTC)
}

func payment(amount float64, paymentDate time.Time, createdAt time.Time) InvoicePayment {
	return InvoicePayment{
		Amount:      amount,
		PaymentDate: paymentDate,
		CreatedAt:   createdAt,
	}
}

func TestClassifyLateness(t *testing.T) {
	due := day(20)

	tests := []struct {
		name          string
		status        PaymentStatus
		payments      []InvoicePayment
		referenceDate time.Time
		want          Lateness
	}{
		{
			name:          "open before due date",
			status:        PaymentStatusNotPaid,
			referenceDate: day(10),
			want:          LatenessUndetermined,
		},
		{
			name:          "open on due date",
			status:        PaymentStatusPartiallyPaid,
			payments:      []InvoicePayment{payment(100, day(10), day(10))},
			referenceDate: day(20),
			want:          LatenessUndetermined,
		},
		{
			name:          "open past due date",
			status:        PaymentStatusPartiallyPaid,
			payments:      []InvoicePayment{payment(100, day(10), day(10))},
			referenceDate: day(21),
			want:          LatenessLate,
		},
		{
			name:   "settled by single payment before due",
			status: PaymentStatusFullyPaid,
			payments: []InvoicePayment{
				payment(500, day(15), day(15)),
			},
			referenceDate: day(30),
			want:          LatenessOnTime,
		},
		{
			name:   "settlement is the payment crossing the principal",
			status: PaymentStatusFullyPaid,
			payments: []InvoicePayment{
				payment(300, day(10), day(10)),
				payment(200, day(25), day(25)),
			},
			referenceDate: day(30),
			want:          LatenessLate,
		},
		{
			name:   "early partial then on-time settlement",
			status: PaymentStatusFullyPaid,
			payments: []InvoicePayment{
				payment(300, day(5), day(5)),
				payment(200, day(18), day(18)),
			},
			referenceDate: day(30),
			want:          LatenessOnTime,
		},
		{
			name:   "payments walked in date order not insert order",
			status: PaymentStatusFullyPaid,
			payments: []InvoicePayment{
				payment(400, day(25), day(1)),
				payment(100, day(5), day(2)),
			},
			referenceDate: day(30),
			want:          LatenessLate,
		},
		{
			name:   "deleted payments are ignored",
			status: PaymentStatusFullyPaid,
			payments: []InvoicePayment{
				{Amount: 500, PaymentDate: day(10), CreatedAt: day(10), IsDeleted: true},
				payment(500, day(25), day(25)),
			},
			referenceDate: day(30),
			want:          LatenessLate,
		},
		{
			name:          "fully paid with no surviving payments",
			status:        PaymentStatusFullyPaid,
			referenceDate: day(30),
			want:          LatenessUndetermined,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv := &Invoice{
				Amount:        500,
				DueDate:       due,
				PaymentStatus: tc.status,
			}
			got := ClassifyLateness(inv, tc.payments, tc.referenceDate)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	require.Equal(t, PaymentStatusNotPaid, DerivePaymentStatus(0, 500))
	require.Equal(t, PaymentStatusNotPaid, DerivePaymentStatus(-10, 500))
	require.Equal(t, PaymentStatusPartiallyPaid, DerivePaymentStatus(499.99, 500))
	require.Equal(t, PaymentStatusFullyPaid, DerivePaymentStatus(500, 500))
	require.Equal(t, PaymentStatusFullyPaid, DerivePaymentStatus(550, 500))
}

func TestOutstandingNeverNegative(t *testing.T) {
	inv := Invoice{Amount: 500, TotalPaidAmount: 550}
	require.Equal(t, float64(0), inv.Outstanding())

	inv.TotalPaidAmount = 300
	require.Equal(t, float64(200), inv.Outstanding())
}
