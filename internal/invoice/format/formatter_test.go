package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInvoiceNumber(t *testing.T) {
	issued := time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		template string
		seq      int64
		want     string
	}{
		{"default template", DefaultInvoiceNumberTemplate, 1, "INV-20250502-0001"},
		{"sequence padding", DefaultInvoiceNumberTemplate, 123, "INV-20250502-0123"},
		{"padding overflow keeps digits", "{SEQ2}", 1234, "1234"},
		{"short year", "{YY}-{SEQ}", 7, "25-7"},
		{"unpadded sequence", "INV/{MM}/{SEQ}", 42, "INV/05/42"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := InvoiceNumber(tc.template, issued, tc.seq)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestInvoiceNumberErrors(t *testing.T) {
	issued := time.Date(2025, time.May, 2, 0, 0, 0, 0, time.UTC)

	_, err := InvoiceNumber("", issued, 1)
	require.Error(t, err)

	_, err = InvoiceNumber(DefaultInvoiceNumberTemplate, issued, 0)
	require.Error(t, err)

	_, err = InvoiceNumber("INV-{UNKNOWN}", issued, 1)
	require.Error(t, err)
}
