package render

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	invoicedomain "github.com/sitekhata/sitekhata/internal/invoice/domain"
)

const dateLayout = "2006-01-02"

type PDFRenderer struct{}

func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Render lays out a single-invoice PDF: header, obligation summary, payment
// history, and the derived status line.
func (r *PDFRenderer) Render(inv *invoicedomain.Invoice, payments []invoicedomain.InvoicePayment, lateness invoicedomain.Lateness) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	m.AddRows(
		row.New(12).Add(
			text.NewCol(8, "Invoice "+inv.InvoiceNumber, props.Text{
				Size:  16,
				Style: fontstyle.Bold,
			}),
			text.NewCol(4, inv.DueDate.Format(dateLayout), props.Text{
				Size:  10,
				Align: align.Right,
				Top:   3,
			}),
		),
		row.New(6).Add(
			text.NewCol(12, "Billed to: "+inv.ClientName, props.Text{Size: 10}),
		),
		row.New(6).Add(
			text.NewCol(12, inv.InvoiceItem, props.Text{Size: 10}),
		),
	)

	if inv.Description != "" {
		m.AddRow(6, text.NewCol(12, inv.Description, props.Text{Size: 9}))
	}

	m.AddRow(4, line.NewCol(12))

	m.AddRows(
		summaryRow("Amount", formatMoney(inv.Amount)),
		summaryRow("Paid", formatMoney(inv.TotalPaidAmount)),
		summaryRow("Outstanding", formatMoney(inv.Outstanding())),
		summaryRow("Status", string(inv.PaymentStatus)),
		summaryRow("Lateness", string(lateness)),
	)

	if len(payments) > 0 {
		m.AddRow(4, line.NewCol(12))
		m.AddRow(8, text.NewCol(12, "Payments", props.Text{Size: 11, Style: fontstyle.Bold}))
		m.AddRow(6,
			text.NewCol(3, "Date", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(3, "Amount", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(3, "Method", props.Text{Size: 9, Style: fontstyle.Bold}),
			text.NewCol(3, "Reference", props.Text{Size: 9, Style: fontstyle.Bold}),
		)
		for _, p := range payments {
			m.AddRow(5,
				text.NewCol(3, p.PaymentDate.Format(dateLayout), props.Text{Size: 9}),
				text.NewCol(3, formatMoney(p.Amount), props.Text{Size: 9}),
				text.NewCol(3, string(p.PaymentMethod), props.Text{Size: 9}),
				text.NewCol(3, p.ReferenceNumber, props.Text{Size: 9}),
			)
		}
	}

	m.AddRow(10, footerCol(inv.CreatedAt))

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}

func summaryRow(label, value string) core.Row {
	return row.New(6).Add(
		text.NewCol(3, label, props.Text{Size: 10, Style: fontstyle.Bold}),
		text.NewCol(9, value, props.Text{Size: 10}),
	)
}

func footerCol(createdAt time.Time) core.Col {
	return col.New(12).Add(
		text.New("Issued "+createdAt.Format(dateLayout), props.Text{
			Size:  8,
			Align: align.Right,
			Top:   4,
		}),
	)
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
