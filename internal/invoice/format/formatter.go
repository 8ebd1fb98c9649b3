package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

const DefaultInvoiceNumberTemplate = "INV-{YYYY}{MM}{DD}-{SEQ4}"

// InvoiceNumber renders a human-readable invoice number from a template, the
// issue date and a per-day monotonic sequence. Pure and deterministic.
func InvoiceNumber(template string, issuedOn time.Time, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	out := template

	out = strings.ReplaceAll(out, "{YYYY}", issuedOn.Format("2006"))
	out = strings.ReplaceAll(out, "{YY}", issuedOn.Format("06"))
	out = strings.ReplaceAll(out, "{MM}", issuedOn.Format("01"))
	out = strings.ReplaceAll(out, "{DD}", issuedOn.Format("02"))

	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))

	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		if len(match) != 2 {
			return m
		}
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.Contains(out, "{") || strings.Contains(out, "}") {
		return "", fmt.Errorf("unresolved token in invoice number template: %s", out)
	}

	return out, nil
}
