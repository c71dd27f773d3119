package orders

import (
	"strings"
	"time"

	"github.com/dukerupert/artesania/internal/domain"
)

// DefaultCurrency prefixes every formatted amount.
const DefaultCurrency = "Bs"

// Tone is the color family of a status badge.
type Tone string

const (
	ToneGreen   Tone = "green"
	ToneAmber   Tone = "amber"
	ToneRed     Tone = "red"
	ToneNeutral Tone = "neutral"
)

// StatusLabel maps a backend order status to a display label and tone.
// Unrecognized statuses are shown as received.
func StatusLabel(status string) (string, Tone) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "":
		return "Unknown", ToneNeutral
	case "delivered", "completed":
		return "Delivered", ToneGreen
	case "pending", "processing":
		return "Pending", ToneAmber
	case "cancelled", "canceled":
		return "Cancelled", ToneRed
	default:
		return status, ToneNeutral
	}
}

// Formatter renders amounts with a currency label.
type Formatter struct {
	Currency string
}

func (f Formatter) label() string {
	if f.Currency == "" {
		return DefaultCurrency
	}
	return f.Currency
}

// Amount renders a: missing is zero, invalid keeps the received text.
func (f Formatter) Amount(a domain.Amount) string {
	switch a.State {
	case domain.AmountValid:
		return f.label() + " " + a.Value.StringFixed(2)
	case domain.AmountInvalid:
		return f.label() + " " + a.Raw
	default:
		return f.label() + " 0.00"
	}
}

// Optional renders a only when it holds a number.
func (f Formatter) Optional(a domain.Amount) string {
	if !a.Valid() {
		return "Not available"
	}
	return f.Amount(a)
}

// Percent renders a discount rate such as "10%". Missing renders empty.
func Percent(a domain.Amount) string {
	switch a.State {
	case domain.AmountValid:
		return a.Value.String() + "%"
	case domain.AmountInvalid:
		return a.Raw + "%"
	default:
		return ""
	}
}

// FormatCurrency formats a raw value with the default currency label.
func FormatCurrency(v any) string {
	return Formatter{}.Amount(ParseAmount(v))
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate renders an ISO timestamp as "January 2, 2006". Unparseable
// input is returned unchanged.
func FormatDate(s string) string {
	if s == "" {
		return "Date not available"
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return s
}
